package store

import (
	"context"
	"errors"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
)

// ErrReviewNotFound is returned when no review matches the given id.
var ErrReviewNotFound = errors.New("review not found")

// ReactionResult is the outcome of a toggle, reported back to the caller.
type ReactionResult struct {
	LikesCount    int
	DislikesCount int
	UserAction    domain.Reaction
}

// ReviewStore defines persistence operations for reviews, replies and
// engagement. Viewer-dependent reads take a viewerID; the empty string means
// an anonymous viewer and yields a nil userAction everywhere.
type ReviewStore interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, reviewID string) (*domain.Review, error)
	// GetView returns one review decorated with author and engagement
	// metadata, without reply expansion.
	GetView(ctx context.Context, reviewID, viewerID string) (*domain.ReviewView, error)
	Update(ctx context.Context, review *domain.Review) error
	// Delete removes the review together with its replies and reactions.
	Delete(ctx context.Context, reviewID string) error
	// ListByMovie returns approved top-level reviews for a movie, newest
	// first, each carrying its approved replies oldest first.
	ListByMovie(ctx context.Context, movieID int64, viewerID string) ([]*domain.ReviewView, error)
	// ListByUser returns every review owned by the user regardless of
	// approval state, newest first, without reply expansion.
	ListByUser(ctx context.Context, userID string) ([]*domain.ReviewView, error)
	// ToggleReaction applies the like/dislike state machine for one
	// (review, user) pair and reports the resulting counts and state.
	ToggleReaction(ctx context.Context, reviewID, userID string, action domain.Reaction) (*ReactionResult, error)
}
