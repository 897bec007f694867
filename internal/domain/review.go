package domain

import (
	"time"
)

// Review is one user's opinion on one TMDB-identified movie or show. A review
// with a non-nil ParentReview is a reply; replies carry rating 0 and copy
// MovieID/MovieTitle from their parent.
type Review struct {
	ID           string    `json:"id" db:"id"` // UUID
	UserID       string    `json:"userId" db:"user_id"`
	MovieID      int64     `json:"movieId" db:"movie_id"` // TMDB id
	MovieTitle   string    `json:"movieTitle" db:"movie_title"`
	Rating       float64   `json:"rating" db:"rating"` // 0-10
	Comment      string    `json:"comment" db:"comment"`
	ParentReview *string   `json:"parentReview" db:"parent_review"`
	IsEdited     bool      `json:"isEdited" db:"is_edited"`
	IsApproved   bool      `json:"isApproved" db:"is_approved"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// IsReply reports whether the review is a threaded reply.
func (r *Review) IsReply() bool {
	return r.ParentReview != nil
}

// ReviewUser is the public slice of the review author attached to listings.
type ReviewUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ReviewView is a review decorated with its author and engagement metadata as
// seen by one viewer. UserAction is nil for anonymous viewers and for viewers
// who have not reacted.
type ReviewView struct {
	Review
	User          ReviewUser    `json:"user"`
	LikesCount    int           `json:"likesCount"`
	DislikesCount int           `json:"dislikesCount"`
	UserAction    *Reaction     `json:"userAction"`
	RepliesCount  int           `json:"repliesCount"`
	Replies       []*ReviewView `json:"replies,omitempty"`
}

// CreateReviewRequest is the body for POST /api/reviews.
type CreateReviewRequest struct {
	MovieID    int64   `json:"movieId" validate:"required"`
	MovieTitle string  `json:"movieTitle" validate:"required"`
	Rating     float64 `json:"rating" validate:"required,gte=0,lte=10"`
	Comment    string  `json:"comment" validate:"required,min=10,max=1000"`
}

// UpdateReviewRequest is the body for PUT /api/reviews/{id}. Nil fields keep
// their stored values.
type UpdateReviewRequest struct {
	Rating  *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	Comment *string  `json:"comment,omitempty" validate:"omitempty,min=10,max=1000"`
}

// CreateReplyRequest is the body for POST /api/reviews/{id}/reply.
type CreateReplyRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=1000"`
}
