package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
)

func newReviewStore(t *testing.T) (*MemoryReviewStore, *MemoryUserStore) {
	t.Helper()
	users := NewMemoryUserStore()
	ctx := context.Background()
	if err := users.Create(ctx, newUser("author", "author@example.com")); err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if err := users.Create(ctx, newUser("viewer", "viewer@example.com")); err != nil {
		t.Fatalf("seed viewer: %v", err)
	}
	return NewMemoryReviewStore(users), users
}

func seedReview(t *testing.T, s *MemoryReviewStore, movieID int64, parent *string) *domain.Review {
	t.Helper()
	review := &domain.Review{
		ID:           uuid.NewString(),
		UserID:       "author",
		MovieID:      movieID,
		MovieTitle:   "The Matrix",
		Rating:       8.5,
		Comment:      "a comment long enough to pass validation",
		ParentReview: parent,
		IsApproved:   true,
	}
	if err := s.Create(context.Background(), review); err != nil {
		t.Fatalf("Create review: %v", err)
	}
	return review
}

func TestToggleReactionMutualExclusion(t *testing.T) {
	ctx := context.Background()
	s, _ := newReviewStore(t)
	review := seedReview(t, s, 603, nil)

	// like
	res, err := s.ToggleReaction(ctx, review.ID, "viewer", domain.ReactionLike)
	if err != nil {
		t.Fatalf("ToggleReaction like: %v", err)
	}
	if res.LikesCount != 1 || res.DislikesCount != 0 || res.UserAction != domain.ReactionLike {
		t.Fatalf("after like: %+v", res)
	}

	// dislike replaces the like, never coexists with it
	res, err = s.ToggleReaction(ctx, review.ID, "viewer", domain.ReactionDislike)
	if err != nil {
		t.Fatalf("ToggleReaction dislike: %v", err)
	}
	if res.LikesCount != 0 || res.DislikesCount != 1 || res.UserAction != domain.ReactionDislike {
		t.Fatalf("after switch: %+v", res)
	}

	// same action again removes it
	res, err = s.ToggleReaction(ctx, review.ID, "viewer", domain.ReactionDislike)
	if err != nil {
		t.Fatalf("ToggleReaction toggle off: %v", err)
	}
	if res.LikesCount != 0 || res.DislikesCount != 0 || res.UserAction != domain.ReactionNone {
		t.Fatalf("after toggle off: %+v", res)
	}
}

func TestToggleReactionCountsPerUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newReviewStore(t)
	review := seedReview(t, s, 603, nil)

	if _, err := s.ToggleReaction(ctx, review.ID, "viewer", domain.ReactionLike); err != nil {
		t.Fatalf("viewer like: %v", err)
	}
	res, err := s.ToggleReaction(ctx, review.ID, "author", domain.ReactionDislike)
	if err != nil {
		t.Fatalf("author dislike: %v", err)
	}
	if res.LikesCount != 1 || res.DislikesCount != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", res.LikesCount, res.DislikesCount)
	}
}

func TestToggleReactionUnknownReview(t *testing.T) {
	s, _ := newReviewStore(t)
	_, err := s.ToggleReaction(context.Background(), uuid.NewString(), "viewer", domain.ReactionLike)
	if !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("ToggleReaction unknown = %v, want ErrReviewNotFound", err)
	}
}

func TestDeleteCascadesRepliesAndReactions(t *testing.T) {
	ctx := context.Background()
	s, _ := newReviewStore(t)
	parent := seedReview(t, s, 603, nil)
	reply := seedReview(t, s, 603, &parent.ID)

	if _, err := s.ToggleReaction(ctx, reply.ID, "viewer", domain.ReactionLike); err != nil {
		t.Fatalf("like reply: %v", err)
	}

	if err := s.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.GetByID(ctx, reply.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Errorf("reply survived parent delete: %v", err)
	}
	if len(s.reactions[reply.ID]) != 0 {
		t.Error("reactions survived cascade delete")
	}
}

func TestListByMovieShapeAndOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newReviewStore(t)

	first := seedReview(t, s, 603, nil)
	time.Sleep(time.Millisecond)
	second := seedReview(t, s, 603, nil)
	seedReview(t, s, 550, nil) // unrelated movie
	replyA := seedReview(t, s, 603, &first.ID)
	time.Sleep(time.Millisecond)
	replyB := seedReview(t, s, 603, &first.ID)

	// unapproved reviews stay hidden
	hidden := seedReview(t, s, 603, nil)
	hidden.IsApproved = false
	if err := s.Update(ctx, hidden); err != nil {
		t.Fatalf("Update hidden: %v", err)
	}

	views, err := s.ListByMovie(ctx, 603, "")
	if err != nil {
		t.Fatalf("ListByMovie: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d top-level reviews, want 2", len(views))
	}
	// newest top-level review first
	if views[0].ID != second.ID || views[1].ID != first.ID {
		t.Errorf("top-level order = [%s %s], want newest first", views[0].ID, views[1].ID)
	}
	if len(views[0].Replies) != 0 {
		t.Errorf("second review has %d replies, want 0", len(views[0].Replies))
	}
	if len(views[1].Replies) != 2 {
		t.Fatalf("first review has %d replies, want 2", len(views[1].Replies))
	}
	// replies oldest first
	if views[1].Replies[0].ID != replyA.ID || views[1].Replies[1].ID != replyB.ID {
		t.Errorf("reply order = [%s %s], want oldest first", views[1].Replies[0].ID, views[1].Replies[1].ID)
	}
	if views[1].RepliesCount != 2 {
		t.Errorf("RepliesCount = %d, want 2", views[1].RepliesCount)
	}
	// anonymous viewer gets no userAction
	if views[1].UserAction != nil {
		t.Errorf("anonymous UserAction = %v, want nil", *views[1].UserAction)
	}
}

func TestListByMovieViewerAction(t *testing.T) {
	ctx := context.Background()
	s, _ := newReviewStore(t)
	review := seedReview(t, s, 603, nil)

	if _, err := s.ToggleReaction(ctx, review.ID, "viewer", domain.ReactionLike); err != nil {
		t.Fatalf("like: %v", err)
	}

	views, err := s.ListByMovie(ctx, 603, "viewer")
	if err != nil {
		t.Fatalf("ListByMovie: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	if views[0].UserAction == nil || *views[0].UserAction != domain.ReactionLike {
		t.Errorf("UserAction = %v, want like", views[0].UserAction)
	}
	if views[0].User.Name != "Test User" {
		t.Errorf("author name = %q, want Test User", views[0].User.Name)
	}
}

func TestGetViewUnknownReview(t *testing.T) {
	s, _ := newReviewStore(t)
	if _, err := s.GetView(context.Background(), uuid.NewString(), ""); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("GetView unknown = %v, want ErrReviewNotFound", err)
	}
}

func TestListByUserIncludesReplies(t *testing.T) {
	ctx := context.Background()
	s, _ := newReviewStore(t)
	parent := seedReview(t, s, 603, nil)
	seedReview(t, s, 603, &parent.ID)

	views, err := s.ListByUser(ctx, "author")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d reviews, want 2", len(views))
	}
}
