package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
)

// MemoryReviewStore is an in-memory ReviewStore used by tests and local
// development without a database. Author fields on views are resolved through
// the supplied UserStore.
type MemoryReviewStore struct {
	mu        sync.RWMutex
	reviews   map[string]*domain.Review
	reactions map[string]map[string]domain.Reaction // reviewID -> userID -> kind
	users     UserStore
}

func NewMemoryReviewStore(users UserStore) *MemoryReviewStore {
	return &MemoryReviewStore{
		reviews:   make(map[string]*domain.Review),
		reactions: make(map[string]map[string]domain.Reaction),
		users:     users,
	}
}

func (m *MemoryReviewStore) Create(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	review.CreatedAt = time.Now().UTC()
	review.UpdatedAt = review.CreatedAt
	c := *review
	m.reviews[review.ID] = &c
	return nil
}

func (m *MemoryReviewStore) GetByID(ctx context.Context, reviewID string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	review, ok := m.reviews[reviewID]
	if !ok {
		return nil, ErrReviewNotFound
	}
	c := *review
	return &c, nil
}

func (m *MemoryReviewStore) GetView(ctx context.Context, reviewID, viewerID string) (*domain.ReviewView, error) {
	m.mu.RLock()
	review, ok := m.reviews[reviewID]
	if !ok {
		m.mu.RUnlock()
		return nil, ErrReviewNotFound
	}
	c := *review
	m.mu.RUnlock()
	return m.buildView(ctx, &c, viewerID)
}

func (m *MemoryReviewStore) Update(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[review.ID]; !ok {
		return ErrReviewNotFound
	}
	review.UpdatedAt = time.Now().UTC()
	c := *review
	m.reviews[review.ID] = &c
	return nil
}

func (m *MemoryReviewStore) Delete(ctx context.Context, reviewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[reviewID]; !ok {
		return ErrReviewNotFound
	}
	delete(m.reviews, reviewID)
	delete(m.reactions, reviewID)
	// cascade to replies, mirroring the FK behaviour in Postgres
	for id, r := range m.reviews {
		if r.ParentReview != nil && *r.ParentReview == reviewID {
			delete(m.reviews, id)
			delete(m.reactions, id)
		}
	}
	return nil
}

func (m *MemoryReviewStore) ListByMovie(ctx context.Context, movieID int64, viewerID string) ([]*domain.ReviewView, error) {
	m.mu.RLock()
	var tops []*domain.Review
	replies := make(map[string][]*domain.Review)
	for _, r := range m.reviews {
		if !r.IsApproved {
			continue
		}
		if r.ParentReview != nil {
			c := *r
			replies[*r.ParentReview] = append(replies[*r.ParentReview], &c)
			continue
		}
		if r.MovieID == movieID {
			c := *r
			tops = append(tops, &c)
		}
	}
	m.mu.RUnlock()

	sort.Slice(tops, func(i, j int) bool { return tops[i].CreatedAt.After(tops[j].CreatedAt) })

	views := make([]*domain.ReviewView, 0, len(tops))
	for _, top := range tops {
		view, err := m.buildView(ctx, top, viewerID)
		if err != nil {
			return nil, err
		}
		view.Replies = []*domain.ReviewView{}
		children := replies[top.ID]
		sort.Slice(children, func(i, j int) bool { return children[i].CreatedAt.Before(children[j].CreatedAt) })
		for _, child := range children {
			childView, err := m.buildView(ctx, child, viewerID)
			if err != nil {
				return nil, err
			}
			view.Replies = append(view.Replies, childView)
		}
		views = append(views, view)
	}
	return views, nil
}

func (m *MemoryReviewStore) ListByUser(ctx context.Context, userID string) ([]*domain.ReviewView, error) {
	m.mu.RLock()
	var owned []*domain.Review
	for _, r := range m.reviews {
		if r.UserID == userID {
			c := *r
			owned = append(owned, &c)
		}
	}
	m.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	views := make([]*domain.ReviewView, 0, len(owned))
	for _, r := range owned {
		view, err := m.buildView(ctx, r, userID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (m *MemoryReviewStore) ToggleReaction(ctx context.Context, reviewID, userID string, action domain.Reaction) (*ReactionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[reviewID]; !ok {
		return nil, ErrReviewNotFound
	}
	byUser := m.reactions[reviewID]
	if byUser == nil {
		byUser = make(map[string]domain.Reaction)
		m.reactions[reviewID] = byUser
	}
	next := byUser[userID].Toggle(action)
	if next == domain.ReactionNone {
		delete(byUser, userID)
	} else {
		byUser[userID] = next
	}
	likes, dislikes := countReactions(byUser)
	return &ReactionResult{LikesCount: likes, DislikesCount: dislikes, UserAction: next}, nil
}

func countReactions(byUser map[string]domain.Reaction) (likes, dislikes int) {
	for _, kind := range byUser {
		switch kind {
		case domain.ReactionLike:
			likes++
		case domain.ReactionDislike:
			dislikes++
		}
	}
	return likes, dislikes
}

func (m *MemoryReviewStore) buildView(ctx context.Context, review *domain.Review, viewerID string) (*domain.ReviewView, error) {
	view := &domain.ReviewView{Review: *review}

	author, err := m.users.GetByID(ctx, review.UserID)
	if err == nil {
		view.User = domain.ReviewUser{ID: author.ID, Name: author.Name, Avatar: author.Avatar}
	} else {
		view.User = domain.ReviewUser{ID: review.UserID}
	}

	m.mu.RLock()
	likes, dislikes := countReactions(m.reactions[review.ID])
	view.LikesCount = likes
	view.DislikesCount = dislikes
	if viewerID != "" {
		view.UserAction = m.reactions[review.ID][viewerID].Ptr()
	}
	for _, r := range m.reviews {
		if r.ParentReview != nil && *r.ParentReview == review.ID && r.IsApproved {
			view.RepliesCount++
		}
	}
	m.mu.RUnlock()
	return view, nil
}
