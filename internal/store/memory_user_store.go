package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
)

// MemoryUserStore is an in-memory UserStore used by tests and local
// development without a database.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User // keyed by id
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*domain.User)}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.FavoriteMovies = append([]int64(nil), u.FavoriteMovies...)
	c.Watchlist = append([]int64(nil), u.Watchlist...)
	c.Watched = append(domain.WatchRecords(nil), u.Watched...)
	return &c
}

func (m *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrUserExists
		}
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *MemoryUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return copyUser(user), nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryUserStore) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	for id, existing := range m.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return ErrUserExists
		}
	}
	user.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *MemoryUserStore) AddToList(ctx context.Context, userID string, list MovieList, movieID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	ids := m.listFor(user, list)
	for _, id := range *ids {
		if id == movieID {
			return append([]int64(nil), *ids...), nil
		}
	}
	*ids = append(*ids, movieID)
	user.UpdatedAt = time.Now().UTC()
	return append([]int64(nil), *ids...), nil
}

func (m *MemoryUserStore) RemoveFromList(ctx context.Context, userID string, list MovieList, movieID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	ids := m.listFor(user, list)
	kept := (*ids)[:0]
	for _, id := range *ids {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	*ids = kept
	user.UpdatedAt = time.Now().UTC()
	return append([]int64(nil), *ids...), nil
}

func (m *MemoryUserStore) listFor(user *domain.User, list MovieList) *[]int64 {
	if list == ListWatchlist {
		return (*[]int64)(&user.Watchlist)
	}
	return (*[]int64)(&user.FavoriteMovies)
}
