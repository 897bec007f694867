package store

import (
	"context"
	"errors"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
)

var (
	// ErrUserNotFound is returned when no user matches the given id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned on a unique-email violation.
	ErrUserExists = errors.New("user with this email already exists")
)

// MovieList identifies one of the two per-user movie-id collections.
type MovieList string

const (
	ListFavorites MovieList = "favorite_movies"
	ListWatchlist MovieList = "watchlist"
)

// UserStore defines persistence operations for user accounts. Membership
// operations on the movie-id lists are idempotent set add/remove and return
// the resulting list.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	AddToList(ctx context.Context, userID string, list MovieList, movieID int64) ([]int64, error)
	RemoveFromList(ctx context.Context, userID string, list MovieList, movieID int64) ([]int64, error)
}
