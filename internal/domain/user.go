package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Roles assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultAvatar is used when a user registers without an avatar.
const DefaultAvatar = "https://via.placeholder.com/150"

// WatchRecord marks a movie as watched at a point in time.
type WatchRecord struct {
	MovieID   int64     `json:"movieId"`
	WatchedAt time.Time `json:"watchedAt"`
}

// WatchRecords is stored as a JSONB column.
type WatchRecords []WatchRecord

func (w WatchRecords) Value() (driver.Value, error) {
	if w == nil {
		w = WatchRecords{}
	}
	return json.Marshal(w)
}

func (w *WatchRecords) Scan(src interface{}) error {
	if src == nil {
		*w = WatchRecords{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into WatchRecords", src)
	}
	return json.Unmarshal(b, w)
}

// User is an account on the platform. The password hash never leaves the
// server; favorites and watchlist hold TMDB movie ids.
type User struct {
	ID             string        `json:"id" db:"id"` // UUID
	Name           string        `json:"name" db:"name"`
	Email          string        `json:"email" db:"email"`
	PasswordHash   string        `json:"-" db:"password_hash"`
	Avatar         string        `json:"avatar" db:"avatar"`
	Bio            string        `json:"bio" db:"bio"`
	FavoriteMovies pq.Int64Array `json:"favoriteMovies" db:"favorite_movies"`
	Watchlist      pq.Int64Array `json:"watchlist" db:"watchlist"`
	Watched        WatchRecords  `json:"watched" db:"watched"`
	Role           string        `json:"role" db:"role"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the body for PUT /api/users/profile. Nil fields keep
// their stored values.
type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=3,max=50"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio    *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Avatar *string `json:"avatar,omitempty"`
}
