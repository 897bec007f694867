package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eudysgarcia/HDC-Server/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresUserStore implements UserStore on PostgreSQL.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresUserStore wraps an already-connected handle. Connection setup and
// teardown belong to the caller (see cmd/cinetalk).
func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) *PostgresUserStore {
	return &PostgresUserStore{db: db, logger: logger}
}

const userColumns = `id, name, email, password_hash, avatar, bio, favorite_movies, watchlist, watched, role, created_at, updated_at`

func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Avatar, user.Bio,
		user.FavoriteMovies, user.Watchlist, user.Watched, user.Role,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			s.logger.WarnContext(ctx, "duplicate email on user create",
				slog.String("email", user.Email), slog.String("constraint", pqErr.Constraint))
			return ErrUserExists
		}
		s.logger.ErrorContext(ctx, "failed to create user", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "failed to get user by id",
			slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	// Emails are stored lowercase; the lookup is case-insensitive to match.
	query := `SELECT ` + userColumns + ` FROM users WHERE email = LOWER($1)`
	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "failed to get user by email", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users
              SET name = $1, email = $2, password_hash = $3, avatar = $4, bio = $5,
                  favorite_movies = $6, watchlist = $7, watched = $8, role = $9, updated_at = $10
              WHERE id = $11`
	user.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Avatar, user.Bio,
		user.FavoriteMovies, user.Watchlist, user.Watched, user.Role,
		user.UpdatedAt, user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrUserExists
		}
		s.logger.ErrorContext(ctx, "failed to update user",
			slog.String("userID", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddToList appends movieID to the named list unless it is already a member.
// The CASE keeps the statement a single atomic update.
func (s *PostgresUserStore) AddToList(ctx context.Context, userID string, list MovieList, movieID int64) ([]int64, error) {
	query := fmt.Sprintf(`UPDATE users
              SET %[1]s = CASE WHEN $2 = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2) END,
                  updated_at = $3
              WHERE id = $1
              RETURNING %[1]s`, string(list))
	return s.runListUpdate(ctx, query, userID, movieID)
}

// RemoveFromList removes every occurrence of movieID from the named list.
func (s *PostgresUserStore) RemoveFromList(ctx context.Context, userID string, list MovieList, movieID int64) ([]int64, error) {
	query := fmt.Sprintf(`UPDATE users
              SET %[1]s = array_remove(%[1]s, $2), updated_at = $3
              WHERE id = $1
              RETURNING %[1]s`, string(list))
	return s.runListUpdate(ctx, query, userID, movieID)
}

func (s *PostgresUserStore) runListUpdate(ctx context.Context, query, userID string, movieID int64) ([]int64, error) {
	var result pq.Int64Array
	err := s.db.QueryRowContext(ctx, query, userID, movieID, time.Now().UTC()).Scan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "failed to update movie list",
			slog.String("userID", userID), slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update movie list: %w", err)
	}
	return []int64(result), nil
}
