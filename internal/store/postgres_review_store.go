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

// PostgresReviewStore implements ReviewStore on PostgreSQL. Engagement lives
// in the review_reactions table whose composite primary key guarantees at most
// one reaction per (review, user) pair.
type PostgresReviewStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewPostgresReviewStore(db *sqlx.DB, logger *slog.Logger) *PostgresReviewStore {
	return &PostgresReviewStore{db: db, logger: logger}
}

const reviewColumns = `id, user_id, movie_id, movie_title, rating, comment, parent_review, is_edited, is_approved, created_at, updated_at`

// reviewViewRow is the scan target for decorated listings.
type reviewViewRow struct {
	domain.Review
	UserName      string         `db:"user_name"`
	UserAvatar    string         `db:"user_avatar"`
	LikesCount    int            `db:"likes_count"`
	DislikesCount int            `db:"dislikes_count"`
	UserAction    sql.NullString `db:"user_action"`
	RepliesCount  int            `db:"replies_count"`
}

func (row *reviewViewRow) toView() *domain.ReviewView {
	view := &domain.ReviewView{
		Review: row.Review,
		User: domain.ReviewUser{
			ID:     row.Review.UserID,
			Name:   row.UserName,
			Avatar: row.UserAvatar,
		},
		LikesCount:    row.LikesCount,
		DislikesCount: row.DislikesCount,
		RepliesCount:  row.RepliesCount,
	}
	if row.UserAction.Valid {
		view.UserAction = domain.Reaction(row.UserAction.String).Ptr()
	}
	return view
}

// viewSelect decorates reviews with author fields and per-viewer engagement
// metadata. $1 is the viewer id, NULL for anonymous viewers.
const viewSelect = `SELECT r.id, r.user_id, r.movie_id, r.movie_title, r.rating, r.comment,
           r.parent_review, r.is_edited, r.is_approved, r.created_at, r.updated_at,
           u.name AS user_name, u.avatar AS user_avatar,
           (SELECT COUNT(*) FROM review_reactions x WHERE x.review_id = r.id AND x.kind = 'like') AS likes_count,
           (SELECT COUNT(*) FROM review_reactions x WHERE x.review_id = r.id AND x.kind = 'dislike') AS dislikes_count,
           (SELECT x.kind FROM review_reactions x WHERE x.review_id = r.id AND x.user_id = $1::uuid) AS user_action,
           (SELECT COUNT(*) FROM reviews c WHERE c.parent_review = r.id AND c.is_approved) AS replies_count
    FROM reviews r
    JOIN users u ON u.id = r.user_id`

func nullableViewer(viewerID string) sql.NullString {
	return sql.NullString{String: viewerID, Valid: viewerID != ""}
}

func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	query := `INSERT INTO reviews (` + reviewColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	review.CreatedAt = time.Now().UTC()
	review.UpdatedAt = review.CreatedAt

	_, err := s.db.ExecContext(ctx, query,
		review.ID, review.UserID, review.MovieID, review.MovieTitle,
		review.Rating, review.Comment, review.ParentReview,
		review.IsEdited, review.IsApproved, review.CreatedAt, review.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		// 23503: parent or user vanished between the handler's check and here.
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "failed to create review", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (s *PostgresReviewStore) GetByID(ctx context.Context, reviewID string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	var review domain.Review
	if err := s.db.GetContext(ctx, &review, query, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "failed to get review",
			slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (s *PostgresReviewStore) GetView(ctx context.Context, reviewID, viewerID string) (*domain.ReviewView, error) {
	query := viewSelect + ` WHERE r.id = $2`
	var row reviewViewRow
	if err := s.db.GetContext(ctx, &row, query, nullableViewer(viewerID), reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		s.logger.ErrorContext(ctx, "failed to get review view",
			slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get review view: %w", err)
	}
	return row.toView(), nil
}

func (s *PostgresReviewStore) Update(ctx context.Context, review *domain.Review) error {
	query := `UPDATE reviews SET rating = $1, comment = $2, is_edited = $3, is_approved = $4, updated_at = $5
              WHERE id = $6`
	review.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, query,
		review.Rating, review.Comment, review.IsEdited, review.IsApproved,
		review.UpdatedAt, review.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update review",
			slog.String("reviewID", review.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Delete removes the review; replies and reactions follow via ON DELETE
// CASCADE.
func (s *PostgresReviewStore) Delete(ctx context.Context, reviewID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete review",
			slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete review: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *PostgresReviewStore) ListByMovie(ctx context.Context, movieID int64, viewerID string) ([]*domain.ReviewView, error) {
	viewer := nullableViewer(viewerID)

	query := viewSelect + ` WHERE r.movie_id = $2 AND r.is_approved AND r.parent_review IS NULL
        ORDER BY r.created_at DESC`
	var rows []reviewViewRow
	if err := s.db.SelectContext(ctx, &rows, query, viewer, movieID); err != nil {
		s.logger.ErrorContext(ctx, "failed to list reviews for movie",
			slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list reviews for movie: %w", err)
	}

	views := make([]*domain.ReviewView, 0, len(rows))
	byID := make(map[string]*domain.ReviewView, len(rows))
	parentIDs := make([]string, 0, len(rows))
	for i := range rows {
		view := rows[i].toView()
		view.Replies = []*domain.ReviewView{}
		views = append(views, view)
		byID[view.ID] = view
		parentIDs = append(parentIDs, view.ID)
	}
	if len(parentIDs) == 0 {
		return views, nil
	}

	replyQuery := viewSelect + ` WHERE r.parent_review = ANY($2) AND r.is_approved
        ORDER BY r.created_at ASC`
	var replyRows []reviewViewRow
	if err := s.db.SelectContext(ctx, &replyRows, replyQuery, viewer, pq.Array(parentIDs)); err != nil {
		s.logger.ErrorContext(ctx, "failed to list replies",
			slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	for i := range replyRows {
		reply := replyRows[i].toView()
		if parent, ok := byID[*reply.ParentReview]; ok {
			parent.Replies = append(parent.Replies, reply)
		}
	}
	return views, nil
}

func (s *PostgresReviewStore) ListByUser(ctx context.Context, userID string) ([]*domain.ReviewView, error) {
	query := viewSelect + ` WHERE r.user_id = $2 ORDER BY r.created_at DESC`
	var rows []reviewViewRow
	if err := s.db.SelectContext(ctx, &rows, query, nullableViewer(userID), userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to list reviews for user",
			slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list reviews for user: %w", err)
	}
	views := make([]*domain.ReviewView, 0, len(rows))
	for i := range rows {
		views = append(views, rows[i].toView())
	}
	return views, nil
}

// ToggleReaction runs the engagement state machine inside a transaction. The
// FOR UPDATE on the reaction row serializes concurrent toggles from the same
// user on the same review; the composite primary key rules out a user holding
// both kinds at once.
func (s *PostgresReviewStore) ToggleReaction(ctx context.Context, reviewID, userID string, action domain.Reaction) (*ReactionResult, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("invalid reaction %q", action)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists string
	if err := tx.GetContext(ctx, &exists, `SELECT id FROM reviews WHERE id = $1`, reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to load review for toggle: %w", err)
	}

	current := domain.ReactionNone
	var kind string
	err = tx.GetContext(ctx, &kind,
		`SELECT kind FROM review_reactions WHERE review_id = $1 AND user_id = $2 FOR UPDATE`,
		reviewID, userID)
	switch {
	case err == nil:
		current = domain.Reaction(kind)
	case errors.Is(err, sql.ErrNoRows):
		// no prior reaction
	default:
		return nil, fmt.Errorf("failed to load reaction: %w", err)
	}

	next := current.Toggle(action)
	if next == domain.ReactionNone {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM review_reactions WHERE review_id = $1 AND user_id = $2`,
			reviewID, userID)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO review_reactions (review_id, user_id, kind, created_at)
             VALUES ($1, $2, $3, $4)
             ON CONFLICT (review_id, user_id) DO UPDATE SET kind = EXCLUDED.kind, created_at = EXCLUDED.created_at`,
			reviewID, userID, string(next), time.Now().UTC())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store reaction: %w", err)
	}

	var counts struct {
		Likes    int `db:"likes"`
		Dislikes int `db:"dislikes"`
	}
	err = tx.GetContext(ctx, &counts,
		`SELECT COUNT(*) FILTER (WHERE kind = 'like') AS likes,
                COUNT(*) FILTER (WHERE kind = 'dislike') AS dislikes
         FROM review_reactions WHERE review_id = $1`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reaction toggle: %w", err)
	}

	s.logger.DebugContext(ctx, "reaction toggled",
		slog.String("reviewID", reviewID), slog.String("userID", userID),
		slog.String("action", string(action)), slog.String("result", string(next)))

	return &ReactionResult{
		LikesCount:    counts.Likes,
		DislikesCount: counts.Dislikes,
		UserAction:    next,
	}, nil
}
