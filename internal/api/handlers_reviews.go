package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
	"github.com/eudysgarcia/HDC-Server/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ReviewHandler serves review, reply and engagement operations.
type ReviewHandler struct {
	reviews   store.ReviewStore
	logger    *slog.Logger
	validator *validator.Validate
}

func NewReviewHandler(reviews store.ReviewStore, logger *slog.Logger, v *validator.Validate) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger, validator: v}
}

// Create handles POST /api/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFrom(ctx)

	var req domain.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, r, h.logger, err)
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	review := &domain.Review{
		ID:         uuid.NewString(),
		UserID:     userID,
		MovieID:    req.MovieID,
		MovieTitle: req.MovieTitle,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsApproved: true,
	}

	if err := h.reviews.Create(ctx, review); err != nil {
		h.logger.ErrorContext(ctx, "failed to create review", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	h.logger.InfoContext(ctx, "review created",
		slog.String("reviewID", review.ID), slog.Int64("movieID", review.MovieID))
	h.respondWithView(w, r, review.ID, userID, http.StatusCreated)
}

// Reply handles POST /api/reviews/{id}/reply. The parent must exist and be a
// top-level review; the reply copies its movie fields and carries rating 0.
func (h *ReviewHandler) Reply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFrom(ctx)
	parentID := mux.Vars(r)["id"]

	parent, err := h.reviews.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load parent review", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	if parent.IsReply() {
		respondError(w, r, h.logger, http.StatusBadRequest, "Cannot reply to a reply")
		return
	}

	var req domain.CreateReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, r, h.logger, err)
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	reply := &domain.Review{
		ID:           uuid.NewString(),
		UserID:       userID,
		MovieID:      parent.MovieID,
		MovieTitle:   parent.MovieTitle,
		Rating:       0,
		Comment:      req.Comment,
		ParentReview: &parent.ID,
		IsApproved:   true,
	}

	if err := h.reviews.Create(ctx, reply); err != nil {
		h.logger.ErrorContext(ctx, "failed to create reply", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	h.logger.InfoContext(ctx, "reply created",
		slog.String("replyID", reply.ID), slog.String("parentID", parent.ID))
	h.respondWithView(w, r, reply.ID, userID, http.StatusCreated)
}

// ListForMovie handles GET /api/reviews/movie/{movieId}. Public; a valid
// bearer token personalizes userAction.
func (h *ReviewHandler) ListForMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movieID, err := strconv.ParseInt(mux.Vars(r)["movieId"], 10, 64)
	if err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Invalid movie id")
		return
	}

	views, err := h.reviews.ListByMovie(ctx, movieID, UserIDFrom(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list reviews",
			slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, views)
}

// MyReviews handles GET /api/reviews/my-reviews.
func (h *ReviewHandler) MyReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFrom(ctx)

	views, err := h.reviews.ListByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list own reviews",
			slog.String("userID", userID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, views)
}

// Update handles PUT /api/reviews/{id}. Owner only; any successful update
// marks the review edited.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFrom(ctx)
	reviewID := mux.Vars(r)["id"]

	review, err := h.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load review", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	if review.UserID != userID {
		respondError(w, r, h.logger, http.StatusForbidden, "Not authorized to update this review")
		return
	}

	var req domain.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, r, h.logger, err)
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	review.IsEdited = true

	if err := h.reviews.Update(ctx, review); err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update review",
			slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	h.respondWithView(w, r, reviewID, userID, http.StatusOK)
}

// Delete handles DELETE /api/reviews/{id}. Owner or admin; replies and
// reactions go with the review.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFrom(ctx)
	reviewID := mux.Vars(r)["id"]

	review, err := h.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load review", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	if review.UserID != userID && UserRoleFrom(ctx) != domain.RoleAdmin {
		respondError(w, r, h.logger, http.StatusForbidden, "Not authorized to delete this review")
		return
	}

	if err := h.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete review",
			slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	h.logger.InfoContext(ctx, "review deleted",
		slog.String("reviewID", reviewID), slog.String("by", userID))
	respondJSON(w, r, h.logger, http.StatusOK, map[string]string{"message": "Review deleted"})
}

// reactionResponse reports the state after a toggle.
type reactionResponse struct {
	Message       string           `json:"message"`
	LikesCount    int              `json:"likesCount"`
	DislikesCount int              `json:"dislikesCount"`
	UserAction    *domain.Reaction `json:"userAction"`
}

func (h *ReviewHandler) toggle(w http.ResponseWriter, r *http.Request, action domain.Reaction) {
	ctx := r.Context()
	userID := UserIDFrom(ctx)
	reviewID := mux.Vars(r)["id"]

	result, err := h.reviews.ToggleReaction(ctx, reviewID, userID, action)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "Review not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to toggle reaction",
			slog.String("reviewID", reviewID), slog.String("action", string(action)),
			slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	msg := "Reaction removed"
	if result.UserAction != domain.ReactionNone {
		msg = "Reaction updated"
	}
	respondJSON(w, r, h.logger, http.StatusOK, reactionResponse{
		Message:       msg,
		LikesCount:    result.LikesCount,
		DislikesCount: result.DislikesCount,
		UserAction:    result.UserAction.Ptr(),
	})
}

// ToggleLike handles POST and DELETE /api/reviews/{id}/like. Both verbs run
// the same toggle.
func (h *ReviewHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, domain.ReactionLike)
}

// ToggleDislike handles POST and DELETE /api/reviews/{id}/dislike.
func (h *ReviewHandler) ToggleDislike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, domain.ReactionDislike)
}

// SetApproval handles POST /api/reviews/admin/{id}/approve and /reject.
func (h *ReviewHandler) SetApproval(approved bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reviewID := mux.Vars(r)["id"]

		review, err := h.reviews.GetByID(ctx, reviewID)
		if err != nil {
			if errors.Is(err, store.ErrReviewNotFound) {
				respondError(w, r, h.logger, http.StatusNotFound, "Review not found")
				return
			}
			h.logger.ErrorContext(ctx, "failed to load review", slog.String("error", err.Error()))
			respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
			return
		}

		review.IsApproved = approved
		if err := h.reviews.Update(ctx, review); err != nil {
			h.logger.ErrorContext(ctx, "failed to change review approval",
				slog.String("reviewID", reviewID), slog.String("error", err.Error()))
			respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
			return
		}

		msg := "Review approved"
		if !approved {
			msg = "Review rejected"
		}
		h.logger.InfoContext(ctx, "review approval changed",
			slog.String("reviewID", reviewID), slog.Bool("approved", approved))
		respondJSON(w, r, h.logger, http.StatusOK, map[string]string{"message": msg})
	}
}

// respondWithView returns the review decorated with author fields, falling
// back to a bare success if the read-back fails.
func (h *ReviewHandler) respondWithView(w http.ResponseWriter, r *http.Request, reviewID, viewerID string, status int) {
	view, err := h.reviews.GetView(r.Context(), reviewID, viewerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load review view",
			slog.String("reviewID", reviewID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	respondJSON(w, r, h.logger, status, view)
}
