package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
	"github.com/eudysgarcia/HDC-Server/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// UserHandler serves profile and favorites/watchlist operations.
type UserHandler struct {
	users          store.UserStore
	catalog        CatalogClient
	logger         *slog.Logger
	validator      *validator.Validate
	maxAvatarBytes int64
}

func NewUserHandler(users store.UserStore, catalog CatalogClient, logger *slog.Logger, v *validator.Validate, maxAvatarBytes int64) *UserHandler {
	return &UserHandler{
		users:          users,
		catalog:        catalog,
		logger:         logger,
		validator:      v,
		maxAvatarBytes: maxAvatarBytes,
	}
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.users.GetByID(ctx, UserIDFrom(ctx))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "User not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load profile", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/users/profile. Nil fields keep stored values;
// an inline data-URI avatar is size-checked before acceptance.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFrom(ctx)

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, r, h.logger, err)
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if req.Avatar != nil && strings.HasPrefix(*req.Avatar, "data:image") {
		// base64 expands the payload by 4/3, so the decoded size is ~3/4
		sizeBytes := int64(len(*req.Avatar)) * 3 / 4
		if sizeBytes > h.maxAvatarBytes {
			sizeMB := float64(sizeBytes) / (1 << 20)
			respondError(w, r, h.logger, http.StatusBadRequest,
				fmt.Sprintf("Avatar image is too large (%.2f MB). Please use a smaller image.", sizeMB))
			return
		}
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "User not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user for update", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := h.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			respondError(w, r, h.logger, http.StatusConflict, "Email already in use")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update profile",
			slog.String("userID", userID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	h.logger.InfoContext(ctx, "profile updated", slog.String("userID", userID))
	respondJSON(w, r, h.logger, http.StatusOK, user)
}

// movieListResponse reports the resulting collection after a membership change.
type movieListResponse struct {
	Message string  `json:"message"`
	Movies  []int64 `json:"movies"`
}

func (h *UserHandler) changeList(w http.ResponseWriter, r *http.Request, list store.MovieList, add bool) {
	ctx := r.Context()
	movieID, err := strconv.ParseInt(mux.Vars(r)["movieId"], 10, 64)
	if err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Invalid movie id")
		return
	}

	var (
		result []int64
		msg    string
	)
	if add {
		result, err = h.users.AddToList(ctx, UserIDFrom(ctx), list, movieID)
		msg = "Movie added"
	} else {
		result, err = h.users.RemoveFromList(ctx, UserIDFrom(ctx), list, movieID)
		msg = "Movie removed"
	}
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "User not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to change movie list",
			slog.Int64("movieID", movieID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, movieListResponse{Message: msg, Movies: result})
}

// AddFavorite handles POST /api/users/favorites/{movieId}.
func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.changeList(w, r, store.ListFavorites, true)
}

// RemoveFavorite handles DELETE /api/users/favorites/{movieId}.
func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.changeList(w, r, store.ListFavorites, false)
}

// AddToWatchlist handles POST /api/users/watchlist/{movieId}.
func (h *UserHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	h.changeList(w, r, store.ListWatchlist, true)
}

// RemoveFromWatchlist handles DELETE /api/users/watchlist/{movieId}.
func (h *UserHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	h.changeList(w, r, store.ListWatchlist, false)
}

func (h *UserHandler) listWithDetails(w http.ResponseWriter, r *http.Request, list store.MovieList) {
	ctx := r.Context()
	user, err := h.users.GetByID(ctx, UserIDFrom(ctx))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "User not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user for list", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	ids := []int64(user.FavoriteMovies)
	if list == store.ListWatchlist {
		ids = []int64(user.Watchlist)
	}
	if len(ids) == 0 {
		respondJSON(w, r, h.logger, http.StatusOK, []interface{}{})
		return
	}

	movies, err := h.catalog.MoviesByIDs(ctx, ids, r.URL.Query().Get("language"))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch movie details", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, "Failed to fetch movie details")
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, movies)
}

// GetFavorites handles GET /api/users/favorites.
func (h *UserHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	h.listWithDetails(w, r, store.ListFavorites)
}

// GetWatchlist handles GET /api/users/watchlist.
func (h *UserHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	h.listWithDetails(w, r, store.ListWatchlist)
}
