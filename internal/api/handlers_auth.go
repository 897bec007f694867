package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
	"github.com/eudysgarcia/HDC-Server/internal/store"
	"github.com/eudysgarcia/HDC-Server/pkg/auth"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AuthHandler serves registration, login and the current-user profile.
type AuthHandler struct {
	users     store.UserStore
	logger    *slog.Logger
	validator *validator.Validate
	tokens    auth.TokenManager
}

func NewAuthHandler(users store.UserStore, logger *slog.Logger, v *validator.Validate, tokens auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, logger: logger, validator: v, tokens: tokens}
}

// authResponse is returned on successful registration and login.
type authResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   string `json:"role,omitempty"`
	Token  string `json:"token"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, r, h.logger, err)
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	user := &domain.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:   hashedPassword,
		Avatar:         domain.DefaultAvatar,
		FavoriteMovies: []int64{},
		Watchlist:      []int64{},
		Watched:        domain.WatchRecords{},
		Role:           domain.RoleUser,
	}

	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			respondError(w, r, h.logger, http.StatusConflict, "User already exists")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate token",
			slog.String("userID", user.ID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		slog.String("userID", user.ID), slog.String("email", user.Email))
	respondJSON(w, r, h.logger, http.StatusCreated, authResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
		Token:  token,
	})
}

// Login handles POST /api/auth/login. Unknown email and wrong password fail
// with the same message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, r, h.logger, err)
		return
	}
	defer r.Body.Close()

	if err := h.validator.StructCtx(ctx, req); err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	const invalidCredentials = "Invalid email or password"

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, r, h.logger, http.StatusUnauthorized, invalidCredentials)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user for login", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "invalid password attempt", slog.String("userID", user.ID))
		respondError(w, r, h.logger, http.StatusUnauthorized, invalidCredentials)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate token",
			slog.String("userID", user.ID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("userID", user.ID))
	respondJSON(w, r, h.logger, http.StatusOK, authResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
		Role:   user.Role,
		Token:  token,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserIDFrom(ctx)

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, r, h.logger, http.StatusNotFound, "User not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load current user",
			slog.String("userID", userID), slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, msgServerError)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, user)
}
