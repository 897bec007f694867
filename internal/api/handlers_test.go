package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eudysgarcia/HDC-Server/internal/domain"
	"github.com/eudysgarcia/HDC-Server/internal/store"
	"github.com/eudysgarcia/HDC-Server/internal/tmdb"
	"github.com/eudysgarcia/HDC-Server/pkg/auth"
)

// stubCatalog satisfies CatalogClient without talking to the real gateway.
// A non-nil err makes every call fail with it.
type stubCatalog struct {
	err error
}

func (s *stubCatalog) page() (*tmdb.ResultPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &tmdb.ResultPage{
		Page:         1,
		Results:      []tmdb.Item{{"id": float64(603), "title": "The Matrix"}},
		TotalPages:   1,
		TotalResults: 1,
	}, nil
}

func (s *stubCatalog) PopularMovies(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) TrendingMovies(ctx context.Context, timeWindow, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) TopRatedMovies(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) UpcomingMovies(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) NowPlayingMovies(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) MovieDetails(ctx context.Context, movieID int64, lang string) (tmdb.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return tmdb.Item{"id": float64(movieID), "title": "The Matrix"}, nil
}

func (s *stubCatalog) SearchMovies(ctx context.Context, query string, page int, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) MoviesByGenre(ctx context.Context, genreID int64, page int, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) Genres(ctx context.Context, lang string) (*tmdb.GenreList, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &tmdb.GenreList{Genres: []tmdb.Genre{{ID: 28, Name: "Action"}}}, nil
}

func (s *stubCatalog) MoviesByIDs(ctx context.Context, movieIDs []int64, lang string) ([]tmdb.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	items := make([]tmdb.Item, 0, len(movieIDs))
	for _, id := range movieIDs {
		items = append(items, tmdb.Item{"id": float64(id)})
	}
	return items, nil
}

func (s *stubCatalog) PopularTVShows(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) TrendingTVShows(ctx context.Context, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) TopRatedTVShows(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

func (s *stubCatalog) SearchTVShows(ctx context.Context, query string, lang string) (*tmdb.ResultPage, error) {
	return s.page()
}

// stubTranslator echoes input, mirroring the fail-open contract.
type stubTranslator struct{}

func (stubTranslator) Text(ctx context.Context, text, targetLang string) string {
	return text
}

func (stubTranslator) Object(ctx context.Context, obj map[string]interface{}, fields []string, targetLang string) map[string]interface{} {
	return obj
}

type testEnv struct {
	router  http.Handler
	users   *store.MemoryUserStore
	reviews *store.MemoryReviewStore
	tokens  auth.TokenManager
	catalog *stubCatalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenManager("test-secret-key", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	users := store.NewMemoryUserStore()
	reviews := store.NewMemoryReviewStore(users)
	v := validator.New()
	catalog := &stubCatalog{}

	router := NewRouter(RouterConfig{
		Auth:           NewAuthHandler(users, logger, v, tokens),
		Users:          NewUserHandler(users, catalog, logger, v, 1<<16),
		Reviews:        NewReviewHandler(reviews, logger, v),
		Catalog:        NewCatalogHandler(catalog, logger),
		Translate:      NewTranslateHandler(stubTranslator{}, logger),
		AuthMW:         NewAuthMiddleware(tokens, logger),
		Logger:         logger,
		MaxBodyBytes:   1 << 20,
		AllowedOrigins: []string{"*"},
	})

	return &testEnv{router: router, users: users, reviews: reviews, tokens: tokens, catalog: catalog}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v (body: %s)", err, rec.Body.String())
	}
}

// register creates an account through the API and returns its id and token.
func (e *testEnv) register(t *testing.T, name, email string) (id, token string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d (body: %s)", email, rec.Code, rec.Body.String())
	}

	var resp struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	return resp.ID, resp.Token
}

// registerAdmin registers an account and promotes it to the admin role,
// returning a token that carries the role claim.
func (e *testEnv) registerAdmin(t *testing.T, email string) (id, token string) {
	t.Helper()

	id, _ = e.register(t, "Admin User", email)
	user, err := e.users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load admin user: %v", err)
	}
	user.Role = domain.RoleAdmin
	if err := e.users.Update(context.Background(), user); err != nil {
		t.Fatalf("promote admin user: %v", err)
	}

	token, err = e.tokens.Generate(id, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}
	return id, token
}

// createReview posts a valid review and returns its id.
func (e *testEnv) createReview(t *testing.T, token string, movieID int64) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/reviews", token, map[string]interface{}{
		"movieId":    movieID,
		"movieTitle": "The Matrix",
		"rating":     8.5,
		"comment":    "a comment long enough to pass",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create review: status %d (body: %s)", rec.Code, rec.Body.String())
	}

	var view domain.ReviewView
	decodeBody(t, rec, &view)
	return view.ID
}
