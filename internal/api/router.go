package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// RouterConfig bundles everything NewRouter needs.
type RouterConfig struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Reviews   *ReviewHandler
	Catalog   *CatalogHandler
	Translate *TranslateHandler

	AuthMW *AuthMiddleware
	Logger *slog.Logger

	MaxBodyBytes   int64
	AllowedOrigins []string
}

// NewRouter wires the full REST surface.
func NewRouter(c RouterConfig) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, c.Logger, http.StatusOK, map[string]interface{}{
			"message": "Welcome to the CineTalk API",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"auth":      "/api/auth",
				"movies":    "/api/movies",
				"tv":        "/api/tv",
				"users":     "/api/users",
				"reviews":   "/api/reviews",
				"translate": "/api/translate",
			},
		})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Auth
	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", c.Auth.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", c.Auth.Login).Methods(http.MethodPost)
	meRouter := authRouter.PathPrefix("/me").Subrouter()
	meRouter.Use(c.AuthMW.Require)
	meRouter.HandleFunc("", c.Auth.Me).Methods(http.MethodGet)

	// Users (all protected)
	usersRouter := api.PathPrefix("/users").Subrouter()
	usersRouter.Use(c.AuthMW.Require)
	usersRouter.HandleFunc("/profile", c.Users.GetProfile).Methods(http.MethodGet)
	usersRouter.HandleFunc("/profile", c.Users.UpdateProfile).Methods(http.MethodPut)
	usersRouter.HandleFunc("/favorites", c.Users.GetFavorites).Methods(http.MethodGet)
	usersRouter.HandleFunc("/favorites/{movieId}", c.Users.AddFavorite).Methods(http.MethodPost)
	usersRouter.HandleFunc("/favorites/{movieId}", c.Users.RemoveFavorite).Methods(http.MethodDelete)
	usersRouter.HandleFunc("/watchlist", c.Users.GetWatchlist).Methods(http.MethodGet)
	usersRouter.HandleFunc("/watchlist/{movieId}", c.Users.AddToWatchlist).Methods(http.MethodPost)
	usersRouter.HandleFunc("/watchlist/{movieId}", c.Users.RemoveFromWatchlist).Methods(http.MethodDelete)

	// Reviews
	reviewsRouter := api.PathPrefix("/reviews").Subrouter()
	// Public listing; a valid token personalizes userAction.
	listRouter := reviewsRouter.PathPrefix("/movie").Subrouter()
	listRouter.Use(c.AuthMW.Optional)
	listRouter.HandleFunc("/{movieId}", c.Reviews.ListForMovie).Methods(http.MethodGet)

	adminRouter := reviewsRouter.PathPrefix("/admin").Subrouter()
	adminRouter.Use(c.AuthMW.Require, c.AuthMW.RequireAdmin)
	adminRouter.HandleFunc("/{id}/approve", c.Reviews.SetApproval(true)).Methods(http.MethodPost)
	adminRouter.HandleFunc("/{id}/reject", c.Reviews.SetApproval(false)).Methods(http.MethodPost)

	protectedReviews := reviewsRouter.NewRoute().Subrouter()
	protectedReviews.Use(c.AuthMW.Require)
	protectedReviews.HandleFunc("", c.Reviews.Create).Methods(http.MethodPost)
	protectedReviews.HandleFunc("/my-reviews", c.Reviews.MyReviews).Methods(http.MethodGet)
	protectedReviews.HandleFunc("/{id}", c.Reviews.Update).Methods(http.MethodPut)
	protectedReviews.HandleFunc("/{id}", c.Reviews.Delete).Methods(http.MethodDelete)
	protectedReviews.HandleFunc("/{id}/reply", c.Reviews.Reply).Methods(http.MethodPost)
	protectedReviews.HandleFunc("/{id}/like", c.Reviews.ToggleLike).Methods(http.MethodPost, http.MethodDelete)
	protectedReviews.HandleFunc("/{id}/dislike", c.Reviews.ToggleDislike).Methods(http.MethodPost, http.MethodDelete)

	// Catalog proxy (public)
	moviesRouter := api.PathPrefix("/movies").Subrouter()
	moviesRouter.HandleFunc("/popular", c.Catalog.PopularMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/trending", c.Catalog.TrendingMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/top-rated", c.Catalog.TopRatedMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/upcoming", c.Catalog.UpcomingMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/now-playing", c.Catalog.NowPlayingMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/search", c.Catalog.SearchMovies).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/genres", c.Catalog.Genres).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/genre/{genreId}", c.Catalog.MoviesByGenre).Methods(http.MethodGet)
	moviesRouter.HandleFunc("/{id}", c.Catalog.MovieByID).Methods(http.MethodGet)

	tvRouter := api.PathPrefix("/tv").Subrouter()
	tvRouter.HandleFunc("/popular", c.Catalog.PopularTVShows).Methods(http.MethodGet)
	tvRouter.HandleFunc("/trending", c.Catalog.TrendingTVShows).Methods(http.MethodGet)
	tvRouter.HandleFunc("/top-rated", c.Catalog.TopRatedTVShows).Methods(http.MethodGet)
	tvRouter.HandleFunc("/search", c.Catalog.SearchTVShows).Methods(http.MethodGet)

	// Translation proxy (public)
	translateRouter := api.PathPrefix("/translate").Subrouter()
	translateRouter.HandleFunc("", c.Translate.Text).Methods(http.MethodPost)
	translateRouter.HandleFunc("/fields", c.Translate.Fields).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, c.Logger, http.StatusNotFound, "Route not found")
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(c.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)

	var handler http.Handler = router
	handler = bodyLimit(c.MaxBodyBytes)(handler)
	handler = cors(handler)
	handler = requestLogger(c.Logger)(handler)
	return handler
}
