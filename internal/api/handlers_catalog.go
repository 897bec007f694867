package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eudysgarcia/HDC-Server/internal/tmdb"

	"github.com/gorilla/mux"
)

// CatalogClient is the slice of the metadata gateway the handlers consume.
type CatalogClient interface {
	PopularMovies(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error)
	TrendingMovies(ctx context.Context, timeWindow, lang string) (*tmdb.ResultPage, error)
	TopRatedMovies(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error)
	UpcomingMovies(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error)
	NowPlayingMovies(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error)
	MovieDetails(ctx context.Context, movieID int64, lang string) (tmdb.Item, error)
	SearchMovies(ctx context.Context, query string, page int, lang string) (*tmdb.ResultPage, error)
	MoviesByGenre(ctx context.Context, genreID int64, page int, lang string) (*tmdb.ResultPage, error)
	Genres(ctx context.Context, lang string) (*tmdb.GenreList, error)
	MoviesByIDs(ctx context.Context, movieIDs []int64, lang string) ([]tmdb.Item, error)
	PopularTVShows(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error)
	TrendingTVShows(ctx context.Context, lang string) (*tmdb.ResultPage, error)
	TopRatedTVShows(ctx context.Context, page int, lang string) (*tmdb.ResultPage, error)
	SearchTVShows(ctx context.Context, query string, lang string) (*tmdb.ResultPage, error)
}

// CatalogHandler proxies the read-only movie/TV catalog endpoints.
type CatalogHandler struct {
	catalog CatalogClient
	logger  *slog.Logger
}

func NewCatalogHandler(catalog CatalogClient, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func pageParam(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	return page
}

func langParam(r *http.Request) string {
	if lang := r.URL.Query().Get("language"); lang != "" {
		return lang
	}
	return r.URL.Query().Get("lang")
}

func (h *CatalogHandler) respondUpstream(w http.ResponseWriter, r *http.Request, data interface{}, err error, failMsg string) {
	if err != nil {
		if errors.Is(err, tmdb.ErrUpstream) {
			respondError(w, r, h.logger, http.StatusInternalServerError, failMsg)
			return
		}
		h.logger.ErrorContext(r.Context(), "catalog request failed", slog.String("error", err.Error()))
		respondError(w, r, h.logger, http.StatusInternalServerError, failMsg)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, data)
}

// --- Movies ---

func (h *CatalogHandler) PopularMovies(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.PopularMovies(r.Context(), pageParam(r), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch popular movies")
}

func (h *CatalogHandler) TrendingMovies(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.TrendingMovies(r.Context(), r.URL.Query().Get("timeWindow"), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch trending movies")
}

func (h *CatalogHandler) TopRatedMovies(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.TopRatedMovies(r.Context(), pageParam(r), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch top rated movies")
}

func (h *CatalogHandler) UpcomingMovies(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.UpcomingMovies(r.Context(), pageParam(r), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch upcoming movies")
}

func (h *CatalogHandler) NowPlayingMovies(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.NowPlayingMovies(r.Context(), pageParam(r), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch now playing movies")
}

func (h *CatalogHandler) MovieByID(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Invalid movie id")
		return
	}
	item, err := h.catalog.MovieDetails(r.Context(), movieID, langParam(r))
	h.respondUpstream(w, r, item, err, "Failed to fetch movie details")
}

func (h *CatalogHandler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, r, h.logger, http.StatusBadRequest, "Search query is required")
		return
	}
	page, err := h.catalog.SearchMovies(r.Context(), query, pageParam(r), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to search movies")
}

func (h *CatalogHandler) MoviesByGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := strconv.ParseInt(mux.Vars(r)["genreId"], 10, 64)
	if err != nil {
		respondError(w, r, h.logger, http.StatusBadRequest, "Invalid genre id")
		return
	}
	page, err := h.catalog.MoviesByGenre(r.Context(), genreID, pageParam(r), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch movies by genre")
}

func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.Genres(r.Context(), langParam(r))
	h.respondUpstream(w, r, list, err, "Failed to fetch genres")
}

// --- TV shows ---

func (h *CatalogHandler) PopularTVShows(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.PopularTVShows(r.Context(), pageParam(r), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch popular TV shows")
}

func (h *CatalogHandler) TrendingTVShows(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.TrendingTVShows(r.Context(), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch trending TV shows")
}

func (h *CatalogHandler) TopRatedTVShows(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.TopRatedTVShows(r.Context(), pageParam(r), langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to fetch top rated TV shows")
}

func (h *CatalogHandler) SearchTVShows(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, r, h.logger, http.StatusBadRequest, "Search query is required")
		return
	}
	page, err := h.catalog.SearchTVShows(r.Context(), query, langParam(r))
	h.respondUpstream(w, r, page, err, "Failed to search TV shows")
}
