// Package tmdb is the client for the external movie/TV metadata gateway.
// Results pass through as-is except that relative image paths are rewritten to
// absolute URLs and TV shows are normalized onto the movie field shape.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// ErrUpstream marks any failure talking to the metadata gateway. Handlers map
// it to a generic upstream-failure response; there are no retries.
var ErrUpstream = errors.New("metadata gateway request failed")

// Item is a single movie/show record, passed through unmodified apart from the
// rewrites above. Keeping the raw map preserves every field the gateway sends.
type Item = map[string]interface{}

// ResultPage is a paginated gateway response.
type ResultPage struct {
	Page         int    `json:"page"`
	Results      []Item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

// Client talks to a TMDB-compatible API over HTTPS with a bearer token.
type Client struct {
	baseURL      string
	imageBaseURL string
	token        string
	httpc        *http.Client
	logger       *slog.Logger
}

func NewClient(baseURL, imageBaseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		imageBaseURL: imageBaseURL,
		token:        token,
		httpc:        &http.Client{},
		logger:       logger,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "metadata gateway request failed",
			slog.String("path", path), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "metadata gateway returned non-200",
			slog.String("path", path), slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}

// formatMovie rewrites poster/backdrop paths to absolute URLs in place.
func (c *Client) formatMovie(item Item) Item {
	for _, key := range []string{"poster_path", "backdrop_path"} {
		if p, ok := item[key].(string); ok && p != "" {
			item[key] = c.imageBaseURL + p
		}
	}
	return item
}

// formatTVShow maps TV fields onto the movie shape, then rewrites images.
func (c *Client) formatTVShow(item Item) Item {
	if name, ok := item["name"]; ok {
		item["title"] = name
	}
	if firstAir, ok := item["first_air_date"]; ok {
		item["release_date"] = firstAir
	}
	return c.formatMovie(item)
}

func (c *Client) getPage(ctx context.Context, path string, query url.Values, tv bool) (*ResultPage, error) {
	var page ResultPage
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	for _, item := range page.Results {
		if tv {
			c.formatTVShow(item)
		} else {
			c.formatMovie(item)
		}
	}
	return &page, nil
}

func pagedQuery(page int, lang string) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	q.Set("language", Language(lang))
	return q
}

// --- Movies ---

func (c *Client) PopularMovies(ctx context.Context, page int, lang string) (*ResultPage, error) {
	return c.getPage(ctx, "/movie/popular", pagedQuery(page, lang), false)
}

func (c *Client) TrendingMovies(ctx context.Context, timeWindow, lang string) (*ResultPage, error) {
	if timeWindow == "" {
		timeWindow = "week"
	}
	return c.getPage(ctx, "/trending/movie/"+url.PathEscape(timeWindow), pagedQuery(0, lang), false)
}

func (c *Client) TopRatedMovies(ctx context.Context, page int, lang string) (*ResultPage, error) {
	return c.getPage(ctx, "/movie/top_rated", pagedQuery(page, lang), false)
}

func (c *Client) UpcomingMovies(ctx context.Context, page int, lang string) (*ResultPage, error) {
	return c.getPage(ctx, "/movie/upcoming", pagedQuery(page, lang), false)
}

func (c *Client) NowPlayingMovies(ctx context.Context, page int, lang string) (*ResultPage, error) {
	return c.getPage(ctx, "/movie/now_playing", pagedQuery(page, lang), false)
}

func (c *Client) MovieDetails(ctx context.Context, movieID int64, lang string) (Item, error) {
	q := pagedQuery(0, lang)
	q.Set("append_to_response", "credits,videos,images,similar,recommendations")
	var item Item
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(movieID, 10), q, &item); err != nil {
		return nil, err
	}
	return c.formatMovie(item), nil
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int, lang string) (*ResultPage, error) {
	q := pagedQuery(page, lang)
	q.Set("query", query)
	return c.getPage(ctx, "/search/movie", q, false)
}

func (c *Client) MoviesByGenre(ctx context.Context, genreID int64, page int, lang string) (*ResultPage, error) {
	q := pagedQuery(page, lang)
	q.Set("with_genres", strconv.FormatInt(genreID, 10))
	return c.getPage(ctx, "/discover/movie", q, false)
}

// Genre is one entry of the gateway's genre list.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreList is the gateway's genre-list response.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

func (c *Client) Genres(ctx context.Context, lang string) (*GenreList, error) {
	var list GenreList
	if err := c.get(ctx, "/genre/movie/list", pagedQuery(0, lang), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// MoviesByIDs fetches detail records one id at a time, in order. A single
// request's steps run sequentially; a failing id fails the whole lookup.
func (c *Client) MoviesByIDs(ctx context.Context, movieIDs []int64, lang string) ([]Item, error) {
	items := make([]Item, 0, len(movieIDs))
	for _, id := range movieIDs {
		item, err := c.MovieDetails(ctx, id, lang)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// --- TV shows ---

func (c *Client) PopularTVShows(ctx context.Context, page int, lang string) (*ResultPage, error) {
	return c.getPage(ctx, "/tv/popular", pagedQuery(page, lang), true)
}

func (c *Client) TrendingTVShows(ctx context.Context, lang string) (*ResultPage, error) {
	return c.getPage(ctx, "/trending/tv/week", pagedQuery(0, lang), true)
}

func (c *Client) TopRatedTVShows(ctx context.Context, page int, lang string) (*ResultPage, error) {
	return c.getPage(ctx, "/tv/top_rated", pagedQuery(page, lang), true)
}

func (c *Client) SearchTVShows(ctx context.Context, query string, lang string) (*ResultPage, error) {
	q := pagedQuery(0, lang)
	q.Set("query", query)
	return c.getPage(ctx, "/search/tv", q, true)
}
