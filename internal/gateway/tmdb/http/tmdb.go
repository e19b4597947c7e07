package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"cinescore/configs"
	"cinescore/internal/gateway"
	"cinescore/pkg/logging"
	"cinescore/pkg/model"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const tracerID = "metadata-gateway-tmdb"

// Image URL segments are fixed, not configurable.
const (
	posterImageBaseURL  = "https://image.tmdb.org/t/p/w500"
	profileImageBaseURL = "https://image.tmdb.org/t/p/w200"
)

const providerLanguage = "en-US"

// SearchQuery defines the parameters of a movie search. Year and
// Genre are optional; a zero Genre means no genre filter.
type SearchQuery struct {
	Query string
	Page  int
	Year  string
	Genre int
}

// Gateway defines an HTTP gateway to the external movie-metadata
// provider. Provider error statuses are surfaced as UpstreamError,
// transport failures as ErrUnavailable.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// New creates a new metadata provider gateway. Outbound calls carry a
// bounded timeout; a timeout takes the same error path as a
// connection failure.
func New(config configs.TMDBConfig, logger *zap.Logger) *Gateway {
	logger = logger.With(
		zap.String(logging.FieldComponent, "metadata-gateway"),
		zap.String(logging.FieldType, "http"),
	)
	return &Gateway{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		client:  &http.Client{Timeout: config.Timeout()},
		logger:  logger,
	}
}

// get performs a provider request and decodes a 2xx response into out.
func (g *Gateway) get(ctx context.Context, path string, params map[string]string, out any) error {
	req, err := http.NewRequest(http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	values := req.URL.Query()
	for k, v := range params {
		values.Add(k, v)
	}
	req.URL.RawQuery = values.Encode()

	g.logger.Debug("Calling metadata provider", zap.String("url", req.URL.String()))
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("Provider call failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
		}
		g.logger.Warn("Provider returned an error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &gateway.UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type providerMovie struct {
	Id           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	BackdropPath *string `json:"backdrop_path"`
	GenreIds     []int   `json:"genre_ids"`
}

type providerSearchPage struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Results    []providerMovie `json:"results"`
}

// SearchMovies searches the provider for movies matching the query.
// The provider is never asked to filter by genre; when q.Genre is
// set the filter is applied to the received page.
func (g *Gateway) SearchMovies(ctx context.Context, q SearchQuery) (*model.SearchPage, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/SearchMovies")
	defer span.End()

	page := q.Page
	if page < 1 {
		page = 1
	}
	params := map[string]string{
		"query":         q.Query,
		"include_adult": "false",
		"language":      providerLanguage,
		"page":          strconv.Itoa(page),
	}
	if q.Year != "" {
		params["primary_release_year"] = q.Year
	}
	var data providerSearchPage
	if err := g.get(ctx, "/search/movie", params, &data); err != nil {
		return nil, err
	}

	results := []model.SearchResult{}
	for _, item := range data.Results {
		if q.Genre != 0 && !containsGenre(item.GenreIds, q.Genre) {
			continue
		}
		results = append(results, model.SearchResult{
			TmdbId:       model.TmdbId(item.Id),
			Title:        item.Title,
			PosterPath:   imageURL(posterImageBaseURL, item.PosterPath),
			Overview:     item.Overview,
			ReleaseDate:  item.ReleaseDate,
			BackdropPath: item.BackdropPath,
		})
	}
	return &model.SearchPage{Results: results, Page: data.Page, TotalPages: data.TotalPages}, nil
}

// ListGenres returns the provider's movie genre list.
func (g *Gateway) ListGenres(ctx context.Context) ([]model.Genre, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/ListGenres")
	defer span.End()

	var data struct {
		Genres []model.Genre `json:"genres"`
	}
	if err := g.get(ctx, "/genre/movie/list", map[string]string{"language": providerLanguage}, &data); err != nil {
		return nil, err
	}
	if data.Genres == nil {
		data.Genres = []model.Genre{}
	}
	return data.Genres, nil
}

type providerCastMember struct {
	Id                 int64   `json:"id"`
	Name               string  `json:"name"`
	OriginalName       string  `json:"original_name"`
	Character          string  `json:"character"`
	ProfilePath        *string `json:"profile_path"`
	Order              int     `json:"order"`
	Gender             int     `json:"gender"`
	KnownForDepartment string  `json:"known_for_department"`
	CastId             int     `json:"cast_id"`
	CreditId           string  `json:"credit_id"`
}

// GetCast returns the cast entries of a movie's credits. Crew entries
// are discarded.
func (g *Gateway) GetCast(ctx context.Context, movieId int64) ([]model.CastMember, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/GetCast")
	defer span.End()

	var data struct {
		Cast []providerCastMember `json:"cast"`
	}
	path := fmt.Sprintf("/movie/%d/credits", movieId)
	if err := g.get(ctx, path, map[string]string{"language": providerLanguage}, &data); err != nil {
		return nil, err
	}
	cast := []model.CastMember{}
	for _, m := range data.Cast {
		cast = append(cast, model.CastMember{
			Id:                 m.Id,
			Name:               m.Name,
			OriginalName:       m.OriginalName,
			Character:          m.Character,
			ProfilePath:        imageURL(profileImageBaseURL, m.ProfilePath),
			Order:              m.Order,
			Gender:             m.Gender,
			KnownForDepartment: m.KnownForDepartment,
			CastId:             m.CastId,
			CreditId:           m.CreditId,
		})
	}
	return cast, nil
}

func containsGenre(ids []int, genre int) bool {
	for _, id := range ids {
		if id == genre {
			return true
		}
	}
	return false
}

func imageURL(base string, path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	u := base + *path
	return &u
}
