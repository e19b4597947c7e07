package metadata

import (
	"context"
	"errors"

	tmdbhttp "cinescore/internal/gateway/tmdb/http"
	"cinescore/pkg/model"
)

// ErrEmptyQuery returned when a search is attempted without a query.
// Checked before any provider call.
var ErrEmptyQuery = errors.New("query parameter is required")

type metadataGateway interface {
	SearchMovies(ctx context.Context, q tmdbhttp.SearchQuery) (*model.SearchPage, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetCast(ctx context.Context, movieId int64) ([]model.CastMember, error)
}

// Controller defines a metadata proxy controller in front of the
// provider gateway.
type Controller struct {
	gateway metadataGateway
}

// New creates a metadata proxy controller.
func New(gateway metadataGateway) *Controller {
	return &Controller{gateway: gateway}
}

// Search validates the query and delegates to the gateway.
func (c *Controller) Search(ctx context.Context, q tmdbhttp.SearchQuery) (*model.SearchPage, error) {
	if q.Query == "" {
		return nil, ErrEmptyQuery
	}
	return c.gateway.SearchMovies(ctx, q)
}

// Genres returns the provider genre list.
func (c *Controller) Genres(ctx context.Context) ([]model.Genre, error) {
	return c.gateway.ListGenres(ctx)
}

// Cast returns the cast of a movie.
func (c *Controller) Cast(ctx context.Context, movieId int64) ([]model.CastMember, error) {
	return c.gateway.GetCast(ctx, movieId)
}
