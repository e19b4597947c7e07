package metadata

import (
	"context"
	"testing"

	tmdbhttp "cinescore/internal/gateway/tmdb/http"
	"cinescore/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	searchCalls int
	lastQuery   tmdbhttp.SearchQuery
}

func (g *fakeGateway) SearchMovies(_ context.Context, q tmdbhttp.SearchQuery) (*model.SearchPage, error) {
	g.searchCalls++
	g.lastQuery = q
	return &model.SearchPage{Page: 1, TotalPages: 1, Results: []model.SearchResult{}}, nil
}

func (g *fakeGateway) ListGenres(context.Context) ([]model.Genre, error) {
	return []model.Genre{{Id: 28, Name: "Action"}}, nil
}

func (g *fakeGateway) GetCast(context.Context, int64) ([]model.CastMember, error) {
	return []model.CastMember{}, nil
}

func TestSearchRequiresQuery(t *testing.T) {
	gw := &fakeGateway{}
	c := New(gw)

	_, err := c.Search(context.Background(), tmdbhttp.SearchQuery{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, 0, gw.searchCalls, "validation happens before any provider call")

	_, err = c.Search(context.Background(), tmdbhttp.SearchQuery{Query: "Batman"})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.searchCalls)
	assert.Equal(t, "Batman", gw.lastQuery.Query)
}
