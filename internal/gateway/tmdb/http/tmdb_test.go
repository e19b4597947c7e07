package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinescore/configs"
	"cinescore/internal/gateway"
	"cinescore/pkg/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const searchResponse = `{
	"page": 1,
	"total_pages": 5,
	"results": [
		{
			"id": 101,
			"title": "Batman Begins",
			"poster_path": "/batman.jpg",
			"overview": "Dark knight...",
			"release_date": "2005-06-15",
			"backdrop_path": "/bg.jpg",
			"genre_ids": [28, 80]
		},
		{
			"id": 102,
			"title": "Batman & Robin",
			"poster_path": null,
			"overview": "Ice to meet you...",
			"release_date": "1997-06-20",
			"backdrop_path": "/bg2.jpg",
			"genre_ids": [878]
		}
	]
}`

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(configs.TMDBConfig{BaseURL: srv.URL, APIKey: "test-key", TimeoutSeconds: 2}, zap.NewNop())
}

func TestSearchMovies(t *testing.T) {
	var gotReq *http.Request
	g := newTestGateway(t, func(w http.ResponseWriter, req *http.Request) {
		gotReq = req.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse))
	})

	page, err := g.SearchMovies(context.Background(), SearchQuery{Query: "Batman", Year: "2005"})
	require.NoError(t, err)

	require.NotNil(t, gotReq)
	assert.Equal(t, "/search/movie", gotReq.URL.Path)
	assert.Equal(t, "Bearer test-key", gotReq.Header.Get("Authorization"))
	q := gotReq.URL.Query()
	assert.Equal(t, "Batman", q.Get("query"))
	assert.Equal(t, "false", q.Get("include_adult"))
	assert.Equal(t, "en-US", q.Get("language"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "2005", q.Get("primary_release_year"))

	poster := "https://image.tmdb.org/t/p/w500/batman.jpg"
	backdrop1, backdrop2 := "/bg.jpg", "/bg2.jpg"
	want := &model.SearchPage{
		Page:       1,
		TotalPages: 5,
		Results: []model.SearchResult{
			{
				TmdbId:       101,
				Title:        "Batman Begins",
				PosterPath:   &poster,
				Overview:     "Dark knight...",
				ReleaseDate:  "2005-06-15",
				BackdropPath: &backdrop1,
			},
			{
				TmdbId:       102,
				Title:        "Batman & Robin",
				PosterPath:   nil,
				Overview:     "Ice to meet you...",
				ReleaseDate:  "1997-06-20",
				BackdropPath: &backdrop2,
			},
		},
	}
	assert.Empty(t, cmp.Diff(want, page))
}

func TestSearchMoviesOmitsYearWhenUnset(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, req *http.Request) {
		_, present := req.URL.Query()["primary_release_year"]
		assert.False(t, present)
		w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	})
	_, err := g.SearchMovies(context.Background(), SearchQuery{Query: "Batman"})
	require.NoError(t, err)
}

func TestSearchMoviesGenreFilter(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(searchResponse))
	})
	page, err := g.SearchMovies(context.Background(), SearchQuery{Query: "Batman", Genre: 28})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, model.TmdbId(101), page.Results[0].TmdbId)
	assert.Equal(t, "Batman Begins", page.Results[0].Title)
}

func TestSearchMoviesUpstreamError(t *testing.T) {
	body := `{"errors": ["query must be provided"]}`
	g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(body))
	})
	_, err := g.SearchMovies(context.Background(), SearchQuery{Query: "Empty"})
	var upstream *gateway.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.StatusCode)
	assert.JSONEq(t, body, string(upstream.Body))
}

func TestSearchMoviesConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	g := New(configs.TMDBConfig{BaseURL: srv.URL, APIKey: "test-key", TimeoutSeconds: 1}, zap.NewNop())

	_, err := g.SearchMovies(context.Background(), SearchQuery{Query: "Fail"})
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestListGenres(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/genre/movie/list", req.URL.Path)
		assert.Equal(t, "en-US", req.URL.Query().Get("language"))
		w.Write([]byte(`{"genres":[{"id":28,"name":"Action"},{"id":12,"name":"Adventure"}]}`))
	})
	genres, err := g.ListGenres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, model.Genre{Id: 28, Name: "Action"}, genres[0])
}

func TestGetCast(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/movie/603/credits", req.URL.Path)
		w.Write([]byte(`{
			"cast": [
				{"id": 6384, "name": "Keanu Reeves", "original_name": "Keanu Reeves",
				 "character": "Neo", "profile_path": "/keanu.jpg", "order": 0,
				 "gender": 2, "known_for_department": "Acting", "cast_id": 34,
				 "credit_id": "52fe425bc3a36847f80181c1"},
				{"id": 2975, "name": "Laurence Fishburne", "original_name": "Laurence Fishburne",
				 "character": "Morpheus", "profile_path": null, "order": 1,
				 "gender": 2, "known_for_department": "Acting", "cast_id": 21,
				 "credit_id": "52fe425bc3a36847f8018199"}
			],
			"crew": [{"id": 1, "name": "Ignored", "job": "Director"}]
		}`))
	})
	cast, err := g.GetCast(context.Background(), 603)
	require.NoError(t, err)
	require.Len(t, cast, 2, "crew entries are discarded")

	require.NotNil(t, cast[0].ProfilePath)
	assert.Equal(t, "https://image.tmdb.org/t/p/w200/keanu.jpg", *cast[0].ProfilePath)
	assert.Equal(t, "Neo", cast[0].Character)
	assert.Nil(t, cast[1].ProfilePath)
}

func TestGetCastUpstreamError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_message": "Invalid API key"}`))
	})
	_, err := g.GetCast(context.Background(), 603)
	var upstream *gateway.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
}

func TestResponseDecode(t *testing.T) {
	// Guard against provider payloads that are valid JSON but not the
	// expected shape.
	g := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results": "not-a-list"}`))
	})
	_, err := g.SearchMovies(context.Background(), SearchQuery{Query: "Batman"})
	var jsonErr *json.UnmarshalTypeError
	assert.ErrorAs(t, err, &jsonErr)
}
