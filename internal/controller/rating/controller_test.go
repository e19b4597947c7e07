package rating

import (
	"context"
	"testing"

	repomemory "cinescore/internal/repository/memory"
	pubmemory "cinescore/internal/publisher/memory"
	"cinescore/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestController() (*Controller, *repomemory.Repository, *pubmemory.Publisher) {
	repo := repomemory.New()
	pub := pubmemory.NewPublisher()
	return New(repo, pub, zap.NewNop()), repo, pub
}

func seed(title string, releaseDate string) *model.MovieSeed {
	return &model.MovieSeed{Title: title, ReleaseDate: releaseDate}
}

func TestCreateRating(t *testing.T) {
	tests := []struct {
		name       string
		seed       *model.MovieSeed
		wantErr    error
		wantMovies int
	}{
		{
			name:       "creates movie and rating from seed",
			seed:       seed("New Movie", "2023-01-01"),
			wantMovies: 1,
		},
		{
			name:    "no seed for unknown movie",
			seed:    nil,
			wantErr: ErrNoSeedData,
		},
		{
			name:    "bad release date pattern",
			seed:    seed("Bad Date Movie", "01-01-2022"),
			wantErr: ErrBadReleaseDate,
		},
		{
			name:       "absent release date is fine",
			seed:       seed("No Date Movie", ""),
			wantMovies: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, repo, _ := newTestController()
			ctx := context.Background()
			r, err := c.CreateRating(ctx, 1, 100, 8, tt.seed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, repo.MovieCount())
				assert.Equal(t, 0, repo.RatingCount())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.RatingValue(8), r.Score)
			assert.Equal(t, tt.wantMovies, repo.MovieCount())
			assert.Equal(t, 1, repo.RatingCount())
		})
	}
}

func TestCreateRatingDuplicate(t *testing.T) {
	c, repo, _ := newTestController()
	ctx := context.Background()

	_, err := c.CreateRating(ctx, 1, 888, 5, seed("Repeat Movie", ""))
	require.NoError(t, err)

	_, err = c.CreateRating(ctx, 1, 888, 5, seed("Repeat Movie", ""))
	assert.ErrorIs(t, err, ErrRatingExists)
	assert.Equal(t, 1, repo.MovieCount(), "conflict must not leave a second movie")
	assert.Equal(t, 1, repo.RatingCount())
}

func TestCreateRatingLinksExistingMovie(t *testing.T) {
	c, repo, _ := newTestController()
	ctx := context.Background()

	_, err := c.CreateRating(ctx, 1, 200, 9, seed("Existing Movie", "2020-01-01"))
	require.NoError(t, err)

	// A second user rating the same tmdb id reuses the movie record.
	_, err = c.CreateRating(ctx, 2, 200, 4, seed("Newer Title Ignored", "2021-05-05"))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.MovieCount())
	assert.Equal(t, 2, repo.RatingCount())

	m, err := repo.GetMovieByTmdbId(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, "Existing Movie", m.Title, "movie metadata is immutable after creation")
}

func TestCreateRatingDefaultsTitle(t *testing.T) {
	c, repo, _ := newTestController()
	ctx := context.Background()

	_, err := c.CreateRating(ctx, 1, 300, 7, &model.MovieSeed{})
	require.NoError(t, err)
	m, err := repo.GetMovieByTmdbId(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMovieTitle, m.Title)
}

func TestListRatingsIsolation(t *testing.T) {
	c, _, _ := newTestController()
	ctx := context.Background()

	_, err := c.CreateRating(ctx, 1, 555, 10, seed("Matrix", "1999-03-31"))
	require.NoError(t, err)
	_, err = c.CreateRating(ctx, 2, 555, 5, nil)
	require.NoError(t, err)

	list1, err := c.ListRatings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list1, 1)
	assert.Equal(t, model.RatingValue(10), list1[0].Rating)
	require.NotNil(t, list1[0].ReleaseDate)
	assert.Equal(t, "1999-03-31", *list1[0].ReleaseDate)

	list2, err := c.ListRatings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list2, 1)
	assert.Equal(t, model.RatingValue(5), list2[0].Rating)
}

func TestListRatingsNullReleaseDate(t *testing.T) {
	c, _, _ := newTestController()
	ctx := context.Background()

	_, err := c.CreateRating(ctx, 1, 700, 6, seed("No Date Movie", ""))
	require.NoError(t, err)

	list, err := c.ListRatings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].ReleaseDate)
}

func TestUpdateRating(t *testing.T) {
	tests := []struct {
		name      string
		setup     bool
		userId    model.UserId
		tmdbId    model.TmdbId
		wantScore model.RatingValue
		wantErr   error
	}{
		{
			name:      "overwrites own score",
			setup:     true,
			userId:    1,
			tmdbId:    101,
			wantScore: 5,
		},
		{
			name:    "movie not found",
			userId:  1,
			tmdbId:  9999,
			wantErr: ErrMovieNotFound,
		},
		{
			name:    "rating not found for other user",
			setup:   true,
			userId:  2,
			tmdbId:  101,
			wantErr: ErrRatingNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestController()
			ctx := context.Background()
			if tt.setup {
				_, err := c.CreateRating(ctx, 1, 101, 2, seed("Bad Movie", ""))
				require.NoError(t, err)
			}
			got, err := c.UpdateRating(ctx, tt.userId, tt.tmdbId, 5)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, got)
		})
	}
}

func TestDeleteRating(t *testing.T) {
	c, repo, _ := newTestController()
	ctx := context.Background()

	_, err := c.CreateRating(ctx, 1, 666, 10, seed("Devil Movie", ""))
	require.NoError(t, err)

	// Another user cannot delete the owner's rating.
	err = c.DeleteRating(ctx, 2, 666)
	assert.ErrorIs(t, err, ErrRatingNotFound)
	assert.Equal(t, 1, repo.RatingCount())

	require.NoError(t, c.DeleteRating(ctx, 1, 666))
	assert.Equal(t, 0, repo.RatingCount())
	assert.Equal(t, 1, repo.MovieCount(), "movie survives rating deletion")

	err = c.DeleteRating(ctx, 1, 666)
	assert.ErrorIs(t, err, ErrRatingNotFound)
}

func TestRatingEventsPublished(t *testing.T) {
	c, _, pub := newTestController()
	ctx := context.Background()

	_, err := c.CreateRating(ctx, 1, 42, 9, seed("Some Movie", ""))
	require.NoError(t, err)
	_, err = c.UpdateRating(ctx, 1, 42, 3)
	require.NoError(t, err)
	require.NoError(t, c.DeleteRating(ctx, 1, 42))

	events := pub.Events()
	require.Len(t, events, 3)
	assert.Equal(t, model.RatingEventTypePut, events[0].EventType)
	assert.Equal(t, model.RatingValue(9), events[0].Value)
	assert.Equal(t, model.RatingEventTypePut, events[1].EventType)
	assert.Equal(t, model.RatingEventTypeDelete, events[2].EventType)
}
