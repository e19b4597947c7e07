package rating

import (
	"context"
	"errors"
	"time"

	"cinescore/internal/repository"
	"cinescore/pkg/logging"
	"cinescore/pkg/model"

	"go.uber.org/zap"
)

// ErrMovieNotFound returned by update/delete when no local movie has
// the given tmdb id.
var ErrMovieNotFound = errors.New("movie not found")

// ErrRatingNotFound returned when the caller has no rating on the movie.
var ErrRatingNotFound = errors.New("rating not found")

// ErrRatingExists returned when the caller already rated the movie.
// Creation is not an upsert.
var ErrRatingExists = errors.New("rating already exists")

// ErrNoSeedData returned when the movie is unknown locally and the
// caller supplied no metadata to create it from.
var ErrNoSeedData = errors.New("movie not found locally and no data provided to create it")

// ErrBadReleaseDate returned when the seed release date is not in the
// expected YYYY-MM-DD pattern.
var ErrBadReleaseDate = errors.New("release date is not in the default pattern")

type ratingRepository interface {
	CreateRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, seed *model.Movie, score model.RatingValue) (*model.Rating, error)
	ListRatings(ctx context.Context, userId model.UserId) ([]model.RatedMovie, error)
	UpdateRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, score model.RatingValue) (*model.Rating, error)
	DeleteRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event *model.RatingEvent) error
}

// Controller defines a rating service controller. It orchestrates the
// lazy movie creation, enforces one rating per (user, movie) pair and
// emits rating events after successful writes.
type Controller struct {
	repo      ratingRepository
	publisher eventPublisher
	logger    *zap.Logger
}

// New creates a rating service controller.
func New(repo ratingRepository, publisher eventPublisher, logger *zap.Logger) *Controller {
	logger = logger.With(
		zap.String(logging.FieldComponent, "controller"),
		zap.String(logging.FieldType, "rating"),
	)
	return &Controller{repo: repo, publisher: publisher, logger: logger}
}

// CreateRating rates a movie for the first time. When the movie is
// unknown locally it is created from seed inside the same store
// transaction; the title defaults when the seed omits it. A second
// create for the same (user, movie) pair fails with ErrRatingExists.
func (c *Controller) CreateRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, score model.RatingValue, seed *model.MovieSeed) (*model.Rating, error) {
	movie, err := seedToMovie(seed)
	if err != nil {
		return nil, err
	}
	r, err := c.repo.CreateRating(ctx, userId, tmdbId, movie, score)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return nil, ErrNoSeedData
	} else if errors.Is(err, repository.ErrRatingExists) {
		return nil, ErrRatingExists
	} else if err != nil {
		return nil, err
	}
	c.publish(ctx, userId, tmdbId, score, model.RatingEventTypePut)
	return r, nil
}

// ListRatings returns the caller's ratings joined with movie
// attributes. Other users' ratings on the same movies are never
// included.
func (c *Controller) ListRatings(ctx context.Context, userId model.UserId) ([]model.RatedMovie, error) {
	return c.repo.ListRatings(ctx, userId)
}

// UpdateRating overwrites the score of an existing rating.
func (c *Controller) UpdateRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, score model.RatingValue) (model.RatingValue, error) {
	r, err := c.repo.UpdateRating(ctx, userId, tmdbId, score)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return 0, ErrMovieNotFound
	} else if errors.Is(err, repository.ErrRatingNotFound) {
		return 0, ErrRatingNotFound
	} else if err != nil {
		return 0, err
	}
	c.publish(ctx, userId, tmdbId, score, model.RatingEventTypePut)
	return r.Score, nil
}

// DeleteRating removes the caller's rating. The movie record survives.
func (c *Controller) DeleteRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId) error {
	err := c.repo.DeleteRating(ctx, userId, tmdbId)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return ErrMovieNotFound
	} else if errors.Is(err, repository.ErrRatingNotFound) {
		return ErrRatingNotFound
	} else if err != nil {
		return err
	}
	c.publish(ctx, userId, tmdbId, 0, model.RatingEventTypeDelete)
	return nil
}

// publish emits a rating event, best effort. Publish failures are
// logged and never surfaced to the caller.
func (c *Controller) publish(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, score model.RatingValue, eventType model.RatingEventType) {
	event := &model.RatingEvent{UserId: userId, TmdbId: tmdbId, Value: score, EventType: eventType}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("Failed to publish rating event",
			zap.String("event", event.String()),
			zap.Error(err),
		)
	}
}

// seedToMovie validates the seed data and converts it to a movie
// record. A nil seed stays nil; an unparsable release date is a
// caller error.
func seedToMovie(seed *model.MovieSeed) (*model.Movie, error) {
	if seed == nil {
		return nil, nil
	}
	m := &model.Movie{
		Title:        seed.Title,
		PosterPath:   seed.PosterPath,
		BackdropPath: seed.BackdropPath,
		Overview:     seed.Overview,
	}
	if m.Title == "" {
		m.Title = model.DefaultMovieTitle
	}
	if seed.ReleaseDate != "" {
		t, err := time.Parse(model.ReleaseDateLayout, seed.ReleaseDate)
		if err != nil {
			return nil, ErrBadReleaseDate
		}
		m.ReleaseDate = &t
	}
	return m, nil
}
