package memory

import (
	"context"
	"sync"
	"time"

	"cinescore/internal/repository"
	"cinescore/pkg/model"
)

// Repository defines an in-memory rating store. It mirrors the
// transactional semantics of the MySQL store under a single lock and
// is used in tests and local runs.
type Repository struct {
	mu sync.RWMutex

	users        map[model.UserId]*model.User
	usersByEmail map[string]model.UserId
	movies       map[model.MovieId]*model.Movie
	moviesByTmdb map[model.TmdbId]model.MovieId
	ratings      map[model.RatingId]*model.Rating

	nextUserId   model.UserId
	nextMovieId  model.MovieId
	nextRatingId model.RatingId
}

// New creates a new in-memory store.
func New() *Repository {
	return &Repository{
		users:        map[model.UserId]*model.User{},
		usersByEmail: map[string]model.UserId{},
		movies:       map[model.MovieId]*model.Movie{},
		moviesByTmdb: map[model.TmdbId]model.MovieId{},
		ratings:      map[model.RatingId]*model.Rating{},
		nextUserId:   1,
		nextMovieId:  1,
		nextRatingId: 1,
	}
}

// CreateUser registers a new user with a unique email.
func (r *Repository) CreateUser(_ context.Context, email string, passwordHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.usersByEmail[email]; ok {
		return nil, repository.ErrUserExists
	}
	u := &model.User{Id: r.nextUserId, Email: email, PasswordHash: passwordHash}
	r.nextUserId++
	r.users[u.Id] = u
	r.usersByEmail[email] = u.Id
	return u, nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u := *r.users[id]
	return &u, nil
}

// GetUserById retrieves a user by id.
func (r *Repository) GetUserById(_ context.Context, id model.UserId) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetMovieByTmdbId retrieves a movie by its provider id.
func (r *Repository) GetMovieByTmdbId(_ context.Context, tmdbId model.TmdbId) (*model.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.moviesByTmdb[tmdbId]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	m := *r.movies[id]
	return &m, nil
}

// CreateRating creates a rating for a (user, movie) pair as a single
// atomic unit. When no movie with the given tmdb id exists, seed must
// carry the record to create; a duplicate rating leaves no new movie
// behind.
func (r *Repository) CreateRating(_ context.Context, userId model.UserId, tmdbId model.TmdbId, seed *model.Movie, score model.RatingValue) (*model.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	movieId, ok := r.moviesByTmdb[tmdbId]
	created := false
	if !ok {
		if seed == nil {
			return nil, repository.ErrMovieNotFound
		}
		movieId = r.nextMovieId
		created = true
	}

	for _, rt := range r.ratings {
		if rt.UserId == userId && rt.MovieId == movieId {
			return nil, repository.ErrRatingExists
		}
	}

	if created {
		m := *seed
		m.Id = movieId
		m.TmdbId = tmdbId
		r.nextMovieId++
		r.movies[movieId] = &m
		r.moviesByTmdb[tmdbId] = movieId
	}

	rt := &model.Rating{
		Id:        r.nextRatingId,
		UserId:    userId,
		MovieId:   movieId,
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}
	r.nextRatingId++
	r.ratings[rt.Id] = rt
	cp := *rt
	return &cp, nil
}

// ListRatings returns all ratings owned by the user joined with
// their movies, in insertion order.
func (r *Repository) ListRatings(_ context.Context, userId model.UserId) ([]model.RatedMovie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := []model.RatedMovie{}
	for id := model.RatingId(1); id < r.nextRatingId; id++ {
		rt, ok := r.ratings[id]
		if !ok || rt.UserId != userId {
			continue
		}
		m := r.movies[rt.MovieId]
		var date *string
		if m.ReleaseDate != nil {
			s := m.ReleaseDate.Format(model.ReleaseDateLayout)
			date = &s
		}
		res = append(res, model.RatedMovie{
			TmdbId:       m.TmdbId,
			Title:        m.Title,
			PosterPath:   m.PosterPath,
			BackdropPath: m.BackdropPath,
			ReleaseDate:  date,
			Rating:       rt.Score,
			RatingId:     rt.Id,
		})
	}
	return res, nil
}

// UpdateRating overwrites the score of the caller's rating on the
// movie with the given tmdb id.
func (r *Repository) UpdateRating(_ context.Context, userId model.UserId, tmdbId model.TmdbId, score model.RatingValue) (*model.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	movieId, ok := r.moviesByTmdb[tmdbId]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	for _, rt := range r.ratings {
		if rt.UserId == userId && rt.MovieId == movieId {
			rt.Score = score
			cp := *rt
			return &cp, nil
		}
	}
	return nil, repository.ErrRatingNotFound
}

// DeleteRating removes the caller's rating on the movie with the
// given tmdb id. The movie record survives.
func (r *Repository) DeleteRating(_ context.Context, userId model.UserId, tmdbId model.TmdbId) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	movieId, ok := r.moviesByTmdb[tmdbId]
	if !ok {
		return repository.ErrMovieNotFound
	}
	for id, rt := range r.ratings {
		if rt.UserId == userId && rt.MovieId == movieId {
			delete(r.ratings, id)
			return nil
		}
	}
	return repository.ErrRatingNotFound
}

// MovieCount reports the number of stored movies. Test helper.
func (r *Repository) MovieCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.movies)
}

// RatingCount reports the number of stored ratings. Test helper.
func (r *Repository) RatingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ratings)
}
