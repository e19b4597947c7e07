package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cinescore/configs"
	"cinescore/internal/repository"
	"cinescore/pkg/logging"
	"cinescore/pkg/model"

	"github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const tracerID = "rating-repository-mysql"

const mysqlErrDuplicateEntry = 1062

// Repository defines a MySQL-based rating store.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// New creates a new MySQL-based rating store.
func New(config configs.MysqlConfig, logger *zap.Logger) (*Repository, error) {
	logger = logger.With(
		zap.String(logging.FieldComponent, "repository"),
		zap.String(logging.FieldType, "mysql"),
	)
	logger.Info("Connecting to mysql")
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", config.User, config.Pass, config.Host, config.Port, config.Name))
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, logger: logger}, nil
}

// Close closes the underlying connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}

// CreateUser registers a new user with a unique email.
func (r *Repository) CreateUser(ctx context.Context, email string, passwordHash string) (*model.User, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/CreateUser")
	defer span.End()
	res, err := r.db.ExecContext(ctx, "INSERT INTO users (email, password_hash) VALUES (?, ?)", email, passwordHash)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, repository.ErrUserExists
		}
		r.logger.Warn("Failed to insert user", zap.Error(err))
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{Id: model.UserId(id), Email: email, PasswordHash: passwordHash}, nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetUserByEmail")
	defer span.End()
	var u model.User
	err := r.db.QueryRowContext(ctx, "SELECT id, email, password_hash FROM users WHERE email = ?", email).
		Scan(&u.Id, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserById retrieves a user by id.
func (r *Repository) GetUserById(ctx context.Context, id model.UserId) (*model.User, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetUserById")
	defer span.End()
	var u model.User
	err := r.db.QueryRowContext(ctx, "SELECT id, email, password_hash FROM users WHERE id = ?", id).
		Scan(&u.Id, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetMovieByTmdbId retrieves a movie by its provider id. The tmdb_id
// column carries a unique index.
func (r *Repository) GetMovieByTmdbId(ctx context.Context, tmdbId model.TmdbId) (*model.Movie, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/GetMovieByTmdbId")
	defer span.End()
	return scanMovie(r.db.QueryRowContext(ctx,
		"SELECT id, tmdb_id, title, poster_path, backdrop_path, overview, release_date FROM movies WHERE tmdb_id = ?", tmdbId))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*model.Movie, error) {
	var m model.Movie
	var poster, backdrop, overview sql.NullString
	var release sql.NullTime
	err := row.Scan(&m.Id, &m.TmdbId, &m.Title, &poster, &backdrop, &overview, &release)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrMovieNotFound
	} else if err != nil {
		return nil, err
	}
	if poster.Valid {
		m.PosterPath = &poster.String
	}
	if backdrop.Valid {
		m.BackdropPath = &backdrop.String
	}
	if overview.Valid {
		m.Overview = &overview.String
	}
	if release.Valid {
		m.ReleaseDate = &release.Time
	}
	return &m, nil
}

// CreateRating creates a rating for a (user, movie) pair inside a
// single transaction: movie lookup, lazy movie insert, duplicate
// check and rating insert either all commit or all roll back. The
// UNIQUE (user_id, movie_id) constraint is the final arbiter under
// concurrent duplicate requests.
func (r *Repository) CreateRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, seed *model.Movie, score model.RatingValue) (*model.Rating, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/CreateRating")
	defer span.End()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var movieId model.MovieId
	err = tx.QueryRowContext(ctx, "SELECT id FROM movies WHERE tmdb_id = ?", tmdbId).Scan(&movieId)
	if errors.Is(err, sql.ErrNoRows) {
		if seed == nil {
			return nil, repository.ErrMovieNotFound
		}
		var release sql.NullTime
		if seed.ReleaseDate != nil {
			release = sql.NullTime{Time: *seed.ReleaseDate, Valid: true}
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO movies (tmdb_id, title, poster_path, backdrop_path, overview, release_date) VALUES (?, ?, ?, ?, ?, ?)",
			tmdbId, seed.Title, seed.PosterPath, seed.BackdropPath, seed.Overview, release)
		if err != nil {
			r.logger.Warn("Failed to insert movie", zap.Int64(logging.FieldTmdbId, int64(tmdbId)), zap.Error(err))
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		movieId = model.MovieId(id)
	} else if err != nil {
		return nil, err
	}

	var existing model.RatingId
	err = tx.QueryRowContext(ctx, "SELECT id FROM ratings WHERE user_id = ? AND movie_id = ?", userId, movieId).Scan(&existing)
	if err == nil {
		return nil, repository.ErrRatingExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO ratings (user_id, movie_id, score) VALUES (?, ?, ?)", userId, movieId, score)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, repository.ErrRatingExists
		}
		r.logger.Warn("Failed to insert rating", zap.Int64(logging.FieldUserId, int64(userId)), zap.Error(err))
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &model.Rating{Id: model.RatingId(id), UserId: userId, MovieId: movieId, Score: score}, nil
}

// ListRatings returns all ratings owned by the user joined with
// their movies.
func (r *Repository) ListRatings(ctx context.Context, userId model.UserId) ([]model.RatedMovie, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/ListRatings")
	defer span.End()
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.tmdb_id, m.title, m.poster_path, m.backdrop_path, m.release_date, r.score, r.id
		 FROM ratings r JOIN movies m ON m.id = r.movie_id
		 WHERE r.user_id = ?
		 ORDER BY r.id`, userId)
	if err != nil {
		r.logger.Warn("Failed to list ratings", zap.Int64(logging.FieldUserId, int64(userId)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	res := []model.RatedMovie{}
	for rows.Next() {
		var rm model.RatedMovie
		var poster, backdrop sql.NullString
		var release sql.NullTime
		if err := rows.Scan(&rm.TmdbId, &rm.Title, &poster, &backdrop, &release, &rm.Rating, &rm.RatingId); err != nil {
			return nil, err
		}
		if poster.Valid {
			rm.PosterPath = &poster.String
		}
		if backdrop.Valid {
			rm.BackdropPath = &backdrop.String
		}
		if release.Valid {
			s := release.Time.Format(model.ReleaseDateLayout)
			rm.ReleaseDate = &s
		}
		res = append(res, rm)
	}
	return res, rows.Err()
}

// UpdateRating overwrites the score of the caller's rating on the
// movie with the given tmdb id.
func (r *Repository) UpdateRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, score model.RatingValue) (*model.Rating, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/UpdateRating")
	defer span.End()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var movieId model.MovieId
	err = tx.QueryRowContext(ctx, "SELECT id FROM movies WHERE tmdb_id = ?", tmdbId).Scan(&movieId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrMovieNotFound
	} else if err != nil {
		return nil, err
	}

	var ratingId model.RatingId
	err = tx.QueryRowContext(ctx, "SELECT id FROM ratings WHERE user_id = ? AND movie_id = ?", userId, movieId).Scan(&ratingId)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrRatingNotFound
	} else if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE ratings SET score = ? WHERE id = ?", score, ratingId); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &model.Rating{Id: ratingId, UserId: userId, MovieId: movieId, Score: score}, nil
}

// DeleteRating removes the caller's rating on the movie with the
// given tmdb id. The movie record survives.
func (r *Repository) DeleteRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/DeleteRating")
	defer span.End()

	var movieId model.MovieId
	err := r.db.QueryRowContext(ctx, "SELECT id FROM movies WHERE tmdb_id = ?", tmdbId).Scan(&movieId)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrMovieNotFound
	} else if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM ratings WHERE user_id = ? AND movie_id = ?", userId, movieId)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrRatingNotFound
	}
	return nil
}
