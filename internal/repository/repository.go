package repository

import "errors"

// Sentinel errors shared by all store implementations.
var (
	// ErrUserNotFound returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists returned when the email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrMovieNotFound returned when no movie matches the tmdb id.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrRatingNotFound returned when the caller has no rating on the movie.
	ErrRatingNotFound = errors.New("rating not found")
	// ErrRatingExists returned when a rating for the (user, movie)
	// pair is already present.
	ErrRatingExists = errors.New("rating already exists")
)
