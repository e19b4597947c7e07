package model

import "time"

// MovieId defines a local movie id.
type MovieId int64

// TmdbId defines the external provider id of a movie. It uniquely
// identifies a movie record and is immutable once set.
type TmdbId int64

// ReleaseDateLayout is the wire format for movie release dates.
const ReleaseDateLayout = "2006-01-02"

// DefaultMovieTitle is used when seed data omits the title.
const DefaultMovieTitle = "Unknown Title"

// Movie defines a locally stored movie record. It is created lazily
// the first time any user rates it and is never updated or deleted
// afterwards.
type Movie struct {
	Id           MovieId    `json:"id"`
	TmdbId       TmdbId     `json:"tmdb_id"`
	Title        string     `json:"title"`
	PosterPath   *string    `json:"poster_path"`
	BackdropPath *string    `json:"backdrop_path"`
	Overview     *string    `json:"overview"`
	ReleaseDate  *time.Time `json:"release_date"`
}

// MovieSeed is caller-supplied movie metadata, used only when the
// movie record has to be created on first rating.
type MovieSeed struct {
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	Overview     *string `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
}
