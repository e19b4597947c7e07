package model

import (
	"fmt"
	"time"
)

// RatingId defines a rating id.
type RatingId int64

// RatingValue defines a value of a rating record.
type RatingValue int

// Rating defines an individual rating created by a user for a movie.
// At most one rating exists per (user, movie) pair.
type Rating struct {
	Id        RatingId    `json:"id"`
	UserId    UserId      `json:"user_id"`
	MovieId   MovieId     `json:"movie_id"`
	Score     RatingValue `json:"score"`
	CreatedAt time.Time   `json:"created_at"`
}

func (r *Rating) String() string {
	return fmt.Sprintf("Rating{Id=%d, UserId=%d, MovieId=%d, Score=%d}", r.Id, r.UserId, r.MovieId, r.Score)
}

// RatedMovie is a rating joined with the display attributes of its
// movie, as returned by the ratings listing.
type RatedMovie struct {
	TmdbId       TmdbId      `json:"tmdb_id"`
	Title        string      `json:"title"`
	PosterPath   *string     `json:"poster_path"`
	BackdropPath *string     `json:"backdrop_path"`
	ReleaseDate  *string     `json:"release_date"`
	Rating       RatingValue `json:"rating"`
	RatingId     RatingId    `json:"rating_id"`
}

// RatingEventType defines the type of a rating event.
type RatingEventType string

// Rating event types.
const (
	RatingEventTypePut    = RatingEventType("put")
	RatingEventTypeDelete = RatingEventType("delete")
)

// RatingEvent is emitted after every successful rating write.
type RatingEvent struct {
	UserId    UserId          `json:"userId"`
	TmdbId    TmdbId          `json:"tmdbId"`
	Value     RatingValue     `json:"value"`
	EventType RatingEventType `json:"eventType"`
}

func (ev *RatingEvent) String() string {
	return fmt.Sprintf("RatingEvent{UserId=%d, TmdbId=%d, Value=%d, EventType=%s}", ev.UserId, ev.TmdbId, ev.Value, ev.EventType)
}
