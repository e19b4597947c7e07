package http

import (
	"errors"
	"net/http"
	"strconv"

	"cinescore/internal/controller/rating"
	"cinescore/pkg/metrics"
	"cinescore/pkg/model"

	"go.uber.org/zap"
)

type createRatingRequest struct {
	TmdbId    *int64           `json:"tmdb_id" validate:"required"`
	Score     *int             `json:"score" validate:"required"`
	MovieData *model.MovieSeed `json:"movie_data"`
}

type updateRatingRequest struct {
	Score *int `json:"score" validate:"required"`
}

// ratedMovieItem wraps a list entry the way clients expect it.
type ratedMovieItem struct {
	Movie model.RatedMovie `json:"movie"`
}

// ListRatings handles GET /reviews/ratings requests.
func (h *Handler) ListRatings(w http.ResponseWriter, req *http.Request, userId model.UserId) {
	h.listRatingsMetrics.Calls.Inc(1)
	ratings, err := h.ratingCtrl.ListRatings(req.Context(), userId)
	if err != nil {
		h.listRatingsMetrics.InternalErrors.Inc(1)
		h.logger.Error("Failed to list ratings", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to list ratings")
		return
	}
	items := make([]ratedMovieItem, 0, len(ratings))
	for _, r := range ratings {
		items = append(items, ratedMovieItem{Movie: r})
	}
	h.listRatingsMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusOK, items)
}

// CreateRating handles POST /reviews/ratings requests.
func (h *Handler) CreateRating(w http.ResponseWriter, req *http.Request, userId model.UserId) {
	h.createRatingMetrics.Calls.Inc(1)
	var body createRatingRequest
	if err := h.decodeBody(req, &body); err != nil {
		h.createRatingMetrics.InvalidArgumentErrors.Inc(1)
		h.respondError(w, http.StatusBadRequest, "Missing tmdb_id or score")
		return
	}
	r, err := h.ratingCtrl.CreateRating(req.Context(), userId, model.TmdbId(*body.TmdbId), model.RatingValue(*body.Score), body.MovieData)
	switch {
	case errors.Is(err, rating.ErrNoSeedData):
		h.createRatingMetrics.InvalidArgumentErrors.Inc(1)
		h.respondError(w, http.StatusBadRequest, "Movie not found locally and no data provided to create it")
		return
	case errors.Is(err, rating.ErrBadReleaseDate):
		h.createRatingMetrics.InvalidArgumentErrors.Inc(1)
		h.respondError(w, http.StatusBadRequest, "Release date is not in the default pattern.")
		return
	case errors.Is(err, rating.ErrRatingExists):
		h.createRatingMetrics.ConflictErrors.Inc(1)
		h.respondError(w, http.StatusConflict, "Rating already exists.")
		return
	case err != nil:
		h.createRatingMetrics.InternalErrors.Inc(1)
		h.logger.Error("Failed to create rating", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to create rating")
		return
	}
	h.createRatingMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusCreated, map[string]any{
		"message":    "Rating created successfully",
		"tmdb_id":    *body.TmdbId,
		"score":      r.Score,
		"movie_data": body.MovieData,
	})
}

// UpdateRating handles PUT /reviews/ratings/{tmdbId} requests.
func (h *Handler) UpdateRating(w http.ResponseWriter, req *http.Request, userId model.UserId) {
	h.updateRatingMetrics.Calls.Inc(1)
	tmdbId, ok := h.tmdbIdPathValue(w, req, h.updateRatingMetrics)
	if !ok {
		return
	}
	var body updateRatingRequest
	if err := h.decodeBody(req, &body); err != nil {
		h.updateRatingMetrics.InvalidArgumentErrors.Inc(1)
		h.respondError(w, http.StatusBadRequest, "New score is required")
		return
	}
	newScore, err := h.ratingCtrl.UpdateRating(req.Context(), userId, tmdbId, model.RatingValue(*body.Score))
	if h.respondRatingLookupError(w, err, h.updateRatingMetrics) {
		return
	}
	h.updateRatingMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":   "Rating updated successfully",
		"new_score": newScore,
	})
}

// DeleteRating handles DELETE /reviews/ratings/{tmdbId} requests.
func (h *Handler) DeleteRating(w http.ResponseWriter, req *http.Request, userId model.UserId) {
	h.deleteRatingMetrics.Calls.Inc(1)
	tmdbId, ok := h.tmdbIdPathValue(w, req, h.deleteRatingMetrics)
	if !ok {
		return
	}
	err := h.ratingCtrl.DeleteRating(req.Context(), userId, tmdbId)
	if h.respondRatingLookupError(w, err, h.deleteRatingMetrics) {
		return
	}
	h.deleteRatingMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Rating deleted successfully"})
}

func (h *Handler) tmdbIdPathValue(w http.ResponseWriter, req *http.Request, m *metrics.EndpointMetrics) (model.TmdbId, bool) {
	id, err := strconv.ParseInt(req.PathValue("tmdbId"), 10, 64)
	if err != nil {
		m.NotFoundErrors.Inc(1)
		h.respondError(w, http.StatusNotFound, "Movie not found")
		return 0, false
	}
	return model.TmdbId(id), true
}

// respondRatingLookupError maps the shared movie/rating lookup errors
// of update and delete. Reports whether a response was written.
func (h *Handler) respondRatingLookupError(w http.ResponseWriter, err error, m *metrics.EndpointMetrics) bool {
	switch {
	case errors.Is(err, rating.ErrMovieNotFound):
		m.NotFoundErrors.Inc(1)
		h.respondError(w, http.StatusNotFound, "Movie not found")
		return true
	case errors.Is(err, rating.ErrRatingNotFound):
		m.NotFoundErrors.Inc(1)
		h.respondError(w, http.StatusNotFound, "Rating not found")
		return true
	case err != nil:
		m.InternalErrors.Inc(1)
		h.logger.Error("Rating operation failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Rating operation failed")
		return true
	}
	return false
}
