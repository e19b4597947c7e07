package http

import (
	"errors"
	"net/http"
	"strconv"

	"cinescore/internal/controller/metadata"
	"cinescore/internal/gateway"
	tmdbhttp "cinescore/internal/gateway/tmdb/http"
	"cinescore/pkg/metrics"

	"go.uber.org/zap"
)

// SearchMovies handles GET /movies/search requests.
func (h *Handler) SearchMovies(w http.ResponseWriter, req *http.Request) {
	h.searchMetrics.Calls.Inc(1)
	q := tmdbhttp.SearchQuery{
		Query: req.FormValue("query"),
		Year:  req.FormValue("year"),
	}
	if page := req.FormValue("page"); page != "" {
		if n, err := strconv.Atoi(page); err == nil {
			q.Page = n
		}
	}
	if genre := req.FormValue("genre"); genre != "" {
		if n, err := strconv.Atoi(genre); err == nil {
			q.Genre = n
		}
	}

	page, err := h.metadataCtrl.Search(req.Context(), q)
	if errors.Is(err, metadata.ErrEmptyQuery) {
		h.searchMetrics.InvalidArgumentErrors.Inc(1)
		h.respondError(w, http.StatusBadRequest, "Query parameter is required")
		return
	} else if err != nil {
		h.respondProviderError(w, err, "Failed to fetch data from TMDB", h.searchMetrics)
		return
	}
	h.searchMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusOK, page)
}

// ListGenres handles GET /genres/ requests.
func (h *Handler) ListGenres(w http.ResponseWriter, req *http.Request) {
	h.genresMetrics.Calls.Inc(1)
	genres, err := h.metadataCtrl.Genres(req.Context())
	if err != nil {
		h.respondProviderError(w, err, "Failed to fetch genres from TMDB", h.genresMetrics)
		return
	}
	h.genresMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusOK, genres)
}

// GetCast handles GET /cast/{movieId} requests.
func (h *Handler) GetCast(w http.ResponseWriter, req *http.Request) {
	h.castMetrics.Calls.Inc(1)
	movieId, err := strconv.ParseInt(req.PathValue("movieId"), 10, 64)
	if err != nil {
		h.castMetrics.NotFoundErrors.Inc(1)
		http.NotFound(w, req)
		return
	}
	cast, err := h.metadataCtrl.Cast(req.Context(), movieId)
	if err != nil {
		h.respondProviderError(w, err, "Failed to fetch cast from TMDB", h.castMetrics)
		return
	}
	h.castMetrics.Successes.Inc(1)
	h.respondJSON(w, http.StatusOK, cast)
}

// respondProviderError maps gateway failures: a provider error status
// is forwarded with its body verbatim; anything below the HTTP layer
// becomes a fixed 502 with a generic per-operation message. Raw error
// text never reaches the caller.
func (h *Handler) respondProviderError(w http.ResponseWriter, err error, fallback string, m *metrics.EndpointMetrics) {
	var upstream *gateway.UpstreamError
	if errors.As(err, &upstream) {
		m.UpstreamErrors.Inc(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(upstream.StatusCode)
		if _, err := w.Write(upstream.Body); err != nil {
			h.logger.Warn("Response write error", zap.Error(err))
		}
		return
	}
	m.UnavailableErrors.Inc(1)
	h.logger.Warn("Metadata provider unreachable", zap.Error(err))
	h.respondError(w, http.StatusBadGateway, fallback)
}
