package http

import (
	"encoding/json"
	"net/http"

	"cinescore/configs"
	"cinescore/internal/cache"
	"cinescore/internal/controller/auth"
	"cinescore/internal/controller/metadata"
	"cinescore/internal/controller/rating"
	"cinescore/pkg/limiter"
	"cinescore/pkg/logging"
	"cinescore/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/uber-go/tally/v6"
	"go.uber.org/zap"
)

// Handler defines the HTTP handler of the service: auth, ratings and
// the cached metadata proxy.
type Handler struct {
	authCtrl     *auth.Controller
	ratingCtrl   *rating.Controller
	metadataCtrl *metadata.Controller
	cache        cache.Store
	cacheConfig  configs.CacheConfig
	limiter      *limiter.Limiter
	validate     *validator.Validate
	logger       *zap.Logger

	registerMetrics     *metrics.EndpointMetrics
	loginMetrics        *metrics.EndpointMetrics
	protectedMetrics    *metrics.EndpointMetrics
	searchMetrics       *metrics.EndpointMetrics
	genresMetrics       *metrics.EndpointMetrics
	castMetrics         *metrics.EndpointMetrics
	listRatingsMetrics  *metrics.EndpointMetrics
	createRatingMetrics *metrics.EndpointMetrics
	updateRatingMetrics *metrics.EndpointMetrics
	deleteRatingMetrics *metrics.EndpointMetrics
}

// New creates a new HTTP handler. lim may be nil to disable inbound
// rate limiting.
func New(authCtrl *auth.Controller, ratingCtrl *rating.Controller, metadataCtrl *metadata.Controller,
	cacheStore cache.Store, cacheConfig configs.CacheConfig, lim *limiter.Limiter,
	scope tally.Scope, logger *zap.Logger) *Handler {
	logger = logger.With(
		zap.String(logging.FieldComponent, "handler"),
		zap.String(logging.FieldType, "http"),
	)
	return &Handler{
		authCtrl:     authCtrl,
		ratingCtrl:   ratingCtrl,
		metadataCtrl: metadataCtrl,
		cache:        cacheStore,
		cacheConfig:  cacheConfig,
		limiter:      lim,
		validate:     validator.New(),
		logger:       logger,

		registerMetrics:     metrics.NewEndpointMetrics(scope, "Register"),
		loginMetrics:        metrics.NewEndpointMetrics(scope, "Login"),
		protectedMetrics:    metrics.NewEndpointMetrics(scope, "Protected"),
		searchMetrics:       metrics.NewEndpointMetrics(scope, "SearchMovies"),
		genresMetrics:       metrics.NewEndpointMetrics(scope, "ListGenres"),
		castMetrics:         metrics.NewEndpointMetrics(scope, "GetCast"),
		listRatingsMetrics:  metrics.NewEndpointMetrics(scope, "ListRatings"),
		createRatingMetrics: metrics.NewEndpointMetrics(scope, "CreateRating"),
		updateRatingMetrics: metrics.NewEndpointMetrics(scope, "UpdateRating"),
		deleteRatingMetrics: metrics.NewEndpointMetrics(scope, "DeleteRating"),
	}
}

// Router builds the route table. The cache-aside wrapper covers only
// the two idempotent metadata read endpoints; writes are never cached.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Hello)

	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("GET /auth/protected", h.authorized(h.Protected))

	search := h.limited(h.cached(h.cacheConfig.SearchTTL(), requestKey, h.SearchMovies))
	genres := h.limited(h.cached(h.cacheConfig.DefaultTTL(), requestKey, h.ListGenres))
	mux.HandleFunc("GET /movies/search", search)
	mux.HandleFunc("GET /genres", genres)
	mux.HandleFunc("GET /genres/{$}", genres)
	mux.HandleFunc("GET /cast/{movieId}", h.limited(h.GetCast))

	mux.HandleFunc("GET /reviews/ratings", h.authorized(h.ListRatings))
	mux.HandleFunc("POST /reviews/ratings", h.authorized(h.CreateRating))
	mux.HandleFunc("PUT /reviews/ratings/{tmdbId}", h.authorized(h.UpdateRating))
	mux.HandleFunc("DELETE /reviews/ratings/{tmdbId}", h.authorized(h.DeleteRating))

	return cors(mux)
}

// Hello handles GET / requests.
func (h *Handler) Hello(w http.ResponseWriter, _ *http.Request) {
	h.respondMsg(w, http.StatusOK, "Hello world!")
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Response encode error", zap.Error(err))
	}
}

// respondError writes {"error": msg}, the wire format of the movie
// and review endpoints.
func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}

// respondMsg writes {"msg": msg}, the wire format of the auth
// endpoints.
func (h *Handler) respondMsg(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"msg": msg})
}

// decodeBody decodes and validates a JSON request body. A malformed
// body or a failed validation is a caller error.
func (h *Handler) decodeBody(req *http.Request, v any) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}
