package metrics

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/uber-go/tally/v6"
	"github.com/uber-go/tally/v6/prometheus"
	"go.uber.org/zap"
)

// NewMetricsReporter starts a Prometheus reporter on a side port and
// returns the root scope.
func NewMetricsReporter(logger *zap.Logger, serviceName string, metricsPort int) (scope tally.Scope, closer io.Closer) {
	reporter := prometheus.NewReporter(prometheus.Options{})
	scope, closer = tally.NewRootScope(tally.ScopeOptions{
		Tags:            map[string]string{"service": serviceName},
		CachedReporter:  reporter,
		SanitizeOptions: &prometheus.DefaultSanitizerOpts,
	}, 10*time.Second)
	http.Handle("/metrics", reporter.HTTPHandler())
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", metricsPort), nil); err != nil {
			logger.Fatal("Failed to start metrics handler", zap.Error(err))
		}
	}()

	counter := scope.Counter("service_started")
	counter.Inc(1)
	return scope, closer
}

// EndpointMetrics defines the per-endpoint counters, one per error
// kind of the service taxonomy.
type EndpointMetrics struct {
	Calls                 tally.Counter
	InvalidArgumentErrors tally.Counter
	NotFoundErrors        tally.Counter
	ConflictErrors        tally.Counter
	UnauthorizedErrors    tally.Counter
	UpstreamErrors        tally.Counter
	UnavailableErrors     tally.Counter
	InternalErrors        tally.Counter
	Successes             tally.Counter
}

// NewEndpointMetrics creates the counters for an endpoint.
func NewEndpointMetrics(scope tally.Scope, endpoint string) *EndpointMetrics {
	scope = scope.Tagged(map[string]string{
		"component": "handler",
		"endpoint":  endpoint,
	})
	errCounter := func(kind string) tally.Counter {
		return scope.Tagged(map[string]string{"error": kind}).Counter("error")
	}
	return &EndpointMetrics{
		Calls:                 scope.Counter("calls"),
		InvalidArgumentErrors: errCounter("invalid_argument"),
		NotFoundErrors:        errCounter("not_found"),
		ConflictErrors:        errCounter("conflict"),
		UnauthorizedErrors:    errCounter("unauthorized"),
		UpstreamErrors:        errCounter("upstream"),
		UnavailableErrors:     errCounter("unavailable"),
		InternalErrors:        errCounter("internal"),
		Successes:             scope.Counter("success"),
	}
}
