package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"cinescore/configs"
	cachememory "cinescore/internal/cache/memory"
	authctrl "cinescore/internal/controller/auth"
	metadatactrl "cinescore/internal/controller/metadata"
	ratingctrl "cinescore/internal/controller/rating"
	tmdbgateway "cinescore/internal/gateway/tmdb/http"
	httphandler "cinescore/internal/handler/http"
	kafkapublisher "cinescore/internal/publisher/kafka"
	memorypublisher "cinescore/internal/publisher/memory"
	repomemory "cinescore/internal/repository/memory"
	repomysql "cinescore/internal/repository/mysql"
	"cinescore/pkg/discovery"
	"cinescore/pkg/discovery/consul"
	"cinescore/pkg/dns"
	"cinescore/pkg/limiter"
	"cinescore/pkg/logging"
	"cinescore/pkg/metrics"
	"cinescore/pkg/model"
	"cinescore/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const serviceName = "cinescore"

// ratingStore is the union of the store methods the controllers
// consume, so either store implementation can back them.
type ratingStore interface {
	CreateUser(ctx context.Context, email string, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserById(ctx context.Context, id model.UserId) (*model.User, error)
	CreateRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, seed *model.Movie, score model.RatingValue) (*model.Rating, error)
	ListRatings(ctx context.Context, userId model.UserId) ([]model.RatedMovie, error)
	UpdateRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId, score model.RatingValue) (*model.Rating, error)
	DeleteRating(ctx context.Context, userId model.UserId, tmdbId model.TmdbId) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event *model.RatingEvent) error
}

func main() {
	logConfig := zap.NewProductionConfig()
	log, err := logConfig.Build()
	if err != nil {
		panic(err)
	}
	log = log.With(zap.String(logging.FieldService, serviceName))

	configPath := flag.String("config", "configs/defaults.yaml", "path to the service configuration")
	flag.Parse()

	f, err := os.Open(*configPath)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("failed to close file", zap.Error(err))
		}
	}()
	var cfg configs.ServiceConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic(err)
	}
	applyEnvOverrides(&cfg)

	log.Info("Starting the service", zap.Int(logging.FieldPort, cfg.API.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.OTLPEndpoint != "" {
		tp, err := tracing.NewOTLPProvider(ctx, cfg.Tracing.OTLPEndpoint, serviceName)
		if err != nil {
			log.Fatal("Failed to initialize tracing provider", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("Failed to shutdown tracing provider", zap.Error(err))
			}
		}()
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.TraceContext{})
	}

	scope, closer := metrics.NewMetricsReporter(log, serviceName, cfg.Metrics.Port)
	defer closer.Close()

	if addr := cfg.ServiceDiscovery.Consul.Address; addr != "" {
		registry, err := consul.NewRegistry(addr, log)
		if err != nil {
			log.Fatal("Failed to connect to the service registry", zap.Error(err))
		}
		instanceID := discovery.GenerateInstanceID(serviceName)
		if err := registry.Register(ctx, instanceID, serviceName, fmt.Sprintf("%s:%d", advertiseHost(log), cfg.API.Port)); err != nil {
			log.Fatal("Failed to register the service", zap.Error(err))
		}
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(1 * time.Second):
					if err := registry.ReportHealthyState(instanceID, serviceName); err != nil {
						log.Warn("Failed to report healthy state", zap.Error(err))
					}
				}
			}
		}()
		defer registry.Deregister(ctx, instanceID, serviceName)
	}

	var repo ratingStore
	if cfg.DatabaseConfig.Type == "memory" {
		repo = repomemory.New()
	} else {
		mysqlRepo, err := repomysql.New(cfg.DatabaseConfig.Mysql, log)
		if err != nil {
			log.Fatal("Failed to initialize the store", zap.Error(err))
		}
		defer mysqlRepo.Close()
		repo = mysqlRepo
	}

	var publisher eventPublisher
	if addr := cfg.MessengerConfig.Addr(); addr != "" {
		kafkaPublisher, err := kafkapublisher.NewPublisher(addr, cfg.MessengerConfig.Topic(), log)
		if err != nil {
			log.Fatal("Failed to initialize the event publisher", zap.Error(err))
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		publisher = memorypublisher.NewPublisher()
	}

	secret := []byte(cfg.Auth.JWTSecret)
	auth := authctrl.New(repo, func() []byte { return secret }, cfg.Auth.TokenTTL(), log)
	rating := ratingctrl.New(repo, publisher, log)
	metadata := metadatactrl.New(tmdbgateway.New(cfg.TMDB, log))

	var lim *limiter.Limiter
	if cfg.Limiter.Enabled {
		lim = limiter.New(log, cfg.Limiter.Limit, cfg.Limiter.Burst)
	}

	h := httphandler.New(auth, rating, metadata, cachememory.New(), cfg.CacheConfig, lim, scope, log)
	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.API.Port),
		Handler: h.Router(),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-sigChan
		cancel()
		log.Info("Attempting graceful shutdown", zap.String("signal", s.String()))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shut down the server gracefully", zap.Error(err))
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server failed", zap.Error(err))
	}
	wg.Wait()
	log.Info("Gracefully stopped the server")
}

// applyEnvOverrides lets secrets come from the environment instead of
// the config file.
func applyEnvOverrides(cfg *configs.ServiceConfig) {
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		cfg.TMDB.APIKey = v
	}
	if v := os.Getenv("TMDB_BASE_URL"); v != "" {
		cfg.TMDB.BaseURL = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("MYSQL_PASS"); v != "" {
		cfg.DatabaseConfig.Mysql.Pass = v
	}
}

// advertiseHost resolves the address other hosts can reach this
// instance at, falling back to the bare hostname.
func advertiseHost(log *zap.Logger) string {
	host, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	ip, err := dns.HostnameToIp(host)
	if err != nil {
		log.Warn("Failed to resolve hostname, using it as-is", zap.Error(err))
		return host
	}
	return ip.String()
}
