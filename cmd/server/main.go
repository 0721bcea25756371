package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"teacherid/internal/platform/config"
	"teacherid/internal/platform/httpserver"
	"teacherid/internal/platform/kafka"
	"teacherid/internal/platform/logger"
	"teacherid/internal/platform/postgres"
	"teacherid/internal/platform/redis"
	"teacherid/internal/signin/handler"
	"teacherid/internal/signin/journey"
	"teacherid/internal/signin/links"
	"teacherid/internal/signin/metrics"
	"teacherid/internal/signin/service"
	"teacherid/internal/signin/session"
	"teacherid/internal/signin/store/state"
	"teacherid/internal/signin/store/user"
	"teacherid/internal/signin/ticketing"
	"teacherid/internal/signin/trnlookup"
	"teacherid/internal/signin/trnlookup/dqt"
	"teacherid/pkg/platform/middleware/metadata"
	"teacherid/pkg/platform/middleware/requesttime"
)

const shutdownTimeout = 10 * time.Second

type userStore interface {
	journey.UserRepository
	service.AccountFinder
}

// infra holds the optional backing services. Nil fields select the
// in-memory or log-only fallbacks.
type infra struct {
	redis    *redis.Client
	postgres interface{ Close() }
	kafka    interface{ Close() }
}

func (i *infra) close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.postgres != nil {
		i.postgres.Close()
	}
}

// main wires dependencies, serves the sign-in routes and shuts down on
// SIGINT or SIGTERM.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var backing infra
	defer backing.close()

	states, err := buildStateStore(ctx, cfg, log, &backing)
	if err != nil {
		return err
	}
	users, err := buildUserStore(ctx, cfg, log, &backing)
	if err != nil {
		return err
	}
	tickets, err := buildTicketRaiser(ctx, cfg, log, &backing)
	if err != nil {
		return err
	}

	if cfg.TrnLookup.BaseURL == "" {
		log.Warn("TRN_LOOKUP_BASE_URL not set, every trn lookup will resolve as no match")
	}
	resolver, err := trnlookup.New(
		dqt.New(cfg.TrnLookup.BaseURL, cfg.TrnLookup.APIKey, &http.Client{}),
		trnlookup.WithTimeout(cfg.TrnLookup.Timeout),
		trnlookup.WithLogger(log),
		trnlookup.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	svc := service.New(states, users, journey.Deps{
		Links:    links.New(cfg.BaseURL),
		Lookup:   resolver,
		Users:    users,
		Sessions: session.NewManager(cfg.Session.SigningKey, cfg.Session.Issuer, cfg.Session.TTL),
		Tickets:  tickets,
	}, service.WithLogger(log), service.WithMetrics(m))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(chimiddleware.Recoverer)
	r.Use(requesttime.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if backing.redis != nil {
			if err := backing.redis.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	handler.New(svc, log, handler.WithSecureCookies(strings.HasPrefix(cfg.BaseURL, "https://"))).Register(r)

	srv := httpserver.New(cfg.Addr, r)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting sign-in server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down sign-in server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildStateStore(ctx context.Context, cfg config.Server, log *slog.Logger, backing *infra) (service.StateStore, error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Warn("REDIS_URL not set, journey state is kept in memory")
		return state.NewInMemory(state.WithMemoryTTL(cfg.JourneyTTL)), nil
	}
	backing.redis = client
	return state.NewRedis(client.Client, state.WithTTL(cfg.JourneyTTL)), nil
}

func buildUserStore(ctx context.Context, cfg config.Server, log *slog.Logger, backing *infra) (userStore, error) {
	pool, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		log.Warn("DATABASE_URL not set, accounts are kept in memory")
		return user.NewInMemory(), nil
	}
	backing.postgres = pool
	if err := user.Migrate(ctx, pool); err != nil {
		return nil, err
	}
	return user.NewPostgres(pool), nil
}

func buildTicketRaiser(ctx context.Context, cfg config.Server, log *slog.Logger, backing *infra) (journey.TicketRaiser, error) {
	client, err := kafka.New(ctx, cfg.Kafka, log)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Warn("KAFKA_BROKERS not set, support tickets are only logged")
		return ticketing.NewLog(log), nil
	}
	backing.kafka = client
	return ticketing.NewKafka(client, cfg.Kafka.TicketTopic, ticketing.WithLogger(log)), nil
}
