package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/catapulthq/catapult/internal/adapter/amadeus"
	"github.com/catapulthq/catapult/internal/adapter/googlecalendar"
	cphttp "github.com/catapulthq/catapult/internal/adapter/http"
	cpnats "github.com/catapulthq/catapult/internal/adapter/nats"
	"github.com/catapulthq/catapult/internal/adapter/openai"
	"github.com/catapulthq/catapult/internal/adapter/otel"
	"github.com/catapulthq/catapult/internal/adapter/postgres"
	"github.com/catapulthq/catapult/internal/adapter/ristretto"
	"github.com/catapulthq/catapult/internal/adapter/ws"
	"github.com/catapulthq/catapult/internal/config"
	"github.com/catapulthq/catapult/internal/domain/agent"
	"github.com/catapulthq/catapult/internal/logger"
	"github.com/catapulthq/catapult/internal/middleware"
	"github.com/catapulthq/catapult/internal/resilience"
	"github.com/catapulthq/catapult/internal/service"
)

func main() {
	planRequest := flag.String("plan", "", "run one planning session for the given request and exit")
	directMode := flag.Bool("direct", false, "with -plan, build the itinerary without the agent loop")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	if *planRequest != "" {
		if err := runPlan(cfg, log, *planRequest, *directMode); err != nil {
			log.Error("plan failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"max_hops", cfg.Planner.MaxHops,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := otel.InitTracer(cfg.Logging.Service)
	defer func() { _ = shutdownTracer(context.Background()) }()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	log.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations applied")

	queue, err := cpnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Drain() }()
	log.Info("nats connected", "url", cfg.NATS.URL)

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Providers ---

	providers, gateway := buildProviders(cfg, log, cache)

	// --- Services ---

	registry, err := agent.NewRegistry(agent.DefaultRoster(), service.RosterToolNames())
	if err != nil {
		return fmt.Errorf("agent roster: %w", err)
	}

	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	runner := service.NewAgentRunner(gateway, cfg.Planner.MaxToolTurns, cfg.Planner.Retries, log, metrics)
	planner := service.NewPlannerService(cfg.Planner, runner, registry, providers, store, queue, hub, metrics, log)
	direct := service.NewDirectPlanner(providers, store, log)

	// --- HTTP ---

	handlers := &cphttp.Handlers{
		Planner: planner,
		Direct:  direct,
		Store:   store,
		Queue:   queue,
		Hub:     hub,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cphttp.CORS(cfg.Server.CORSOrigin))
	r.Use(cphttp.Logger)
	r.Use(cphttp.SecurityHeaders)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))

	cphttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute, // planning sessions block the request
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildProviders wires the outbound travel and model clients. Amadeus and
// Google Calendar are optional: without credentials the planner serves
// deterministic fallback data instead.
func buildProviders(cfg *config.Config, log *slog.Logger, cache *ristretto.Cache) (service.Providers, *openai.Client) {
	gateway := openai.NewClient(cfg.LLM)
	gateway.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	var providers service.Providers

	if cfg.Amadeus.ClientID != "" && cfg.Amadeus.ClientSecret != "" {
		client := amadeus.NewClient(cfg.Amadeus)
		client.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
		client.SetCache(cache, cfg.Cache.TTL)
		providers.Flights = amadeus.NewFlights(client)
		providers.Hotels = amadeus.NewHotels(client)
		log.Info("amadeus provider enabled")
	} else {
		log.Warn("amadeus credentials missing, flight and hotel search will use fallback data")
	}

	calendar, err := googlecalendar.NewClient(cfg.Calendar)
	if err != nil {
		log.Warn("google calendar unavailable, calendar lookups will fail soft", "error", err)
	} else {
		providers.Calendar = calendar
		log.Info("google calendar provider enabled")
	}

	return providers, gateway
}
