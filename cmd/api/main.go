package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/nairobi-county/county-tickets/internal/api/http"
	"github.com/nairobi-county/county-tickets/internal/api/http/handlers"
	"github.com/nairobi-county/county-tickets/internal/clock"
	"github.com/nairobi-county/county-tickets/internal/config"
	"github.com/nairobi-county/county-tickets/internal/events"
	"github.com/nairobi-county/county-tickets/internal/geo"
	"github.com/nairobi-county/county-tickets/internal/observability"
	"github.com/nairobi-county/county-tickets/internal/persistence"
	"github.com/nairobi-county/county-tickets/internal/preferences"
	"github.com/nairobi-county/county-tickets/internal/repository"
	"github.com/nairobi-county/county-tickets/internal/routing"
	"github.com/nairobi-county/county-tickets/internal/service"
	"github.com/nairobi-county/county-tickets/internal/sla"
	"github.com/nairobi-county/county-tickets/internal/worker"
	"github.com/nairobi-county/county-tickets/migrations"
)

func main() {
	var (
		envFiles []string
		addr     string
	)
	pflag.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment")
	pflag.StringVar(&addr, "addr", "", "listen address, overrides APP_HOST and APP_PORT")
	pflag.Parse()

	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if addr == "" {
		addr = cfg.App.Addr()
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	clk := clock.Real()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	ticketRepo := repository.NewMemoryTicketRepository()
	if pg.Enabled() {
		ticketRepo = repository.NewPostgresTicketRepository(pg.PoolHandle())
	}
	var sequence repository.SequenceAllocator
	switch {
	case redis.Enabled():
		sequence = repository.NewRedisSequence(redis.Client, "tickets:seq")
	case pg.Enabled():
		sequence = repository.NewPostgresSequence(pg.PoolHandle())
	default:
		sequence = repository.NewMemorySequence()
	}
	prefStore := preferences.NewMemoryStore()
	if redis.Enabled() {
		prefStore = preferences.NewRedisStore(redis.Client, "prefs")
	}

	wards, err := geo.LoadWardIndex(cfg.Geo.WardsFile)
	if err != nil {
		logger.Fatal("failed to load ward table", zap.Error(err))
	}
	resolver := geo.NewResolver(wards, cfg.Geo.ResolutionRadiusKm)
	router := routing.NewRouter()
	policy, err := sla.LoadPolicy(cfg.SLA.PolicyFile, cfg.SLA.DefaultDueHours)
	if err != nil {
		logger.Fatal("failed to load sla policy", zap.Error(err))
	}
	logger.Info("reference data loaded", zap.Int("wards", wards.Len()), zap.Float64("radius_km", resolver.RadiusKm()))

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Sequence:   sequence,
		Resolver:   resolver,
		Router:     router,
		Policy:     policy,
		Dispatcher: dispatcher,
		Clock:      clk,
		Metrics:    metrics,
		Logger:     logger.Named("tickets"),
		Config:     cfg.Tickets,
	})
	queryService := service.NewQueryService(ticketRepo)

	monitor, err := worker.NewSLAMonitor(cfg.SLA.MonitorSchedule, queryService, clk, metrics, logger.Named("sla_monitor"))
	if err != nil {
		logger.Fatal("failed to schedule sla monitor", zap.Error(err))
	}
	monitor.Start()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService, queryService, clk),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, queryService, clk),
		Geo:            handlers.NewGeoHandler(resolver, router, policy),
		Preferences:    handlers.NewPreferencesHandler(prefStore),
		MetricsHandler: metrics.Handler(),
	})

	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	monitor.Stop(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
