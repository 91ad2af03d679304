package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"arenaapp/api"
	"arenaapp/application"
	"arenaapp/config"
	"arenaapp/database"
	"arenaapp/infrastructure"
	"arenaapp/infrastructure/observability"
	"arenaapp/notify"

	log "github.com/sirupsen/logrus"
)

// ServeOptions tune the serve command beyond the loaded configuration
type ServeOptions struct {
	Migrate bool
}

// ConfigureLogging applies the configured level and format to the global logger
func ConfigureLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Serve runs the arena HTTP API until ctx is cancelled
func Serve(ctx context.Context, opts ServeOptions) error {
	log.Info("Starting arena service...")

	cfg := config.Get()
	ConfigureLogging(cfg)

	if opts.Migrate {
		log.Info("Running database migrations...")
		if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	publisher, natsClient, err := newEventPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	if natsClient != nil {
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Warn("Failed to close NATS connection")
			}
		}()
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)

	locker, closeLocker, err := newContestLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	engine := application.NewArenaEngine(uowFactory, locker, metrics, nil)
	arena, err := engine.InitializeArena(ctx, cfg.ArenaDefaults())
	if err != nil {
		return fmt.Errorf("failed to initialize arena: %w", err)
	}
	log.WithFields(log.Fields{
		"feeBps":   arena.FeeBps,
		"minBet":   arena.MinBet,
		"treasury": arena.Treasury,
	}).Info("Arena ready")

	if cfg.DiscordToken != "" {
		session, err := notify.NewDiscordSession(cfg.DiscordToken)
		if err != nil {
			return err
		}
		defer func() {
			if err := session.Close(); err != nil {
				log.WithError(err).Warn("Error closing Discord session")
			}
		}()

		notifier := notify.NewDiscordNotifier(session, cfg.DiscordChannelID)
		for _, eventType := range notifier.Subscriptions() {
			uowFactory.RegisterLocalHandler(eventType, notifier.Handle)
		}
		log.WithField("channelID", cfg.DiscordChannelID).Info("Discord notifications enabled")
	}

	server := api.NewServer(engine, cfg.HTTPPort)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Infof("Arena is running in %s mode...", cfg.Environment)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
	}

	log.Info("Shutting down arena service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down HTTP API")
	}
	if err := publisher.Drain(shutdownCtx); err != nil {
		log.WithError(err).Warn("Abandoning pending event handlers")
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return runErr
}

// InitArena creates the arena configuration without serving
func InitArena(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	metrics := observability.NewMetricsProvider(cfg)
	engine := application.NewArenaEngine(uowFactory, infrastructure.NewLocalContestLocker(), metrics, nil)

	arena, err := engine.InitializeArena(ctx, cfg.ArenaDefaults())
	if err != nil {
		return fmt.Errorf("failed to initialize arena: %w", err)
	}

	log.WithFields(log.Fields{
		"feeBps":              arena.FeeBps,
		"minBet":              arena.MinBet,
		"minStakeToCreate":    arena.MinStakeToCreate,
		"defaultVotingWindow": arena.DefaultVotingWindow,
		"treasury":            arena.Treasury,
		"contestCount":        arena.ContestCount,
	}).Info("Arena initialized")
	return nil
}

// newEventPublisher connects to NATS when configured, otherwise events stay in-process
func newEventPublisher(ctx context.Context, cfg *config.Config) (*infrastructure.NATSEventPublisher, *infrastructure.NATSClient, error) {
	mapper := infrastructure.NewEventSubjectMapper()

	if strings.TrimSpace(cfg.NATSServers) == "" {
		log.Info("NATS not configured, publishing events in-process only")
		return infrastructure.NewNATSEventPublisher(nil, mapper), nil, nil
	}

	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if err := client.EnsureStream(infrastructure.DomainEventStream, mapper.GetAllSubjects()); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	return infrastructure.NewNATSEventPublisher(client, mapper), client, nil
}

// newContestLocker picks the lock backend; the returned func releases its resources
func newContestLocker(ctx context.Context, cfg *config.Config) (application.ContestLocker, func(), error) {
	switch cfg.LockBackend {
	case "redis":
		rdb, err := infrastructure.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("addr", cfg.RedisAddr).Info("Using Redis contest locks")
		return infrastructure.NewRedisContestLocker(rdb, cfg.LockTTL), func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Warn("Failed to close Redis client")
			}
		}, nil
	case "local", "":
		return infrastructure.NewLocalContestLocker(), func() {}, nil
	default:
		return nil, nil, errors.New("unknown lock backend: " + cfg.LockBackend)
	}
}
