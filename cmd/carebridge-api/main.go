// README: Entry point; loads config, wires storage, cache, events and pricing, then serves HTTP until signalled.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"carebridge/internal/config"
	httptransport "carebridge/internal/http"
	"carebridge/internal/infra"
	"carebridge/internal/logging"
	"carebridge/internal/maps"
	"carebridge/internal/modules/order"
	"carebridge/internal/modules/pricing"
	"carebridge/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return err
	}

	// profiles is the source of truth for KYC; users may add a cache in front.
	var (
		orders   order.Repository
		profiles user.Getter
	)
	switch cfg.OrderBackend {
	case config.BackendMemory:
		orders = order.NewMemoryStore()
		if cfg.Memory.SeedUsersFile != "" {
			seeded, err := user.NewMemoryStoreFromFile(cfg.Memory.SeedUsersFile)
			if err != nil {
				return err
			}
			profiles = seeded
		} else {
			profiles = user.NewMemoryStore()
			logger.Warn("no CAREBRIDGE_SEED_USERS_FILE; partner actions will fail KYC and only quotes are usable")
		}
		logger.Warn("using in-memory stores; data is lost on exit")
	default:
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		profiles = user.NewStore(db)

		if cfg.OrderBackend == config.BackendDynamoDB {
			ddb, err := infra.NewDynamoDB(ctx, cfg.Dynamo.Region, cfg.Dynamo.Endpoint)
			if err != nil {
				return err
			}
			orders = order.NewDynamoStore(ddb, cfg.Dynamo.Table)
		} else {
			orders = order.NewStore(db)
		}
	}

	users := profiles
	if cfg.Redis.Addr != "" {
		rdb := infra.NewRedis(cfg.Redis.Addr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable; profile lookups will hit the store", "addr", cfg.Redis.Addr, "error", err)
		}
		users = user.NewCachedStore(profiles, rdb, cfg.Redis.UserCacheTTL)
	}

	var events order.Publisher = order.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		w := infra.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer w.Close()
		events = order.NewKafkaPublisher(w)
	}

	var distance pricing.DistanceSource
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		distance = routes
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Order:    order.NewService(orders, users, profiles, events, logger),
		Pricing:  pricing.NewService(distance, cfg.Currency),
		Verifier: verifier,
		Logger:   logger,
	})

	logger.Info("starting carebridge api",
		"addr", cfg.HTTP.Addr,
		"order_backend", cfg.OrderBackend,
		"user_cache", cfg.Redis.Addr != "",
		"kafka", len(cfg.Kafka.Brokers) > 0,
		"road_distance", distance != nil,
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Addr:            cfg.HTTP.Addr,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, router, logger)
	return server.Run(ctx)
}
