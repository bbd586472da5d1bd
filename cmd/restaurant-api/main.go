package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/restaurant/internal/cache"
	"github.com/fjod/restaurant/internal/config"
	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/events"
	h "github.com/fjod/restaurant/internal/http"
	"github.com/fjod/restaurant/internal/logger"
	"github.com/fjod/restaurant/internal/repository"
	"github.com/fjod/restaurant/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const serviceName = "restaurant-api"

func main() {
	seed := flag.Bool("seed", false, "insert the sample menu before serving")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, serviceName, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log, *seed); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, seed bool) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, closeBackend, err := openBackend(startCtx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	menuCache, orderCache, closeCache := openCaches(cfg, log)
	defer closeCache()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(log, cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		log.Info("publishing events", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("failed to close publisher", "error", err)
		}
	}()

	menu := service.NewMenuService(
		repository.NewRecordStore[domain.MenuItem](backend, repository.MenuItems, repository.MenuItemCodec{}),
		menuCache, publisher, log)
	orders := service.NewOrderService(
		repository.NewRecordStore[domain.Order](backend, repository.Orders, repository.OrderCodec{}),
		orderCache, publisher, log)

	if seed {
		keys, err := menu.Seed(startCtx)
		if err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
		log.Info("sample menu inserted", "item_ids", keys)
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(h.RouterConfig{
			Menu:           menu,
			Orders:         orders,
			Logger:         log,
			RequestTimeout: cfg.RequestTimeout,
			MaxBodySize:    cfg.MaxRequestBodySize,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("restaurant API starting", "port", cfg.HTTPPort, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.Backend, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		store, disconnect, err := repository.OpenMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, repository.MenuItems, repository.Orders)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to MongoDB", "database", cfg.Mongo.Database)
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := disconnect(ctx); err != nil {
				log.Error("failed to disconnect MongoDB", "error", err)
			}
		}
		return store, closeFn, nil

	case config.BackendDynamoDB:
		client, err := repository.NewDynamoClient(ctx, cfg.DynamoDB.Region, cfg.DynamoDB.Endpoint)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewDynamoStore(client)
		if cfg.DynamoDB.EnsureTables {
			if err := store.EnsureTables(ctx, repository.MenuItems, repository.Orders); err != nil {
				return nil, nil, err
			}
		}
		log.Info("using DynamoDB", "region", cfg.DynamoDB.Region, "endpoint", cfg.DynamoDB.Endpoint)
		return store, func() {}, nil

	default:
		log.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}
}

func openCaches(cfg *config.Config, log *slog.Logger) (cache.RecordCache[domain.MenuItem], cache.RecordCache[domain.Order], func()) {
	if cfg.Redis.Addr == "" {
		return cache.NopCache[domain.MenuItem]{}, cache.NopCache[domain.Order]{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	onStateChange := func(name string, from, to gobreaker.State) {
		log.Warn("cache circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}

	menuCache := cache.NewBreakerCache[domain.MenuItem]("redis-menu-items",
		cache.NewRedisCache[domain.MenuItem](client, repository.MenuItems.Name, cfg.Redis.TTL), onStateChange)
	orderCache := cache.NewBreakerCache[domain.Order]("redis-orders",
		cache.NewRedisCache[domain.Order](client, repository.Orders.Name, cfg.Redis.TTL), onStateChange)

	log.Info("caching records in Redis", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	return menuCache, orderCache, func() {
		if err := client.Close(); err != nil {
			log.Error("failed to close Redis client", "error", err)
		}
	}
}
