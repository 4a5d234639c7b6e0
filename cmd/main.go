package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"interaction-service/cache"
	"interaction-service/config"
	"interaction-service/db"
	"interaction-service/feed"
	"interaction-service/handler"
	"interaction-service/interceptor"
	"interaction-service/metrics"
	natsClient "interaction-service/nats"
	pb "interaction-service/pb"
	"interaction-service/pkg/jwt"
	"interaction-service/publisher"
	"interaction-service/repository"
	"interaction-service/service"
	"interaction-service/subscriber"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadServiceConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load Interaction config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("No Interaction .env file loaded", zap.Error(envErr))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Interaction service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.ServiceConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	dbCfg, err := config.LoadDatabaseConfig("")
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	dbConn, err := database.NewConnection(database.Config{
		Host:         dbCfg.Host,
		Port:         dbCfg.Port,
		User:         dbCfg.User,
		Password:     dbCfg.Password,
		DBName:       dbCfg.DBName,
		SSLMode:      dbCfg.SSLMode,
		MaxOpenConns: dbCfg.MaxOpenConns,
		MaxIdleConns: dbCfg.MaxIdleConns,
		MaxLifetime:  dbCfg.MaxLifetime,
	})
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := dbConn.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("Interaction database connected", zap.String("db", dbCfg.DBName))

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 10,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Interaction Redis connected", zap.String("addr", cfg.RedisURL))

	// NATS
	nats, err := natsClient.NewClient(natsClient.Config{
		URL:           cfg.NATSURL,
		MaxReconnects: 10,
		ReconnectWait: 2 * time.Second,
		ClientID:      cfg.NATSClientID,
	}, logger.Named("nats"))
	if err != nil {
		return err
	}
	defer nats.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	counters := cache.NewCounterCache(redisClient, cache.DefaultCounterTTL)

	counterSub := subscriber.NewCounterSubscriber(ctx, nats, counters, m, logger.Named("subscriber"))
	if err := counterSub.Start(); err != nil {
		return err
	}
	defer func() {
		if err := counterSub.Stop(); err != nil {
			logger.Warn("Failed to stop counter subscriber", zap.Error(err))
		}
	}()

	// Feed sessions. Ended sessions release their comment limiter.
	var interactionHandler *handler.InteractionHandler
	sessions := feed.NewRegistry(feed.RegistryConfig{
		DoubleTapWindow: cfg.Interaction.DoubleTapWindow,
		SessionTTL:      cfg.Interaction.SessionTTL,
		Logger:          logger.Named("feed"),
		OnResize:        func(open int) { m.OpenSessions.Set(float64(open)) },
		OnEvict:         func(viewerID uuid.UUID) { interactionHandler.ForgetViewer(viewerID) },
	})

	svc := service.NewInteractionService(service.Dependencies{
		Registry:  sessions,
		Posts:     repository.NewPostRepository(dbConn.DB),
		Likes:     repository.NewLikeRepository(dbConn.DB),
		Comments:  repository.NewCommentRepository(dbConn.DB),
		Counters:  counters,
		Publisher: publisher.NewEventPublisher(nats, logger.Named("publisher")),
		Metrics:   m,
		Logger:    logger.Named("service"),
	}, service.Config{
		FeedPageSize:    cfg.Interaction.FeedPageSize,
		CommentsPerPost: cfg.Interaction.CommentsPerPost,
	})

	interactionHandler = handler.NewInteractionHandler(svc,
		cfg.Interaction.CommentRate, cfg.Interaction.CommentBurst, logger.Named("handler"))
	go sessions.Run(ctx, cfg.Interaction.SweepInterval)

	// Initialize auth interceptor (allowing public routes)
	authInterceptor := interceptor.NewAuthInterceptor(jwt.NewManager(cfg.JWTSecret, "auth-service"), []string{
		pb.InteractionService_GetPostComments_FullMethodName,
	})

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.Logging(logger.Named("grpc")),
			authInterceptor.Unary(),
		),
	)
	pb.RegisterInteractionServiceServer(grpcServer, interactionHandler)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux(registry, dbConn),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("Metrics listening", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	listener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.GRPCPort, err)
	}

	go func() {
		logger.Info("Interaction Service gRPC server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(listener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Interaction server shutting down gracefully")
	case err := <-errCh:
		stop()
		return err
	}

	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Metrics server shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}

func metricsMux(gatherer prometheus.Gatherer, dbConn *database.Connection) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(gatherer))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := dbConn.HealthCheck(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func newLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	config.Level = lvl
	return config.Build()
}
