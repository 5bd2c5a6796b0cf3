package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/internal/workspace"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	ctx := context.Background()
	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	configPath := os.Getenv("STOREFRONT_CONFIG")
	if configPath == "" {
		configPath = "storefront.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithField("error", err).Fatal("failed to load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.Level = level
	} else {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{}))

	if cfg.EnableTracing {
		log.Info("Tracing enabled.")
		tp := initTracing(log)
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				log.WithField("error", err).Warn("tracer provider shutdown failed")
			}
		}()
	} else {
		log.Info("Tracing disabled.")
	}

	var st storage.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithField("error", err).Fatal("Redis connection failed")
		}
		log.Infof("Redis ping succeeded at %s", cfg.RedisAddr)
		st = storage.NewRedisStore(redisClient, cfg.SessionTTL)
	} else {
		log.Warn("REDIS_ADDR not set, sessions are kept in memory and lost on restart")
		st = storage.NewMemoryStore()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		log.WithField("brokers", cfg.KafkaBrokers).WithField("topic", cfg.KafkaTopic).Info("publishing events to kafka")
	}
	defer publisher.Close()

	transport := gateway.NewTransport(gateway.TransportConfig{
		BaseURL:            cfg.BackendAPIURL,
		Timeout:            cfg.RequestTimeout,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}, log)
	log.Infof("Using backend API at %s", cfg.BackendAPIURL)

	registry := workspace.NewRegistry(transport, st, cfg.WorkspaceIdleTTL, log)
	defer registry.Close()

	server := h.NewServer(registry, publisher, h.Options{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		SessionTTL:         cfg.SessionTTL,
		CookieSecure:       cfg.CookieSecure,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(server.Router(), "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("error", err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err).Error("server forced to shutdown")
	}

	log.Info("server exited")
}

func initTracing(log logrus.FieldLogger) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	log.Info("Tracing provider initialized (no exporter configured)")
	return tp
}
