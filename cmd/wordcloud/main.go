// Command wordcloud serves the word-cloud API: word frequencies for a
// paragraph, single-word counts, and server-side analysis and CSV export.
//
// Redis result caching, Kafka analytics transport and PostgreSQL snapshots
// are each optional and enabled from config.
//
// Usage:
//
//	go run ./cmd/wordcloud [-config wordcloud.yaml]
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

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/analytics/store"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/cache"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/handler"
	wcmw "github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/middleware"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/router"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/wordcloud/validator"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting word-cloud service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsServer := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	checker := health.NewChecker()

	var resultCache handler.FrequencyCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, word-cloud caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			resultCache = cache.New(redisClient, cfg.Redis.CacheTTL)
			checker.Register("redis", health.PingCheck(redisClient, true))
			slog.Info("word-cloud cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	aggregator := analytics.NewAggregator()
	var tracker handler.Tracker = aggregator
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		collector := analytics.NewCollector(producer, 100, 0)
		collector.Start(ctx)
		defer collector.Close()
		tracker = collector

		consumer := kafka.NewConsumer(cfg.Kafka, analytics.HandleEvent(aggregator))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()
		slog.Info("analytics pipeline started", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}

	var snapshots analytics.SnapshotLister
	if cfg.Postgres.Enabled {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
		} else {
			defer db.Close()
			st := store.New(db, cfg.Postgres.SnapshotRetention)
			if err := st.EnsureSchema(ctx); err != nil {
				slog.Error("analytics schema setup failed", "error", err)
			} else {
				st.StartPeriodicSave(ctx, aggregator, cfg.Postgres.SnapshotInterval)
				snapshots = st
			}
			checker.Register("postgres", health.PingCheck(db, true))
		}
	}

	proxies, err := wcmw.ParseTrustedProxies(cfg.RateLimit.TrustedProxies)
	if err != nil {
		slog.Error("invalid rate limit config", "error", err)
		os.Exit(1)
	}
	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
		defer limiter.Close()
	}

	corsCfg := wcmw.DefaultCORSConfig()
	if len(cfg.WordCloud.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.WordCloud.AllowOrigins
	}

	h := handler.New(validator.Validator{MaxParagraphBytes: cfg.WordCloud.MaxParagraphBytes}, resultCache, tracker, m)
	chain := router.New(router.Deps{
		Handler:   h,
		Analytics: analytics.NewHandler(aggregator, snapshots),
		Health:    checker,
		Limiter:   limiter,
		Proxies:   proxies,
		Metrics:   m,
		CORS:      corsCfg,
		Timeout:   cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("word-cloud service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("word-cloud service stopped")
}
