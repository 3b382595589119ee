package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tilsley/assay/apps/server/internal/platform/config"
	platformgithub "github.com/tilsley/assay/apps/server/internal/platform/github"
	"github.com/tilsley/assay/apps/server/internal/platform/redisclient"
	"github.com/tilsley/assay/apps/server/internal/platform/telemetry"
	"github.com/tilsley/assay/apps/server/internal/platform/validation"
	"github.com/tilsley/assay/apps/server/internal/repofetch"
	"github.com/tilsley/assay/apps/server/internal/review"
	"github.com/tilsley/assay/apps/server/internal/review/analyzer"
	"github.com/tilsley/assay/apps/server/internal/review/cache"
	"github.com/tilsley/assay/apps/server/internal/review/handler"
	"github.com/tilsley/assay/pkg/logging"
	"github.com/tilsley/assay/schemas"
)

func main() {
	log := logging.New()
	if err := run(log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Observability ---

	tel, err := telemetry.New(ctx, telemetry.Config{Enabled: cfg.OtelEnabled, ServiceName: cfg.OtelServiceName})
	if err != nil {
		return fmt.Errorf("telemetry init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Repository fetching ---

	gh := platformgithub.NewClient(cfg.GithubAPIURL, cfg.GithubConnectTimeout)
	fetcher := repofetch.NewFetcher(gh, platformgithub.TokenSource(cfg.GithubToken), log)

	missing := repofetch.EmitPlaceholder
	if cfg.FetchFailOnMissingContent {
		missing = repofetch.FailOnMissing
	}
	repos := repofetch.NewService(fetcher, repofetch.Config{
		APIURL:  cfg.GithubAPIURL,
		Timeout: cfg.FetchTimeout,
		Walk: repofetch.WalkOptions{
			MissingContent: missing,
			MaxDepth:       cfg.FetchMaxDepth,
			MaxEntries:     cfg.FetchMaxEntries,
			Concurrency:    cfg.FetchConcurrency,
		},
	}, log)

	// --- Analysis ---

	llm, err := analyzer.NewOpenAI(analyzer.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	}, log)
	if err != nil {
		return fmt.Errorf("analyzer init: %w", err)
	}

	// --- Result cache ---

	var results review.ResultCache = cache.Nop{}
	if cfg.CacheEnabled() {
		rdb, err := redisclient.New(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("redis init: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		results = cache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("review cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	} else {
		log.Info("review cache disabled")
	}

	// --- Service + HTTP ---

	svc := review.NewService(repos, llm, results, review.Options{MaxPromptChars: cfg.MaxPromptChars}, log)

	validator, err := validation.New(schemas.OpenAPISpec)
	if err != nil {
		return fmt.Errorf("openapi validation middleware init: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(tel.ServiceName), handler.RequestID(), validator)
	handler.RegisterRoutes(router, svc, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting assay", "port", cfg.Port, "github_api", cfg.GithubAPIURL, "model", cfg.OpenAIModel)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
