package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"talentgate/internal/app"
	"talentgate/internal/config"
	"talentgate/internal/database"
	apphttp "talentgate/internal/http"
	"talentgate/internal/http/handlers"
	"talentgate/internal/http/metrics"
	httpmw "talentgate/internal/http/middleware"
	"talentgate/internal/http/response"
	"talentgate/internal/observability"
	"talentgate/internal/repository/postgres"
	"talentgate/internal/security"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	opportunityRepo := postgres.NewOpportunityRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	pipelineRepo := postgres.NewPipelineRepository(db)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)

	moderationService := app.NewModerationService(opportunityRepo)
	applicationService := app.NewApplicationService(applicationRepo, opportunityRepo)
	pipelineService := app.NewPipelineService(pipelineRepo, applicationRepo, opportunityRepo, logger)

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisAddr != "" {
		limiter = httpmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	opportunityHandler := handlers.NewOpportunityHandler(moderationService)
	applicationHandler := handlers.NewApplicationHandler(applicationService, limiter, cfg.ApplyRateLimit, cfg.ApplyRateWindow)
	pipelineHandler := handlers.NewPipelineHandler(pipelineService)
	middleware := httpmw.NewAuthMiddleware(jwtProvider)

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		OpportunityHandler: opportunityHandler,
		ApplicationHandler: applicationHandler,
		PipelineHandler:    pipelineHandler,
		MetricsHandler:     handlers.NewMetricsHandler(collector),
		AuthMiddleware:     middleware,
		Metrics:            collector,
		RequestTimeout:     cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
