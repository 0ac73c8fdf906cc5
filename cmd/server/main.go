package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/farzamh/warlords/internal/auth"
	"github.com/farzamh/warlords/internal/config"
	"github.com/farzamh/warlords/internal/handler"
	"github.com/farzamh/warlords/internal/logger"
	"github.com/farzamh/warlords/internal/middleware"
	"github.com/farzamh/warlords/internal/repository/postgres"
	redisrepo "github.com/farzamh/warlords/internal/repository/redis"
	"github.com/farzamh/warlords/internal/service"
)

func main() {
	_ = godotenv.Load()
	logger.Init()
	cfg := config.Load()
	log.Info().Str("databaseURL", cfg.DatabaseURL).Msg("Config loaded")

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Repos
	worldRepo := postgres.NewWorldRepo(db)
	countryRepo := postgres.NewCountryRepo(db)
	battleRepo := postgres.NewBattleRepo(db)
	loanRepo := postgres.NewLoanRepo(db)
	allianceRepo := postgres.NewAllianceRepo(db)

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	registry := service.NewWorldRegistry()
	countrySvc := service.NewCountryService(countryRepo, worldRepo, redisClient, registry)
	loanSvc := service.NewLoanService(loanRepo, countryRepo, redisClient, registry)
	battleSvc := service.NewBattleService(countryRepo, battleRepo, redisClient, registry, wsHub)
	aiSvc := service.NewAIService(countryRepo, allianceRepo, battleSvc, redisClient, registry, wsHub)
	scheduler := service.NewScheduler(worldRepo, aiSvc, cfg.TickMin, cfg.TickMax)
	worldSvc := service.NewWorldService(worldRepo, countryRepo, redisClient, registry, scheduler)

	// Handlers
	worldHandler := handler.NewWorldHandler(worldSvc, aiSvc)
	countryHandler := handler.NewCountryHandler(countrySvc)
	battleHandler := handler.NewBattleHandler(battleSvc)
	loanHandler := handler.NewLoanHandler(loanSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("POST /worlds", worldHandler.CreateWorld)
	api.HandleFunc("GET /worlds", worldHandler.ListWorlds)
	api.HandleFunc("GET /worlds/{id}", worldHandler.GetWorld)
	api.HandleFunc("DELETE /worlds/{id}", worldHandler.DisableWorld)
	api.HandleFunc("POST /worlds/{id}/tick", worldHandler.TickWorld)
	api.HandleFunc("POST /worlds/{id}/countries", countryHandler.Register)
	api.HandleFunc("GET /worlds/{id}/countries", countryHandler.ListCountries)
	api.HandleFunc("GET /worlds/{id}/countries/{countryId}", countryHandler.GetProfile)
	api.HandleFunc("POST /worlds/{id}/countries/{countryId}/reset", countryHandler.Reset)
	api.HandleFunc("POST /worlds/{id}/countries/{countryId}/purchase", countryHandler.Purchase)
	api.HandleFunc("POST /worlds/{id}/ai", countryHandler.SpawnAI)
	api.HandleFunc("POST /worlds/{id}/attacks", battleHandler.Attack)
	api.HandleFunc("GET /worlds/{id}/battles", battleHandler.History)
	api.HandleFunc("POST /worlds/{id}/loans", loanHandler.Issue)
	api.HandleFunc("GET /worlds/{id}/loans", loanHandler.History)
	api.HandleFunc("POST /worlds/{id}/loans/{loanId}/repay", loanHandler.Repay)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Resume AI tick loops for every active world after restart.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := scheduler.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to start world schedulers (non-fatal)")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
