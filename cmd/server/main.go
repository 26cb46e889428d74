package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/internal/handlers"
	"github.com/osintlab/osint-platform/internal/middleware"
	"github.com/osintlab/osint-platform/internal/services"
	"github.com/osintlab/osint-platform/internal/worker"
	"github.com/osintlab/osint-platform/pkg/cache"
	"github.com/osintlab/osint-platform/pkg/config"

	_ "github.com/osintlab/osint-platform/docs" // generated API docs
)

// @title           OSINT Platform API
// @version         1.0
// @description     Social media intelligence platform: authentication, OAuth account connections, data collection, and threat dashboards.
//
// @contact.name   API Support
//
// @license.name  MIT
//
// @host      localhost:8000
// @BasePath  /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("Starting OSINT platform API")

	postgresDB, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer postgresDB.Close()

	if err := postgresDB.RunMigrations(context.Background(), database.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisDB, err := database.NewRedisDB(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisDB.Close()

	cacheInstance := cache.NewCache(redisDB.Client())

	// The user cache fronts token validation lookups; when disabled the
	// middleware reads straight from PostgreSQL.
	var userResolver middleware.UserResolver = postgresDB
	var userInvalidator handlers.UserInvalidator
	var statsCache *cache.Cache
	if cfg.Cache.Enabled {
		userCache := cache.NewUserCache(cacheInstance, postgresDB, cfg.Cache.UserTTL)
		userResolver = userCache
		userInvalidator = userCache
		statsCache = cacheInstance
	}

	// Services
	jwtService := services.NewJWTService(&cfg.JWT, redisDB)
	authService := services.NewAuthService(postgresDB, jwtService)
	oauthService := services.NewOAuthService(&cfg.OAuth, postgresDB, redisDB)
	sessionService := services.NewSessionService(redisDB, cfg.Cache.SessionTTL)

	taskClient := worker.NewClient(&cfg.Redis, cfg.Worker.Queue)
	defer taskClient.Close()
	collectorService := services.NewCollectorService(redisDB, taskClient, postgresDB, cfg.Collector.DefaultMaxPosts)

	// Inline twitter handle collection shares the worker's collector
	// registry rather than a queue round trip
	collectors := worker.DefaultCollectors(cfg.Collector.TwitterAPIKey)
	workerHandler := worker.NewHandler(postgresDB, redisDB, cacheInstance, collectors, cfg.Collector.DefaultMaxPosts)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, jwtService, sessionService, postgresDB, collectorService, userInvalidator)
	oauthHandler := handlers.NewOAuthHandler(oauthService, postgresDB, cfg.Server.FrontendURL)
	dashboardHandler := handlers.NewDashboardHandler(postgresDB, statsCache, cfg.Cache.StatsTTL)
	collectHandler := handlers.NewCollectHandler(collectorService, workerHandler)
	healthHandler := handlers.NewHealthHandler(postgresDB, redisDB)

	rateLimiter := middleware.NewRateLimiter(redisDB, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.WindowDuration)
	requireAuth := middleware.JWTAuth(jwtService, userResolver)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", middleware.MetricsHandler())

	r.Get("/api/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api/docs/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public endpoints, rate limited against brute force
			r.Group(func(r chi.Router) {
				r.Use(rateLimiter.Limit("auth"))
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
				r.Get("/permissions", authHandler.GetPermissions)
				r.Post("/permissions", authHandler.UpdatePermissions)
				r.Post("/collect-data", authHandler.CollectData)
				r.Get("/sessions", authHandler.ListSessions)
				r.Delete("/sessions/{id}", authHandler.RevokeSession)
			})
		})

		r.Route("/oauth", func(r chi.Router) {
			// Provider callbacks arrive by browser redirect without a
			// bearer token; the Redis state record proves the user
			r.Get("/{platform}/callback", oauthHandler.Callback)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/connect/{platform}", oauthHandler.Connect)
				r.Get("/accounts", oauthHandler.ListAccounts)
				r.Delete("/disconnect/{platform}", oauthHandler.Disconnect)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/threats", dashboardHandler.Threats)
			r.Get("/activity", dashboardHandler.Activity)
		})

		r.Route("/collect", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/connect/credentials", collectHandler.ConnectCredentials)
			r.Get("/connect/status", collectHandler.ConnectStatus)
		})

		r.With(requireAuth).Post("/twitter/connect/credentials", collectHandler.TwitterCredentials)

		r.Route("/browser", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/credentials/{platform}", collectHandler.SaveBrowserCredentials)
			r.Get("/credentials/{platform}", collectHandler.GetBrowserCredentials)
			r.Post("/scrape", collectHandler.BrowserScrape)
			r.Get("/job/{id}", collectHandler.BrowserJob)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully")
}
