// @title GoTours Backend API
// @version 1.0
// @description GoTours Backend API for booking guided tours
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "GOTOURS_BACK-END/docs" // This is required for swagger
	"GOTOURS_BACK-END/internal/config"
	"GOTOURS_BACK-END/internal/handlers"
	"GOTOURS_BACK-END/internal/identity"
	"GOTOURS_BACK-END/internal/logging"
	"GOTOURS_BACK-END/internal/metrics"
	"GOTOURS_BACK-END/internal/middleware"
	"GOTOURS_BACK-END/internal/oauthstate"
	"GOTOURS_BACK-END/internal/objectstore"
	"GOTOURS_BACK-END/internal/routes"
	"GOTOURS_BACK-END/internal/services"
	"GOTOURS_BACK-END/internal/store/postgres"
	"GOTOURS_BACK-END/internal/tracing"
)

const serviceName = "gotours-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(serviceName, cfg.Log.Env, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, serviceName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	// --- Database ---
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	db := postgres.New(pool)
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// --- Services ---
	var opts []services.Option
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
		opts = append(opts, services.WithBookingRecorder(m))
	}

	states, err := oauthstate.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize oauth state store")
	}
	if c, ok := states.(io.Closer); ok {
		defer c.Close()
	}

	images, err := objectstore.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	tourSvc := services.NewTourService(db, opts...)
	bookingSvc := services.NewBookingService(db, opts...)
	reviewSvc := services.NewReviewService(db, opts...)
	userSvc := services.NewUserService(db, opts...)
	authSvc := services.NewAuthService(
		db,
		identity.NewGoogleProvider(cfg.GoogleOAuth),
		states,
		middleware.NewTokenIssuer(&cfg.JWT),
		services.AuthConfig{
			AdminEmail:          cfg.Admin.Email,
			BootstrapSecretHash: cfg.Admin.BootstrapSecretHash,
			StateTTL:            cfg.OAuthState.TTL,
		},
		opts...,
	)

	// --- HTTP Handlers ---
	h := routes.Handlers{
		Health:   handlers.NewHealthHandler(db),
		Auth:     handlers.NewGoogleAuthHandler(authSvc, cfg.Frontend.CallbackURL),
		Tours:    handlers.NewToursHandler(tourSvc, bookingSvc),
		Bookings: handlers.NewBookingsHandler(bookingSvc),
		Reviews:  handlers.NewReviewsHandler(reviewSvc),
		Users:    handlers.NewUsersHandler(userSvc),
		Upload:   handlers.NewUploadHandler(images, cfg.Storage.MaxUploadBytes),
		Swagger:  !cfg.IsProduction(),
	}
	if disk, ok := images.(*objectstore.DiskStore); ok {
		h.Uploads = disk.Handler("/uploads/")
	}
	if m != nil {
		h.Metrics = m.Handler()
	}

	mux := http.NewServeMux()
	routes.SetupRoutes(mux, h, &cfg.JWT, db)

	var handler http.Handler = mux
	if m != nil {
		handler = m.Middleware(handler)
	}
	handler = middleware.RequestLogger(handler)
	handler = middleware.Recover(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}).Handler(handler)
	handler = otelhttp.NewHandler(handler, serviceName)

	// --- HTTP Server + Graceful Shutdown ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Tracer shutdown error")
	}
	log.Info().Msg("Server stopped")
}
