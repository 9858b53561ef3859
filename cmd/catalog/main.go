package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/agonsep/21stCentury/internal/api"
	"github.com/agonsep/21stCentury/internal/config"
	"github.com/agonsep/21stCentury/internal/database"
	"github.com/agonsep/21stCentury/internal/metrics"
	"github.com/agonsep/21stCentury/internal/seed"
	"github.com/agonsep/21stCentury/internal/webui"
	"github.com/agonsep/21stCentury/pkg/auth"
	baseconf "github.com/agonsep/21stCentury/pkg/config"
	"github.com/agonsep/21stCentury/pkg/geocode"
)

func init() {
	// Configure zerolog for human-friendly console output
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	// Load configuration
	configFile := baseconf.FindConfigFile(config.ServiceName)
	envFile := baseconf.FindEnvironmentFile(config.ServiceName)

	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	cfg.Log.ConfigureZerolog()
	if cfg.Log.JSONOutput() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	log.Info().Msg("Starting EV Charger Catalog Service")
	log.Info().Str("config_file", configFile).Msg("Configuration loaded")
	log.Info().Str("env_file", envFile).Msg("Environment loaded")
	log.Info().
		Str("log_level", cfg.Log.Level).
		Bool("debug", cfg.Log.Debug).
		Msg("Log level configured")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.New(cfg.Database.DSN, database.WithDebug(cfg.Database.Debug))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func(db *database.BunDB) {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}(db)

	if cfg.Seed.Enabled {
		res, err := seed.Run(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed database")
		}
		log.Info().
			Int("users_created", res.UsersCreated).
			Int("users_skipped", res.UsersSkipped).
			Int("products_created", res.ProductsCreated).
			Int("products_skipped", res.ProductsSkipped).
			Msg("Seed completed")
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecretKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	passwords, err := auth.NewPasswordVerifier(cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize admin password")
	}

	geocoder := geocode.New(cfg.Geocode.BaseURL,
		geocode.WithCountryCodes(cfg.Geocode.CountryCodes),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithHTTPClient(&http.Client{Timeout: cfg.Geocode.Timeout}),
		geocode.WithRateLimit(rate.Every(time.Second), 1),
	)

	srv := api.NewServer(db, jwtManager, passwords, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Geocoder:    geocoder,
	})
	router := srv.Router()
	if cfg.Metrics.Enabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	if !cfg.Server.DisableWebUI {
		webui.Register(router, db)
	}

	// Create server with HTTP/2 support
	server := &http.Server{
		Addr:           cfg.GetListenAddress(),
		Handler:        h2c.NewHandler(srv.Handler(), &http2.Server{}),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector(db, cfg.Metrics.CollectionInterval)
		g.Go(func() error {
			collector.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		log.Info().
			Str("address", cfg.GetListenAddress()).
			Bool("metrics", cfg.Metrics.Enabled).
			Bool("web_ui", !cfg.Server.DisableWebUI).
			Msg("Starting catalog server")
		log.Info().Msgf("Health check: http://%s/api/health", cfg.GetListenAddress())

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down catalog server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}
	log.Info().Msg("Catalog server stopped")
}
