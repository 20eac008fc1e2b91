package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aditya2073/agrisample/internal/assistant"
	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/config"
	"github.com/Aditya2073/agrisample/internal/db"
	marketHttp "github.com/Aditya2073/agrisample/internal/handler/http"
	"github.com/Aditya2073/agrisample/internal/metrics"
	"github.com/Aditya2073/agrisample/internal/order"
	"github.com/Aditya2073/agrisample/internal/produce"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/Aditya2073/agrisample/internal/store/memory"
	"github.com/Aditya2073/agrisample/internal/store/postgres"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type repositories struct {
	profiles profile.Repository
	produce  produce.Repository
	orders   order.Store
	accounts auth.Repository
	close    func()
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg.App)

	log.Info().Msg("Market service starting...")
	log.Debug().Str("store", cfg.Store.Driver).Str("port", cfg.App.Port).Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer repos.close()

	m := metrics.New(cfg.App.Name)

	profileSvc := profile.NewService(repos.profiles)
	produceSvc := produce.NewService(repos.produce)
	engine := order.NewEngine(repos.orders, order.WithObserver(m))
	authSvc := auth.NewService(repos.accounts, auth.NewTokenManager(cfg.Auth.SigningKey, cfg.Auth.TokenTTL))

	var gen assistant.Generator
	if cfg.Assistant.APIKey != "" {
		g, err := assistant.NewGenAIGenerator(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create assistant")
		}
		gen = g
	} else {
		log.Warn().Msg("GEMINI_API_KEY is not set, assistant disabled")
	}

	router := marketHttp.NewRouter(marketHttp.Deps{
		Auth:      authSvc,
		Profiles:  profileSvc,
		Produce:   produceSvc,
		Orders:    engine,
		Assistant: assistant.New(gen, produceSvc, engine),
		Metrics:   m,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(app config.AppConfig) {
	level, err := zerolog.ParseLevel(app.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if app.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", app.Name).Logger()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		s := memory.New()
		return &repositories{
			profiles: s.Profiles(),
			produce:  s.Produce(),
			orders:   s.Orders(),
			accounts: s.Accounts(),
			close:    func() {},
		}, nil
	}

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if err := pg.ApplyMigrations(cfg.Postgres); err != nil {
		pg.Close()
		return nil, err
	}
	return &repositories{
		profiles: postgres.NewProfileRepository(pg.Pool),
		produce:  postgres.NewProduceRepository(pg.Pool),
		orders:   postgres.NewOrderStore(pg.Pool),
		accounts: postgres.NewAuthRepository(pg.Pool),
		close:    pg.Close,
	}, nil
}
