package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"notely/internal/ai"
	"notely/internal/auth"
	"notely/internal/config"
	"notely/internal/db"
	"notely/internal/handlers"
	"notely/internal/otel"
	"notely/internal/token"
	"notely/internal/version"
	pgdb "notely/pkg/db"
	gos3 "notely/pkg/s3"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Personal note-taking API with AI assistance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			_ = godotenv.Load()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			pool, err := pgdb.Open(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			return pgdb.Migrate(ctx, pool)
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert development fixtures and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			_ = godotenv.Load()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			pool, err := pgdb.Open(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			if err := pgdb.Migrate(ctx, pool); err != nil {
				pool.Close()
				return err
			}
			pool.Close()

			orm, err := db.Connect(cfg.DBDSN)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(orm) }()

			return db.Seed(ctx, orm)
		},
	}
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	cleanup, err := otel.Init(ctx, version.Name, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	pool, err := pgdb.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open database pool")
	}
	defer pool.Close()

	if err := pgdb.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	orm, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer func() {
		if err := db.Close(orm); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	var bus *nats.Conn
	if cfg.NATSURL != "" {
		bus, err = nats.Connect(cfg.NATSURL, nats.Name(version.Name))
		if err != nil {
			log.Warn().Err(err).Msg("nats unavailable, events disabled")
		} else {
			defer bus.Drain()
		}
	}

	var s3Client *gos3.Client
	if cfg.AvatarBucket != "" {
		s3Client, err = gos3.NewClientFromEnv()
		if err != nil {
			log.Warn().Err(err).Msg("s3 unavailable, avatar uploads disabled")
			s3Client = nil
		}
	}

	tokens, err := token.New(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("init token service")
	}

	store := auth.NewGormStore(orm)
	authSvc := auth.NewService(log.Logger, store, store, tokens, cfg.BcryptCost)
	aiClient := ai.New(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)

	api, err := handlers.New(
		&handlers.Store{DB: pool, ORM: orm, Bus: bus, S3: s3Client},
		authSvc,
		tokens,
		aiClient,
		handlers.Config{
			AllowedOrigins: cfg.AllowedOrigins,
			AvatarBucket:   cfg.AvatarBucket,
			AvatarURLBase:  cfg.AvatarURLBase,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("init api")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(api.Routes(), version.Name),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", version.Version).Msg("starting notely")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
		return err
	}
	return nil
}
