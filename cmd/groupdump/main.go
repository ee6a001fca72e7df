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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"groupdump/internal/auth"
	"groupdump/internal/config"
	"groupdump/internal/core"
	"groupdump/internal/db"
	"groupdump/internal/events"
	"groupdump/internal/handlers"
	"groupdump/internal/notify"
	"groupdump/internal/otel"
	"groupdump/internal/payment"
	"groupdump/internal/version"
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
		Short:         "Group dumpster rental coordination API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func setup(ctx context.Context) (config.Config, error) {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	return config.Load(ctx)
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := setup(ctx)
			if err != nil {
				return err
			}

			database, err := db.Connect(ctx, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(database); err != nil {
					log.Error().Err(err).Msg("close database")
				}
			}()

			if err := db.Migrate(ctx, database); err != nil {
				return err
			}

			log.Info().Msg("schema migrated")
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := setup(ctx)
			if err != nil {
				return err
			}

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	cleanup, err := otel.Init(ctx, version.Name, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	database, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := db.Migrate(ctx, database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	var processor payment.Client
	switch cfg.ProcessorMode {
	case "live":
		if cfg.ProcessorSecretKey == "" {
			return fmt.Errorf("PROCESSOR_SECRET_KEY is required in live mode")
		}
		processor = payment.NewStripeClient(cfg.ProcessorBaseURL, cfg.ProcessorSecretKey, cfg.ProcessorTimeout)
	case "simulated":
		log.Warn().Msg("payment simulator active, no real charges will occur")
		processor = payment.NewSimulator()
	default:
		return fmt.Errorf("unknown PROCESSOR_MODE %q", cfg.ProcessorMode)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPHost != "" {
		smtp, err := notify.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			return fmt.Errorf("smtp notifier: %w", err)
		}
		notifier = smtp
	}

	var bus *events.Bus
	if cfg.NATSURL != "" {
		bus, err = events.New(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer bus.Close()
	}

	svc := core.New(database, processor, core.Options{
		Notifier:      notifier,
		Bus:           bus,
		CardholderID:  cfg.BusinessCardholderID,
		InviteBaseURL: cfg.InviteBase,
	})

	authManager := auth.NewManager(cfg.JWTSigningKey, cfg.AccessTokenTTL)
	h := handlers.New(svc, authManager)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Router(handlers.RouterOptions{AllowedOrigins: cfg.AllowedOrigins}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("processor_mode", cfg.ProcessorMode).Msg("starting groupdump api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
