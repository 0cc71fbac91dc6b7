package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dagbolade/molselector/internal/audit"
	"github.com/dagbolade/molselector/internal/config"
	"github.com/dagbolade/molselector/internal/server"
	"github.com/dagbolade/molselector/internal/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("starting MolSelector")

	ctx, cancel := setupSignalHandler()
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}

	log.Info().Msg("MolSelector stopped successfully")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setLogLevel(cfg.Log.Level)

	auditStore, err := initAuditStore(cfg.Audit)
	if err != nil {
		return err
	}
	if auditStore != nil {
		defer func() {
			if err := auditStore.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close audit store")
			}
		}()
	}

	sess := session.New(auditStore)
	preselectFolder(ctx, sess, cfg.Review.DefaultFolder)

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		DefaultFolder:   cfg.Review.DefaultFolder,
	}, sess, auditStore)

	return runServer(ctx, srv)
}

func setupLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func setLogLevel(value string) {
	level, err := zerolog.ParseLevel(value)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	return ctx, cancel
}

// initAuditStore returns a nil store when the trail is disabled.
func initAuditStore(cfg config.Audit) (audit.Store, error) {
	if !cfg.Enabled {
		log.Info().Msg("audit trail disabled")
		return nil, nil
	}

	log.Info().Str("path", cfg.Path).Msg("initializing audit store")

	store, err := audit.NewSQLiteStore(cfg.Path)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("audit store initialized")
	return store, nil
}

func preselectFolder(ctx context.Context, sess *session.Session, folder string) {
	if folder == "" {
		return
	}
	if _, err := sess.SelectFolder(ctx, folder); err != nil {
		log.Warn().Err(err).Str("folder", folder).Msg("default folder could not be selected")
	}
}

func runServer(ctx context.Context, srv *server.Server) error {
	errChan := make(chan error, 1)

	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
