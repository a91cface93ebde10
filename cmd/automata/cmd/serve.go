package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/automata/internal/automation"
	"github.com/solatis/automata/internal/core/api"
	"github.com/solatis/automata/internal/core/auth"
	"github.com/solatis/automata/internal/core/config"
	"github.com/solatis/automata/internal/core/metrics"
	"github.com/solatis/automata/internal/core/server"
	"github.com/solatis/automata/internal/core/store"
	"github.com/solatis/automata/internal/core/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC automation service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	d := config.Default()
	serveCmd.Flags().String("server.host", d.Server.Host, "gRPC server host")
	serveCmd.Flags().Int("server.port", d.Server.Port, "gRPC server port")
	serveCmd.Flags().Duration("server.request_timeout", d.Server.RequestTimeout, "per-request timeout")
	serveCmd.Flags().String("metrics.addr", d.Metrics.Addr, "Prometheus metrics listen address (empty disables)")
	serveCmd.Flags().Bool("evaluation.parallel", d.Evaluation.Parallel, "resolve sibling operands concurrently")
	serveCmd.Flags().String("evaluation.locale", d.Evaluation.Locale, "default locale for error messages")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	shutdownTracing, err := tracing.Init(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	database, queries, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set AUTOMATA_HMAC_SECRET environment variable)")
	}

	m := metrics.New()
	m.RegisterDBStats(database.DB)

	engineOpts := []automation.Option{
		automation.WithLogger(logger),
		automation.WithRecorder(m),
		automation.WithMaxDefinitionSize(cfg.Server.MaxDefinitionSize),
	}
	if cfg.Evaluation.Parallel {
		engineOpts = append(engineOpts, automation.WithParallel(cfg.Evaluation.MaxParallelism))
	}
	engine, err := automation.NewEngine(engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	service, err := api.NewService(engine, store.New(queries),
		api.WithLogger(logger),
		api.WithLocale(automation.ParseLanguage(cfg.Evaluation.Locale)),
		api.WithStoreErrorHook(m.IncStoreErrors),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	authenticator := auth.NewAuthenticator(secrets, queries,
		auth.WithLogger(logger),
		auth.WithFailureHook(m.IncAuthFailures),
	)

	grpcServer, err := server.NewGRPCServer(cfg, service, authenticator, m, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.InfoContext(ctx, "starting automata", "version", Version,
		"host", cfg.Server.Host, "port", cfg.Server.Port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
		return grpcServer.Shutdown(context.Background())
	}
}
