package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cv-site/internal/adapter/api"
	"cv-site/internal/adapter/repository"
	"cv-site/internal/auth"
	"cv-site/internal/config"
	"cv-site/internal/domain"
	"cv-site/internal/infrastructure/migration"
	"cv-site/internal/usecase"
	infra "cv-site/pkg/infrastructure"

	"github.com/spf13/cobra"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "cvstore",
	Short: "CV data service",
	Long: `cvstore serves the CV aggregate and its admin API.

With CV_DATABASE_URL set the data lives in Postgres; otherwise an
in-memory store is used and lost on exit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load("8081"); err != nil {
			return err
		}
		cfg.Logger()
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the CV data API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	tokenAdmin bool
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <email>",
	Short: "Mint a development access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := auth.NewVerifier(cfg.JWTSecret).Issue(args[0], tokenAdmin, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "Grant admin rights")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(serveCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	app := api.NewHandler(repo, auth.NewVerifier(cfg.JWTSecret)).App(api.Options{
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
	})

	go func() {
		slog.Info("cv store listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	return app.Shutdown()
}

func openRepository(ctx context.Context) (usecase.CVRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("CV_DATABASE_URL not set, using in-memory store")
		return repository.NewMemory(domain.CvDocument{}), func() {}, nil
	}

	pool, err := infra.NewCVPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migration.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repository.NewCVRepo(pool), pool.Close, nil
}
