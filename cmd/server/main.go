package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/printflow/backoffice/internal/config"
	"github.com/printflow/backoffice/internal/db"
	"github.com/printflow/backoffice/internal/jobs"
	"github.com/printflow/backoffice/internal/logger"
	"github.com/printflow/backoffice/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Print-shop back-office API server",
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		cfg := config.Load()
		if err := logger.Setup(cfg.Log); err != nil {
			return err
		}
		return db.RunSQLMigrations(db.NormalizeDSN(cfg.DatabaseDSN))
	},
}

func serve() error {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := logger.Setup(cfg.Log); err != nil {
		return err
	}
	log := logger.WithComponent("server")

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	runner := jobs.NewRunner()
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn, runner)}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	// let in-flight background jobs finish their compensation before exiting
	runner.Wait()
	return nil
}

func main() {
	rootCmd.AddCommand(migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
