package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"farmsim-backend/internal/config"
	"farmsim-backend/internal/database"
	"farmsim-backend/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// rootCmd is the server binary; it runs serve when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Farm management backend",
	Long: `Farm management backend for farming-simulation saves.

Available subcommands:
  serve   - Migrate the store and serve the HTTP API
  migrate - Migrate the store and exit
  seed    - Load the demo account and farm`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the store and serve the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the store and exit",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo account and farm",
	Long: `Create demo@farm.local with one farm, three fields, a tractor and
an opening balance. Nothing is written when the demo user already exists.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config, builds the logger and opens a migrated store.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if err := cfg.Validate(log); err != nil {
		return nil, nil, nil, err
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, _, _, err := bootstrap()
	return err
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	return newServices(db, log).seeder.Demo(cmd.Context())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}

	svc := newServices(db, log)
	if cfg.SeedDemo {
		if err := svc.seeder.Demo(cmd.Context()); err != nil {
			logging.LogError(log, "main", "runServe", "seed demo data", nil, err)
		}
	}

	app := newApp(cfg, log, svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	log.WithField("port", cfg.HTTPPort).Info("server listening")
	return app.Listen(":" + cfg.HTTPPort)
}
