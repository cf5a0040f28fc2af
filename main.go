package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"auto_trainer/config"
	"auto_trainer/infrastructure/cache"
	"auto_trainer/infrastructure/db"
	"auto_trainer/infrastructure/metrics"
	"auto_trainer/router"
	"auto_trainer/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	configPath string
	seedDir    string
)

var rootCmd = &cobra.Command{
	Use:           "auto_trainer <command>",
	Short:         "Trainer configuration service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		gdb, err := db.Open(config.AppConfig.DB, config.AppConfig.IsProduction())
		if err != nil {
			return err
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		config.AppLogger.Info("migration finished", "driver", config.AppConfig.DB.Driver)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Apply seed files that have not been applied yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		if err := db.InitDB(); err != nil {
			return err
		}
		defer db.Close()

		applied, err := service.NewSeedService(db.DB, seedDir, nil).Run(cmd.Context())
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No new seed files.")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to the YAML config file")
	seedCmd.Flags().StringVar(&seedDir, "dir", "seed", "directory holding NNN_name.yaml seed files")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func loadConfig() error {
	if err := config.InitConfig(configPath); err != nil {
		return fmt.Errorf("init config failed: %w", err)
	}
	config.InitLogger()
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	cfg := config.AppConfig
	logger := config.AppLogger

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.InitDB(); err != nil {
		return fmt.Errorf("init database failed: %w", err)
	}
	defer db.Close()

	detailCache, err := newDetailCache(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer config.CloseRedis()

	m := metrics.New()
	trainers := service.NewTrainerService(db.DB,
		service.WithDetailCache(detailCache),
		service.WithMetrics(m),
	)
	engine := router.SetupRouter(router.Deps{
		Trainers:  trainers,
		Pipelines: service.NewPipelineService(trainers, nil, nil),
		Datasets:  service.NewEvaluationDatasetService(db.DB, service.NewDatasetStorage(cfg.Storage.Root), m, nil),
		Metrics:   m,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server", "port", cfg.Server.Port, "env", cfg.App.Env, "cache", cfg.Cache.Driver)
	return router.Run(ctx, srv, cfg.Server.ShutdownTimeout)
}

func newDetailCache(ctx context.Context, cfg *config.Config) (cache.DetailCache, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.Cache.Driver), cache.DriverRedis) {
		if err := config.InitRedis(ctx); err != nil {
			return nil, fmt.Errorf("init redis failed: %w", err)
		}
	}
	detailCache, err := cache.New(cfg.Cache.Driver, cfg.Cache.TTL, config.RedisClient)
	if err != nil {
		return nil, fmt.Errorf("init detail cache failed: %w", err)
	}
	return detailCache, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
