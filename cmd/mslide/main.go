package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/mslide/internal/config"
	"github.com/xxxsen/mslide/internal/db"
	"github.com/xxxsen/mslide/internal/filestore"
	"github.com/xxxsen/mslide/internal/handler"
	"github.com/xxxsen/mslide/internal/job"
	"github.com/xxxsen/mslide/internal/metrics"
	"github.com/xxxsen/mslide/internal/middleware"
	"github.com/xxxsen/mslide/internal/repo"
	"github.com/xxxsen/mslide/internal/schedule"
	"github.com/xxxsen/mslide/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "mslide",
		Short: "mslide backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run mslide server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(database)
	deckRepo := repo.NewDeckRepo(database)
	slideRepo := repo.NewSlideRepo(database)
	versionRepo := repo.NewVersionRepo(database)
	lineageRepo := repo.NewLineageRepo(database)
	conflictRepo := repo.NewConflictRepo(database)
	shareRepo := repo.NewShareRepo(database)
	libraryRepo := repo.NewLibraryRepo(database)
	assetRepo := repo.NewAssetRepo(database)

	m := metrics.New()
	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	deckService := service.NewDeckService(database, deckRepo, slideRepo, shareRepo, userRepo)
	versionService := service.NewVersionService(
		database, deckRepo, slideRepo, versionRepo, lineageRepo, conflictRepo, userRepo,
		m, cfg.Versions.PruneThreshold, cfg.Versions.PruneKeep,
	)
	libraryService := service.NewLibraryService(libraryRepo, deckService)
	assetService := service.NewAssetService(assetRepo)
	importService := service.NewImportService(deckService)
	exportService := service.NewExportService(deckService, versionService)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	maxUpload := cfg.MaxUploadMB * 1024 * 1024

	deps := handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authService),
		Decks:          handler.NewDeckHandler(deckService),
		Versions:       handler.NewVersionHandler(versionService),
		Merges:         handler.NewMergeHandler(versionService),
		Library:        handler.NewLibraryHandler(libraryService),
		Shares:         handler.NewShareHandler(deckService),
		Assets:         handler.NewAssetHandler(assetService),
		Files:          handler.NewFileHandler(store, assetService, maxUpload),
		Import:         handler.NewImportHandler(importService, maxUpload),
		Export:         handler.NewExportHandler(exportService),
		JWTSecret:      []byte(cfg.JWTSecret),
		AuthRateWindow: time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	sched := schedule.NewCronScheduler()
	if !cfg.AutoSave.Disable {
		if err := sched.AddJob(job.NewAutoSaveJob(versionService, cfg.AutoSave.MaxPerSweep), cfg.AutoSave.Cron); err != nil {
			return fmt.Errorf("schedule auto save: %w", err)
		}
	}
	if !cfg.ConflictCleanup.Disable {
		retain := time.Duration(cfg.ConflictCleanup.RetainHours) * time.Hour
		if err := sched.AddJob(job.NewConflictCleanupJob(conflictRepo, retain), cfg.ConflictCleanup.Cron); err != nil {
			return fmt.Errorf("schedule conflict cleanup: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)
	defer sched.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
