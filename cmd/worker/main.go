package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/enquiry-crm/internal/config"
	"github.com/ignite/enquiry-crm/internal/pkg/distlock"
	"github.com/ignite/enquiry-crm/internal/pkg/logger"
	"github.com/ignite/enquiry-crm/internal/repository/postgres"
	"github.com/ignite/enquiry-crm/internal/service/backup"
	"github.com/ignite/enquiry-crm/internal/storage"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const scheduledLockKey = "backup:scheduled"

func main() {
	log.Println("Starting enquiry CRM snapshot worker...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.Redact())

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// One connection for the advisory lock plus one for the snapshot itself.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	pingCancel()
	log.Println("Connected to database")

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		log.Printf("[lock] using redis at %s", cfg.Redis.Addr)
	} else {
		log.Println("[lock] using postgres advisory lock")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archive, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot archive: %v", err)
	}

	backupSvc := backup.NewService(postgres.NewEnquiryRepo(db), postgres.NewBackupRepo(db), archive, backup.Options{
		Retain:             cfg.Backup.Retain,
		NewEnquiryCooldown: cfg.Backup.NewEnquiryCooldown(),
		UpdateCooldown:     cfg.Backup.UpdateCooldown(),
	})

	runScheduled := func() {
		lock := distlock.NewLock(redisClient, db, scheduledLockKey, cfg.Backup.LockTTL())
		err := distlock.Run(ctx, lock, func(ctx context.Context) error {
			result, err := backupSvc.CreateSnapshot(ctx, backup.TriggerScheduled)
			if err != nil {
				return err
			}
			if result.Skipped {
				logger.Info("scheduled snapshot skipped", "reason", result.Reason)
				return nil
			}
			logger.Info("scheduled snapshot created", "id", result.Snapshot.ID, "size", result.Size)
			return nil
		})
		switch {
		case errors.Is(err, distlock.ErrLockNotAcquired):
			logger.Debug("scheduled snapshot running elsewhere")
		case err != nil:
			logger.Error("scheduled snapshot failed", "error", err)
		}
	}

	go func() {
		runScheduled()

		ticker := time.NewTicker(cfg.Backup.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runScheduled()
			}
		}
	}()

	log.Printf("Worker running (snapshot every %s)...", cfg.Backup.Interval())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	cancel()

	// Let an in-flight snapshot observe the cancellation and release its lock.
	time.Sleep(2 * time.Second)
	log.Println("Worker stopped")
}
