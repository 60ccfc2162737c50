package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ignite/enquiry-crm/internal/api"
	"github.com/ignite/enquiry-crm/internal/config"
	"github.com/ignite/enquiry-crm/internal/datanorm"
	"github.com/ignite/enquiry-crm/internal/pkg/logger"
	"github.com/ignite/enquiry-crm/internal/repository/postgres"
	"github.com/ignite/enquiry-crm/internal/service/backup"
	"github.com/ignite/enquiry-crm/internal/service/customfield"
	"github.com/ignite/enquiry-crm/internal/service/duplicates"
	"github.com/ignite/enquiry-crm/internal/service/maintenance"
	"github.com/ignite/enquiry-crm/internal/storage"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	log.Println("Starting enquiry CRM admin server...")

	cfg, err := config.LoadFromEnv(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.Redact())
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("[db] connected to ...@%s/...", extractHost(cfg.Database.URL))

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		log.Printf("[redis] using %s for health checks", cfg.Redis.Addr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archive, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot archive: %v", err)
	}
	if archive != nil {
		log.Printf("[storage] archiving snapshots to %s", archive.Name())
	} else {
		log.Println("[storage] snapshot archive disabled")
	}

	enquiryRepo := postgres.NewEnquiryRepo(db)
	backupRepo := postgres.NewBackupRepo(db)

	backupSvc := backup.NewService(enquiryRepo, backupRepo, archive, backup.Options{
		Retain:             cfg.Backup.Retain,
		NewEnquiryCooldown: cfg.Backup.NewEnquiryCooldown(),
		UpdateCooldown:     cfg.Backup.UpdateCooldown(),
	})
	customFieldSvc := customfield.NewService(postgres.NewCustomFieldRepo(db))

	handlers := api.NewHandlers(api.Services{
		Importer:     datanorm.NewImporter(enquiryRepo, backupSvc),
		Duplicates:   duplicates.NewService(enquiryRepo, backupSvc),
		Backups:      backupSvc,
		CustomFields: customFieldSvc,
		Maintenance:  maintenance.NewService(enquiryRepo, postgres.NewMaintenanceRepo(db), backupSvc),
	}, cfg.Import.MaxUploadBytes())

	health := api.NewHealthChecker(db, redisClient, archive, backupRepo, 2*cfg.Backup.Interval())

	server := api.NewServer(cfg.Server, api.RouteDeps{
		Handlers:       handlers,
		CustomFields:   api.NewCustomFieldsAPI(customFieldSvc),
		Health:         health,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

// openDB opens the pool with a connect timeout and a statement timeout so a
// stuck query cannot pin a connection forever.
func openDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required")
	}
	dbURL := cfg.URL
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	if !strings.Contains(dbURL, "connect_timeout") {
		dbURL += sep + "connect_timeout=5"
		sep = "&"
	}
	dbURL += sep + "options=-c%20statement_timeout%3D60000"

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
