package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/auth"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/config"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/document"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/employee"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/httpapi"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/obs"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/stream"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("config: RH_JWT_SECRET is not set")
	}
	documentKey, err := cfg.DocumentKeyBytes()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Stores: PostgreSQL when a DSN is configured, in-memory otherwise
	// (useful for local development without a database).
	var db *sql.DB
	var accounts auth.Store = auth.NewMemoryStore()
	var documents document.Store = document.NewMemoryStore()
	var directory employee.Directory = employee.NewMemoryDirectory()
	if cfg.PGDSN != "" {
		db, err = sql.Open("pgx", cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		accounts = auth.NewPGStore(db)
		documents = document.NewPGStore(db)
		directory = employee.NewPGDirectory(db)
	} else {
		log.Println("RH_PG_DSN not set; using in-memory stores")
	}

	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret),
		auth.WithIssuer(cfg.Issuer),
		auth.WithAccessTTL(cfg.AccessTTL),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	cipher, err := document.NewCipher(documentKey)
	if err != nil {
		log.Fatalf("document cipher: %v", err)
	}

	events := stream.New()
	authSvc := auth.NewService(accounts, tokens, auth.WithEvents(events))
	docSvc := document.NewService(documents, directory, cipher, document.WithEvents(events))

	api := httpapi.New(httpapi.Config{
		Version:               version,
		ReadyProbe:            httpapi.ReadyProbe{DB: db},
		Auth:                  authSvc,
		Documents:             docSvc,
		Employees:             directory,
		Events:                events,
		ExternalGatewaySecret: cfg.ExternalGatewaySecret,
		RateLimitPerSecond:    cfg.RateLimitPerSecond,
		RateLimitBurst:        cfg.RateLimitBurst,
		MaxBodyBytes:          cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting rh-management-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
