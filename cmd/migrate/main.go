// Command migrate applies the embedded schema migrations.
//
// Usage:
//
//	migrate -dsn postgres://... up
//	migrate status
//
// The DSN defaults to RH_PG_DSN.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/migrate"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/migrations"
)

func main() {
	var (
		dsn     = flag.String("dsn", os.Getenv("RH_PG_DSN"), "PostgreSQL DSN (defaults to RH_PG_DSN)")
		timeout = flag.Duration("timeout", 30*time.Second, "operation timeout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] up|down|status\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *dsn == "" {
		log.Fatal("migrate: no DSN; set -dsn or RH_PG_DSN")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("migrate: open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("migrate: ping database: %v", err)
	}

	mgr := migrate.NewManager(db, migrations.FS)

	switch cmd {
	case "up":
		if err := mgr.Up(ctx); err != nil {
			log.Fatalf("migrate: up: %v", err)
		}
		log.Println("migrations applied")
	case "down":
		if err := mgr.Down(ctx); err != nil {
			log.Fatalf("migrate: down: %v", err)
		}
		log.Println("rolled back one migration")
	case "status":
		applied, err := mgr.Status(ctx)
		if err != nil {
			log.Fatalf("migrate: status: %v", err)
		}
		if len(applied) == 0 {
			fmt.Println("no migrations applied")
			return
		}
		for _, name := range applied {
			fmt.Println(name)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}
