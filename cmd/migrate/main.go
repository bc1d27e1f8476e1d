package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"underwriting-backend/internal/adapter/repository/mysql"
	"underwriting-backend/internal/config"
	"underwriting-backend/internal/infrastructure/db"
	"underwriting-backend/internal/infrastructure/logger"
)

// migrate creates or updates the schema, then folds legacy workflow rows
// into the canonical status.
func main() {
	skipLegacy := flag.Bool("skip-legacy", false, "only run schema migration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logger.Init(cfg.LogLevel)

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), cfg.DBLogLevel)
	if err != nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	ctx := context.Background()

	if err := mysql.AutoMigrate(ctx, gdb); err != nil {
		log.Error("auto migrate", "err", err)
		os.Exit(1)
	}
	log.Info("schema up to date")

	if *skipLegacy {
		return
	}
	n, err := mysql.MigrateLegacyWorkflow(ctx, gdb)
	if err != nil {
		log.Error("legacy workflow migration", "err", err)
		os.Exit(1)
	}
	log.Info("legacy workflow migration done", "rows_changed", n)
}
