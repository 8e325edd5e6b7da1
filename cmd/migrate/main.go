package main

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	"github.com/hackgods/vitalpoint-assistant/internal/db"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))

	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Error("POSTGRES_DSN is required")
		os.Exit(1)
	}

	m, err := db.NewMigrator(dsn)
	if err != nil {
		logger.Error("create migrator", "error", err)
		os.Exit(1)
	}
	defer func() { _, _ = m.Close() }()

	// migrate force <version>
	if len(os.Args) >= 3 && os.Args[1] == "force" {
		v, err := strconv.Atoi(os.Args[2])
		if err != nil {
			logger.Error("invalid version", "error", err)
			os.Exit(1)
		}
		if err := m.Force(v); err != nil {
			logger.Error("force version", "error", err)
			os.Exit(1)
		}
		logger.Info("forced schema version", "version", v)
		return
	}

	if len(os.Args) >= 2 && os.Args[1] == "down" {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("migrate down", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations rolled back")
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migrate up", "error", err)
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Error("read schema version", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations complete", "version", version, "dirty", dirty)
}
