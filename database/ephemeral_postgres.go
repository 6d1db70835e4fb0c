package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stapelberg/postgrestest"
)

// EphemeralPostgres wraps a throwaway PostgreSQL instance for development
// and integration testing. Everything is destroyed on Cleanup.
type EphemeralPostgres struct {
	server *postgrestest.Server
}

// SetupEphemeralPostgres starts an ephemeral PostgreSQL instance and returns
// an open connection to a fresh database on it
func SetupEphemeralPostgres() (*EphemeralPostgres, *sql.DB, error) {
	Logger.Info("Starting ephemeral PostgreSQL server...")

	ctx := context.Background()

	// Start the ephemeral PostgreSQL server in a temporary directory
	pgt, err := postgrestest.Start(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start ephemeral postgres: %w", err)
	}

	// Create a new database for the application
	goconvertDSN, err := pgt.CreateDatabase(ctx)
	if err != nil {
		pgt.Cleanup()
		return nil, nil, fmt.Errorf("failed to create goconvert database: %w", err)
	}
	Logger.Info("Ephemeral PostgreSQL server started", "dsn", goconvertDSN)

	sqlDB, err := sql.Open("postgres", goconvertDSN)
	if err != nil {
		pgt.Cleanup()
		return nil, nil, fmt.Errorf("failed to open ephemeral database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		pgt.Cleanup()
		return nil, nil, fmt.Errorf("failed to ping ephemeral database: %w", err)
	}

	return &EphemeralPostgres{server: pgt}, sqlDB, nil
}

// Cleanup shuts down the ephemeral server and removes its data
func (e *EphemeralPostgres) Cleanup() {
	if e.server != nil {
		e.server.Cleanup()
		e.server = nil
	}
}
