package sandbox

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/shrimpsizemoose/trekker/logger"
)

// Provisioner creates and destroys the isolated per-competition databases.
// It runs rarely, once per competition lifecycle, so it opens plain
// sequential connections and leans on withDatabase for cleanup.
type Provisioner struct {
	server ServerConfig
}

func NewProvisioner(server ServerConfig) *Provisioner {
	return &Provisioner{server: server}
}

// Provision creates databaseName and executes the organizer-authored schema
// script inside it. A name collision comes back as ErrNameConflict so the
// organizer can pick another name; no schema runs in that case.
func (p *Provisioner) Provision(ctx context.Context, databaseName, schemaScript string) error {
	err := withDatabase(ctx, p.server, p.server.AdminDB, func(ctx context.Context, db *sqlx.DB) error {
		_, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(databaseName))
		return err
	})
	if err != nil {
		if pqCode(err) == pqDuplicateDatabase {
			return fmt.Errorf("%w: %s", ErrNameConflict, databaseName)
		}
		return fmt.Errorf("failed to create database %s: %w", databaseName, err)
	}

	err = withDatabase(ctx, p.server, databaseName, func(ctx context.Context, db *sqlx.DB) error {
		_, err := db.ExecContext(ctx, schemaScript)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to run schema script in %s: %w", databaseName, err)
	}

	logger.Info.Printf("Provisioned competition database %s", databaseName)
	return nil
}

// Deprovision drops databaseName. Dropping an absent database is a
// successful no-op so deletes stay idempotent; a database held open by
// active sessions comes back as ErrBusy and the caller must retry.
func (p *Provisioner) Deprovision(ctx context.Context, databaseName string) error {
	err := withDatabase(ctx, p.server, p.server.AdminDB, func(ctx context.Context, db *sqlx.DB) error {
		_, err := db.ExecContext(ctx, "DROP DATABASE "+pq.QuoteIdentifier(databaseName))
		return err
	})
	if err != nil {
		switch pqCode(err) {
		case pqInvalidCatalogName:
			logger.Debug.Printf("Database %s already absent, treating drop as success", databaseName)
			return nil
		case pqObjectInUse:
			return fmt.Errorf("%w: %s", ErrBusy, databaseName)
		}
		return fmt.Errorf("failed to drop database %s: %w", databaseName, err)
	}

	logger.Info.Printf("Dropped competition database %s", databaseName)
	return nil
}
