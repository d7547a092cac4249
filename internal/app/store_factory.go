package app

import (
	"strings"

	"github.com/avolkhin/sqlarena/internal/store"
	"github.com/avolkhin/sqlarena/internal/store/postgres"
	"github.com/avolkhin/sqlarena/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.MetadataStore, error) {
	if strings.HasPrefix(dsn, "postgres") {
		return postgres.NewPostgresStore(dsn, migrationsDir)
	}
	return sqlite.NewSQLiteStore(dsn, migrationsDir)
}
