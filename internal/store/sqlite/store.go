// internal/store/sqlite/store.go
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/avolkhin/sqlarena/internal/models"
	"github.com/avolkhin/sqlarena/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL": "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGINT":    "INTEGER",
		"TRUE":      "1",
		"FALSE":     "0",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	// SQLite autoincrement forbids a separate PRIMARY KEY clause
	result = strings.ReplaceAll(result, "INTEGER PRIMARY KEY AUTOINCREMENT PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT")
	return result
}

func (s *SQLiteStore) CreateCompetition(c *models.Competition) (int64, error) {
	res, err := s.DB.Exec(`
		INSERT INTO competitions
			(creator_id, name, description, start_time, end_time,
			 database_name, database_script, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.CreatorID, c.Name, c.Description, c.StartTime, c.EndTime,
		c.DatabaseName, c.DatabaseScript, c.Image,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create competition: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) CreateTask(t *models.Task) (int64, error) {
	res, err := s.DB.Exec(`
		INSERT INTO tasks (competition_id, title, solution, image)
		VALUES (?, ?, ?, ?)
	`, t.CompetitionID, t.Title, t.Solution, t.Image)
	if err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	return res.LastInsertId()
}
