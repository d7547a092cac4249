package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/avolkhin/sqlarena/internal/models"
	"github.com/avolkhin/sqlarena/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

func (s *PostgresStore) CreateCompetition(c *models.Competition) (int64, error) {
	var id int64
	err := s.DB.QueryRow(`
		INSERT INTO competitions
			(creator_id, name, description, start_time, end_time,
			 database_name, database_script, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, c.CreatorID, c.Name, c.Description, c.StartTime, c.EndTime,
		c.DatabaseName, c.DatabaseScript, c.Image,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create competition: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) CreateTask(t *models.Task) (int64, error) {
	var id int64
	err := s.DB.QueryRow(`
		INSERT INTO tasks (competition_id, title, solution, image)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, t.CompetitionID, t.Title, t.Solution, t.Image).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	return id, nil
}
