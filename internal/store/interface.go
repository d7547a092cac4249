package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/avolkhin/sqlarena/internal/models"
)

type MetadataStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateCompetition(c *models.Competition) (int64, error)
	GetCompetition(id int64) (*models.Competition, error)
	ListCompetitions() ([]models.Competition, error)
	UpdateCompetitionInfo(id int64, name, description, image string) error
	DeleteCompetition(id int64) error

	CreateTask(t *models.Task) (int64, error)
	GetTask(id int64) (*models.Task, error)
	ListTasks(competitionID int64) ([]models.Task, error)
	UpdateTask(id int64, title, solution, image string) error
	DeleteTask(id int64) error

	UpsertAnswer(a *models.Answer) error
	GetAnswer(taskID, userID int64) (*models.Answer, error)

	FetchStandings(competitionID int64) ([]models.Standing, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) GetCompetition(id int64) (*models.Competition, error) {
	var c models.Competition
	query := s.Converter(`
		SELECT id, creator_id, name, description, start_time, end_time,
		       database_name, database_script, image
		FROM competitions
		WHERE id = ?
	`)

	err := s.DB.Get(&c, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}
	return &c, nil
}

func (s *BaseStore) ListCompetitions() ([]models.Competition, error) {
	var comps []models.Competition
	err := s.DB.Select(&comps, `
		SELECT id, creator_id, name, description, start_time, end_time,
		       database_name, database_script, image
		FROM competitions
		ORDER BY start_time ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	return comps, nil
}

// UpdateCompetitionInfo touches display fields only. The database name and
// script are immutable after provisioning.
func (s *BaseStore) UpdateCompetitionInfo(id int64, name, description, image string) error {
	query := s.Converter(`
		UPDATE competitions
		SET name = ?, description = ?, image = ?
		WHERE id = ?
	`)
	if _, err := s.DB.Exec(query, name, description, image, id); err != nil {
		return fmt.Errorf("failed to update competition: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteCompetition(id int64) error {
	query := s.Converter(`DELETE FROM competitions WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete competition: %w", err)
	}
	return nil
}

func (s *BaseStore) GetTask(id int64) (*models.Task, error) {
	var t models.Task
	query := s.Converter(`
		SELECT id, competition_id, title, solution, image
		FROM tasks
		WHERE id = ?
	`)

	err := s.DB.Get(&t, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (s *BaseStore) ListTasks(competitionID int64) ([]models.Task, error) {
	var tasks []models.Task
	query := s.Converter(`
		SELECT id, competition_id, title, solution, image
		FROM tasks
		WHERE competition_id = ?
		ORDER BY id ASC
	`)

	err := s.DB.Select(&tasks, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *BaseStore) UpdateTask(id int64, title, solution, image string) error {
	query := s.Converter(`
		UPDATE tasks
		SET title = ?, solution = ?, image = ?
		WHERE id = ?
	`)
	if _, err := s.DB.Exec(query, title, solution, image, id); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (s *BaseStore) DeleteTask(id int64) error {
	query := s.Converter(`DELETE FROM tasks WHERE id = ?`)
	if _, err := s.DB.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// UpsertAnswer records the latest attempt for a (task, user) pair. The
// unique constraint turns concurrent resubmissions into last-write-wins
// instead of a read-then-write race.
func (s *BaseStore) UpsertAnswer(a *models.Answer) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO answers (task_id, user_id, query, result, score, time)
		VALUES (:task_id, :user_id, :query, :result, :score, :time)
		ON CONFLICT (task_id, user_id) DO UPDATE SET
		query = excluded.query,
		result = excluded.result,
		score = excluded.score,
		time = excluded.time
	`, a)
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}
	return nil
}

func (s *BaseStore) GetAnswer(taskID, userID int64) (*models.Answer, error) {
	var a models.Answer
	query := s.Converter(`
		SELECT id, task_id, user_id, query, result, score, time
		FROM answers
		WHERE task_id = ?
		AND user_id = ?
	`)

	err := s.DB.Get(&a, query, taskID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return &a, nil
}

// FetchStandings aggregates answers per user for a competition, ordered for
// the leaderboard: best total first, earlier last submission breaking ties.
func (s *BaseStore) FetchStandings(competitionID int64) ([]models.Standing, error) {
	query := s.Converter(`
		SELECT
			a.user_id,
			SUM(a.score) AS total_score,
			MAX(a.time) AS last_time
		FROM answers a
		JOIN tasks t ON t.id = a.task_id
		WHERE t.competition_id = ?
		GROUP BY a.user_id
		ORDER BY total_score DESC, last_time ASC, a.user_id ASC
	`)

	var standings []models.Standing
	err := s.DB.Select(&standings, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}
	return standings, nil
}
