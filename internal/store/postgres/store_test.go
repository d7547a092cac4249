package postgres

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/avolkhin/sqlarena/internal/models"
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping postgres store tests. Use -short=false to run them.")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "arena_meta",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "admin",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf(
		"postgres://postgres:admin@%s:%d/arena_meta?sslmode=disable",
		host, port.Int(),
	)

	s, err := NewPostgresStore(dsn, "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		container.Terminate(ctx)
	}

	return s, cleanup
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	comp := &models.Competition{
		CreatorID:      10,
		Name:           "Autumn SQL Cup",
		Description:    "warmup round",
		StartTime:      1000,
		EndTime:        2000,
		DatabaseName:   "autumn_cup",
		DatabaseScript: "CREATE TABLE t (x INTEGER)",
	}
	compID, err := s.CreateCompetition(comp)
	require.NoError(t, err)
	require.NotZero(t, compID)

	task := &models.Task{CompetitionID: compID, Title: "Find the answer", Solution: "42"}
	taskID, err := s.CreateTask(task)
	require.NoError(t, err)
	require.NotZero(t, taskID)

	t.Run("placeholder conversion survives lookups", func(t *testing.T) {
		got, err := s.GetCompetition(compID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, comp.DatabaseName, got.DatabaseName)

		gotTask, err := s.GetTask(taskID)
		require.NoError(t, err)
		require.NotNil(t, gotTask)
		assert.Equal(t, "42", gotTask.Solution)
	})

	t.Run("missing rows come back nil", func(t *testing.T) {
		got, err := s.GetCompetition(9999)
		require.NoError(t, err)
		assert.Nil(t, got)

		gotAnswer, err := s.GetAnswer(9999, 9999)
		require.NoError(t, err)
		assert.Nil(t, gotAnswer)
	})

	t.Run("duplicate database name conflicts", func(t *testing.T) {
		dup := *comp
		dup.ID = 0
		_, err := s.CreateCompetition(&dup)
		require.Error(t, err)
	})

	t.Run("upsert keeps a single row per task and user", func(t *testing.T) {
		require.NoError(t, s.UpsertAnswer(&models.Answer{
			TaskID: taskID, UserID: 7, Query: "SELECT 41", Result: "41", Score: 0, Time: 1100,
		}))
		require.NoError(t, s.UpsertAnswer(&models.Answer{
			TaskID: taskID, UserID: 7, Query: "SELECT 42", Result: "42", Score: 1, Time: 1200,
		}))

		got, err := s.GetAnswer(taskID, 7)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1, got.Score)
		assert.Equal(t, int64(1200), got.Time)
	})

	t.Run("standings aggregate per user", func(t *testing.T) {
		require.NoError(t, s.UpsertAnswer(&models.Answer{
			TaskID: taskID, UserID: 8, Query: "SELECT 42", Result: "42", Score: 1, Time: 1150,
		}))

		standings, err := s.FetchStandings(compID)
		require.NoError(t, err)
		require.Len(t, standings, 2)
		assert.Equal(t, int64(8), standings[0].UserID, "earlier last answer wins the tie")
		assert.Equal(t, int64(7), standings[1].UserID)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, s.DeleteCompetition(compID))

		gotTask, err := s.GetTask(taskID)
		require.NoError(t, err)
		assert.Nil(t, gotTask)

		gotAnswer, err := s.GetAnswer(taskID, 7)
		require.NoError(t, err)
		assert.Nil(t, gotAnswer)
	})
}
