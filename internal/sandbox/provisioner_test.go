package sandbox

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping sandbox integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// setupServer starts a disposable postgres server and returns its config.
func setupServer(t *testing.T) (ServerConfig, func()) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "postgres",
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

	cfg := ServerConfig{
		Host:           host,
		Port:           port.Int(),
		User:           "postgres",
		Password:       "admin",
		AdminDB:        "postgres",
		TimeoutSeconds: 10,
	}

	cleanup := func() {
		container.Terminate(ctx)
	}

	return cfg, cleanup
}

// heldConnection keeps an idle session open against a database.
func heldConnection(cfg ServerConfig, database string) (*sqlx.DB, error) {
	return sqlx.Connect("postgres", cfg.dsn(database))
}

func TestProvisionRoundTrip(t *testing.T) {
	cfg, cleanup := setupServer(t)
	defer cleanup()

	ctx := context.Background()
	p := NewProvisioner(cfg)
	g := NewGateway(cfg, NewDenylist(DefaultDenylist))

	script := `
		CREATE TABLE answers_to_everything (answer INTEGER);
		INSERT INTO answers_to_everything VALUES (42);
	`

	t.Run("provision builds schema", func(t *testing.T) {
		require.NoError(t, p.Provision(ctx, "comp_roundtrip", script))

		out, err := g.Execute(ctx, "comp_roundtrip", "SELECT answer FROM answers_to_everything", nil)
		require.NoError(t, err)
		assert.Contains(t, out, "42")
	})

	t.Run("provision again conflicts", func(t *testing.T) {
		err := p.Provision(ctx, "comp_roundtrip", script)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNameConflict)
	})

	t.Run("deprovision removes database", func(t *testing.T) {
		require.NoError(t, p.Deprovision(ctx, "comp_roundtrip"))

		_, err := g.Execute(ctx, "comp_roundtrip", "SELECT 1", nil)
		require.Error(t, err)
	})

	t.Run("deprovision of absent database is a no-op", func(t *testing.T) {
		require.NoError(t, p.Deprovision(ctx, "comp_roundtrip"))
		require.NoError(t, p.Deprovision(ctx, "never_existed"))
	})
}

func TestProvisionBadScript(t *testing.T) {
	cfg, cleanup := setupServer(t)
	defer cleanup()

	ctx := context.Background()
	p := NewProvisioner(cfg)

	err := p.Provision(ctx, "comp_bad_script", "THIS IS NOT SQL")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNameConflict)

	// the half-provisioned database must not block a retry forever
	require.NoError(t, p.Deprovision(ctx, "comp_bad_script"))
}

func TestDeprovisionBusy(t *testing.T) {
	cfg, cleanup := setupServer(t)
	defer cleanup()

	ctx := context.Background()
	p := NewProvisioner(cfg)

	require.NoError(t, p.Provision(ctx, "comp_busy", "CREATE TABLE t (x INTEGER)"))

	// hold a session open so the drop sees the database in use
	held, err := heldConnection(cfg, "comp_busy")
	require.NoError(t, err)
	defer held.Close()

	err = p.Deprovision(ctx, "comp_busy")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBusy)

	held.Close()
	require.NoError(t, p.Deprovision(ctx, "comp_busy"))
}
