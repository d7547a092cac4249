package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ServerConfig points at the database server that hosts the isolated
// per-competition databases. AdminDB is the maintenance catalog used for
// create/drop statements.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	AdminDB  string `toml:"admin_db"`
	SSLMode  string `toml:"ssl_mode"`

	TimeoutSeconds int `toml:"timeout_seconds"`
}

func (c ServerConfig) dsn(database string) string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, database, sslmode)
}

func (c ServerConfig) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// withDatabase opens a short-lived connection to one database, runs fn and
// always closes the connection, whatever exit path fn takes. Every
// administrative and query call in this package goes through here; nothing
// else opens connections to the sandbox server.
func withDatabase(ctx context.Context, cfg ServerConfig, database string, fn func(context.Context, *sqlx.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.dsn(database))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer db.Close()

	return fn(ctx, db)
}
