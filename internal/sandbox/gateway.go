package sandbox

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Runner is what the service layer sees of the gateway. Kept small so
// evaluator logic can be tested against a stub.
type Runner interface {
	Execute(ctx context.Context, databaseName, statement string, authorize func() error) (string, error)
}

// Gateway vets a single SQL statement and runs it against one isolated
// competition database over a short-lived connection.
type Gateway struct {
	server ServerConfig
	deny   Denylist
}

func NewGateway(server ServerConfig, deny Denylist) *Gateway {
	return &Gateway{server: server, deny: deny}
}

// Execute runs one statement against databaseName and returns the result
// set in canonical CSV form. The denylist scan and the caller-supplied
// authorize check both happen before any connection is opened; the
// connection is released on every exit path.
func (g *Gateway) Execute(ctx context.Context, databaseName, statement string, authorize func() error) (string, error) {
	if kw, blocked := g.deny.Match(statement); blocked {
		return "", fmt.Errorf("%w: contains %q", ErrForbidden, kw)
	}

	if authorize != nil {
		if err := authorize(); err != nil {
			return "", err
		}
	}

	var out string
	err := withDatabase(ctx, g.server, databaseName, func(ctx context.Context, db *sqlx.DB) error {
		rows, err := db.QueryContext(ctx, statement)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExecution, err)
		}
		defer rows.Close()

		out, err = EncodeRows(rows)
		return err
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
