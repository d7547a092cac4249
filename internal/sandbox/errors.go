package sandbox

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrForbidden covers denylisted statements and failed authorization
	// checks. Raised before any connection is opened.
	ErrForbidden = errors.New("statement is not allowed")

	// ErrUnreachable means the database server could not be reached.
	// Distinct from execution failures so callers can decide to retry.
	ErrUnreachable = errors.New("database server unreachable")

	// ErrExecution marks query-semantic failures, as opposed to not
	// reaching the server at all.
	ErrExecution = errors.New("query execution failed")

	// ErrNameConflict means a database with that name already exists.
	ErrNameConflict = errors.New("database name already in use")

	// ErrBusy means the database is held open by active sessions and
	// cannot be dropped right now.
	ErrBusy = errors.New("database is in use")
)

// Postgres error codes the provisioner cares about.
const (
	pqDuplicateDatabase  = "42P04"
	pqInvalidCatalogName = "3D000"
	pqObjectInUse        = "55006"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
