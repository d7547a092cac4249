package models

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var ErrBadDatabaseName = errors.New("database name must be a short lowercase identifier")

// State of a competition relative to the service clock.
type CompetitionState string

const (
	StatePlanned  CompetitionState = "planned"
	StateCurrent  CompetitionState = "current"
	StateFinished CompetitionState = "finished"
)

// databaseNameRegex keeps names usable as unquoted postgres identifiers.
var databaseNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

type Competition struct {
	ID             int64  `db:"id" json:"id"`
	CreatorID      int64  `db:"creator_id" json:"creator_id"`
	Name           string `db:"name" json:"name" validate:"required,max=200"`
	Description    string `db:"description" json:"description"`
	StartTime      int64  `db:"start_time" json:"start_time" validate:"required"`
	EndTime        int64  `db:"end_time" json:"end_time" validate:"required,gtfield=StartTime"`
	DatabaseName   string `db:"database_name" json:"database_name" validate:"required"`
	DatabaseScript string `db:"database_script" json:"database_script,omitempty" validate:"required"`
	Image          string `db:"image" json:"image,omitempty"`
}

func (c *Competition) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if !databaseNameRegex.MatchString(c.DatabaseName) {
		return ErrBadDatabaseName
	}
	return nil
}

// StateAt classifies the competition against a unix timestamp.
// Both window boundaries are inclusive.
func (c *Competition) StateAt(now int64) CompetitionState {
	switch {
	case now < c.StartTime:
		return StatePlanned
	case now > c.EndTime:
		return StateFinished
	default:
		return StateCurrent
	}
}
