package models

import "github.com/go-playground/validator/v10"

// Placeholders substituted for withheld task content in participant responses.
const (
	HiddenSolution = "<solution hidden>"
	HiddenTitle    = "<task hidden>"
)

type Task struct {
	ID            int64  `db:"id" json:"id"`
	CompetitionID int64  `db:"competition_id" json:"competition_id" validate:"required"`
	Title         string `db:"title" json:"title" validate:"required"`
	Solution      string `db:"solution" json:"solution" validate:"required"`
	Image         string `db:"image" json:"image,omitempty"`
}

func (t *Task) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}

// Redacted returns a copy safe to show to a non-owner. The solution is
// always withheld; outside the competition window the title goes too.
func (t Task) Redacted(hideTitle bool) Task {
	t.Solution = HiddenSolution
	if hideTitle {
		t.Title = HiddenTitle
	}
	return t
}
