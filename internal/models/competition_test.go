package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCompetition() *Competition {
	return &Competition{
		CreatorID:      1,
		Name:           "Autumn SQL Cup",
		StartTime:      1000,
		EndTime:        2000,
		DatabaseName:   "autumn_cup",
		DatabaseScript: "CREATE TABLE t (x INTEGER)",
	}
}

func TestCompetitionStateAt(t *testing.T) {
	c := validCompetition()

	tests := []struct {
		name string
		now  int64
		want CompetitionState
	}{
		{"before start", 999, StatePlanned},
		{"exactly at start", 1000, StateCurrent},
		{"inside window", 1500, StateCurrent},
		{"exactly at end", 2000, StateCurrent},
		{"after end", 2001, StateFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.StateAt(tt.now))
		})
	}
}

func TestCompetitionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validCompetition().Validate())
	})

	t.Run("end before start", func(t *testing.T) {
		c := validCompetition()
		c.StartTime, c.EndTime = c.EndTime, c.StartTime
		require.Error(t, c.Validate())
	})

	t.Run("end equals start", func(t *testing.T) {
		c := validCompetition()
		c.EndTime = c.StartTime
		require.Error(t, c.Validate())
	})

	t.Run("database name rejects injection material", func(t *testing.T) {
		for _, name := range []string{"", "Has-Caps", "with space", "x;drop", `a"b`, "1starts_with_digit"} {
			c := validCompetition()
			c.DatabaseName = name
			assert.Error(t, c.Validate(), "name %q should be rejected", name)
		}
	})
}

func TestTaskRedacted(t *testing.T) {
	task := Task{ID: 7, CompetitionID: 1, Title: "Find the answer", Solution: "42"}

	t.Run("solution always hidden", func(t *testing.T) {
		r := task.Redacted(false)
		assert.Equal(t, HiddenSolution, r.Solution)
		assert.Equal(t, task.Title, r.Title)
	})

	t.Run("title hidden on request", func(t *testing.T) {
		r := task.Redacted(true)
		assert.Equal(t, HiddenSolution, r.Solution)
		assert.Equal(t, HiddenTitle, r.Title)
	})

	t.Run("original untouched", func(t *testing.T) {
		_ = task.Redacted(true)
		assert.Equal(t, "42", task.Solution)
	})
}
