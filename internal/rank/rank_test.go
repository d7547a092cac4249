package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avolkhin/sqlarena/internal/models"
)

func TestAssignPlaces(t *testing.T) {
	t.Run("sequential places", func(t *testing.T) {
		standings := []models.Standing{
			{UserID: 1, TotalScore: 5, LastTime: 100},
			{UserID: 2, TotalScore: 3, LastTime: 90},
			{UserID: 3, TotalScore: 3, LastTime: 95},
		}

		placed := AssignPlaces(standings)
		assert.Equal(t, []int{1, 2, 3}, places(placed))
	})

	t.Run("full ties still get increasing places", func(t *testing.T) {
		standings := []models.Standing{
			{UserID: 1, TotalScore: 3, LastTime: 100},
			{UserID: 2, TotalScore: 3, LastTime: 100},
			{UserID: 3, TotalScore: 3, LastTime: 100},
		}

		placed := AssignPlaces(standings)
		assert.Equal(t, []int{1, 2, 3}, places(placed))
	})

	t.Run("input untouched", func(t *testing.T) {
		standings := []models.Standing{{UserID: 1, TotalScore: 1, LastTime: 1}}
		AssignPlaces(standings)
		assert.Zero(t, standings[0].Place)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, AssignPlaces(nil))
	})
}

func TestForUser(t *testing.T) {
	placed := AssignPlaces([]models.Standing{
		{UserID: 1, TotalScore: 5, LastTime: 100},
		{UserID: 2, TotalScore: 3, LastTime: 90},
	})

	own, ok := ForUser(placed, 2)
	assert.True(t, ok)
	assert.Equal(t, 2, own.Place)
	assert.Equal(t, 3, own.TotalScore)

	_, ok = ForUser(placed, 99)
	assert.False(t, ok)
}

func places(standings []models.Standing) []int {
	out := make([]int, len(standings))
	for i, s := range standings {
		out[i] = s.Place
	}
	return out
}
