// Package rank assigns leaderboard places to aggregated standings.
package rank

import "github.com/avolkhin/sqlarena/internal/models"

// AssignPlaces numbers standings 1..N in the order the store returns them
// (total score desc, last time asc). Full ties still get sequentially
// increasing places; there is no shared-rank handling.
func AssignPlaces(standings []models.Standing) []models.Standing {
	out := make([]models.Standing, len(standings))
	copy(out, standings)
	for i := range out {
		out[i].Place = i + 1
	}
	return out
}

// ForUser picks one user's entry out of placed standings.
func ForUser(standings []models.Standing, userID int64) (models.Standing, bool) {
	for _, s := range standings {
		if s.UserID == userID {
			return s, true
		}
	}
	return models.Standing{}, false
}
