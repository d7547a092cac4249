// Package authz holds the ownership predicates. Pure functions over
// already-resolved entities, so they are testable without a database.
package authz

import "github.com/avolkhin/sqlarena/internal/models"

// IsOwner reports whether the principal created the competition. Every
// mutating or database-administrative operation on a competition or its
// tasks must pass this check.
func IsOwner(c *models.Competition, p models.Principal) bool {
	if c == nil {
		return false
	}
	return c.CreatorID == p.ID
}

// CanAdministerTask walks the ownership chain task -> competition -> creator.
func CanAdministerTask(t *models.Task, c *models.Competition, p models.Principal) bool {
	if t == nil || c == nil {
		return false
	}
	return t.CompetitionID == c.ID && IsOwner(c, p)
}
