package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avolkhin/sqlarena/internal/models"
)

func TestIsOwner(t *testing.T) {
	comp := &models.Competition{ID: 1, CreatorID: 10}

	assert.True(t, IsOwner(comp, models.Principal{ID: 10, Role: models.RoleOrganizer}))
	assert.False(t, IsOwner(comp, models.Principal{ID: 11, Role: models.RoleOrganizer}))
	assert.False(t, IsOwner(nil, models.Principal{ID: 10}))

	// ownership is about identity, not role
	assert.True(t, IsOwner(comp, models.Principal{ID: 10, Role: models.RoleUser}))
}

func TestCanAdministerTask(t *testing.T) {
	comp := &models.Competition{ID: 1, CreatorID: 10}
	task := &models.Task{ID: 5, CompetitionID: 1}
	creator := models.Principal{ID: 10, Role: models.RoleOrganizer}

	assert.True(t, CanAdministerTask(task, comp, creator))
	assert.False(t, CanAdministerTask(task, comp, models.Principal{ID: 11}))
	assert.False(t, CanAdministerTask(nil, comp, creator))
	assert.False(t, CanAdministerTask(task, nil, creator))

	otherComp := &models.Competition{ID: 2, CreatorID: 10}
	assert.False(t, CanAdministerTask(task, otherComp, creator), "task must belong to the resolved competition")
}
