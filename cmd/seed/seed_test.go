package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/civic-server/internal/models"
)

func TestDemoUsers(t *testing.T) {
	users := demoUsers("example.org")
	assert.Len(t, users, 2+2*len(seededDepartments))

	seen := map[string]bool{}
	workers := map[models.Department]bool{}
	admins := map[models.Department]bool{}
	for _, u := range users {
		assert.False(t, seen[u.Email], u.Email)
		seen[u.Email] = true
		switch u.Role {
		case models.RoleWorker:
			require.NotNil(t, u.Department)
			workers[*u.Department] = true
		case models.RoleDeptAdmin:
			require.NotNil(t, u.Department)
			admins[*u.Department] = true
		}
	}
	for _, d := range seededDepartments {
		assert.True(t, workers[d], d)
		assert.True(t, admins[d], d)
	}
	assert.True(t, seen["admin.nagarnigam@example.org"])
}

func TestTokenUser(t *testing.T) {
	u, err := tokenUser("a@x.com", "DEPT_ADMIN", "nagar nigam")
	require.NoError(t, err)
	require.NotNil(t, u.Department)
	assert.Equal(t, models.DepartmentNagarNigam, *u.Department)

	_, err = tokenUser("", "CITIZEN", "")
	assert.Error(t, err)

	_, err = tokenUser("a@x.com", "WORKER", "Fire")
	assert.Error(t, err)
}
