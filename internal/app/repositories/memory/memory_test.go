package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/app/repositories/storetest"
)

func TestMemoryStores(t *testing.T) {
	storetest.Run(t, func(t *testing.T) *repositories.Repositories {
		return NewRepositories()
	})
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	repos := NewRepositories()
	storetest.SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")

	admin, err := repos.Accounts.FindByOrgAndUsername(context.Background(), "SCH-OAK-AAAAAA", "admin")
	require.NoError(t, err)
	admin.Role = models.RoleTeacher

	again, err := repos.Accounts.FindByOrgAndUsername(context.Background(), "SCH-OAK-AAAAAA", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, again.Role)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, page(items, 0, 2))
	assert.Equal(t, []int{5}, page(items, 4, 2))
	assert.Equal(t, []int{}, page(items, 9, 2))
}
