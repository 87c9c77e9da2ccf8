package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
)

type fakeCache struct {
	mu      sync.Mutex
	data    map[string]string
	failGet bool
	sets    int
}

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

type countingOrgStore struct {
	OrganizationStore
	org   *models.Organization
	calls int
}

func (s *countingOrgStore) FindByCode(_ context.Context, code string) (*models.Organization, error) {
	s.calls++
	if s.org == nil || s.org.OrgCode != code {
		return nil, apperrors.ErrOrganizationNotFound
	}
	copied := *s.org
	return &copied, nil
}

func TestCachedOrganizationStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	store := &countingOrgStore{org: &models.Organization{
		ID: 7, OrgCode: "SCH-OAK-AAAAAA", InstitutionName: "Oak", InstitutionType: models.InstitutionSchool,
		Email: "oak@example.com", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	cache := &fakeCache{data: map[string]string{}}
	cached := NewCachedOrganizationStore(store, cache, time.Hour, zerolog.Nop())

	first, err := cached.FindByCode(ctx, "SCH-OAK-AAAAAA")
	require.NoError(t, err)
	second, err := cached.FindByCode(ctx, "SCH-OAK-AAAAAA")
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, first.InstitutionName, second.InstitutionName)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
}

func TestCachedOrganizationStoreDoesNotCacheMisses(t *testing.T) {
	store := &countingOrgStore{}
	cache := &fakeCache{data: map[string]string{}}
	cached := NewCachedOrganizationStore(store, cache, time.Hour, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := cached.FindByCode(context.Background(), "SCH-NONE-AAAAAA")
		assert.ErrorIs(t, err, apperrors.ErrOrganizationNotFound)
	}
	assert.Equal(t, 2, store.calls)
	assert.Zero(t, cache.sets)
}

func TestCachedOrganizationStoreFallsBackOnCacheError(t *testing.T) {
	store := &countingOrgStore{org: &models.Organization{OrgCode: "CLG-MIT-AAAAAA"}}
	cache := &fakeCache{data: map[string]string{}, failGet: true}
	cached := NewCachedOrganizationStore(store, cache, time.Hour, zerolog.Nop())

	org, err := cached.FindByCode(context.Background(), "CLG-MIT-AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "CLG-MIT-AAAAAA", org.OrgCode)
}
