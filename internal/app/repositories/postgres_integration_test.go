//go:build integration

package repositories_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/app/repositories/storetest"
	"github.com/yigit/rollcall/internal/testutil/testdb"
)

var handle *testdb.Handle

func TestMain(m *testing.M) {
	var err error
	handle, err = testdb.Start(context.Background())
	if err != nil {
		panic(err)
	}
	code := m.Run()
	handle.Close()
	os.Exit(code)
}

func TestPostgresStores(t *testing.T) {
	storetest.Run(t, func(t *testing.T) *repositories.Repositories {
		require.NoError(t, handle.Truncate(context.Background()))
		return repositories.NewRepositories(handle.DB)
	})
}
