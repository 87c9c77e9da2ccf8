package observability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSentryWithoutDSN(t *testing.T) {
	flush, err := InitSentry("", "test", "dev")
	require.NoError(t, err)
	require.NotNil(t, flush)
	assert.NotPanics(t, flush)
}

func TestInitSentryRejectsBadDSN(t *testing.T) {
	flush, err := InitSentry("not a dsn", "test", "dev")
	assert.Error(t, err)
	assert.NotNil(t, flush)
}

func TestCaptureErrWithoutClient(t *testing.T) {
	assert.NotPanics(t, func() {
		CaptureErr(nil, nil)
		CaptureErr(errors.New("boom"), map[string]string{"route": "/api/v1/ping"})
	})
}
