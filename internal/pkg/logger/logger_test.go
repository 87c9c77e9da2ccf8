package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	lgr := Configure(Config{Level: "info", Format: FormatJSON, Output: &buf, Service: "rollcall"})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	lgr.Debug().Msg("hidden")
	authLogger := Component("auth")
	authLogger.Info().Str("org_code", "SCH-OAK-AAAAAA").Msg("login")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "login", line["message"])
	assert.Equal(t, "auth", line["component"])
	assert.Equal(t, "rollcall", line["service"])
	assert.Equal(t, "SCH-OAK-AAAAAA", line["org_code"])
}
