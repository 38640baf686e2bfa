package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOf(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, levelOf("debug"))
	assert.Equal(t, zerolog.WarnLevel, levelOf(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, levelOf(""))
	assert.Equal(t, zerolog.InfoLevel, levelOf("ruido"))
}

func TestComponent_AgregaCampos(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", App: "fsic-portal", Out: &buf})

	c := l.Component("approval")
	c.Info().Str("registration_id", "p1").Msg("aprobando")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "fsic-portal", line["app"])
	assert.Equal(t, "approval", line["component"])
	assert.Equal(t, "p1", line["registration_id"])
}

func TestLevel_FiltraDebajoDelMinimo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Out: &buf})
	l.Info().Msg("no debe aparecer")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("sí")
	assert.NotZero(t, buf.Len())
}

func TestNew_InstalaGlobal(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	New(Config{Out: &buf})
	log.Info().Msg("global")
	assert.Contains(t, buf.String(), `"message":"global"`)
}
