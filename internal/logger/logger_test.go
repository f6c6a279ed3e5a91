package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("componente", "teste").Msg("mensagem de teste")

	out := buf.String()
	assert.Contains(t, out, "mensagem de teste")
	assert.Contains(t, out, "componente")
	assert.Contains(t, out, `"time"`)
}
