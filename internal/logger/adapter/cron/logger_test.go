package cron

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	l := NewWithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel), false)

	l.Info("wake", "now", "x")
	assert.Empty(t, buf.String(), "info is dropped unless verbose")

	l.Error(errors.New("dump failed"), "panic", "entry", 1)
	assert.Contains(t, buf.String(), "dump failed")
	assert.Contains(t, buf.String(), `"entry":1`)

	buf.Reset()

	v := NewWithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel), true)
	v.Info("run", "entry", 2)
	assert.Contains(t, buf.String(), `"message":"run"`)
}
