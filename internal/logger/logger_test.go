package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "debug", "parcelbooking")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("tracking_id", "DL20251018001").Info("booking created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "booking created", line["msg"])
	assert.Equal(t, "parcelbooking", line["service"])
	assert.Equal(t, "DL20251018001", line["tracking_id"])
}

func TestNewWithOutput_UnknownLevel(t *testing.T) {
	l := NewWithOutput(&bytes.Buffer{}, "verbose", "")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
