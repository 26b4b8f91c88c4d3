package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("component", "test").Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "component=test")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Format: "JSON", Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	log.WithField("file", "a.wav").Info("record created")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "record created", entry["msg"])
	assert.Equal(t, "a.wav", entry["file"])
	assert.Equal(t, "info", entry["level"])

	log.Debug("hidden")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Options{Level: "verbose"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}
