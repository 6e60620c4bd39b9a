package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/timeline"
	"github.com/zeusync/zeuscene/internal/editor"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.MQTT.Enabled())
	assert.Equal(t, time.Second/60, cfg.Timeline.TickInterval())

	opts := cfg.EditorOptions()
	assert.Equal(t, 10.0, opts.Duration)
	assert.Equal(t, timeline.BoundWrap, opts.Bound)
	assert.Equal(t, editor.SeekRecompute, opts.Seek)
	assert.Equal(t, log.LevelInfo, cfg.LogLevel())
}

func TestReadOverridesDefaults(t *testing.T) {
	src := `
server:
  listen_addr: ":9000"
timeline:
  duration: 4.5
  bound: clamp
  seek: while_playing
log:
  level: debug
mqtt:
  url: tcp://localhost:1883
  timeout: 2s
`
	cfg, err := Read(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, int64(1024*1024), cfg.Server.MaxMessageSize, "untouched fields keep defaults")
	assert.Equal(t, 60, cfg.Timeline.TickRate)
	assert.True(t, cfg.MQTT.Enabled())
	assert.Equal(t, "zeuscene/frames", cfg.MQTT.Topic)
	assert.Equal(t, 2*time.Second, cfg.MQTT.Timeout)
	assert.Equal(t, log.LevelDebug, cfg.LogLevel())

	opts := cfg.EditorOptions()
	assert.Equal(t, 4.5, opts.Duration)
	assert.Equal(t, timeline.BoundClamp, opts.Bound)
	assert.Equal(t, editor.SeekWhilePlaying, opts.Seek)
}

func TestReadEmptyInput(t *testing.T) {
	cfg, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestReadRejectsUnknownFields(t *testing.T) {
	_, err := Read(strings.NewReader("timeline:\n  speed: 2\n"))
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.ListenAddr = ""
	cfg.Timeline.TickRate = 0
	cfg.Timeline.Bound = "bounce"
	cfg.Timeline.Seek = "sometimes"
	cfg.Log.Level = "loud"
	cfg.MQTT.URL = "tcp://broker:1883"
	cfg.MQTT.QoS = 3
	cfg.MQTT.Timeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, timeline.ErrUnknownPolicy)
	assert.ErrorIs(t, err, editor.ErrUnknownSeekPolicy)
	for _, field := range []string{"listen_addr", "tick_rate", "log.level", "mqtt.qos", "mqtt.timeout"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zeuscene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  fps: 24\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Export.FPS)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
