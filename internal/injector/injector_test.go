package injector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/zeuscene/internal/config"
	"github.com/zeusync/zeuscene/internal/core/scene"
)

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "silent"

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, cfg, app.Config)
	require.NotNil(t, app.Server)
	require.NotNil(t, app.Ticker)

	id, err := app.Editor.AddObject(scene.KindBox, nil)
	require.NoError(t, err)
	_, ok := app.Editor.Object(id)
	assert.True(t, ok)
	assert.Equal(t, 10.0, app.Editor.Snapshot().Duration)
}

func TestInitializeAppFailsOnUnreachableBroker(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "silent"
	cfg.MQTT.URL = "tcp://127.0.0.1:1"
	cfg.MQTT.Timeout = 200 * time.Millisecond

	_, _, err := InitializeApp(cfg)
	assert.Error(t, err)
}
