package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/zeuscene/internal/config"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/editor"
	"github.com/zeusync/zeuscene/internal/runtime"
	"github.com/zeusync/zeuscene/internal/server"
)

// App is the fully wired process.
type App struct {
	Config config.Config
	Logger log.Log
	Editor *editor.Editor
	Server *server.Server
	Ticker *runtime.Ticker
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideEditor,
	ProvideServer,
	ProvideTicker,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) (*log.Logger, func()) {
	logger := log.New(cfg.LogLevel())
	return logger, func() { _ = logger.Sync() }
}

func ProvideEditor(cfg config.Config, logger log.Log) (*editor.Editor, func()) {
	opts := cfg.EditorOptions()
	opts.Logger = logger
	e := editor.New(opts)
	return e, e.Close
}

func ProvideServer(cfg config.Config, e *editor.Editor, logger log.Log) *server.Server {
	sc := server.DefaultServerConfig()
	sc.ListenAddr = cfg.Server.ListenAddr
	sc.MaxMessageSize = cfg.Server.MaxMessageSize
	sc.WriteTimeout = cfg.Server.WriteTimeout
	sc.ShutdownTimeout = cfg.Server.ShutdownTimeout
	sc.ExportFPS = cfg.Export.FPS
	sc.ExportResolution = cfg.Export.Resolution
	return server.NewServer(sc, e, logger)
}

// ProvideTicker feeds frames to the websocket hub and, when configured, to an
// MQTT broker.
func ProvideTicker(cfg config.Config, e *editor.Editor, srv *server.Server, logger log.Log) (*runtime.Ticker, func(), error) {
	t := runtime.NewTicker(e, cfg.Timeline.TickInterval(), logger, srv.Hub())
	if !cfg.MQTT.Enabled() {
		return t, func() {}, nil
	}

	sink, err := server.NewMQTTSink(server.MQTTConfig{
		URL:      cfg.MQTT.URL,
		Topic:    cfg.MQTT.Topic,
		ClientID: cfg.MQTT.ClientID,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
		QoS:      cfg.MQTT.QoS,
		Timeout:  cfg.MQTT.Timeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	t.AddSink(sink)
	return t, sink.Close, nil
}
