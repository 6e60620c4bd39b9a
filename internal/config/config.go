package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/timeline"
	"github.com/zeusync/zeuscene/internal/editor"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration, usually read from a YAML file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Timeline TimelineConfig `yaml:"timeline"`
	Export   ExportConfig   `yaml:"export"`
	Log      LogConfig      `yaml:"log"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	MaxMessageSize  int64         `yaml:"max_message_size"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type TimelineConfig struct {
	// Duration of the timeline in seconds. Zero runs unbounded.
	Duration float64 `yaml:"duration"`
	Bound    string  `yaml:"bound"`
	Seek     string  `yaml:"seek"`
	// TickRate is the number of playback ticks per second.
	TickRate int `yaml:"tick_rate"`
}

type ExportConfig struct {
	FPS        int    `yaml:"fps"`
	Resolution string `yaml:"resolution"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// MQTTConfig enables publishing frames to a broker when URL is set.
type MQTTConfig struct {
	URL      string        `yaml:"url"`
	Topic    string        `yaml:"topic"`
	ClientID string        `yaml:"client_id"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	QoS      byte          `yaml:"qos"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (m MQTTConfig) Enabled() bool {
	return m.URL != ""
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:8080",
			MaxMessageSize:  1024 * 1024, // 1MB
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Timeline: TimelineConfig{
			Duration: 10,
			Bound:    timeline.BoundWrap.String(),
			Seek:     editor.SeekRecompute.String(),
			TickRate: 60,
		},
		Export: ExportConfig{
			FPS:        30,
			Resolution: "1920x1080",
		},
		Log: LogConfig{
			Level: log.LevelInfo.String(),
		},
		MQTT: MQTTConfig{
			Topic:    "zeuscene/frames",
			ClientID: "zeuscene",
			Timeout:  5 * time.Second,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes YAML from r over the defaults. Fields absent from the input
// keep their default value.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		errs = append(errs, fmt.Errorf("%w: server.listen_addr is empty", ErrInvalidConfig))
	}
	if c.Server.MaxMessageSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: server.max_message_size must be positive", ErrInvalidConfig))
	}
	if c.Timeline.Duration < 0 {
		errs = append(errs, fmt.Errorf("%w: timeline.duration %v", ErrInvalidConfig, c.Timeline.Duration))
	}
	if c.Timeline.TickRate <= 0 || c.Timeline.TickRate > 1000 {
		errs = append(errs, fmt.Errorf("%w: timeline.tick_rate %d out of range", ErrInvalidConfig, c.Timeline.TickRate))
	}
	if _, err := timeline.ParseBoundPolicy(c.Timeline.Bound); err != nil {
		errs = append(errs, fmt.Errorf("timeline.bound: %w", err))
	}
	if _, err := editor.ParseSeekPolicy(c.Timeline.Seek); err != nil {
		errs = append(errs, fmt.Errorf("timeline.seek: %w", err))
	}
	if c.Export.FPS <= 0 {
		errs = append(errs, fmt.Errorf("%w: export.fps %d", ErrInvalidConfig, c.Export.FPS))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.MQTT.Enabled() {
		if _, err := url.Parse(c.MQTT.URL); err != nil {
			errs = append(errs, fmt.Errorf("%w: mqtt.url: %v", ErrInvalidConfig, err))
		}
		if c.MQTT.Topic == "" {
			errs = append(errs, fmt.Errorf("%w: mqtt.topic is empty", ErrInvalidConfig))
		}
		if c.MQTT.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("%w: mqtt.timeout must be positive", ErrInvalidConfig))
		}
		if c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("%w: mqtt.qos %d", ErrInvalidConfig, c.MQTT.QoS))
		}
	}
	return errors.Join(errs...)
}

// TickInterval is the wall time between two playback ticks.
func (t TimelineConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(t.TickRate)
}

// EditorOptions converts the timeline section. Call Validate first; unknown
// policy names fall back to their defaults here.
func (c Config) EditorOptions() editor.Options {
	opts := editor.DefaultOptions()
	opts.Duration = c.Timeline.Duration
	opts.Bound, _ = timeline.ParseBoundPolicy(c.Timeline.Bound)
	opts.Seek, _ = editor.ParseSeekPolicy(c.Timeline.Seek)
	return opts
}

func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return level
}
