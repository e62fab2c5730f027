// Package config loads the TOML configuration of the bridge CLI and server.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/remote-object/bridge"
	"github.com/wippyai/remote-object/errors"
)

// Config is the root of a configuration file.
type Config struct {
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
	Bridge Bridge `toml:"bridge"`
}

// Server selects where -serve listens.
type Server struct {
	Network      string `toml:"network"`
	Address      string `toml:"address"`
	MaxFrameSize uint32 `toml:"max-frame-size"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Bridge configures exposed objects.
type Bridge struct {
	// Expose lists the methods to expose, by Go or script name. Empty exposes all.
	Expose []string `toml:"expose"`
	Caller string   `toml:"caller"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Network: "unix",
			Address: "/tmp/remote-object.sock",
		},
		Log: Log{
			Level: "info",
		},
		Bridge: Bridge{
			Caller: "cli",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(undecoded[0].String()).
			Detail("unknown key %s", undecoded[0].String()).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Server.Network {
	case "unix", "tcp", "tcp4", "tcp6":
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("server", "network").
			Value(c.Server.Network).
			Detail("network must be unix or tcp").
			Build()
	}
	if c.Server.Address == "" {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("server", "address").
			Detail("address is required").
			Build()
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log", "level").
			Value(c.Log.Level).
			Cause(err).
			Build()
	}
	for i, name := range c.Bridge.Expose {
		if name == "" {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("bridge", "expose").
				Value(i).
				Detail("empty method name").
				Build()
		}
	}
	return nil
}

// BridgeOptions returns bridge options for the [bridge] section.
func (c *Config) BridgeOptions() bridge.Options {
	opts := bridge.DefaultOptions()
	if len(c.Bridge.Expose) > 0 {
		opts.Marker = bridge.NameMarker(c.Bridge.Expose...)
	}
	opts.Caller = c.Bridge.Caller
	return opts
}

// Logger builds a zap logger for the [log] section.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInternal, err, "build logger")
	}
	return l, nil
}
