// Package musicd wires the daemon together: configuration, logging and the
// module supervisor.
package musicd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for musicd.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Player   PlayerConfig   `toml:"player"`
	Resolver ResolverConfig `toml:"resolver"`
	Modules  ModulesConfig  `toml:"modules"`
}

// ServerConfig defines shared server settings.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogOutput string `toml:"log_output"`
	LogUTC    bool   `toml:"log_utc"`
}

// PlayerConfig configures the playback controller and engine.
type PlayerConfig struct {
	// Engine selects the playback backend: "mpv" (default) or "gstreamer".
	Engine         string `toml:"engine"`
	PollIntervalMS int64  `toml:"poll_interval_ms"`
	StartRetries   int    `toml:"start_retries"`
	MPVBin         string `toml:"mpv_bin"`
	MPVArgs        string `toml:"mpv_args"`
	GstPipeline    string `toml:"gst_pipeline"`
	GstDevice      string `toml:"gst_device"`
}

// ResolverConfig configures track lookup.
type ResolverConfig struct {
	YTDLPBin    string `toml:"ytdlp_bin"`
	TimeoutMS   int64  `toml:"timeout_ms"`
	SearchLimit int    `toml:"search_limit"`
}

// ModulesConfig holds optional module configurations.
type ModulesConfig struct {
	Events       EventsConfig       `toml:"events"`
	EmbeddedMQTT EmbeddedMQTTConfig `toml:"embedded_mqtt"`
}

// EventsConfig configures MQTT state publishing.
type EventsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Broker      string `toml:"broker"`
	TopicBase   string `toml:"topic_base"`
	ClientID    string `toml:"client_id"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	KeepAliveMS int64  `toml:"keep_alive_ms"`
}

// EmbeddedMQTTConfig configures the embedded MQTT broker.
type EmbeddedMQTTConfig struct {
	Enabled        bool   `toml:"enabled"`
	Listen         string `toml:"listen"`
	AllowAnonymous bool   `toml:"allow_anonymous"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     5000,
			LogLevel: "info",
		},
		Player: PlayerConfig{
			Engine:         "mpv",
			PollIntervalMS: 500,
		},
		Resolver: ResolverConfig{
			SearchLimit: 5,
		},
	}
}

// LoadConfig loads a config file from path. A missing file yields the
// defaults; a present but unreadable file is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if info.IsDir() {
		return cfg, errors.New("config path is a directory")
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays MUSICD_HOST and MUSICD_PORT onto the config so one shell
// export can repoint both daemon and clients.
func (c *Config) ApplyEnv() error {
	if host := os.Getenv("MUSICD_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("MUSICD_PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid MUSICD_PORT %q: %w", port, err)
		}
		c.Server.Port = parsed
	}
	return nil
}

// ListenAddr returns the HTTP listen address.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DefaultConfigPath returns the default config location.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "musicd", "musicd.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "musicd", "musicd.toml"), nil
}
