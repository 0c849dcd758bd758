// Package config loads service settings from configs/config.yml and the
// environment (TIMER_ prefix, dots replaced by underscores).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Announcer sink and wake lock backend names.
const (
	SinkBroadcast = "broadcast"
	SinkLog       = "log"

	WakeLockNone    = "none"
	WakeLockInhibit = "inhibit"
)

const envPrefix = "TIMER"

type Config struct {
	Port            string          `mapstructure:"port"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	Log             LogConfig       `mapstructure:"log"`
	DB              DBConfig        `mapstructure:"db"`
	Auth            AuthConfig      `mapstructure:"auth"`
	Announcer       AnnouncerConfig `mapstructure:"announcer"`
	WakeLock        WakeLockConfig  `mapstructure:"wakelock"`
	HTTP            HTTPConfig      `mapstructure:"http"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// AnnouncerConfig selects the voice sink and voice.
type AnnouncerConfig struct {
	Sink string `mapstructure:"sink"`
	// Voice is the preferred voice name; empty picks the first available one.
	Voice string `mapstructure:"voice"`
	// VoiceWait bounds the one-time wait for the sink's voice list.
	VoiceWait time.Duration `mapstructure:"voice_wait"`
	// Voices is the static voice list of the log sink.
	Voices []string `mapstructure:"voices"`
}

type WakeLockConfig struct {
	Backend string `mapstructure:"backend"`
	Command string `mapstructure:"command"`
}

// HTTPConfig holds server timeouts and the run control throttle.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ControlRPS        float64       `mapstructure:"control_rps"`
	ControlBurst      int           `mapstructure:"control_burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("announcer.sink", SinkBroadcast)
	v.SetDefault("announcer.voice", "")
	v.SetDefault("announcer.voice_wait", 3*time.Second)
	v.SetDefault("announcer.voices", []string{})
	v.SetDefault("wakelock.backend", WakeLockNone)
	v.SetDefault("wakelock.command", "systemd-inhibit")
	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.control_rps", 2.0)
	v.SetDefault("http.control_burst", 5)
}

// Load reads config.yml from the given directories. A missing file is not an
// error: defaults and environment still apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Announcer.Sink {
	case SinkBroadcast, SinkLog:
	default:
		return fmt.Errorf("invalid announcer.sink %q: must be %s or %s", c.Announcer.Sink, SinkBroadcast, SinkLog)
	}
	switch c.WakeLock.Backend {
	case WakeLockNone, WakeLockInhibit:
	default:
		return fmt.Errorf("invalid wakelock.backend %q: must be %s or %s", c.WakeLock.Backend, WakeLockNone, WakeLockInhibit)
	}
	if c.Announcer.VoiceWait < 0 {
		return errors.New("announcer.voice_wait must not be negative")
	}
	if c.HTTP.ControlBurst < 1 {
		c.HTTP.ControlBurst = 1
	}
	return nil
}
