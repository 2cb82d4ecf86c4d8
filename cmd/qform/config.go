package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-qform/internal/logging"
)

// Config is the process configuration assembled from defaults, the config
// file, QFORM_ environment variables and flags.
type Config struct {
	Log         logging.Config    `mapstructure:"log"`
	Renderer    string            `mapstructure:"renderer"`
	Preload     bool              `mapstructure:"preload"`
	Presets     string            `mapstructure:"presets"`
	Theme       ThemeConfig       `mapstructure:"theme"`
	Terminology TerminologyConfig `mapstructure:"terminology"`
	Server      ServerConfig      `mapstructure:"server"`
}

// ThemeConfig names go-theme manifests and the default selection.
type ThemeConfig struct {
	Name      string   `mapstructure:"name"`
	Variant   string   `mapstructure:"variant"`
	Manifests []string `mapstructure:"manifests"`
}

// TerminologyConfig points at a FHIR terminology server used for value sets
// the embedded catalog does not hold.
type TerminologyConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures `qform serve`.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	Forms          string        `mapstructure:"forms"`
	RateLimit      int           `mapstructure:"rate_limit"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("renderer", "vanilla")
	v.SetDefault("preload", true)
	v.SetDefault("terminology.timeout", 10*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.forms", "forms")
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.session_ttl", 2*time.Hour)
	v.SetDefault("server.shutdown_grace", 10*time.Second)
}

func loadConfig(v *viper.Viper, file string) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("QFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("qform")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "qform"))
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func loadManifests(paths []string) ([]*theme.Manifest, error) {
	manifests := make([]*theme.Manifest, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read theme manifest: %w", err)
		}
		var manifest theme.Manifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("decode theme manifest %s: %w", path, err)
		}
		manifests = append(manifests, &manifest)
	}
	return manifests, nil
}
