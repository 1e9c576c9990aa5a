package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FARELINE_ARCHIVE_PATH.
const EnvPrefix = "FARELINE"

// Config holds all fareline configuration. It relocates files and toggles
// the opt-in passes; it never alters normalization itself.
type Config struct {
	Archive ArchiveConfig `mapstructure:"archive"`
	Output  OutputConfig  `mapstructure:"output"`
	Engine  EngineConfig  `mapstructure:"engine"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
}

// ArchiveConfig locates the raw archive.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig locates the three artifacts.
type OutputConfig struct {
	Canonical  string `mapstructure:"canonical"`
	Quarantine string `mapstructure:"quarantine"`
	Audit      string `mapstructure:"audit"`
}

// EngineConfig holds processing settings.
type EngineConfig struct {
	Dedupe       bool `mapstructure:"dedupe"`
	Repair       bool `mapstructure:"repair"`
	Workers      int  `mapstructure:"workers"`
	LiveSnapshot bool `mapstructure:"live_snapshot"`
}

// HistoryConfig locates the run ledger. An empty path disables it.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("archive.path", "data/archive.json")
	v.SetDefault("output.canonical", "data/canonical.json")
	v.SetDefault("output.quarantine", "data/quarantine.json")
	v.SetDefault("output.audit", "data/audit.json")
	v.SetDefault("engine.dedupe", true)
	v.SetDefault("engine.repair", false)
	v.SetDefault("engine.workers", 1)
	v.SetDefault("engine.live_snapshot", false)
	v.SetDefault("history.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// NewViper builds a viper instance with defaults and environment binding.
// If configFile is set it must exist; otherwise fareline.{toml,yaml,json} in
// the working directory is read when present.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "read config %s", configFile),
				"config files may be TOML, YAML or JSON; the extension selects the format")
		}
		return v, nil
	}

	v.SetConfigName("fareline")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}
	return v, nil
}

// Load reads configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that settings are usable.
func (c Config) Validate() error {
	if c.Archive.Path == "" {
		return errors.WithHint(errors.New("archive.path is empty"), "set --archive or FARELINE_ARCHIVE_PATH")
	}
	paths := map[string]string{
		"output.canonical":  c.Output.Canonical,
		"output.quarantine": c.Output.Quarantine,
		"output.audit":      c.Output.Audit,
	}
	seen := make(map[string]string, len(paths))
	for _, key := range []string{"output.canonical", "output.quarantine", "output.audit"} {
		p := paths[key]
		if p == "" {
			return errors.Newf("%s is empty", key)
		}
		if other, ok := seen[p]; ok {
			return errors.WithHint(
				errors.Newf("%s and %s both point at %s", other, key, p),
				"each artifact needs its own file")
		}
		seen[p] = key
	}
	if c.Engine.Workers < 1 {
		return errors.Newf("engine.workers must be at least 1, got %d", c.Engine.Workers)
	}
	return nil
}
