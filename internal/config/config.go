// Package config loads dynpage's runtime settings: a mapstructure-tagged,
// viper-backed Config struct covering the knobs this node layout engine
// actually exposes: page size, the mmap growth increment, and the log
// level.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"dynpage/internal/constants"
)

// Storage holds the on-disk page store's tunables.
type Storage struct {
	// PageSize is the fixed page size every node and the meta page are
	// laid out against. Changing it after a data file has been created
	// invalidates that file.
	PageSize int `mapstructure:"page_size"`

	// MmapGrowthBytes is loaded and defaulted to 64MiB, but pkg/storage
	// does not read it: Store.extendMmap always starts from a fixed 64MiB
	// chunk and doubles it as needed.
	MmapGrowthBytes int `mapstructure:"mmap_growth_bytes"`
}

// Logging holds the structured logger's tunables (internal/logging).
type Logging struct {
	Level string `mapstructure:"level"`
}

// Config is the top-level settings object, unmarshaled from defaults, a
// config file, or environment variables (DYNPAGE_ prefix), in that
// ascending priority.
type Config struct {
	Storage Storage `mapstructure:"storage"`
	Logging Logging `mapstructure:"logging"`
}

// Default returns the configuration dynpage runs with if nothing
// overrides it.
func Default() Config {
	return Config{
		Storage: Storage{
			PageSize:        constants.DefaultPageSize,
			MmapGrowthBytes: 64 << 20,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads configuration from path (if non-empty) and the DYNPAGE_
// environment, falling back to Default for anything unset. path may name
// a YAML, JSON, or TOML file — viper infers the format from its
// extension.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("DYNPAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("storage.page_size", cfg.Storage.PageSize)
	v.SetDefault("storage.mmap_growth_bytes", cfg.Storage.MmapGrowthBytes)
	v.SetDefault("logging.level", cfg.Logging.Level)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, errors.Wrap(err, "config: read config file")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "config: unmarshal")
	}
	if cfg.Storage.PageSize <= 0 {
		return cfg, errors.New("config: storage.page_size must be positive")
	}
	return cfg, nil
}
