package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all claimsort configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Model   ModelConfig   `mapstructure:"model"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ModelConfig holds the model artifact and resource references. Vocab and
// Contractions accept a local path or an http(s) URL; Contractions may be
// empty to use the embedded default table.
type ModelConfig struct {
	Path         string `mapstructure:"path"`
	Vocab        string `mapstructure:"vocab"`
	Contractions string `mapstructure:"contractions"`
	DownloadDir  string `mapstructure:"download_dir"`
}

// ScoringConfig holds inference hardening and caching knobs.
type ScoringConfig struct {
	MaxInflight      int64         `mapstructure:"max_inflight"`
	InferenceTimeout time.Duration `mapstructure:"inference_timeout"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"` // 0 disables the score cache
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Load reads configuration from an optional YAML file and CLAIMSORT_*
// environment variables, on top of defaults. Precedence: env > file >
// defaults.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("model.path", "models/claims.onnx")
	v.SetDefault("model.vocab", "models/words.txt")
	v.SetDefault("model.contractions", "")
	v.SetDefault("model.download_dir", "")
	v.SetDefault("scoring.max_inflight", int64(8))
	v.SetDefault("scoring.inference_timeout", 10*time.Second)
	v.SetDefault("scoring.cache_ttl", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("CLAIMSORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
