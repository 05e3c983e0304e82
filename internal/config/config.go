// Package config holds the application wide settings. Values come from
// defaults, an optional config file, SANGERCHECK_ environment variables
// (a .env file is read first) and command line flags bound in /cmd.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yumyai/sangercheck/logger"
	"github.com/yumyai/sangercheck/pkg/align"
)

const EnvPrefix = "SANGERCHECK"

// ScoringConfig is the alignment scoring scheme as it appears in settings.
type ScoringConfig struct {
	Match     float64 `mapstructure:"match"`
	Mismatch  float64 `mapstructure:"mismatch"`
	GapOpen   float64 `mapstructure:"gap_open"`
	GapExtend float64 `mapstructure:"gap_extend"`
	// "symbol" or "wildcard"
	NPolicy string `mapstructure:"n_policy"`
}

// DataConfig locates the input and output files.
type DataConfig struct {
	// converted reads and reference FASTA files
	ProcessedDir string `mapstructure:"processed_dir"`
	// raw .ab1 traces
	RawDir string `mapstructure:"raw_dir"`
	// optional sqlite sample sheet; empty means the built-in pairs
	SamplesDB string `mapstructure:"samples_db"`
}

type CompareConfig struct {
	Workers int `mapstructure:"workers"`
	// 0 is unlimited
	MaxSequenceLength int `mapstructure:"max_sequence_length"`
}

type FASTAConfig struct {
	LineWidth int `mapstructure:"line_width"`
}

type TraceConfig struct {
	Trim bool `mapstructure:"trim"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// finished jobs older than this are dropped; 0 keeps them
	JobTTL time.Duration `mapstructure:"job_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the root-level settings struct.
type Config struct {
	Scoring ScoringConfig `mapstructure:"scoring"`
	Data    DataConfig    `mapstructure:"data"`
	Compare CompareConfig `mapstructure:"compare"`
	FASTA   FASTAConfig   `mapstructure:"fasta"`
	Trace   TraceConfig   `mapstructure:"trace"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// SetDefaults registers every known key. Keys without a default are not
// picked up from the environment by Unmarshal.
func SetDefaults(v *viper.Viper) {
	def := align.DefaultScheme()
	v.SetDefault("scoring.match", def.Match)
	v.SetDefault("scoring.mismatch", def.Mismatch)
	v.SetDefault("scoring.gap_open", def.GapOpen)
	v.SetDefault("scoring.gap_extend", def.GapExtend)
	v.SetDefault("scoring.n_policy", align.NSymbol.String())

	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.raw_dir", "data/raw_ab1")
	v.SetDefault("data.samples_db", "")

	v.SetDefault("compare.workers", 1)
	v.SetDefault("compare.max_sequence_length", 0)

	v.SetDefault("fasta.line_width", 60)
	v.SetDefault("trace.trim", false)

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.job_ttl", "1h")
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment lookups set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges a yaml/toml/json settings file into v.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	logger.Debug("Loaded config file " + v.ConfigFileUsed())
	return nil
}

// LoadDotEnv reads a .env file into the process environment when present.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No .env found, using local environment")
			return
		}
		logger.Warn("Could not read .env: " + err.Error())
	}
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Scheme builds and validates the alignment scheme.
func (c Config) Scheme() (align.Scheme, error) {
	policy, err := align.ParseNPolicy(c.Scoring.NPolicy)
	if err != nil {
		return align.Scheme{}, err
	}
	s := align.Scheme{
		Match:     c.Scoring.Match,
		Mismatch:  c.Scoring.Mismatch,
		GapOpen:   c.Scoring.GapOpen,
		GapExtend: c.Scoring.GapExtend,
		NPolicy:   policy,
	}
	if err := s.Validate(); err != nil {
		return align.Scheme{}, err
	}
	return s, nil
}
