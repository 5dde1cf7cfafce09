/*
Package config handles loading orbit configuration.

Settings come from, in increasing precedence: built-in defaults, an optional
orbit.yaml (current directory, or the path given with --config), a .env file,
environment variables prefixed with ORBIT_, and command-line flags.

Schema (orbit.yaml):

	database:
	  path: ~/.orbit/orbit.db
	http:
	  addr: 0.0.0.0:8000
	  cors_origins: [http://localhost:3000]
	interview:
	  time_limit: 20m
	  question_limit: 40
	matching:
	  top_n: 3
	  closeness_threshold: 0.2
	report_cache:
	  size: 256
	log:
	  json: false
	debug: false

DATABASE_URL and DEBUG are honored as aliases for database.path and debug.
*/
package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the config file base name and the environment prefix.
	AppName = "orbit"

	// EnvPrefix prefixes every environment variable read by orbit.
	EnvPrefix = "ORBIT"
)

// Config represents the root configuration structure.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Interview   InterviewConfig   `mapstructure:"interview"`
	Matching    MatchingConfig    `mapstructure:"matching"`
	ReportCache ReportCacheConfig `mapstructure:"report_cache"`
	Log         LogConfig         `mapstructure:"log"`
	Debug       bool              `mapstructure:"debug"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	// Path is a filesystem path or a sqlite:/// URL. Empty means ~/.orbit/orbit.db.
	Path string `mapstructure:"path"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// InterviewConfig bounds a session.
type InterviewConfig struct {
	TimeLimit     time.Duration `mapstructure:"time_limit"`
	QuestionLimit int           `mapstructure:"question_limit"`
}

// MatchingConfig tunes ranking and explanations.
type MatchingConfig struct {
	TopN               int     `mapstructure:"top_n"`
	ClosenessThreshold float64 `mapstructure:"closeness_threshold"`
}

// ReportCacheConfig sizes the in-process match report cache.
type ReportCacheConfig struct {
	Size int `mapstructure:"size"`
}

// LogConfig selects the log format.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// Defaults.
const (
	DefaultAddr               = "0.0.0.0:8000"
	DefaultTimeLimit          = 20 * time.Minute
	DefaultQuestionLimit      = 40
	DefaultTopN               = 3
	DefaultClosenessThreshold = 0.2
	DefaultReportCacheSize    = 256
)

// DefaultCORSOrigins are the local frontend dev servers.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:5174",
}

// SetDefaults registers every key with its default so environment
// variables can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "")
	v.SetDefault("http.addr", DefaultAddr)
	v.SetDefault("http.cors_origins", DefaultCORSOrigins)
	v.SetDefault("interview.time_limit", DefaultTimeLimit)
	v.SetDefault("interview.question_limit", DefaultQuestionLimit)
	v.SetDefault("matching.top_n", DefaultTopN)
	v.SetDefault("matching.closeness_threshold", DefaultClosenessThreshold)
	v.SetDefault("report_cache.size", DefaultReportCacheSize)
	v.SetDefault("log.json", false)
	v.SetDefault("debug", false)
}

// NewConfig returns a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:        DefaultAddr,
			CORSOrigins: append([]string(nil), DefaultCORSOrigins...),
		},
		Interview: InterviewConfig{
			TimeLimit:     DefaultTimeLimit,
			QuestionLimit: DefaultQuestionLimit,
		},
		Matching: MatchingConfig{
			TopN:               DefaultTopN,
			ClosenessThreshold: DefaultClosenessThreshold,
		},
		ReportCache: ReportCacheConfig{Size: DefaultReportCacheSize},
	}
}
