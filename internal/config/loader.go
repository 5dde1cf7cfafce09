package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv reads KEY=value pairs from path into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("dotenv parse error: %v", err),
			Hint:    "Each line must be KEY=value",
		}
	}
	return nil
}

// Load reads configuration into v and decodes it. An explicit path must
// exist; otherwise orbit.yaml in the working directory is used when present.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.path", EnvPrefix+"_DATABASE_PATH", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("binding DATABASE_URL environment variable: %w", err)
	}
	if err := v.BindEnv("debug", EnvPrefix+"_DEBUG", "DEBUG"); err != nil {
		return nil, fmt.Errorf("binding DEBUG environment variable: %w", err)
	}

	if path != "" {
		if err := checkReadable(path); err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(AppName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, &InvalidConfigError{
				Path:    path,
				Message: fmt.Sprintf("parse error: %v", err),
				Hint:    "Check the YAML syntax or remove the file to use defaults",
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    v.ConfigFileUsed(),
			Message: fmt.Sprintf("decode error: %v", err),
		}
	}
	cfg.File = v.ConfigFileUsed()

	dbPath, err := DatabasePath(cfg.Database.Path)
	if err != nil {
		return nil, &InvalidConfigError{Path: cfg.File, Message: err.Error(), Hint: "Use a file path or a sqlite:/// URL"}
	}
	cfg.Database.Path = dbPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DatabasePath turns a sqlite URL into a filesystem path. Plain paths pass
// through unchanged.
func DatabasePath(raw string) (string, error) {
	switch {
	case strings.HasPrefix(raw, "sqlite:///"):
		return strings.TrimPrefix(raw, "sqlite:///"), nil
	case strings.HasPrefix(raw, "sqlite://"):
		return strings.TrimPrefix(raw, "sqlite://"), nil
	case strings.Contains(raw, "://"):
		return "", fmt.Errorf("unsupported database URL %q: only sqlite is supported", raw)
	}
	return raw, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var problems []string
	if c.HTTP.Addr == "" {
		problems = append(problems, "http.addr must not be empty")
	}
	if c.Interview.TimeLimit <= 0 {
		problems = append(problems, "interview.time_limit must be positive")
	}
	if c.Interview.QuestionLimit <= 0 {
		problems = append(problems, "interview.question_limit must be positive")
	}
	if c.Matching.TopN <= 0 {
		problems = append(problems, "matching.top_n must be positive")
	}
	if c.Matching.ClosenessThreshold <= 0 || c.Matching.ClosenessThreshold > 1 {
		problems = append(problems, "matching.closeness_threshold must be in (0, 1]")
	}
	if c.ReportCache.Size <= 0 {
		problems = append(problems, "report_cache.size must be positive")
	}

	if len(problems) == 0 {
		return nil
	}
	return &InvalidConfigError{
		Path:    c.File,
		Message: strings.Join(problems, "\n"),
		Hint:    "Remove the offending keys to fall back to defaults",
	}
}

// checkReadable verifies an explicitly requested config file can be read.
func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ConfigNotFoundError{
				Path: path,
				Hint: "Omit --config to use defaults and ./orbit.yaml, or create the file",
				Err:  err,
			}
		}
		if os.IsPermission(err) {
			return &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
				Err:     err,
			}
		}
		return fmt.Errorf("failed to access config: %w", err)
	}
	return f.Close()
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return "" // Not applicable on Windows
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
