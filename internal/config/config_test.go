package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// clearEnv blanks variables a developer machine may have set.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "DEBUG", "ORBIT_DATABASE_PATH", "ORBIT_DEBUG", "ORBIT_HTTP_ADDR"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := NewConfig()
	if cfg.HTTP.Addr != want.HTTP.Addr {
		t.Errorf("Addr = %q, want %q", cfg.HTTP.Addr, want.HTTP.Addr)
	}
	if cfg.Interview.TimeLimit != 20*time.Minute {
		t.Errorf("TimeLimit = %v, want 20m", cfg.Interview.TimeLimit)
	}
	if cfg.Interview.QuestionLimit != 40 {
		t.Errorf("QuestionLimit = %d, want 40", cfg.Interview.QuestionLimit)
	}
	if cfg.Matching.TopN != 3 {
		t.Errorf("TopN = %d, want 3", cfg.Matching.TopN)
	}
	if len(cfg.HTTP.CORSOrigins) != 3 {
		t.Errorf("CORSOrigins = %v, want 3 dev origins", cfg.HTTP.CORSOrigins)
	}
	if cfg.Database.Path != "" {
		t.Errorf("Database.Path = %q, want empty", cfg.Database.Path)
	}
	if cfg.File != "" {
		t.Errorf("File = %q, want empty", cfg.File)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "orbit.yaml")
	content := `
database:
  path: /tmp/custom.db
interview:
  time_limit: 90s
  question_limit: 12
http:
  cors_origins: [https://orbit.example]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Interview.TimeLimit != 90*time.Second {
		t.Errorf("TimeLimit = %v, want 90s", cfg.Interview.TimeLimit)
	}
	if cfg.Interview.QuestionLimit != 12 {
		t.Errorf("QuestionLimit = %d, want 12", cfg.Interview.QuestionLimit)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "https://orbit.example" {
		t.Errorf("CORSOrigins = %v", cfg.HTTP.CORSOrigins)
	}
	// Untouched keys keep defaults
	if cfg.Matching.TopN != DefaultTopN {
		t.Errorf("TopN = %d, want default", cfg.Matching.TopN)
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite:///./orbit.db")
	t.Setenv("DEBUG", "true")
	t.Setenv("ORBIT_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("ORBIT_MATCHING_TOP_N", "5")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "./orbit.db" {
		t.Errorf("Database.Path = %q, want ./orbit.db", cfg.Database.Path)
	}
	if !cfg.Debug {
		t.Error("Debug should be enabled by DEBUG")
	}
	if cfg.HTTP.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Matching.TopN != 5 {
		t.Errorf("TopN = %d, want 5", cfg.Matching.TopN)
	}
}

func TestDatabasePath(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"", "", false},
		{"/var/lib/orbit.db", "/var/lib/orbit.db", false},
		{"sqlite:///./orbit.db", "./orbit.db", false},
		{"sqlite:////var/lib/orbit.db", "/var/lib/orbit.db", false},
		{"postgresql://localhost/orbit", "", true},
	}
	for _, tt := range tests {
		got, err := DatabasePath(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("DatabasePath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("DatabasePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Interview.QuestionLimit = 0
	cfg.Matching.ClosenessThreshold = 1.5

	err := cfg.Validate()
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigError, got %v", err)
	}
	if !strings.Contains(invalid.Message, "question_limit") || !strings.Contains(invalid.Message, "closeness_threshold") {
		t.Errorf("message should list both problems: %q", invalid.Message)
	}
}

// TestEnhancedErrorMessages tests that error messages are helpful
func TestEnhancedErrorMessages(t *testing.T) {
	t.Run("config_not_found_has_hint", func(t *testing.T) {
		clearEnv(t)
		testPath := filepath.Join(t.TempDir(), "not-found.yaml")

		_, err := Load(viper.New(), testPath)
		var notFound *ConfigNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected ConfigNotFoundError, got %v", err)
		}
		if !strings.Contains(err.Error(), "💡") {
			t.Errorf("error should contain helpful hint, got: %v", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("error should wrap fs.ErrNotExist, got: %v", err)
		}
	})

	t.Run("validation_problems_are_listed", func(t *testing.T) {
		err := &InvalidConfigError{
			Message: "matching.top_n must be positive\nreport_cache.size must be positive",
			Hint:    "Fix the values",
		}
		msg := err.Error()
		for _, want := range []string{
			"invalid config: (defaults and environment)",
			"  - matching.top_n must be positive\n",
			"  - report_cache.size must be positive\n",
			"ORBIT_<SECTION>_<KEY>",
		} {
			if !strings.Contains(msg, want) {
				t.Errorf("error should contain %q, got: %s", want, msg)
			}
		}
	})

	t.Run("invalid_yaml_is_reported", func(t *testing.T) {
		clearEnv(t)
		testPath := filepath.Join(t.TempDir(), "invalid.yaml")
		os.WriteFile(testPath, []byte("interview: [unclosed"), 0644)

		_, err := Load(viper.New(), testPath)
		var invalid *InvalidConfigError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidConfigError, got %v", err)
		}
		if !strings.Contains(err.Error(), "invalid config") {
			t.Errorf("error should mention invalid config, got: %v", err)
		}
	})

	t.Run("out_of_range_values_fail_validation", func(t *testing.T) {
		clearEnv(t)
		testPath := filepath.Join(t.TempDir(), "orbit.yaml")
		os.WriteFile(testPath, []byte("matching:\n  top_n: 0\n"), 0644)

		_, err := Load(viper.New(), testPath)
		var invalid *InvalidConfigError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidConfigError, got %v", err)
		}
		if invalid.Path != testPath {
			t.Errorf("Path = %q, want %q", invalid.Path, testPath)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}

	path := filepath.Join(dir, ".env")
	os.WriteFile(path, []byte("ORBIT_TEST_DOTENV=from-file\n"), 0644)
	t.Setenv("ORBIT_TEST_DOTENV", "")
	os.Unsetenv("ORBIT_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("ORBIT_TEST_DOTENV"); got != "from-file" {
		t.Errorf("ORBIT_TEST_DOTENV = %q, want from-file", got)
	}
}
