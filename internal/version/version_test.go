package version

import "testing"

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"dev", "none", "unknown", "dev (development build)"},
		{"v0.1.0", "abc1234", "2026-01-02", "v0.1.0 (commit: abc1234, built: 2026-01-02)"},
	}
	for _, tt := range tests {
		if got := FormatVersion(tt.version, tt.commit, tt.date); got != tt.want {
			t.Errorf("FormatVersion(%q, %q, %q) = %q, want %q", tt.version, tt.commit, tt.date, got, tt.want)
		}
	}
}

func TestGetVersionComponents(t *testing.T) {
	v, c, d := GetVersionComponents()
	if v != Version || c != Commit || d != Date {
		t.Errorf("GetVersionComponents() = %q, %q, %q", v, c, d)
	}
}
