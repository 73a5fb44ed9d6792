package version

import (
	"strings"
	"testing"
	"time"
)

func saveAndRestore(t *testing.T) {
	t.Helper()
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })
}

func TestGetDefaults(t *testing.T) {
	saveAndRestore(t)
	Version, GitCommit, BuildTime = "dev", "", ""

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetWithLdflags(t *testing.T) {
	saveAndRestore(t)
	Version = "1.2.0"
	GitCommit = "abcdef1234567"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if !info.IsRelease {
		t.Error("1.2.0 should be a release")
	}
	if info.GitCommit != "abcdef1234567" {
		t.Errorf("ldflags commit should win, got %q", info.GitCommit)
	}
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if !info.BuildDate.Equal(want) {
		t.Errorf("build date = %v, want %v", info.BuildDate, want)
	}
}

func TestDirtyVersionIsNotRelease(t *testing.T) {
	saveAndRestore(t)
	Version = "1.2.0-dirty"
	if Get().IsRelease {
		t.Error("dirty build should not be a release")
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"bare", Info{Version: "dev"}, "dev"},
		{"commit", Info{Version: "1.0.0", GitCommit: "abcdef1234"}, "1.0.0-abcdef1"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc", IsDirty: true}, "1.0.0-abc-dirty"},
		{"dated", Info{Version: "1.0.0", BuildDate: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)}, "1.0.0 (built 2026-02-03T04:05:06Z)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.String(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInfoFields(t *testing.T) {
	f := Info{Version: "1.0.0", GitCommit: "abcdef1234", GoVersion: "go1.26.0"}.Fields()
	if f["version"] != "1.0.0" || f["git_commit"] != "abcdef1" || !strings.HasPrefix(f["go_version"].(string), "go") {
		t.Errorf("unexpected fields: %v", f)
	}
}
