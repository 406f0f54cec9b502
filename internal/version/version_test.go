package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit и BuildDate опциональны
	_ = GitCommit
	_ = BuildDate
}

func TestColored(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	tests := []struct {
		in   string
		want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3+build.7", "1.2.3+build.7"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		if got := Colored(tt.in); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	color.NoColor = false
	if got := Colored("1.2.3"); !strings.Contains(got, "\x1b[") || !strings.Contains(got, "3") {
		t.Errorf("Colored with color enabled = %q", got)
	}
	if got := Colored("nightly"); got != "nightly" {
		t.Errorf("non-semver must stay plain, got %q", got)
	}
}

func TestCurrentReflectsOverrides(t *testing.T) {
	origVersion, origCommit, origMsg, origDate := Version, GitCommit, GitMessage, BuildDate
	defer func() {
		Version, GitCommit, GitMessage, BuildDate = origVersion, origCommit, origMsg, origDate
	}()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	GitMessage = "fix cache key"
	BuildDate = "2024-01-15T10:30:00Z"

	info := Current()
	if info.Version != "1.2.3" || info.GitCommit != "abc123def456" || info.BuildDate != "2024-01-15T10:30:00Z" {
		t.Fatalf("Current() = %+v", info)
	}
	if info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Fatalf("runtime fields missing: %+v", info)
	}

	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()
	text := info.String()
	for _, want := range []string{"bslint 1.2.3\n", "commit: abc123def456 (fix cache key)\n", "built: 2024-01-15T10:30:00Z\n", "go: "} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
}

func TestInfoStringOmitsEmptyFields(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	text := Info{Version: "0.1.0", GoVersion: "go1.25", Platform: "linux/amd64"}.String()
	if strings.Contains(text, "commit:") || strings.Contains(text, "built:") {
		t.Fatalf("empty fields must be omitted:\n%s", text)
	}
	if text != "bslint 0.1.0\ngo: go1.25 linux/amd64\n" {
		t.Fatalf("text = %q", text)
	}
}

func BenchmarkVersionAccess(b *testing.B) {
	b.Run("Version", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Version
		}
	})
	b.Run("Current", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Current()
		}
	})
}
