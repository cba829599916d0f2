package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/config"
)

func TestInitializer_Init_CreatesWorkspaceFiles(t *testing.T) {
	tmp := t.TempDir()

	i := NewInitializer()
	written, err := i.Init(tmp, domain.DefaultSettings(), false)
	if err != nil {
		t.Fatalf("Init error: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("expected 3 files written, got %v", written)
	}

	assertFileExists(t, filepath.Join(tmp, "metadata.csv"))
	assertFileExists(t, filepath.Join(tmp, ".topcontainers", "runs"))
	assertFileExists(t, filepath.Join(tmp, ".topcontainers", "checkpoints"))

	envPath := filepath.Join(tmp, ".env")
	info, err := os.Stat(envPath)
	if err != nil {
		t.Fatalf("stat .env: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected .env mode 600, got %o", got)
	}
}

func TestInitializer_Init_SettingsRoundTrip(t *testing.T) {
	tmp := t.TempDir()

	want := domain.DefaultSettings()
	want.RepositoryID = "7"
	want.NoteType = "scopecontent"

	if _, err := NewInitializer().Init(tmp, want, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	got, err := config.LoadSettings(filepath.Join(tmp, config.SettingsFile))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestInitializer_Init_SkipsExistingFilesUnlessForce(t *testing.T) {
	tmp := t.TempDir()

	settingsPath := filepath.Join(tmp, config.SettingsFile)
	if err := os.WriteFile(settingsPath, []byte("custom\n"), 0o644); err != nil {
		t.Fatalf("write existing settings: %v", err)
	}

	i := NewInitializer()

	if _, err := i.Init(tmp, domain.DefaultSettings(), false); err != nil {
		t.Fatalf("Init (force=false) error: %v", err)
	}

	b, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	if string(b) != "custom\n" {
		t.Fatalf("expected settings preserved, got %q", string(b))
	}

	if _, err := i.Init(tmp, domain.DefaultSettings(), true); err != nil {
		t.Fatalf("Init (force=true) error: %v", err)
	}

	b, err = os.ReadFile(settingsPath)
	if err != nil {
		t.Fatalf("read settings after force: %v", err)
	}
	if !strings.Contains(string(b), "topcontainers:") {
		t.Fatalf("expected settings overwritten with template, got %q", string(b))
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s, stat err=%v", path, err)
	}
}
