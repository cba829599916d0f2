package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aalvaropc/topcontainers/internal/domain"
)

func TestLoadSettings_EmptyPathReturnsDefaults(t *testing.T) {
	got, err := LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if diff := cmp.Diff(domain.DefaultSettings(), got); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
	if got.ChunkSize != 50_000 {
		t.Fatalf("expected default chunk size 50000, got %d", got.ChunkSize)
	}
}

func TestLoadSettings_OverridesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), SettingsFile)
	yml := "topcontainers:\n" +
		"  repository_id: \"5\"\n" +
		"  chunk_size: 1000\n" +
		"  note_type: userestrict\n" +
		"  http_timeout: 90s\n"
	if err := os.WriteFile(p, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSettings(p)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got.RepositoryID != "5" || got.ChunkSize != 1000 || got.NoteType != "userestrict" || got.HTTPTimeout != 90*time.Second {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.BatchSize != domain.DefaultSettings().BatchSize {
		t.Fatalf("expected untouched batch size default, got %d", got.BatchSize)
	}
}

func TestLoadSettings_ReportColumns(t *testing.T) {
	p := filepath.Join(t.TempDir(), SettingsFile)
	yml := "topcontainers:\n" +
		"  report_columns:\n" +
		"    level: $.level\n" +
		"    resource: $.resource.ref\n"
	if err := os.WriteFile(p, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSettings(p)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	want := map[string]string{"level": "$.level", "resource": "$.resource.ref"}
	if diff := cmp.Diff(want, got.ReportColumns); diff != "" {
		t.Fatalf("report columns (-want +got):\n%s", diff)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":          "topcontainers: [",
		"bad duration":      "topcontainers:\n  http_timeout: soon\n",
		"zero chunk":        "topcontainers:\n  chunk_size: 0\n",
		"empty repo":        "topcontainers:\n  repository_id: \"\"\n",
		"built-in column":   "topcontainers:\n  report_columns:\n    title: $.title\n",
		"not a jsonpath":    "topcontainers:\n  report_columns:\n    level: level\n",
		"empty column name": "topcontainers:\n  report_columns:\n    \"\": $.level\n",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), SettingsFile)
			if err := os.WriteFile(p, []byte(yml), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadSettings(p)
			if !domain.IsKind(err, domain.KindInvalidConfig) {
				t.Fatalf("expected invalid_config, got %v", err)
			}
		})
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestFindSettings_FromNestedDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	nested := filepath.Join(root, "data", "2026")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, SettingsFile)
	if err := os.WriteFile(want, []byte("topcontainers: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindSettings(nested)
	if err != nil {
		t.Fatalf("FindSettings: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestFindSettings_NotFound(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_ = os.MkdirAll(dir, 0o755)

	_, err := FindSettings(dir)
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
}
