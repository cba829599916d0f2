// Package fsworkspace scaffolds a working directory: settings, credentials template,
// an empty metadata CSV and .gitignore entries for local state.
package fsworkspace

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/topcontainers/internal/app/template"
	"github.com/aalvaropc/topcontainers/internal/domain"
)

//go:embed all:templates
var templatesFS embed.FS

const stateDir = ".topcontainers"

type Initializer struct{}

func NewInitializer() *Initializer {
	return &Initializer{}
}

// Init writes the templates under root, filled from settings. Existing files are kept
// unless force is set. It returns the paths it wrote.
func (i *Initializer) Init(root string, settings domain.Settings, force bool) ([]string, error) {
	root = filepath.Clean(root)

	dirs := []string{
		filepath.Join(root, stateDir, "runs"),
		resolve(root, settings.CheckpointDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, &domain.OpError{Op: "fsworkspace.mkdir", Kind: domain.KindExecution, Path: d, Err: err}
		}
	}

	if err := ensureGitignore(root); err != nil {
		return nil, &domain.OpError{Op: "fsworkspace.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}

	vars := templateVars(settings)
	var written []string
	err := fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, "templates/")
		dst := filepath.Join(root, rel)

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}
		content, err := template.RenderString(string(b), vars)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}

		mode := fs.FileMode(0o644)
		if rel == ".env" {
			mode = 0o600
		}
		if err := os.WriteFile(dst, []byte(content), mode); err != nil {
			return err
		}
		written = append(written, dst)
		return nil
	})
	if err != nil {
		return written, &domain.OpError{Op: "fsworkspace.init", Kind: domain.KindExecution, Path: root, Err: err}
	}
	return written, nil
}

func templateVars(s domain.Settings) map[string]string {
	return map[string]string{
		"REPOSITORY_ID":  s.RepositoryID,
		"CHUNK_SIZE":     fmt.Sprint(s.ChunkSize),
		"MAX_CHUNKS":     fmt.Sprint(s.MaxChunks),
		"BATCH_SIZE":     fmt.Sprint(s.BatchSize),
		"MAX_BATCHES":    fmt.Sprint(s.MaxBatches),
		"RESOURCE_TYPE":  s.ResourceType,
		"NOTE_TYPE":      s.NoteType,
		"HTTP_TIMEOUT":   s.HTTPTimeout.String(),
		"CHECKPOINT_DIR": s.CheckpointDir,
	}
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func ensureGitignore(root string) error {
	const header = "# topcontainers"
	entries := []string{
		".env",
		stateDir + "/",
		"*.log",
	}

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		present[trimmed] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.Grow(len(existing) + 64)

	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
