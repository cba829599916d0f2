// Package checkpoint persists job cursors as small YAML files so a long listing can be
// worked through across several invocations.
package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

type Store struct {
	dir string
	now func() time.Time
}

type Option func(*Store)

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.CheckpointStore = (*Store)(nil)

type yamlCursor struct {
	Job       string    `yaml:"job"`
	Next      int       `yaml:"last_batch_num"`
	Size      int       `yaml:"batch_size"`
	Total     int       `yaml:"total_batches"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Load returns the stored cursor for job, or a zero cursor if none was saved yet.
func (s *Store) Load(job string) (domain.Cursor, error) {
	path := s.path(job)

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Cursor{Job: job}, nil
		}
		return domain.Cursor{}, &domain.OpError{
			Op:   "checkpoint.load",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	var y yamlCursor
	if err := yaml.Unmarshal(b, &y); err != nil {
		return domain.Cursor{}, &domain.OpError{
			Op:   "checkpoint.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return domain.Cursor{
		Job:       job,
		Next:      y.Next,
		Size:      y.Size,
		Total:     y.Total,
		UpdatedAt: y.UpdatedAt,
	}, nil
}

// Save writes the cursor atomically (tmp file then rename).
func (s *Store) Save(c domain.Cursor) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &domain.OpError{
			Op:   "checkpoint.mkdir",
			Kind: domain.KindExecution,
			Path: s.dir,
			Err:  err,
		}
	}

	path := s.path(c.Job)
	b, err := yaml.Marshal(yamlCursor{
		Job:       c.Job,
		Next:      c.Next,
		Size:      c.Size,
		Total:     c.Total,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return &domain.OpError{
			Op:   "checkpoint.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return &domain.OpError{
			Op:   "checkpoint.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "checkpoint.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return nil
}

func (s *Store) path(job string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_").Replace(strings.TrimSpace(job))
	if name == "" {
		name = "default"
	}
	return filepath.Join(s.dir, name+".yaml")
}
