package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aalvaropc/topcontainers/internal/domain"
)

// FindSettings searches startDir and its parents for topcontainers.yaml and returns its
// path. A KindNotFound error means no settings file exists; callers fall back to defaults.
func FindSettings(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "config.find_settings",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{
			Op:   "config.find_settings",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}

	// If user passes a file path, use its directory.
	info, statErr := os.Stat(abs)
	if statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	cur := filepath.Clean(abs)
	for {
		p := filepath.Join(cur, SettingsFile)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", &domain.OpError{
				Op:   "config.find_settings",
				Kind: domain.KindNotFound,
				Err:  domain.ErrNotFound,
			}
		}
		cur = parent
	}
}
