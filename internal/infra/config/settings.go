package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/topcontainers/internal/domain"
)

// SettingsFile is the optional per-project settings file.
const SettingsFile = "topcontainers.yaml"

type yamlSettings struct {
	TopContainers struct {
		RepositoryID  *string `yaml:"repository_id"`
		ChunkSize     *int    `yaml:"chunk_size"`
		BatchSize     *int    `yaml:"batch_size"`
		MaxBatches    *int    `yaml:"max_batches"`
		MaxChunks     *int    `yaml:"max_chunks"`
		ResourceType  *string `yaml:"resource_type"`
		NoteType      *string `yaml:"note_type"`
		HTTPTimeout   *string `yaml:"http_timeout"`
		CheckpointDir *string `yaml:"checkpoint_dir"`

		ReportColumns map[string]string `yaml:"report_columns"`
	} `yaml:"topcontainers"`
}

// LoadSettings applies the YAML file at path on top of defaults. An empty path returns
// defaults.
func LoadSettings(path string) (domain.Settings, error) {
	const op = "config.load_settings"
	cfg := domain.DefaultSettings()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{Op: op, Kind: domain.KindNotFound, Path: path, Err: err}
	}

	var y yamlSettings
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{Op: op, Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}

	tc := y.TopContainers
	if tc.RepositoryID != nil {
		cfg.RepositoryID = *tc.RepositoryID
	}
	if tc.ChunkSize != nil {
		cfg.ChunkSize = *tc.ChunkSize
	}
	if tc.BatchSize != nil {
		cfg.BatchSize = *tc.BatchSize
	}
	if tc.MaxBatches != nil {
		cfg.MaxBatches = *tc.MaxBatches
	}
	if tc.MaxChunks != nil {
		cfg.MaxChunks = *tc.MaxChunks
	}
	if tc.ResourceType != nil {
		cfg.ResourceType = *tc.ResourceType
	}
	if tc.NoteType != nil {
		cfg.NoteType = *tc.NoteType
	}
	if tc.CheckpointDir != nil {
		cfg.CheckpointDir = *tc.CheckpointDir
	}
	if len(tc.ReportColumns) > 0 {
		cfg.ReportColumns = tc.ReportColumns
	}
	if tc.HTTPTimeout != nil {
		d, err := time.ParseDuration(*tc.HTTPTimeout)
		if err != nil {
			return cfg, &domain.OpError{Op: op, Kind: domain.KindInvalidConfig, Path: path, Err: fmt.Errorf("http_timeout: %w", err)}
		}
		cfg.HTTPTimeout = d
	}

	if err := Validate(cfg); err != nil {
		var oe *domain.OpError
		if errors.As(err, &oe) {
			oe.Path = path
		}
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings no driver can run with.
func Validate(s domain.Settings) error {
	var problems []string
	if s.ChunkSize <= 0 {
		problems = append(problems, "chunk_size must be > 0")
	}
	if s.BatchSize <= 0 {
		problems = append(problems, "batch_size must be > 0")
	}
	if s.MaxBatches <= 0 {
		problems = append(problems, "max_batches must be > 0")
	}
	if s.MaxChunks <= 0 {
		problems = append(problems, "max_chunks must be > 0")
	}
	if strings.TrimSpace(s.RepositoryID) == "" {
		problems = append(problems, "repository_id is required")
	}
	if s.HTTPTimeout < 0 {
		problems = append(problems, "http_timeout must not be negative")
	}
	problems = append(problems, reportColumnProblems(s.ReportColumns)...)
	if len(problems) == 0 {
		return nil
	}
	return &domain.OpError{
		Op:   "config.validate",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(problems, "; ")),
	}
}

func reportColumnProblems(cols map[string]string) []string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		switch {
		case strings.TrimSpace(name) == "":
			problems = append(problems, "report_columns: empty column name")
		case slices.Contains(domain.NoteReportColumns, name):
			problems = append(problems, fmt.Sprintf("report_columns: %q is a built-in column", name))
		case !strings.HasPrefix(strings.TrimSpace(cols[name]), "$"):
			problems = append(problems, fmt.Sprintf("report_columns.%s: expected a JSONPath starting with $", name))
		}
	}
	return problems
}
