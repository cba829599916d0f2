package domain

import "time"

// Config is built once at process start and passed to every component that needs it.
type Config struct {
	Instance Instance
	Settings Settings
}

// Settings holds tunables loaded from topcontainers.yaml; flags override them.
type Settings struct {
	RepositoryID  string
	ChunkSize     int
	BatchSize     int
	MaxBatches    int
	MaxChunks     int
	ResourceType  string
	NoteType      string
	HTTPTimeout   time.Duration
	CheckpointDir string
	// ReportColumns adds audit columns to the note jobs: column name to JSONPath.
	ReportColumns map[string]string
}

// NoteReportColumns are the fixed audit columns of the note jobs.
var NoteReportColumns = []string{"uri", "title", "action", "data"}

// DefaultChunkSize partitions an all_ids listing into windows processed per run.
const DefaultChunkSize = 50_000

// DefaultSettings provides sane defaults if topcontainers.yaml is partially missing.
func DefaultSettings() Settings {
	return Settings{
		RepositoryID:  "2",
		ChunkSize:     DefaultChunkSize,
		BatchSize:     100,
		MaxBatches:    10,
		MaxChunks:     1,
		ResourceType:  "archival_objects",
		NoteType:      "accessrestrict",
		HTTPTimeout:   60 * time.Second,
		CheckpointDir: ".topcontainers/checkpoints",
	}
}
