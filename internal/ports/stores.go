package ports

import "github.com/aalvaropc/topcontainers/internal/domain"

// MetadataSource loads operator metadata rows.
type MetadataSource interface {
	ReadMetadata(path string) ([]domain.MetadataRow, error)
}

// CheckpointStore persists the cursor of a resumable job between runs.
type CheckpointStore interface {
	Load(job string) (domain.Cursor, error)
	Save(cursor domain.Cursor) error
}

// BatchListStore reads and rewrites a resumable batch list.
type BatchListStore interface {
	LoadBatchList(path string) ([]domain.BatchEntry, error)
	SaveBatchList(path string, entries []domain.BatchEntry) error
}

// RunStore keeps a history of runs. runErr is the error the run ended with, if any.
type RunStore interface {
	SaveRun(summary domain.RunSummary, runErr error) (string, error)
}
