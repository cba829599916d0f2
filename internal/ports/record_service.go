package ports

import (
	"context"

	"github.com/aalvaropc/topcontainers/internal/domain"
)

// RecordService reads and writes records on the remote archival system.
type RecordService interface {
	GetRecord(ctx context.Context, uri string) (domain.Record, error)
	PostNewRecord(ctx context.Context, record domain.Record, endpoint string) (domain.Record, error)
	UpdateRecord(ctx context.Context, record domain.Record) (domain.Record, error)
	ListIDs(ctx context.Context, endpoint string) ([]int, error)
}

// Connector acquires an authenticated RecordService.
type Connector func(ctx context.Context) (RecordService, error)
