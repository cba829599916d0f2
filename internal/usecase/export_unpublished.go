package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/logger"
	"github.com/aalvaropc/topcontainers/internal/ports"
	"github.com/aalvaropc/topcontainers/internal/usecase/extract"
)

// ExportUnpublished scans a chunk window read-only and records every record that still has
// unpublished notes in a batch list, for publish-batches to work through later.
// Entries already in the list are kept; a URI is never listed twice.
type ExportUnpublished struct {
	scan  scanner
	cols  noteColumns
	lists ports.BatchListStore
	path  string
	log   *slog.Logger

	entries []domain.BatchEntry
	seen    map[string]bool
}

func NewExportUnpublished(cfg ScanConfig, cursors ports.CheckpointStore, lists ports.BatchListStore, path string, log *slog.Logger) *ExportUnpublished {
	l := logger.Named(log, "usecase.export_unpublished")
	return &ExportUnpublished{
		scan: scanner{
			cfg:     cfg,
			key:     fmt.Sprintf("export-unpublished %s %s", cfg.Endpoint, cfg.NoteType),
			cursors: cursors,
			log:     l,
		},
		cols:  newNoteColumns(cfg.ReportColumns, l),
		lists: lists,
		path:  path,
		log:   l,
	}
}

func (j *ExportUnpublished) Name() string     { return "export-unpublished" }
func (j *ExportUnpublished) Header() []string { return j.cols.header() }

func (j *ExportUnpublished) Plan(ctx context.Context, svc ports.RecordService) ([]int, error) {
	existing, err := j.lists.LoadBatchList(j.path)
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}
	j.entries = existing
	j.seen = make(map[string]bool, len(existing))
	for _, e := range existing {
		j.seen[e.URI] = true
	}
	return j.scan.plan(ctx, svc)
}

// Process never writes to the remote service.
func (j *ExportUnpublished) Process(ctx context.Context, svc ports.RecordService, id int, _ bool) (Outcome, error) {
	uri := domain.RecordURI(j.scan.cfg.Endpoint, id)
	rec, err := svc.GetRecord(ctx, uri)
	if err != nil {
		return Outcome{}, err
	}
	title := extract.First(rec, "$.display_string", "$.title")

	changes := PublishNotes(rec, j.scan.cfg.NoteType)
	if !changes.Any() {
		return Outcome{Rows: [][]string{j.cols.row(rec, uri, title, ActionUnchanged, changes)}, Skipped: 1}, nil
	}
	if !j.seen[uri] {
		j.seen[uri] = true
		j.entries = append(j.entries, domain.BatchEntry{
			ID:            strconv.Itoa(id),
			URI:           uri,
			ResourceURI:   extract.First(rec, "$.resource.ref"),
			DisplayString: title,
		})
	}
	return Outcome{Rows: [][]string{j.cols.row(rec, uri, title, ActionListed, changes)}}, nil
}

// Finish writes the batch list and moves the cursor. Both happen in dry runs too,
// since nothing remote was touched.
func (j *ExportUnpublished) Finish(_ context.Context, _ domain.RunSummary) error {
	if err := j.lists.SaveBatchList(j.path, j.entries); err != nil {
		return err
	}
	j.log.Info(fmt.Sprintf("Wrote %d entries to %s", len(j.entries), j.path))
	return j.scan.advance()
}
