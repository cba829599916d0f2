package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/logger"
	"github.com/aalvaropc/topcontainers/internal/ports"
	"github.com/aalvaropc/topcontainers/internal/usecase/extract"
)

// PublishNotesJob publishes unpublished notes of one type across a chunk window of records.
type PublishNotesJob struct {
	scan scanner
	cols noteColumns
	log  *slog.Logger
}

func NewPublishNotes(cfg ScanConfig, cursors ports.CheckpointStore, log *slog.Logger) *PublishNotesJob {
	l := logger.Named(log, "usecase.publish_notes")
	return &PublishNotesJob{
		scan: scanner{
			cfg:     cfg,
			key:     fmt.Sprintf("publish-notes %s %s", cfg.Endpoint, cfg.NoteType),
			cursors: cursors,
			log:     l,
		},
		cols: newNoteColumns(cfg.ReportColumns, l),
		log:  l,
	}
}

func (j *PublishNotesJob) Name() string     { return "publish-notes" }
func (j *PublishNotesJob) Header() []string { return j.cols.header() }

func (j *PublishNotesJob) Plan(ctx context.Context, svc ports.RecordService) ([]int, error) {
	return j.scan.plan(ctx, svc)
}

func (j *PublishNotesJob) Process(ctx context.Context, svc ports.RecordService, id int, modify bool) (Outcome, error) {
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
	if !modify {
		j.log.Info(fmt.Sprintf("Dry run: %s notes would be published on %s", j.scan.cfg.NoteType, uri))
		return Outcome{Rows: [][]string{j.cols.row(rec, uri, title, ActionDryRun, changes)}}, nil
	}
	if _, err := svc.UpdateRecord(ctx, rec); err != nil {
		return Outcome{}, err
	}
	return Outcome{Rows: [][]string{j.cols.row(rec, uri, title, ActionUpdated, changes)}, Modified: 1}, nil
}

// Finish moves the cursor past the processed window. Dry runs leave it where it was.
func (j *PublishNotesJob) Finish(_ context.Context, summary domain.RunSummary) error {
	if !summary.ModifyData {
		return nil
	}
	return j.scan.advance()
}
