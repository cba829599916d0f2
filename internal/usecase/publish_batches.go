package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/logger"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

// BatchConfig selects which batches of a batch list a run works through.
type BatchConfig struct {
	Path       string
	NoteType   string
	BatchSize  int
	MaxBatches int
	// ResumeFrom overrides the stored cursor when >= 0.
	ResumeFrom int
	// ReportColumns maps extra audit column names to JSONPath expressions.
	ReportColumns map[string]string
}

// Batch is a numbered slice of a batch list. Entries alias the loaded list, so marking
// an entry updated is visible when the whole list is saved.
type Batch struct {
	Num     int
	Entries []domain.BatchEntry
}

// PublishBatches publishes notes on the records of a batch list, a few batches per run.
// In modify mode the list is rewritten and the cursor saved after every batch, so an
// interrupted run resumes where it stopped.
type PublishBatches struct {
	cfg     BatchConfig
	lists   ports.BatchListStore
	cursors ports.CheckpointStore
	cols    noteColumns
	log     *slog.Logger

	entries []domain.BatchEntry
	total   int
}

func NewPublishBatches(cfg BatchConfig, lists ports.BatchListStore, cursors ports.CheckpointStore, log *slog.Logger) *PublishBatches {
	l := logger.Named(log, "usecase.publish_batches")
	return &PublishBatches{
		cfg:     cfg,
		lists:   lists,
		cursors: cursors,
		cols:    newNoteColumns(cfg.ReportColumns, l),
		log:     l,
	}
}

func (j *PublishBatches) Name() string     { return "publish-batches" }
func (j *PublishBatches) Header() []string { return j.cols.header() }

func (j *PublishBatches) cursorKey() string { return "publish-batches " + j.cfg.Path }

func (j *PublishBatches) Plan(_ context.Context, _ ports.RecordService) ([]Batch, error) {
	entries, err := j.lists.LoadBatchList(j.cfg.Path)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &domain.OpError{
			Op:   "usecase.publish_batches",
			Kind: domain.KindInvalidConfig,
			Path: j.cfg.Path,
			Err:  errors.New("batch list is empty"),
		}
	}
	j.entries = entries

	chunks := Chunk(j.entries, j.cfg.BatchSize)
	j.total = len(chunks)

	cursor, err := j.cursors.Load(j.cursorKey())
	if err != nil {
		return nil, err
	}
	start, end := Window(cursor, j.cfg.ResumeFrom, j.cfg.BatchSize, j.cfg.MaxBatches, j.total)
	j.log.Info(fmt.Sprintf("Loaded %d entries in %d batches of %d", len(entries), j.total, j.cfg.BatchSize),
		"path", j.cfg.Path)
	if start >= end {
		if cursor.Done() {
			j.log.Info(fmt.Sprintf("All %d batches were processed by earlier runs", cursor.Total), "next", cursor.Next)
		} else {
			j.log.Info("No batches left to process", "next", start, "total", j.total)
		}
		return nil, nil
	}
	j.log.Info("Processing batches", "from", start, "to", end-1)

	batches := make([]Batch, 0, end-start)
	for n := start; n < end; n++ {
		batches = append(batches, Batch{Num: n, Entries: chunks[n]})
	}
	return batches, nil
}

func (j *PublishBatches) Process(ctx context.Context, svc ports.RecordService, b Batch, modify bool) (Outcome, error) {
	j.log.Info(fmt.Sprintf("Starting batch %d of %d", b.Num, j.total), "entries", len(b.Entries))

	var out Outcome
	for i := range b.Entries {
		entry := &b.Entries[i]
		if entry.Updated {
			out.Rows = append(out.Rows, j.cols.row(nil, entry.URI, entry.DisplayString, ActionAlreadyDone, NoteChanges{}))
			out.Skipped++
			continue
		}

		rec, err := svc.GetRecord(ctx, entry.URI)
		if err != nil {
			return out, j.checkpoint(b.Num, modify, err)
		}
		changes := PublishNotes(rec, j.cfg.NoteType)
		switch {
		case !changes.Any():
			out.Rows = append(out.Rows, j.cols.row(rec, entry.URI, entry.DisplayString, ActionUnchanged, changes))
			out.Skipped++
			if modify {
				entry.Updated = true
			}
		case !modify:
			j.log.Info(fmt.Sprintf("Dry run: %s notes would be published on %s", j.cfg.NoteType, entry.URI))
			out.Rows = append(out.Rows, j.cols.row(rec, entry.URI, entry.DisplayString, ActionDryRun, changes))
		default:
			if _, err := svc.UpdateRecord(ctx, rec); err != nil {
				return out, j.checkpoint(b.Num, modify, err)
			}
			entry.Updated = true
			out.Rows = append(out.Rows, j.cols.row(rec, entry.URI, entry.DisplayString, ActionUpdated, changes))
			out.Modified++
		}
	}

	return out, j.checkpoint(b.Num+1, modify, nil)
}

// checkpoint saves the batch list and cursor in modify mode. next is the batch to resume
// from. cause, when set, is returned joined with any save failure.
func (j *PublishBatches) checkpoint(next int, modify bool, cause error) error {
	if !modify {
		return cause
	}
	saveErr := j.lists.SaveBatchList(j.cfg.Path, j.entries)
	if saveErr == nil {
		saveErr = j.cursors.Save(domain.Cursor{
			Job:   j.cursorKey(),
			Next:  next,
			Size:  j.cfg.BatchSize,
			Total: j.total,
		})
	}
	if saveErr == nil && cause == nil {
		j.log.Info(fmt.Sprintf("Saved progress: next batch is %d", next))
	}
	return errors.Join(cause, saveErr)
}
