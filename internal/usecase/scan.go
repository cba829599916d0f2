package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/ports"
	"github.com/aalvaropc/topcontainers/internal/usecase/extract"
)

// ScanConfig selects which records a note scan visits.
type ScanConfig struct {
	Endpoint  string
	NoteType  string
	ChunkSize int
	MaxChunks int
	// ResumeFrom overrides the stored cursor when >= 0.
	ResumeFrom int
	// ReportColumns maps extra audit column names to JSONPath expressions.
	ReportColumns map[string]string
}

// NoteHeader is the audit header shared by the note jobs.
var NoteHeader = domain.NoteReportColumns

// scanner lists every id under an endpoint, sorts them and keeps the chunk window
// selected by the cursor.
type scanner struct {
	cfg     ScanConfig
	key     string
	cursors ports.CheckpointStore
	log     *slog.Logger

	start, end, total int
}

func (s *scanner) plan(ctx context.Context, svc ports.RecordService) ([]int, error) {
	ids, err := svc.ListIDs(ctx, s.cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	sort.Ints(ids)
	chunks := Chunk(ids, s.cfg.ChunkSize)

	cursor, err := s.cursors.Load(s.key)
	if err != nil {
		return nil, err
	}
	s.total = len(chunks)
	s.start, s.end = Window(cursor, s.cfg.ResumeFrom, s.cfg.ChunkSize, s.cfg.MaxChunks, s.total)

	s.log.Info(fmt.Sprintf("Found %d records in %d chunks of %d", len(ids), s.total, s.cfg.ChunkSize),
		"endpoint", s.cfg.Endpoint)
	for i, c := range chunks {
		s.log.Debug("chunk", "num", i, "size", len(c))
	}
	if s.start >= s.end {
		if cursor.Done() {
			s.log.Info(fmt.Sprintf("All %d chunks were processed by earlier runs", cursor.Total), "next", cursor.Next)
		} else {
			s.log.Info("No chunks left to process", "next", s.start, "total", s.total)
		}
		return nil, nil
	}
	s.log.Info("Processing chunks", "from", s.start, "to", s.end-1)

	var items []int
	for _, c := range chunks[s.start:s.end] {
		items = append(items, c...)
	}
	return items, nil
}

func (s *scanner) advance() error {
	return s.cursors.Save(domain.Cursor{
		Job:   s.key,
		Next:  s.end,
		Size:  s.cfg.ChunkSize,
		Total: s.total,
	})
}

// noteColumns builds note audit rows: NoteHeader followed by the configured report
// columns in name order.
type noteColumns struct {
	rules extract.Rules
	names []string
	log   *slog.Logger
}

func newNoteColumns(rules map[string]string, log *slog.Logger) noteColumns {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return noteColumns{rules: extract.Rules(rules), names: names, log: log}
}

func (c noteColumns) header() []string {
	return append(append([]string(nil), NoteHeader...), c.names...)
}

// row leaves a configured column empty when rec is nil or its expression matches nothing.
func (c noteColumns) row(rec domain.Record, uri, title, action string, changes NoteChanges) []string {
	b, _ := json.Marshal(changes)
	row := []string{uri, title, action, string(b)}
	if len(c.names) == 0 {
		return row
	}

	values, results := extract.Apply(rec, c.rules)
	if rec != nil {
		for _, r := range results {
			if !r.Success {
				c.log.Debug(r.Message, "uri", uri)
			}
		}
	}
	for _, name := range c.names {
		row = append(row, values[name])
	}
	return row
}
