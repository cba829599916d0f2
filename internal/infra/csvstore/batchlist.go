package csvstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

// Batch list columns.
var BatchListHeader = []string{
	"archival_object_id",
	"archival_object_uris",
	"resource_uri",
	"display_string",
	"updated",
}

// BatchLists reads and rewrites batch-list CSVs in place.
type BatchLists struct{}

func NewBatchLists() *BatchLists { return &BatchLists{} }

var _ ports.BatchListStore = (*BatchLists)(nil)

func (s *BatchLists) LoadBatchList(path string) ([]domain.BatchEntry, error) {
	const op = "csvstore.load_batch_list"

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.OpError{Op: op, Kind: domain.KindNotFound, Path: path, Err: err}
	}
	defer f.Close()

	header, records, err := readAll(f)
	if err != nil {
		return nil, &domain.OpError{Op: op, Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}
	if missing := missingColumns(header, BatchListHeader); len(missing) > 0 {
		return nil, &domain.OpError{
			Op:   op,
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("%w: missing column(s) %s", domain.ErrInvalidConfig, strings.Join(missing, ", ")),
		}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}

	entries := make([]domain.BatchEntry, 0, len(records))
	for n, rec := range records {
		if isBlank(rec) {
			continue
		}
		updated := false
		if raw := strings.TrimSpace(rec[idx["updated"]]); raw != "" {
			updated, err = strconv.ParseBool(raw)
			if err != nil {
				return nil, &domain.OpError{
					Op:   op,
					Kind: domain.KindInvalidConfig,
					Path: path,
					Err:  fmt.Errorf("line %d: updated=%q: %w", n+2, raw, err),
				}
			}
		}
		entries = append(entries, domain.BatchEntry{
			ID:            strings.TrimSpace(rec[idx["archival_object_id"]]),
			URI:           strings.TrimSpace(rec[idx["archival_object_uris"]]),
			ResourceURI:   strings.TrimSpace(rec[idx["resource_uri"]]),
			DisplayString: rec[idx["display_string"]],
			Updated:       updated,
		})
	}
	return entries, nil
}

// SaveBatchList writes entries to a temp file and renames it over path.
func (s *BatchLists) SaveBatchList(path string, entries []domain.BatchEntry) error {
	const op = "csvstore.save_batch_list"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: path, Err: err}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: tmp, Err: err}
	}

	w := csv.NewWriter(f)
	_ = w.Write(BatchListHeader)
	for _, e := range entries {
		_ = w.Write([]string{e.ID, e.URI, e.ResourceURI, e.DisplayString, formatBool(e.Updated)})
	}
	w.Flush()
	werr := w.Error()
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: tmp, Err: werr}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// formatBool matches the spreadsheets produced by earlier tooling ("True"/"False").
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
