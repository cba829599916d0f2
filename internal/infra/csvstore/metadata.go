// Package csvstore reads and writes the spreadsheets operators exchange with the tool:
// metadata input, audit reports and resumable batch lists.
package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

// MetadataReader loads metadata CSVs and checks their required columns.
type MetadataReader struct {
	required []string
}

func NewMetadataReader(required ...string) *MetadataReader {
	if len(required) == 0 {
		required = domain.MetadataColumns
	}
	return &MetadataReader{required: required}
}

var _ ports.MetadataSource = (*MetadataReader)(nil)

func (r *MetadataReader) ReadMetadata(path string) ([]domain.MetadataRow, error) {
	const op = "csvstore.read_metadata"

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.OpError{Op: op, Kind: domain.KindNotFound, Path: path, Err: err}
	}
	defer f.Close()

	header, records, err := readAll(f)
	if err != nil {
		return nil, &domain.OpError{Op: op, Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}

	if missing := missingColumns(header, r.required); len(missing) > 0 {
		return nil, &domain.OpError{
			Op:   op,
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("%w: missing column(s) %s", domain.ErrInvalidConfig, strings.Join(missing, ", ")),
		}
	}

	rows := make([]domain.MetadataRow, 0, len(records))
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		row := make(domain.MetadataRow, len(header))
		for i, col := range header {
			row[col] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readAll returns the normalized header and the remaining records.
func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty csv: no header row")
		}
		return nil, nil, err
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

func missingColumns(header, required []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, col := range required {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
