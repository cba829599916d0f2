package csvstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

// ReportSink creates timestamped audit CSVs in a directory.
type ReportSink struct {
	dir string
	now func() time.Time
}

type ReportOption func(*ReportSink)

// WithNow is useful for tests.
func WithNow(now func() time.Time) ReportOption {
	return func(s *ReportSink) { s.now = now }
}

func NewReportSink(dir string, opts ...ReportOption) *ReportSink {
	s := &ReportSink{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ReportSink = (*ReportSink)(nil)

// Open creates <dir>/<name>_<timestamp>.csv, adding a numeric suffix if that file exists,
// and writes the header.
func (s *ReportSink) Open(name string, header []string) (ports.ReportWriter, error) {
	const op = "csvstore.open_report"

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, &domain.OpError{Op: op, Kind: domain.KindExecution, Path: s.dir, Err: err}
	}

	base := fmt.Sprintf("%s_%s", slugify(name), s.now().UTC().Format("20060102T150405Z"))
	var (
		f    *os.File
		path string
		err  error
	)
	for i := 1; ; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d", base, i)
		}
		path = filepath.Join(s.dir, candidate+".csv")
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, &domain.OpError{Op: op, Kind: domain.KindExecution, Path: path, Err: err}
		}
	}

	w := &reportWriter{f: f, csv: csv.NewWriter(f), path: path}
	if err := w.WriteRow(header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

type reportWriter struct {
	f    *os.File
	csv  *csv.Writer
	path string
}

func (w *reportWriter) WriteRow(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return &domain.OpError{Op: "csvstore.write_report", Kind: domain.KindExecution, Path: w.path, Err: err}
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return &domain.OpError{Op: "csvstore.write_report", Kind: domain.KindExecution, Path: w.path, Err: err}
	}
	return nil
}

func (w *reportWriter) Path() string { return w.path }

func (w *reportWriter) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "report"
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "report"
	}
	return out
}
