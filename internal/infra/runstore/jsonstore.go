// Package runstore keeps a JSON history of driver runs next to the audit reports.
package runstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

const defaultRunsDir = "runs"
const maskValue = "********"

type JSONStore struct {
	rootDir     string
	runsDirName string
	writeIndex  bool
	now         func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

// WithRunsDir changes the directory name under root.
func WithRunsDir(name string) Option {
	return func(s *JSONStore) {
		if strings.TrimSpace(name) != "" {
			s.runsDirName = name
		}
	}
}

func NewJSONStore(root string, opts ...Option) *JSONStore {
	s := &JSONStore{
		rootDir:     root,
		runsDirName: defaultRunsDir,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.RunStore = (*JSONStore)(nil)

// Run is the persisted form of a run.
type Run struct {
	Job        string    `json:"job"`
	Instance   string    `json:"instance"`
	BaseURL    string    `json:"base_url"`
	ModifyData bool      `json:"modify_data"`
	Halted     bool      `json:"halted"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Elapsed    string    `json:"elapsed"`
	Processed  int       `json:"processed"`
	Modified   int       `json:"modified"`
	Skipped    int       `json:"skipped"`
	ReportPath string    `json:"report_path,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func (s *JSONStore) SaveRun(summary domain.RunSummary, runErr error) (string, error) {
	dir := filepath.Join(s.rootDir, s.runsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	ts := summary.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	run := Run{
		Job:        summary.Job,
		Instance:   string(summary.Instance),
		BaseURL:    maskURL(summary.BaseURL),
		ModifyData: summary.ModifyData,
		Halted:     summary.Halted,
		StartedAt:  ts,
		EndedAt:    summary.EndedAt,
		Elapsed:    summary.Elapsed().String(),
		Processed:  summary.Processed,
		Modified:   summary.Modified,
		Skipped:    summary.Skipped,
		ReportPath: summary.ReportPath,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	slug := slugify(summary.Job)
	if slug == "" {
		slug = "run"
	}
	base := fmt.Sprintf("%s_%s", ts.Format("20060102T150405Z"), slug)
	id := base
	for n := 2; fileExists(filepath.Join(dir, id+".json")); n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	filename := id + ".json"
	path := filepath.Join(dir, filename)

	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(dir, id, filename, run)
	}

	return id, nil
}

// IndexEntry is one line of runs/index.jsonl.
type IndexEntry struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Job       string    `json:"job"`
	Instance  string    `json:"instance"`
	Modify    bool      `json:"modify_data"`
	Failed    bool      `json:"failed"`
	StartedAt time.Time `json:"started_at"`
}

func (s *JSONStore) appendIndex(dir, id, filename string, run Run) error {
	line, err := json.Marshal(IndexEntry{
		ID:        id,
		File:      filename,
		Job:       run.Job,
		Instance:  run.Instance,
		Modify:    run.ModifyData,
		Failed:    run.Error != "",
		StartedAt: run.StartedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

// ListRuns reads the index, oldest first. No index means no runs.
func (s *JSONStore) ListRuns() ([]IndexEntry, error) {
	path := filepath.Join(s.rootDir, s.runsDirName, "index.jsonl")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []IndexEntry{}, nil
		}
		return nil, &domain.OpError{Op: "runstore.list", Kind: domain.KindExecution, Path: path, Err: err}
	}
	defer f.Close()

	out := []IndexEntry{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e IndexEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, &domain.OpError{Op: "runstore.list", Kind: domain.KindDecode, Path: path, Err: err}
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.OpError{Op: "runstore.list", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return out, nil
}

// maskURL hides credentials embedded in a base URL (user:password@host) and any
// query values that look secret.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), maskValue)
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			if isSensitiveKey(k) {
				q.Set(k, maskValue)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func isSensitiveKey(k string) bool {
	kk := strings.ToLower(k)
	return strings.Contains(kk, "token") ||
		strings.Contains(kk, "secret") ||
		strings.Contains(kk, "password") ||
		strings.Contains(kk, "session")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
