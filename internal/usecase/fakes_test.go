package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

// fakeService keeps records in memory and records every write.
type fakeService struct {
	mu      sync.Mutex
	records map[string]domain.Record
	ids     map[string][]int
	posts   []string
	updates []string
	failOn  map[string]error
	nextID  int
}

func newFakeService() *fakeService {
	return &fakeService{
		records: map[string]domain.Record{},
		ids:     map[string][]int{},
		failOn:  map[string]error{},
		nextID:  100,
	}
}

// put stores a deep copy so tests can mutate their fixtures freely.
func (f *fakeService) put(uri string, rec domain.Record) {
	f.records[uri] = clone(rec)
}

func clone(rec domain.Record) domain.Record {
	b, err := json.Marshal(rec)
	if err != nil {
		panic(err)
	}
	var out domain.Record
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}

func (f *fakeService) GetRecord(_ context.Context, uri string) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["GET "+uri]; err != nil {
		return nil, err
	}
	rec, ok := f.records[uri]
	if !ok {
		return nil, &domain.OpError{Op: "fake.get", Kind: domain.KindHTTP, Path: uri, Err: domain.ErrHTTPStatus}
	}
	return clone(rec), nil
}

func (f *fakeService) PostNewRecord(_ context.Context, rec domain.Record, endpoint string) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn["POST "+endpoint]; err != nil {
		return nil, err
	}
	f.nextID++
	uri := fmt.Sprintf("%s/%d", endpoint, f.nextID)
	stored := clone(rec)
	stored["uri"] = uri
	f.records[uri] = stored
	f.posts = append(f.posts, endpoint)
	return domain.Record{"status": "Created", "id": float64(f.nextID), "uri": uri}, nil
}

func (f *fakeService) UpdateRecord(_ context.Context, rec domain.Record) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uri, ok := rec.URI()
	if !ok {
		return nil, domain.MissingField("fake.update", "uri")
	}
	if err := f.failOn["POST "+uri]; err != nil {
		return nil, err
	}
	f.records[uri] = clone(rec)
	f.updates = append(f.updates, uri)
	return domain.Record{"status": "Updated", "uri": uri}, nil
}

func (f *fakeService) ListIDs(_ context.Context, endpoint string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := append([]int(nil), f.ids[endpoint]...)
	return ids, nil
}

func (f *fakeService) connector() ports.Connector {
	return func(context.Context) (ports.RecordService, error) { return f, nil }
}

type fakeConfirmer struct {
	answer string
	asked  int
}

func (c *fakeConfirmer) Confirm(string) (domain.Confirmation, error) {
	c.asked++
	return domain.Confirmation{Answer: c.answer, Approved: c.answer == domain.ConfirmationToken}, nil
}

type memReport struct {
	name   string
	header []string
	rows   [][]string
	closed bool
}

func (r *memReport) WriteRow(row []string) error {
	r.rows = append(r.rows, append([]string(nil), row...))
	return nil
}
func (r *memReport) Path() string { return r.name + ".csv" }
func (r *memReport) Close() error { r.closed = true; return nil }

type memReports struct {
	opened []*memReport
}

func (s *memReports) Open(name string, header []string) (ports.ReportWriter, error) {
	r := &memReport{name: name, header: header}
	s.opened = append(s.opened, r)
	return r, nil
}

func (s *memReports) last() *memReport {
	if len(s.opened) == 0 {
		return nil
	}
	return s.opened[len(s.opened)-1]
}

type memCursors struct {
	saved map[string]domain.Cursor
	saves int
}

func newMemCursors() *memCursors { return &memCursors{saved: map[string]domain.Cursor{}} }

func (m *memCursors) Load(job string) (domain.Cursor, error) {
	c, ok := m.saved[job]
	if !ok {
		return domain.Cursor{Job: job}, nil
	}
	return c, nil
}

func (m *memCursors) Save(c domain.Cursor) error {
	m.saved[c.Job] = c
	m.saves++
	return nil
}

// only returns the single saved cursor.
func (m *memCursors) only() domain.Cursor {
	keys := make([]string, 0, len(m.saved))
	for k := range m.saved {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) != 1 {
		panic(fmt.Sprintf("expected one cursor, have %v", keys))
	}
	return m.saved[keys[0]]
}

type memBatchLists struct {
	lists map[string][]domain.BatchEntry
	saves int
}

func newMemBatchLists() *memBatchLists {
	return &memBatchLists{lists: map[string][]domain.BatchEntry{}}
}

func (m *memBatchLists) LoadBatchList(path string) ([]domain.BatchEntry, error) {
	l, ok := m.lists[path]
	if !ok {
		return nil, &domain.OpError{Op: "mem.load", Kind: domain.KindNotFound, Path: path, Err: domain.ErrNotFound}
	}
	return append([]domain.BatchEntry(nil), l...), nil
}

func (m *memBatchLists) SaveBatchList(path string, entries []domain.BatchEntry) error {
	m.lists[path] = append([]domain.BatchEntry(nil), entries...)
	m.saves++
	return nil
}

func note(noteType string, publish bool, subnotes ...bool) map[string]any {
	n := map[string]any{"jsonmodel_type": "note_multipart", "type": noteType, "publish": publish}
	subs := make([]any, 0, len(subnotes))
	for _, p := range subnotes {
		subs = append(subs, map[string]any{"jsonmodel_type": "note_text", "publish": p})
	}
	n["subnotes"] = subs
	return n
}

func archivalObject(uri string, notes ...map[string]any) domain.Record {
	ns := make([]any, 0, len(notes))
	for _, n := range notes {
		ns = append(ns, n)
	}
	return domain.Record{
		"uri":            uri,
		"lock_version":   1,
		"display_string": "AO " + uri,
		"resource":       map[string]any{"ref": "/repositories/2/resources/1"},
		"notes":          ns,
	}
}
