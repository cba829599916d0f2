package domain

import "time"

// ConfirmationToken is the only answer that lets a modifying run proceed.
const ConfirmationToken = "y"

// Confirmation is the operator's answer to the modify-data prompt.
type Confirmation struct {
	Answer   string
	Approved bool
}

// RunSummary describes the outcome of one driver run.
type RunSummary struct {
	Job        string
	Instance   InstanceName
	BaseURL    string
	ModifyData bool
	Halted     bool

	StartedAt time.Time
	EndedAt   time.Time

	Processed int
	Modified  int
	Skipped   int

	ReportPath string
}

// Elapsed is the wall-clock duration of the run.
func (s RunSummary) Elapsed() time.Duration {
	if s.StartedAt.IsZero() || s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Cursor is the persisted position of a resumable job.
type Cursor struct {
	Job       string
	Next      int // next chunk or batch number to process
	Size      int // chunk or batch size the cursor was computed with
	Total     int // number of chunks or batches seen on the last run
	UpdatedAt time.Time
}

// Done reports whether the cursor has moved past the last known window.
func (c Cursor) Done() bool {
	return c.Total > 0 && c.Next >= c.Total
}

// BatchEntry is one row of a resumable batch list.
type BatchEntry struct {
	ID            string
	URI           string
	ResourceURI   string
	DisplayString string
	Updated       bool
}
