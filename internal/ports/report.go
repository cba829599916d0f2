package ports

// ReportWriter appends audit rows; each row is flushed before WriteRow returns.
type ReportWriter interface {
	WriteRow(row []string) error
	Path() string
	Close() error
}

// ReportSink opens a new audit report for a job.
type ReportSink interface {
	Open(name string, header []string) (ReportWriter, error)
}
