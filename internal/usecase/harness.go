package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/logger"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

// progressEvery controls how often a progress line is logged during long runs.
const progressEvery = 2000

// Outcome is what processing one unit of work produced.
type Outcome struct {
	Rows     [][]string
	Modified int
	Skipped  int
}

// Job is one kind of driver run. The harness owns the lifecycle (confirm, connect,
// report, timing); a Job only plans its work list and processes one unit at a time.
type Job[T any] interface {
	Name() string
	Header() []string
	Plan(ctx context.Context, svc ports.RecordService) ([]T, error)
	Process(ctx context.Context, svc ports.RecordService, item T, modify bool) (Outcome, error)
}

// Finisher is implemented by jobs that persist state once every unit succeeded.
type Finisher interface {
	Finish(ctx context.Context, summary domain.RunSummary) error
}

// RunOptions describe a single invocation.
type RunOptions struct {
	Instance   domain.Instance
	ModifyData bool
}

type Harness struct {
	connect   ports.Connector
	confirmer ports.Confirmer
	reports   ports.ReportSink
	log       *slog.Logger
	now       func() time.Time
}

type HarnessOption func(*Harness)

// WithClock is useful for tests.
func WithClock(now func() time.Time) HarnessOption {
	return func(h *Harness) { h.now = now }
}

func NewHarness(connect ports.Connector, confirmer ports.Confirmer, reports ports.ReportSink, log *slog.Logger, opts ...HarnessOption) *Harness {
	h := &Harness{
		connect:   connect,
		confirmer: confirmer,
		reports:   reports,
		log:       logger.Named(log, "usecase.harness"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes job. A declined confirmation is not an error: the summary comes back with
// Halted set and nothing was contacted. Any error from the job aborts the remaining work;
// rows already written stay in the report.
func Run[T any](ctx context.Context, h *Harness, job Job[T], opts RunOptions) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		Job:        job.Name(),
		Instance:   opts.Instance.Name,
		BaseURL:    opts.Instance.BaseURL,
		ModifyData: opts.ModifyData,
		StartedAt:  h.now(),
	}

	h.log.Info(fmt.Sprintf("Authenticating to '%s' (%s) as '%s' with modify_data set to '%t'",
		opts.Instance.Name, opts.Instance.BaseURL, opts.Instance.User, opts.ModifyData))

	if opts.ModifyData {
		conf, err := h.confirmer.Confirm(fmt.Sprintf("Data will be modified on '%s' (%s). Enter %s to proceed: ",
			opts.Instance.Name, opts.Instance.BaseURL, domain.ConfirmationToken))
		if err != nil {
			return summary, err
		}
		if !conf.Approved {
			h.log.Info(fmt.Sprintf("Halting process based on user input '%s' which is not '%s'", conf.Answer, domain.ConfirmationToken))
			summary.Halted = true
			summary.EndedAt = h.now()
			return summary, nil
		}
	}

	svc, err := h.connect(ctx)
	if err != nil {
		return summary, err
	}

	items, err := job.Plan(ctx, svc)
	if err != nil {
		return summary, fmt.Errorf("%s: plan: %w", job.Name(), err)
	}
	h.log.Info("Planned work", "job", job.Name(), "units", len(items))

	report, err := h.reports.Open(job.Name(), job.Header())
	if err != nil {
		return summary, err
	}
	defer func() {
		if cerr := report.Close(); cerr != nil {
			h.log.Warn("closing report failed", "path", report.Path(), "error", cerr)
		}
	}()
	summary.ReportPath = report.Path()

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if i > 0 && i%progressEvery == 0 {
			h.log.Info("Progress", "job", job.Name(), "done", i, "total", len(items))
		}

		out, perr := job.Process(ctx, svc, item, opts.ModifyData)
		for _, row := range out.Rows {
			if werr := report.WriteRow(row); werr != nil {
				h.log.Warn("writing report row failed", "path", report.Path(), "error", werr)
			}
		}
		summary.Processed += len(out.Rows)
		summary.Modified += out.Modified
		summary.Skipped += out.Skipped

		if perr != nil {
			summary.EndedAt = h.now()
			return summary, fmt.Errorf("%s: %w", job.Name(), perr)
		}
	}

	summary.EndedAt = h.now()
	if f, ok := job.(Finisher); ok {
		if err := f.Finish(ctx, summary); err != nil {
			return summary, fmt.Errorf("%s: finish: %w", job.Name(), err)
		}
	}

	h.log.Info("Run complete", "job", job.Name(), "processed", summary.Processed,
		"modified", summary.Modified, "skipped", summary.Skipped, "report", summary.ReportPath)
	h.log.Info(fmt.Sprintf("Total time to complete process: %s", summary.Elapsed()))
	return summary, nil
}
