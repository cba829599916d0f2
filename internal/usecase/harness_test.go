package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/logger"
	"github.com/aalvaropc/topcontainers/internal/ports"
)

type stubJob struct {
	items    []string
	failAt   string
	finished *domain.RunSummary
}

func (j *stubJob) Name() string     { return "stub" }
func (j *stubJob) Header() []string { return []string{"item", "modify"} }

func (j *stubJob) Plan(context.Context, ports.RecordService) ([]string, error) {
	return j.items, nil
}

func (j *stubJob) Process(_ context.Context, _ ports.RecordService, item string, modify bool) (Outcome, error) {
	if item == j.failAt {
		return Outcome{}, errors.New("boom")
	}
	out := Outcome{Rows: [][]string{{item, map[bool]string{true: "yes", false: "no"}[modify]}}}
	if modify {
		out.Modified = 1
	}
	return out, nil
}

func (j *stubJob) Finish(_ context.Context, s domain.RunSummary) error {
	j.finished = &s
	return nil
}

func newTestHarness(t *testing.T, connect ports.Connector, conf ports.Confirmer, reports ports.ReportSink) (*Harness, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, closeFn, err := logger.Setup(logger.Config{Out: &buf})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 90 * time.Second)
	}
	return NewHarness(connect, conf, reports, log, WithClock(clock)), &buf
}

var devInstance = domain.Instance{Name: domain.InstanceDev, BaseURL: "http://aspace.test/api", User: "archivist"}

func TestRun_DeclinedConfirmationHalts(t *testing.T) {
	connected := false
	connect := func(context.Context) (ports.RecordService, error) {
		connected = true
		return nil, errors.New("should not connect")
	}
	conf := &fakeConfirmer{answer: "x"}
	reports := &memReports{}
	h, logs := newTestHarness(t, connect, conf, reports)

	job := &stubJob{items: []string{"a"}}
	summary, err := Run[string](context.Background(), h, job, RunOptions{Instance: devInstance, ModifyData: true})

	require.NoError(t, err)
	assert.True(t, summary.Halted)
	assert.Equal(t, 1, conf.asked)
	assert.False(t, connected)
	assert.Empty(t, reports.opened)
	assert.Nil(t, job.finished)
	assert.Contains(t, logs.String(), "INFO usecase.harness.Run(): Halting process based on user input 'x' which is not 'y'")
	assert.Contains(t, logs.String(), "Authenticating to 'dev' (http://aspace.test/api) as 'archivist' with modify_data set to 'true'")
}

func TestRun_DryRunDoesNotPrompt(t *testing.T) {
	svc := newFakeService()
	conf := &fakeConfirmer{}
	reports := &memReports{}
	h, logs := newTestHarness(t, svc.connector(), conf, reports)

	job := &stubJob{items: []string{"a", "b"}}
	summary, err := Run[string](context.Background(), h, job, RunOptions{Instance: devInstance})

	require.NoError(t, err)
	assert.Zero(t, conf.asked)
	assert.False(t, summary.Halted)
	assert.Equal(t, 2, summary.Processed)
	assert.Zero(t, summary.Modified)

	rep := reports.last()
	require.NotNil(t, rep)
	assert.Equal(t, "stub", rep.name)
	assert.Equal(t, [][]string{{"a", "no"}, {"b", "no"}}, rep.rows)
	assert.True(t, rep.closed)

	require.NotNil(t, job.finished)
	assert.Equal(t, "stub.csv", summary.ReportPath)
	assert.Contains(t, logs.String(), "Total time to complete process: 1m30s")
}

func TestRun_ConfirmedModifyProceeds(t *testing.T) {
	svc := newFakeService()
	reports := &memReports{}
	h, _ := newTestHarness(t, svc.connector(), &fakeConfirmer{answer: "y"}, reports)

	summary, err := Run[string](context.Background(), h, &stubJob{items: []string{"a"}}, RunOptions{Instance: devInstance, ModifyData: true})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Modified)
	assert.Equal(t, [][]string{{"a", "yes"}}, reports.last().rows)
}

func TestRun_ErrorAbortsAndKeepsPartialReport(t *testing.T) {
	svc := newFakeService()
	reports := &memReports{}
	h, _ := newTestHarness(t, svc.connector(), &fakeConfirmer{}, reports)

	job := &stubJob{items: []string{"a", "b", "c"}, failAt: "b"}
	summary, err := Run[string](context.Background(), h, job, RunOptions{Instance: devInstance})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stub: boom")
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, [][]string{{"a", "no"}}, reports.last().rows)
	assert.True(t, reports.last().closed)
	assert.Nil(t, job.finished)
}

func TestRun_ConnectFailure(t *testing.T) {
	connect := func(context.Context) (ports.RecordService, error) {
		return nil, &domain.OpError{Op: "aspace.login", Kind: domain.KindHTTP, Err: domain.ErrHTTPStatus}
	}
	reports := &memReports{}
	h, _ := newTestHarness(t, connect, &fakeConfirmer{}, reports)

	_, err := Run[string](context.Background(), h, &stubJob{items: []string{"a"}}, RunOptions{Instance: devInstance})

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindHTTP))
	assert.Empty(t, reports.opened)
}

func TestRun_CanceledContext(t *testing.T) {
	svc := newFakeService()
	h, _ := newTestHarness(t, svc.connector(), &fakeConfirmer{}, &memReports{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run[string](ctx, h, &stubJob{items: []string{"a"}}, RunOptions{Instance: devInstance})
	require.ErrorIs(t, err, context.Canceled)
}
