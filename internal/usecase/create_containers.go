package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/logger"
	"github.com/aalvaropc/topcontainers/internal/ports"
	"github.com/aalvaropc/topcontainers/internal/records"
	"github.com/aalvaropc/topcontainers/internal/usecase/extract"
)

// Report actions.
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionUnchanged   = "unchanged"
	ActionAlreadyDone = "already_updated"
	ActionDryRun      = "dry_run"
	ActionListed      = "listed"

	// ActionContainerCreated marks a row whose top container exists but whose accession
	// was not updated.
	ActionContainerCreated = "container_created"
)

// CreateContainers creates one top container per metadata row and attaches an instance
// pointing at it to the row's accession.
type CreateContainers struct {
	source       ports.MetadataSource
	metadataPath string
	repositoryID string
	today        func() time.Time
	log          *slog.Logger
}

type CreateContainersOption func(*CreateContainers)

// WithToday fixes the location start date.
func WithToday(today func() time.Time) CreateContainersOption {
	return func(j *CreateContainers) { j.today = today }
}

func NewCreateContainers(source ports.MetadataSource, metadataPath, repositoryID string, log *slog.Logger, opts ...CreateContainersOption) *CreateContainers {
	j := &CreateContainers{
		source:       source,
		metadataPath: metadataPath,
		repositoryID: repositoryID,
		today:        time.Now,
		log:          logger.Named(log, "usecase.create_containers"),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *CreateContainers) Name() string { return "create-containers" }

func (j *CreateContainers) Header() []string {
	return []string{
		"accession_uri",
		"accession_title",
		"top_container_uri",
		domain.ColContainerType,
		domain.ColIndicator,
		domain.ColLocationURI,
		domain.ColInstanceType,
		"action",
	}
}

func (j *CreateContainers) Plan(_ context.Context, _ ports.RecordService) ([]domain.MetadataRow, error) {
	return j.source.ReadMetadata(j.metadataPath)
}

func (j *CreateContainers) Process(ctx context.Context, svc ports.RecordService, row domain.MetadataRow, modify bool) (Outcome, error) {
	const op = "usecase.create_containers"

	accessionURI, err := row.Require(op, domain.ColAccessionURI)
	if err != nil {
		return Outcome{}, err
	}
	instanceType, err := row.Require(op, domain.ColInstanceType)
	if err != nil {
		return Outcome{}, err
	}
	topContainer, err := records.CreateTopContainer(row, j.today().Format(time.DateOnly))
	if err != nil {
		return Outcome{}, err
	}

	topContainerURI := domain.DryRunTopContainerURI
	if modify {
		created, err := svc.PostNewRecord(ctx, topContainer, domain.ResourceEndpoint(j.repositoryID, "top_containers"))
		if err != nil {
			return Outcome{}, err
		}
		uri, ok := created.URI()
		if !ok {
			return Outcome{}, domain.MissingField(op, "uri")
		}
		topContainerURI = uri
	} else {
		j.log.Info(fmt.Sprintf("Dry run: top container not created for %s", accessionURI),
			"indicator", row[domain.ColIndicator])
	}

	reportRow := func(title, action string) []string {
		return []string{
			accessionURI,
			title,
			topContainerURI,
			row[domain.ColContainerType],
			row[domain.ColIndicator],
			row[domain.ColLocationURI],
			instanceType,
			action,
		}
	}
	// Once the container exists, a failure still leaves a row naming it.
	partial := func(title string, cause error) (Outcome, error) {
		if !modify {
			return Outcome{}, cause
		}
		return Outcome{Rows: [][]string{reportRow(title, ActionContainerCreated)}, Modified: 1}, cause
	}

	accession, err := svc.GetRecord(ctx, accessionURI)
	if err != nil {
		return partial("", err)
	}
	title := extract.First(accession, "$.title", "$.display_string")
	accession.Append("instances", map[string]any(records.CreateInstance(instanceType, topContainerURI)))

	action := ActionDryRun
	if modify {
		if _, err := svc.UpdateRecord(ctx, accession); err != nil {
			return partial(title, err)
		}
		action = ActionCreated
	} else {
		j.log.Info(fmt.Sprintf("Dry run: accession not updated: %s", accessionURI))
	}

	out := Outcome{Rows: [][]string{reportRow(title, action)}}
	if modify {
		out.Modified = 1
	}
	return out, nil
}
