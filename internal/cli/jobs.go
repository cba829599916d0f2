package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/config"
	"github.com/aalvaropc/topcontainers/internal/usecase"
)

const (
	defaultMetadataCSV = "metadata.csv"
	defaultBatchList   = "unpublished_archival_objects.csv"
	settingsFileName   = config.SettingsFile
)

// scanFlags are shared by the commands that walk every record of a resource type.
type scanFlags struct {
	chunkSize    int
	maxChunks    int
	lastBatchNum int
	resourceType string
	noteType     string
}

func (f *scanFlags) register(c *cobra.Command) {
	d := domain.DefaultSettings()
	c.Flags().IntVar(&f.chunkSize, "chunk-size", d.ChunkSize, "Number of ids per chunk")
	c.Flags().IntVar(&f.maxChunks, "max-chunks", d.MaxChunks, "Chunks to process in this run")
	c.Flags().IntVar(&f.lastBatchNum, "last-batch-num", -1, "Chunk to start from (default: saved progress)")
	c.Flags().StringVar(&f.resourceType, "resource-type", d.ResourceType, "Resource type to scan (archival_objects, resources, agents/people, ...)")
	c.Flags().StringVar(&f.noteType, "note-type", d.NoteType, "Note type to publish")
}

// apply copies explicitly set flags over the settings and returns the scan config.
func (f *scanFlags) apply(c *cobra.Command, s *domain.Settings) usecase.ScanConfig {
	if c.Flags().Changed("chunk-size") {
		s.ChunkSize = f.chunkSize
	}
	if c.Flags().Changed("max-chunks") {
		s.MaxChunks = f.maxChunks
	}
	if c.Flags().Changed("resource-type") {
		s.ResourceType = strings.TrimSpace(f.resourceType)
	}
	if c.Flags().Changed("note-type") {
		s.NoteType = strings.TrimSpace(f.noteType)
	}
	return usecase.ScanConfig{
		Endpoint:   domain.ResourceEndpoint(s.RepositoryID, s.ResourceType),
		NoteType:   s.NoteType,
		ChunkSize:  s.ChunkSize,
		MaxChunks:  s.MaxChunks,
		ResumeFrom: f.lastBatchNum,

		ReportColumns: s.ReportColumns,
	}
}

func publishNotesCmd(g *globalFlags) *cobra.Command {
	var f scanFlags

	c := &cobra.Command{
		Use:   "publish-notes",
		Short: "Publish unpublished notes of one type on every record of a resource type",
		Long: `Lists every id of the resource type, sorts them, splits them into chunks and processes
--max-chunks chunks starting from the saved progress (or --last-batch-num). Progress is only
saved when --modify_data is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			scan := f.apply(cmd, &a.cfg.Settings)
			if err := a.validate(); err != nil {
				return err
			}
			return runJob[int](cmd, a, usecase.NewPublishNotes(scan, a.cursors, a.log))
		},
	}
	f.register(c)
	return c
}

func exportUnpublishedCmd(g *globalFlags) *cobra.Command {
	var f scanFlags
	var listPath string

	c := &cobra.Command{
		Use:   "export-unpublished",
		Short: "List records with unpublished notes into a batch-list CSV (read-only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			scan := f.apply(cmd, &a.cfg.Settings)
			if err := a.validate(); err != nil {
				return err
			}
			job := usecase.NewExportUnpublished(scan, a.cursors, a.lists, resolveIn(a.dir, listPath), a.log)
			return runJob[int](cmd, a, job)
		},
	}
	f.register(c)
	c.Flags().StringVar(&listPath, "archival-objects-file", defaultBatchList, "Batch-list CSV to write")
	return c
}

func publishBatchesCmd(g *globalFlags) *cobra.Command {
	var (
		listPath     string
		noteType     string
		batchSize    int
		maxBatches   int
		lastBatchNum int
	)

	c := &cobra.Command{
		Use:   "publish-batches",
		Short: "Publish notes on the records of a batch-list CSV, a few batches per run",
		Long: `Processes --max-batches batches of --batch-size rows starting at the saved progress
(or --last-batch-num). Rows already marked updated are skipped. With --modify_data the CSV is
rewritten after every batch with updated=True on the rows that were published.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()

			s := &a.cfg.Settings
			if cmd.Flags().Changed("batch-size") {
				s.BatchSize = batchSize
			}
			if cmd.Flags().Changed("max-batches") {
				s.MaxBatches = maxBatches
			}
			if cmd.Flags().Changed("note-type") {
				s.NoteType = strings.TrimSpace(noteType)
			}
			if err := a.validate(); err != nil {
				return err
			}

			job := usecase.NewPublishBatches(usecase.BatchConfig{
				Path:       resolveIn(a.dir, listPath),
				NoteType:   s.NoteType,
				BatchSize:  s.BatchSize,
				MaxBatches: s.MaxBatches,
				ResumeFrom: lastBatchNum,

				ReportColumns: s.ReportColumns,
			}, a.lists, a.cursors, a.log)
			return runJob[usecase.Batch](cmd, a, job)
		},
	}

	d := domain.DefaultSettings()
	c.Flags().StringVar(&listPath, "archival-objects-file", defaultBatchList, "Batch-list CSV to work through")
	c.Flags().IntVar(&batchSize, "batch-size", d.BatchSize, "Rows per batch")
	c.Flags().IntVar(&maxBatches, "max-batches", d.MaxBatches, "Batches to process in this run")
	c.Flags().IntVar(&lastBatchNum, "last-batch-num", -1, "Batch to start from (default: saved progress)")
	c.Flags().StringVar(&noteType, "note-type", d.NoteType, "Note type to publish")
	return c
}

// runJob runs a job through the harness, records it in the run history and prints a short
// summary. A declined confirmation is a successful run.
func runJob[T any](cmd *cobra.Command, a *appCtx, job usecase.Job[T]) error {
	summary, err := usecase.Run(cmd.Context(), a.harness, job, usecase.RunOptions{
		Instance:   a.cfg.Instance,
		ModifyData: a.modify,
	})

	if id, serr := a.runs.SaveRun(summary, err); serr != nil {
		a.log.Warn("saving run history failed", "error", serr)
	} else {
		a.log.Debug("run saved", "id", id)
	}

	printSummary(cmd.OutOrStdout(), summary, err)
	return err
}

func printSummary(w io.Writer, s domain.RunSummary, runErr error) {
	status := "OK"
	switch {
	case runErr != nil:
		status = "FAILED"
	case s.Halted:
		status = "HALTED"
	}

	fmt.Fprintf(w, "\nJob:        %s [%s]\n", s.Job, status)
	fmt.Fprintf(w, "Instance:   %s (modify_data=%t)\n", s.Instance, s.ModifyData)
	if s.Halted {
		return
	}
	fmt.Fprintf(w, "Processed:  %d (modified %d, skipped %d)\n", s.Processed, s.Modified, s.Skipped)
	fmt.Fprintf(w, "Duration:   %s\n", s.Elapsed())
	if s.ReportPath != "" {
		fmt.Fprintf(w, "Report:     %s\n", s.ReportPath)
	}
	if runErr != nil {
		fmt.Fprintf(w, "Error:      %v\n", runErr)
	}
}
