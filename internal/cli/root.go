package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/topcontainers/internal/buildinfo"
	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/csvstore"
	"github.com/aalvaropc/topcontainers/internal/usecase"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var metadataCSV string

	cmd := &cobra.Command{
		Use:   "topcontainers",
		Short: "Create ArchivesSpace top containers from a metadata CSV and attach them to accessions",
		Long: `Reads a metadata CSV (container_type, indicator, location_uri, accession_uri, instance_type),
creates one top container per row, and adds an instance referencing it to the row's accession.

Without --modify_data nothing is written: the audit report shows what would happen,
with DRY_RUN_TOP_CONTAINER_URI in place of server-assigned URIs.`,
		Version:      buildinfo.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.validate(); err != nil {
				return err
			}

			path := resolveIn(a.dir, metadataCSV)
			if strings.TrimSpace(metadataCSV) == "" {
				path = resolveIn(a.dir, defaultMetadataCSV)
			}

			job := usecase.NewCreateContainers(
				csvstore.NewMetadataReader(domain.MetadataColumns...),
				path,
				a.cfg.Settings.RepositoryID,
				a.log,
			)
			return runJob[domain.MetadataRow](cmd, a, job)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.instance, "as_instance", "", "ArchivesSpace instance to use: dev|prod (prompted when omitted)")
	pf.BoolVar(&g.modify, "modify_data", false, "Write changes to ArchivesSpace (asks for confirmation)")
	pf.StringVar(&g.directory, "directory", "", "Working directory for input, reports and .env (default: current directory)")
	pf.StringVar(&g.configPath, "config", "", "Settings file (default: nearest "+settingsFileName+")")
	pf.StringVar(&g.repositoryID, "repository_id", domain.DefaultSettings().RepositoryID, "Repository id")
	pf.StringVar(&g.logFile, "log-file", "", "Also append log lines to this file")
	pf.BoolVar(&g.debug, "debug", false, "Enable debug logging")

	cmd.Flags().StringVar(&metadataCSV, "metadata_csv", "", "Metadata CSV (default: "+defaultMetadataCSV+" in --directory)")

	cmd.AddCommand(
		publishNotesCmd(g),
		exportUnpublishedCmd(g),
		publishBatchesCmd(g),
		validateCmd(g),
		envsCmd(g),
		runsCmd(g),
		initCmd(g),
	)
	return cmd
}
