package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/config"
	"github.com/aalvaropc/topcontainers/internal/infra/csvstore"
)

func validateCmd(g *globalFlags) *cobra.Command {
	var metadataCSV string
	var batchList string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Check settings and input CSVs without contacting ArchivesSpace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := resolveDirectory(g.directory)
			if err != nil {
				return err
			}
			settings, err := loadSettings(dir, g.configPath)
			if err != nil {
				return err
			}
			if err := config.Validate(settings); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			checked := 0
			if strings.TrimSpace(metadataCSV) != "" {
				rows, err := csvstore.NewMetadataReader(domain.MetadataColumns...).ReadMetadata(resolveIn(dir, metadataCSV))
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "metadata: %d row(s)\n", len(rows))
				checked++
			}
			if strings.TrimSpace(batchList) != "" {
				entries, err := csvstore.NewBatchLists().LoadBatchList(resolveIn(dir, batchList))
				if err != nil {
					return err
				}
				pending := 0
				for _, e := range entries {
					if !e.Updated {
						pending++
					}
				}
				fmt.Fprintf(w, "batch list: %d row(s), %d pending\n", len(entries), pending)
				checked++
			}
			if checked == 0 {
				fmt.Fprintf(w, "settings: repository %s, chunk size %d, batch size %d\n",
					settings.RepositoryID, settings.ChunkSize, settings.BatchSize)
			}

			fmt.Fprintln(w, "OK")
			return nil
		},
	}

	c.Flags().StringVar(&metadataCSV, "metadata_csv", "", "Metadata CSV to check")
	c.Flags().StringVar(&batchList, "archival-objects-file", "", "Batch-list CSV to check")
	return c
}
