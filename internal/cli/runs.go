package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/topcontainers/internal/infra/runstore"
)

func runsCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run history",
	}

	c.AddCommand(runsListCmd(g))
	return c
}

func runsListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := resolveDirectory(g.directory)
			if err != nil {
				return err
			}
			store := runstore.NewJSONStore(filepath.Join(dir, stateDir))
			runs, err := store.ListRuns()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "(no runs recorded)")
				return nil
			}
			for _, r := range runs {
				status := "ok"
				if r.Failed {
					status = "failed"
				}
				mode := "dry-run"
				if r.Modify {
					mode = "modify"
				}
				fmt.Fprintf(w, "- %s  %s  %s %s  %s\n", r.StartedAt.Format(time.RFC3339), r.Job, r.Instance, mode, status)
			}
			return nil
		},
	}
}
