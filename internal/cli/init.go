package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/topcontainers/internal/infra/config"
	"github.com/aalvaropc/topcontainers/internal/infra/fsworkspace"
)

func initCmd(g *globalFlags) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a working directory (settings, .env template, metadata CSV header)",
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
			if cmd.Flags().Changed("repository_id") {
				settings.RepositoryID = strings.TrimSpace(g.repositoryID)
			}
			if err := config.Validate(settings); err != nil {
				return err
			}

			written, err := fsworkspace.NewInitializer().Init(dir, settings, force)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Initialized %s\n", dir)
			for _, p := range written {
				rel, _ := filepath.Rel(dir, p)
				fmt.Fprintf(w, "- %s\n", rel)
			}
			if len(written) == 0 {
				fmt.Fprintln(w, "(all files already exist; use --force to overwrite)")
			}
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return c
}
