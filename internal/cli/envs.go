package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/config"
)

func envsCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "envs",
		Short: "Inspect ArchivesSpace instance credentials",
	}

	c.AddCommand(envsListCmd(g))
	return c
}

func envsListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which instances have URL, user and password configured (secrets are not printed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := resolveDirectory(g.directory)
			if err != nil {
				return err
			}
			dotenv := filepath.Join(dir, ".env")
			env, err := config.NewEnvSource(dotenv)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if fileExists(dotenv) {
				fmt.Fprintf(w, "Env file: %s\n\n", dotenv)
			} else {
				fmt.Fprintf(w, "Env file: (none, process environment only)\n\n")
			}

			for _, name := range []domain.InstanceName{domain.InstanceDev, domain.InstanceProd} {
				inst, err := env.ResolveInstance(name)
				if err != nil {
					fmt.Fprintf(w, "- %s  (not configured: %v)\n", name, err)
					continue
				}
				fmt.Fprintf(w, "- %s  %s as %s\n", name, inst.BaseURL, inst.User)
			}
			return nil
		},
	}
}
