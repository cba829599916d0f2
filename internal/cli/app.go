package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/aspace"
	"github.com/aalvaropc/topcontainers/internal/infra/checkpoint"
	"github.com/aalvaropc/topcontainers/internal/infra/config"
	"github.com/aalvaropc/topcontainers/internal/infra/csvstore"
	"github.com/aalvaropc/topcontainers/internal/infra/httpclient"
	"github.com/aalvaropc/topcontainers/internal/infra/logger"
	"github.com/aalvaropc/topcontainers/internal/infra/prompt"
	"github.com/aalvaropc/topcontainers/internal/infra/runstore"
	"github.com/aalvaropc/topcontainers/internal/ports"
	"github.com/aalvaropc/topcontainers/internal/usecase"
)

const (
	stateDir       = ".topcontainers"
	instancePrompt = "Select the ArchivesSpace instance to use, either 'dev' or 'prod': "
)

// globalFlags are shared by every command.
type globalFlags struct {
	instance     string
	modify       bool
	directory    string
	configPath   string
	logFile      string
	debug        bool
	repositoryID string
}

// appCtx is everything a command needs once flags, settings and credentials are resolved.
type appCtx struct {
	dir    string
	cfg    domain.Config
	modify bool

	log      *slog.Logger
	cleanup  func() error
	terminal *prompt.Terminal

	harness *usecase.Harness
	cursors ports.CheckpointStore
	lists   ports.BatchListStore
	runs    ports.RunStore
}

func (a *appCtx) close() {
	if a.cleanup != nil {
		_ = a.cleanup()
	}
}

// loadApp builds the Config explicitly and wires the infrastructure around it. Nothing
// below this layer reads the process environment.
func loadApp(cmd *cobra.Command, g *globalFlags) (*appCtx, error) {
	dir, err := resolveDirectory(g.directory)
	if err != nil {
		return nil, err
	}

	log, cleanup, err := logger.Setup(logger.Config{
		Out:   cmd.OutOrStdout(),
		File:  resolveIn(dir, g.logFile),
		Debug: g.debug,
	})
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	a := &appCtx{dir: dir, modify: g.modify, log: log, cleanup: cleanup}

	settings, err := loadSettings(dir, g.configPath)
	if err != nil {
		a.close()
		return nil, err
	}
	if cmd.Flags().Changed("repository_id") {
		settings.RepositoryID = strings.TrimSpace(g.repositoryID)
	}

	a.terminal = prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())

	inst, err := resolveInstance(a.terminal, dir, g.instance)
	if err != nil {
		a.close()
		return nil, err
	}
	a.cfg = domain.Config{Instance: inst, Settings: settings}

	a.cursors = checkpoint.NewStore(resolveIn(dir, settings.CheckpointDir))
	a.lists = csvstore.NewBatchLists()
	a.runs = runstore.NewJSONStore(filepath.Join(dir, stateDir), runstore.WithIndex(true))
	a.harness = usecase.NewHarness(connector(a.cfg, log), a.terminal, csvstore.NewReportSink(dir), log)
	return a, nil
}

// validate checks settings once command flags were applied over them.
func (a *appCtx) validate() error {
	return config.Validate(a.cfg.Settings)
}

func connector(cfg domain.Config, log *slog.Logger) ports.Connector {
	return func(ctx context.Context) (ports.RecordService, error) {
		httpCfg := httpclient.DefaultConfig()
		if cfg.Settings.HTTPTimeout > 0 {
			httpCfg.Timeout = cfg.Settings.HTTPTimeout
		}
		exec := httpclient.NewExecutor(
			httpclient.WithClient(httpclient.New(httpCfg)),
			httpclient.WithTimeout(httpCfg.Timeout),
			httpclient.WithMaxBodyBytes(httpCfg.MaxBodyBytes),
		)

		client, err := aspace.NewClient(cfg.Instance, aspace.WithExecutor(exec), aspace.WithLogger(log))
		if err != nil {
			return nil, err
		}
		if err := client.Authorize(ctx); err != nil {
			return nil, err
		}
		return aspace.NewOperations(client, log), nil
	}
}

func loadSettings(dir, configFlag string) (domain.Settings, error) {
	path := strings.TrimSpace(configFlag)
	if path != "" {
		return config.LoadSettings(resolveIn(dir, path))
	}
	found, err := config.FindSettings(dir)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, err
	}
	return config.LoadSettings(found)
}

func resolveInstance(t *prompt.Terminal, dir, flag string) (domain.Instance, error) {
	raw := strings.TrimSpace(flag)
	if raw == "" {
		choice, err := t.Choose(instancePrompt, string(domain.InstanceDev), string(domain.InstanceProd))
		if err != nil {
			return domain.Instance{}, err
		}
		raw = choice
	}
	name, err := domain.ParseInstanceName(raw)
	if err != nil {
		return domain.Instance{}, err
	}

	env, err := config.NewEnvSource(filepath.Join(dir, ".env"))
	if err != nil {
		return domain.Instance{}, err
	}
	return env.ResolveInstance(name)
}

func resolveDirectory(flag string) (string, error) {
	d := strings.TrimSpace(flag)
	if d == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		d = wd
	}
	abs, err := filepath.Abs(d)
	if err != nil {
		return "", fmt.Errorf("invalid directory %q: %w", d, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", &domain.OpError{
			Op:   "cli.directory",
			Kind: domain.KindInvalidConfig,
			Path: abs,
			Err:  fmt.Errorf("%w: not a directory", domain.ErrInvalidConfig),
		}
	}
	return abs, nil
}

// resolveIn makes a relative path relative to dir. Empty stays empty.
func resolveIn(dir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
