package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"go-page-builder/internal/config"
	"go-page-builder/internal/datasource"
	"go-page-builder/internal/interpolate"
	"go-page-builder/internal/pagemanager"
	"go-page-builder/internal/storage"
	"go-page-builder/internal/templating"

	"github.com/spf13/cobra"
)

// cliEnv holds what every subcommand needs. It is opened before a command runs
// and closed after it.
type cliEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Store
	pages   *pagemanager.PageManager
	sources *datasource.Registry
	engine  *templating.Engine
}

func (e *cliEnv) open(cmd *cobra.Command, configPath string) error {
	v := config.New()
	if err := config.BindFlags(v, cmd.Root().PersistentFlags(), map[string]string{
		"storage.driver": "storage-driver",
		"storage.path":   "storage-path",
		"log.level":      "log-level",
	}); err != nil {
		return err
	}
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening %s storage at %s: %w", cfg.Storage.Driver, cfg.Storage.Path, err)
	}
	sources := datasource.NewRegistry(store, datasource.NewHTTPFetcher(cfg.DataSources.RefreshTimeout, logger), logger)
	sources.Concurrency = cfg.DataSources.RefreshConcurrency
	if err := sources.Load(); err != nil {
		store.Close()
		return fmt.Errorf("loading data sources: %w", err)
	}
	engine := templating.NewEngine(interpolate.NewResolver(cfg.Interpolate.CacheSize, logger), logger)
	if cfg.Render.Layouts != "" {
		if err := engine.LoadLayouts(cfg.Render.Layouts); err != nil {
			store.Close()
			return err
		}
	}

	*e = cliEnv{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		pages:   pagemanager.NewManager(store, logger),
		sources: sources,
		engine:  engine,
	}
	return nil
}

func (e *cliEnv) close() error {
	if e.store == nil {
		return nil
	}
	err := e.store.Close()
	e.store = nil
	return err
}

// newRootCmd builds the command tree. Commands share env, which is opened
// from the persistent flags before any command runs.
func newRootCmd(env *cliEnv) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "builder-cli",
		Short:         "Manage page builder projects, pages and data sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.open(cmd, configPath)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.close()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default ./pagebuilder.yaml when present)")
	root.PersistentFlags().String("storage-driver", "", "Storage driver: json or sqlite")
	root.PersistentFlags().String("storage-path", "", "Storage directory (json) or database file (sqlite)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newInitCmd(env),
		newRenderCmd(env),
		newExportCmd(env),
		newImportCmd(env),
		newPagesCmd(env),
		newDataSourcesCmd(env),
	)
	return root
}

func newInitCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the demo project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := env.pages.SeedDemo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created project '%s' (ID: %s)\n", p.Name, p.ID)
			for _, page := range p.Pages {
				fmt.Fprintf(out, "  - %s (ID: %s, slug: %s)\n", page.Name, page.ID, page.Slug)
			}
			return nil
		},
	}
}

func main() {
	env := &cliEnv{}
	err := newRootCmd(env).Execute()
	// PersistentPostRunE is skipped when a command fails.
	env.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// askForConfirmation prompts on out and reads a y/N answer from in.
func askForConfirmation(in io.Reader, out io.Writer, prompt string) (bool, error) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		response, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("reading confirmation: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(response)) {
		case "y", "yes":
			return true, nil
		case "n", "no", "":
			return false, nil
		}
		if err == io.EOF {
			return false, nil
		}
	}
}

// openBrowser tries to open the given URL/file path in the default browser.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
