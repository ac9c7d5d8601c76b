package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go-page-builder/internal/datasource"
	"go-page-builder/internal/export"
	"go-page-builder/internal/model"
	"go-page-builder/pkg/fsutils"

	"github.com/spf13/cobra"
)

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fsutils.CreateDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := fsutils.WriteFileAtomic(path, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func readExportFile(path string) (*export.Document, error) {
	if !fsutils.FileExists(path) {
		return nil, fmt.Errorf("input file %s does not exist", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := export.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

type renderOptions struct {
	in      string
	out     string
	format  string
	title   string
	sources string
	refresh bool
	open    bool
}

func newRenderCmd(env *cliEnv) *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an exported component tree to HTML or Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, env, opts)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "", "Export JSON file to render (required)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "html", "Output format: html, md or fragment")
	cmd.Flags().StringVar(&opts.title, "title", "", "Page name used in the title (default the input file name)")
	cmd.Flags().StringVar(&opts.sources, "sources", "", "YAML file of data sources to render with instead of the stored ones")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Refresh http-api sources before rendering")
	cmd.Flags().BoolVar(&opts.open, "open", false, "Open the rendered HTML in the default browser")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runRender(cmd *cobra.Command, env *cliEnv, opts renderOptions) error {
	doc, err := readExportFile(opts.in)
	if err != nil {
		return err
	}

	registry := env.sources
	if opts.sources != "" {
		seed, err := datasource.LoadSeedFile(opts.sources)
		if err != nil {
			return err
		}
		registry = datasource.NewRegistry(nil, datasource.NewHTTPFetcher(env.cfg.DataSources.RefreshTimeout, env.logger), env.logger)
		registry.Concurrency = env.cfg.DataSources.RefreshConcurrency
		if _, err := registry.Import(seed); err != nil {
			return err
		}
	}
	if opts.refresh {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := registry.RefreshAll(ctx); err != nil {
			env.logger.Warn("Some data sources failed to refresh", "error", err)
		}
	}

	title := opts.title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(opts.in), filepath.Ext(opts.in))
	}
	page := &model.Page{Name: title, Slug: fsutils.SanitizeFilename(title), Components: doc.Components}
	sources := registry.List()

	var rendered string
	switch opts.format {
	case "html":
		rendered, err = env.engine.RenderPage(page, title, sources)
	case "md", "markdown":
		rendered, err = env.engine.RenderMarkdown(page, sources)
	case "fragment":
		rendered = env.engine.RenderTree(page.Components, sources) + "\n"
	default:
		return fmt.Errorf("unknown format %q (want html, md or fragment)", opts.format)
	}
	if err != nil {
		return err
	}

	if !opts.open {
		return writeOutput(cmd, opts.out, []byte(rendered))
	}

	out := opts.out
	if out == "" {
		f, err := os.CreateTemp("", page.Slug+"-*.html")
		if err != nil {
			return fmt.Errorf("creating preview file: %w", err)
		}
		out = f.Name()
		f.Close()
	}
	if err := writeOutput(cmd, out, []byte(rendered)); err != nil {
		return err
	}
	if err := openBrowser(out); err != nil {
		env.logger.Warn("Failed to open preview in browser", "file", out, "error", err)
		fmt.Fprintln(cmd.ErrOrStderr(), "Please open the file manually in your browser.")
	}
	return nil
}

func newExportCmd(env *cliEnv) *cobra.Command {
	var projectID, pageID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a page's component tree as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := env.pages.GetPage(projectID, pageID)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := export.Write(&buf, page.Components, env.sources.List()); err != nil {
				return err
			}
			return writeOutput(cmd, out, buf.Bytes())
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&pageID, "page", "", "Page ID (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func newImportCmd(env *cliEnv) *cobra.Command {
	var projectID, pageID, in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a page's component tree with an exported one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readExportFile(in)
			if err != nil {
				return err
			}
			for _, ref := range doc.DataSources {
				if _, ok := env.sources.FindByName(ref.Name); !ok {
					env.logger.Warn("Imported tree references an unknown data source", "name", ref.Name)
				}
			}
			page, err := env.pages.UpdatePageComponents(projectID, pageID, doc.Components)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d root component(s) into page '%s'\n", len(page.Components), page.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (required)")
	cmd.Flags().StringVar(&pageID, "page", "", "Page ID (required)")
	cmd.Flags().StringVar(&in, "in", "", "Export JSON file to import (required)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("page")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
