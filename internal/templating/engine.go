package templating

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"go-page-builder/internal/interpolate"
	"go-page-builder/internal/model"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// layoutTemplate is the page shell used unless LoadLayouts provides another one.
// Any layout must define a template named "page".
const layoutTemplate = `{{ define "page" }}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{ .Title }}</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: system-ui, -apple-system, sans-serif; }
    img { max-width: 100%; height: auto; }
    button { cursor: pointer; border: none; }
  </style>
</head>
<body>
{{ .Body }}
</body>
</html>
{{ end }}`

// PageData is passed to the "page" template.
type PageData struct {
	Title       string
	ProjectName string
	Page        *model.Page
	Body        template.HTML
}

// Engine projects component trees to HTML and Markdown.
type Engine struct {
	policy   *bluemonday.Policy
	resolver *interpolate.Resolver
	layout   *template.Template
	markdown *converter.Converter
	logger   *slog.Logger
}

// NewEngine creates a new engine. A nil resolver uses a fresh one with the
// default cache size.
func NewEngine(resolver *interpolate.Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if resolver == nil {
		resolver = interpolate.NewResolver(interpolate.DefaultCacheSize, logger)
	}
	return &Engine{
		policy:   bluemonday.UGCPolicy(),
		resolver: resolver,
		layout:   template.Must(template.New("layout").Parse(layoutTemplate)),
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		logger: logger,
	}
}

// LoadLayouts replaces the page shell with the templates found in dir
// (*.html, *.tmpl and *.css files parsed together). One of them must define "page".
func (e *Engine) LoadLayouts(dir string) error {
	htmlFiles, err := filepath.Glob(filepath.Join(dir, "*.[th][mt][lm]l"))
	if err != nil {
		return fmt.Errorf("error finding html/tmpl layout files in %s: %w", dir, err)
	}
	cssFiles, err := filepath.Glob(filepath.Join(dir, "*.css"))
	if err != nil {
		return fmt.Errorf("error finding css layout files in %s: %w", dir, err)
	}
	files := append(htmlFiles, cssFiles...)
	if len(files) == 0 {
		return fmt.Errorf("no layout files (.html, .tmpl, .css) found in %s", dir)
	}

	set, err := template.New("layout").ParseFiles(files...)
	if err != nil {
		return fmt.Errorf("failed to parse layouts from %s: %w", dir, err)
	}
	if set.Lookup("page") == nil {
		return fmt.Errorf("layouts in %s must contain '{{ define \"page\" }} ... {{ end }}'", dir)
	}
	e.layout = set
	e.logger.Info("Loaded page layouts", "dir", dir, "files", len(files))
	return nil
}

// RenderTree interpolates roots against sources and projects the result to HTML.
func (e *Engine) RenderTree(roots []*model.Component, sources []*model.DataSource) string {
	return e.RenderComponents(e.resolver.InterpolateTree(roots, sources))
}

// RenderPage renders a complete HTML document for the page, titled
// "<page name> - <project name>", with placeholders resolved against sources.
func (e *Engine) RenderPage(page *model.Page, projectName string, sources []*model.DataSource) (string, error) {
	if page == nil {
		return "", fmt.Errorf("cannot render a nil page")
	}
	data := PageData{
		Title:       page.Name + " - " + projectName,
		ProjectName: projectName,
		Page:        page,
		Body:        template.HTML(e.RenderTree(page.Components, sources)),
	}

	var buf bytes.Buffer
	if err := e.layout.ExecuteTemplate(&buf, "page", data); err != nil {
		return "", fmt.Errorf("failed to execute template 'page' for page %s: %w", page.ID, err)
	}
	return buf.String(), nil
}

// RenderMarkdown renders the page body as Markdown, headed by the page name.
func (e *Engine) RenderMarkdown(page *model.Page, sources []*model.DataSource) (string, error) {
	if page == nil {
		return "", fmt.Errorf("cannot render a nil page")
	}
	body := e.RenderTree(page.Components, sources)
	md, err := e.markdown.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("failed to convert page %s to markdown: %w", page.ID, err)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return "# " + page.Name + "\n", nil
	}
	return "# " + page.Name + "\n\n" + md + "\n", nil
}
