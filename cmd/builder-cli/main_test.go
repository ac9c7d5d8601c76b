package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-page-builder/internal/datasource"
	"go-page-builder/internal/model"
	"go-page-builder/internal/pagemanager"
	"go-page-builder/internal/storage"
)

// execute runs the CLI against the JSON store in dir and returns its stdout.
func execute(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	env := &cliEnv{}
	t.Cleanup(func() { env.close() })
	root := newRootCmd(env)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--storage-driver", "json", "--storage-path", dir, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dir, "", args...)
	if err != nil {
		t.Fatalf("builder-cli %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func openStore(t *testing.T, dir string) storage.Store {
	t.Helper()
	store, err := storage.NewJSONStore(dir)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	return store
}

// demoProject runs init and returns the created project.
func demoProject(t *testing.T, dir string) *model.Project {
	t.Helper()
	mustExecute(t, dir, "init")
	projects, err := pagemanager.NewManager(openStore(t, dir), nil).ListProjects()
	if err != nil || len(projects) != 1 {
		t.Fatalf("ListProjects: %v (%d projects)", err, len(projects))
	}
	return projects[0]
}

func TestInitAndList(t *testing.T) {
	dir := t.TempDir()

	out := mustExecute(t, dir, "pages", "list")
	if !strings.Contains(out, "No projects found") {
		t.Errorf("empty store should report no projects, got:\n%s", out)
	}

	out = mustExecute(t, dir, "init")
	if !strings.Contains(out, "Created project 'My Website'") || !strings.Contains(out, "slug: home") {
		t.Errorf("unexpected init output:\n%s", out)
	}

	out = mustExecute(t, dir, "pages", "list")
	if !strings.Contains(out, "Name: My Website") || !strings.Contains(out, "Pages: 3") {
		t.Errorf("unexpected project list:\n%s", out)
	}
}

func TestPagesCreateAndDelete(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, dir, "", "pages", "create", "--name", "Posts"); err == nil {
		t.Error("create without a project should fail")
	}

	out := mustExecute(t, dir, "pages", "create", "--new-project", "Blog", "--name", "Posts", "--type", "news")
	if !strings.Contains(out, "Created project 'Blog'") || !strings.Contains(out, "Created page 'Posts'") {
		t.Fatalf("unexpected create output:\n%s", out)
	}
	projects, err := pagemanager.NewManager(openStore(t, dir), nil).ListProjects()
	if err != nil || len(projects) != 1 {
		t.Fatalf("ListProjects: %v", err)
	}
	p := projects[0]
	pageID := p.Pages[0].ID

	if _, err := execute(t, dir, "", "pages", "create", "--project", p.ID, "--name", "Bad", "--type", "blog"); err == nil {
		t.Error("unknown page type should fail")
	}

	out = mustExecute(t, dir, "pages", "list", "--project", p.ID)
	if !strings.Contains(out, "Slug: posts") || !strings.Contains(out, "Type: news") {
		t.Errorf("unexpected page list:\n%s", out)
	}

	out, err = execute(t, dir, "n\n", "pages", "delete", "--project", p.ID, "--page", pageID)
	if err != nil || !strings.Contains(out, "Deletion cancelled.") {
		t.Fatalf("declined delete: %v\n%s", err, out)
	}
	out, err = execute(t, dir, "y\n", "pages", "delete", "--project", p.ID, "--page", pageID)
	if err != nil || !strings.Contains(out, "Deleted page 'Posts'") {
		t.Fatalf("confirmed delete: %v\n%s", err, out)
	}

	out = mustExecute(t, dir, "pages", "delete", "--project", p.ID, "--yes")
	if !strings.Contains(out, "Deleted project 'Blog'") {
		t.Errorf("unexpected project delete output:\n%s", out)
	}
	if _, err := execute(t, dir, "", "pages", "list", "--project", p.ID); err == nil {
		t.Error("listing a deleted project should fail")
	}
}

func TestExportImportRender(t *testing.T) {
	dir := t.TempDir()
	p := demoProject(t, dir)
	home, about := p.Pages[0], p.Pages[1]

	exported := filepath.Join(dir, "out", "home.json")
	mustExecute(t, dir, "export", "--project", p.ID, "--page", home.ID, "--out", exported)
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if !bytes.Contains(data, []byte(`"version": "1.0"`)) {
		t.Errorf("export is missing the version:\n%s", data)
	}

	out := mustExecute(t, dir, "render", "--in", exported, "--format", "md")
	if !strings.HasPrefix(out, "# home\n") || !strings.Contains(out, "Build Something Amazing") {
		t.Errorf("unexpected markdown:\n%s", out)
	}

	out = mustExecute(t, dir, "render", "--in", exported, "--title", "Home")
	if !strings.Contains(out, "<title>Home - Home</title>") || !strings.Contains(out, "<h1") {
		t.Errorf("unexpected html:\n%s", out)
	}

	out = mustExecute(t, dir, "render", "--in", exported, "--format", "fragment")
	if strings.Contains(out, "<html") || !strings.Contains(out, "Build Something Amazing") {
		t.Errorf("fragment should hold only the tree:\n%s", out)
	}

	if _, err := execute(t, dir, "", "render", "--in", exported, "--format", "pdf"); err == nil {
		t.Error("unknown format should fail")
	}
	if _, err := execute(t, dir, "", "render", "--in", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing input should fail")
	}

	out = mustExecute(t, dir, "import", "--project", p.ID, "--page", about.ID, "--in", exported)
	if !strings.Contains(out, "Imported 1 root component(s) into page 'About'") {
		t.Errorf("unexpected import output:\n%s", out)
	}
	page, err := pagemanager.NewManager(openStore(t, dir), nil).GetPage(p.ID, about.ID)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if len(page.Components) != 1 || page.Components[0].ID != home.Components[0].ID {
		t.Errorf("imported tree does not match the export: %+v", page.Components)
	}
}

func TestDataSourceCommands(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"temp":21}`))
	}))
	defer upstream.Close()

	dir := t.TempDir()
	out := mustExecute(t, dir, "datasources", "add", "--name", "site", "--kv", "title=Hello")
	if !strings.Contains(out, "Added data source 'site'") {
		t.Fatalf("unexpected add output:\n%s", out)
	}
	mustExecute(t, dir, "ds", "add", "--name", "weather", "--type", "http-api", "--url", upstream.URL)

	if _, err := execute(t, dir, "", "datasources", "add", "--name", "broken", "--type", "static-json", "--json", "{"); err == nil {
		t.Error("invalid static JSON should fail")
	}
	if _, err := execute(t, dir, "", "datasources", "add", "--type", "key-value"); err == nil {
		t.Error("add without --name or --seed should fail")
	}

	out = mustExecute(t, dir, "datasources", "list")
	if !strings.Contains(out, "Name: site") || !strings.Contains(out, "Last fetched: never") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	registry := datasource.NewRegistry(openStore(t, dir), nil, nil)
	if err := registry.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	weather, ok := registry.FindByName("weather")
	if !ok {
		t.Fatal("weather source was not stored")
	}
	out = mustExecute(t, dir, "datasources", "refresh", weather.ID)
	if !strings.Contains(out, "Refreshed 'weather'") {
		t.Errorf("unexpected refresh output:\n%s", out)
	}

	tree := filepath.Join(dir, "tree.json")
	body := `[{"id":"p","type":"paragraph","props":{"content":"{{site.title}} {{weather.temp}}"},"styles":{}}]`
	if err := os.WriteFile(tree, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	out = mustExecute(t, dir, "render", "--in", tree, "--format", "fragment")
	if !strings.Contains(out, "Hello 21") {
		t.Errorf("placeholders were not resolved:\n%s", out)
	}

	seed := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(seed, []byte("datasources:\n  - name: site\n    type: key-value\n    keyValueData: {title: Seeded}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out = mustExecute(t, dir, "render", "--in", tree, "--format", "fragment", "--sources", seed)
	if !strings.Contains(out, "Seeded {{weather.temp}}") {
		t.Errorf("render with --sources should only see the seed sources:\n%s", out)
	}

	out = mustExecute(t, dir, "datasources", "add", "--seed", seed)
	if !strings.Contains(out, "Imported 0 of 1") {
		t.Errorf("existing names should be skipped:\n%s", out)
	}

	site, _ := registry.FindByName("site")
	out = mustExecute(t, dir, "datasources", "delete", site.ID)
	if !strings.Contains(out, "Deleted data source 'site'") {
		t.Errorf("unexpected delete output:\n%s", out)
	}
	if _, err := execute(t, dir, "", "datasources", "delete", site.ID); err == nil {
		t.Error("deleting twice should fail")
	}
}

func TestAskForConfirmation(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\ny\n", true},
		{"maybe", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := askForConfirmation(strings.NewReader(tt.input), &out, "Continue?")
		if err != nil {
			t.Errorf("askForConfirmation(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("askForConfirmation(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
