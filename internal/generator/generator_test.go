package generator

import (
	"errors"
	"fmt"
	"testing"

	"go-page-builder/internal/model"
)

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestCreateRow(t *testing.T) {
	f := &Factory{NewID: sequence()}

	row, err := f.Create(model.TypeRow)
	if err != nil {
		t.Fatalf("Create(row) failed: %v", err)
	}
	if len(row.Children) != 2 {
		t.Fatalf("row has %d children, want 2", len(row.Children))
	}

	seen := map[string]bool{row.ID: true}
	for i, col := range row.Children {
		if col.Type != model.TypeColumn {
			t.Errorf("child %d type = %q, want column", i, col.Type)
		}
		if col.Children == nil || len(col.Children) != 0 {
			t.Errorf("child %d should be an empty container, got %#v", i, col.Children)
		}
		if seen[col.ID] {
			t.Errorf("duplicate id %q", col.ID)
		}
		seen[col.ID] = true
	}
}

func TestCreateDefaults(t *testing.T) {
	f := &Factory{NewID: sequence()}

	for _, def := range Definitions() {
		c, err := f.Create(def.Type)
		if err != nil {
			t.Errorf("Create(%q) failed: %v", def.Type, err)
			continue
		}
		if c.ID == "" {
			t.Errorf("%q: empty id", def.Type)
		}
		if c.Props == nil || c.Styles == nil {
			t.Errorf("%q: props and styles must be non-nil", def.Type)
		}
		if def.IsContainer != c.HasChildren() {
			t.Errorf("%q: container=%v but HasChildren=%v", def.Type, def.IsContainer, c.HasChildren())
		}
		if def.IsContainer && def.Type != model.TypeRow && len(c.Children) != 0 {
			t.Errorf("%q: new container should be empty, has %d children", def.Type, len(c.Children))
		}
	}
}

func TestCreateDoesNotShareDefaults(t *testing.T) {
	f := NewFactory()
	a := f.MustCreate(model.TypeHeading)
	b := f.MustCreate(model.TypeHeading)

	a.Props["content"] = "changed"
	if b.Props.String("content") == "changed" {
		t.Fatal("components share the props map")
	}
	if d, _ := Lookup(model.TypeHeading); d.DefaultProps.String("content") == "changed" {
		t.Fatal("component mutation leaked into the registry")
	}
	if a.ID == b.ID {
		t.Fatalf("ids collide: %q", a.ID)
	}
}

func TestCreateUnknownType(t *testing.T) {
	_, err := NewComponent("carousel")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustCreate should panic on an unknown type")
		}
	}()
	NewFactory().MustCreate("carousel")
}

func TestIsContainer(t *testing.T) {
	containers := []model.ComponentType{model.TypeContainer, model.TypeCard, model.TypeGrid, model.TypeHero, model.TypeRow, model.TypeColumn}
	for _, ct := range containers {
		if !IsContainer(ct) {
			t.Errorf("IsContainer(%q) = false", ct)
		}
	}
	for _, ct := range []model.ComponentType{model.TypeHeading, model.TypeButton, model.TypeSelect, "carousel"} {
		if IsContainer(ct) {
			t.Errorf("IsContainer(%q) = true", ct)
		}
	}
}

func TestBuildTemplates(t *testing.T) {
	f := &Factory{NewID: sequence()}

	for _, tmpl := range Templates() {
		root, err := f.BuildTemplate(tmpl.ID)
		if err != nil {
			t.Errorf("BuildTemplate(%q) failed: %v", tmpl.ID, err)
			continue
		}
		if !root.HasChildren() || len(root.Children) == 0 {
			t.Errorf("%q: template root should have children", tmpl.ID)
		}
	}

	row, err := f.BuildTemplate("two-col-feature")
	if err != nil {
		t.Fatal(err)
	}
	if row.Type != model.TypeRow || len(row.Children) != 2 || len(row.Children[0].Children) != 2 {
		t.Errorf("unexpected two-col-feature shape: %+v", row)
	}

	if _, err := f.BuildTemplate("missing"); err == nil {
		t.Error("expected an error for an unknown template")
	}
}

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"About Us":            "about-us",
		"  Hello,   World!! ": "hello-world",
		"News & Events 2024":  "news-events-2024",
		"---":                 "page",
		"":                    "page",
	}
	for in, want := range cases {
		if got := GenerateSlug(in); got != want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", in, got, want)
		}
		if !ValidSlug(GenerateSlug(in)) {
			t.Errorf("GenerateSlug(%q) is not a valid slug", in)
		}
	}
	if ValidSlug("Bad Slug") {
		t.Error("ValidSlug accepted spaces")
	}
}
