package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"go-page-builder/internal/interpolate"
	"go-page-builder/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() []*model.Component {
	return []*model.Component{
		{ID: "box", Type: model.TypeContainer, Props: model.Props{}, Styles: model.Styles{"padding": "8px"}, Children: []*model.Component{
			{ID: "p", Type: model.TypeParagraph, Props: model.Props{"content": "<b>{{site.name}}</b>"}, Styles: model.Styles{}},
		}},
		{ID: "empty", Type: model.TypeGrid, Props: model.Props{}, Styles: model.Styles{}, Children: []*model.Component{}},
	}
}

func TestWriteEnvelope(t *testing.T) {
	sources := []*model.DataSource{{ID: "ds1", Name: "site", Type: model.SourceStaticJSON, JSONData: `{"name":"Acme"}`}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTree(), sources))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, "1.0", env["version"])
	assert.Contains(t, env, "exportedAt")
	assert.Equal(t, []any{map[string]any{"id": "ds1", "name": "site", "type": "static-json"}}, env["dataSources"])

	// Data never leaks into the export
	assert.NotContains(t, buf.String(), "Acme")
	// HTML in props is written as is
	assert.Contains(t, buf.String(), "<b>{{site.name}}</b>")
	// Indented output
	assert.Contains(t, buf.String(), "\n  \"version\"")
}

func TestNewEnvelopeDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	env := NewEnvelope(nil, nil, now)
	assert.Equal(t, Version, env.Version)
	assert.Equal(t, time.UTC, env.ExportedAt.Location())
	assert.NotNil(t, env.Components)
	assert.NotNil(t, env.DataSources)
}

func TestRoundTripKeepsTree(t *testing.T) {
	data, err := Marshal(sampleTree(), nil)
	require.NoError(t, err)

	doc, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)
	if diff := cmp.Diff(sampleTree(), doc.Components); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, doc.Components[0].Children[0].Children, "leaf must stay without children")
	assert.NotNil(t, doc.Components[1].Children, "empty container must keep its list")
}

func TestParseAcceptedShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ids   []string
	}{
		{"bare array", `[{"id":"a","type":"heading","props":{},"styles":{}}]`, []string{"a"}},
		{"components object", ` {"components":[{"id":"a","type":"divider"},{"id":"b","type":"spacer"}]}`, []string{"a", "b"}},
		{"empty array", `[]`, []string{}},
		{"envelope", `{"version":"1.0","exportedAt":"2024-01-01T00:00:00Z","dataSources":[{"id":"1","name":"x","type":"key-value"}],"components":[]}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			got := make([]string, 0, len(doc.Components))
			for _, c := range doc.Components {
				got = append(got, c.ID)
				assert.NotNil(t, c.Props)
				assert.NotNil(t, c.Styles)
			}
			assert.Equal(t, tt.ids, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", "  "},
		{"invalid json", `{"components":`},
		{"scalar", `42`},
		{"string", `"components"`},
		{"object without components", `{"items":[]}`},
		{"components not an array", `{"components":{"id":"a"}}`},
		{"duplicate ids", `[{"id":"a","type":"heading"},{"id":"a","type":"paragraph"}]`},
		{"duplicate nested id", `[{"id":"a","type":"container","children":[{"id":"a","type":"heading"}]}]`},
		{"missing id", `[{"type":"heading"}]`},
		{"null entry", `[null]`},
		{"bad options", `[{"id":"s","type":"select","props":{"options":"nope"}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input))
			assert.Nil(t, doc)
			require.ErrorIs(t, err, ErrInvalidFormat)
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestParseThenInterpolateKeepsUnknownPlaceholder(t *testing.T) {
	doc, err := Parse([]byte(`{"components":[{"id":"a","type":"paragraph","props":{"content":"{{x.y}}"},"styles":{}}]}`))
	require.NoError(t, err)

	out := interpolate.InterpolateTree(doc.Components, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "{{x.y}}", out[0].Props.String("content"))
}

func TestParseOptionsNormalized(t *testing.T) {
	doc, err := Parse([]byte(`[{"id":"s","type":"select","props":{"options":[{"label":"A","value":"a"}]}}]`))
	require.NoError(t, err)
	assert.Equal(t, []model.Option{{Label: "A", Value: "a"}}, doc.Components[0].Props.Options())
}
