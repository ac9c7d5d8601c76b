// Package export writes and reads the JSON document a page is exported as.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go-page-builder/internal/model"
)

// Version is written into every envelope.
const Version = "1.0"

// ErrInvalidFormat is wrapped by every Parse failure.
var ErrInvalidFormat = errors.New("invalid export format")

// SourceRef names a data source the exported tree may refer to. Only the
// identity is exported, never the data.
type SourceRef struct {
	ID   string               `json:"id"`
	Name string               `json:"name"`
	Type model.DataSourceType `json:"type"`
}

// Envelope is the exported document.
type Envelope struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exportedAt"`
	DataSources []SourceRef        `json:"dataSources"`
	Components  []*model.Component `json:"components"`
}

// Document is what Parse recovers from any accepted input shape.
type Document struct {
	Version     string
	DataSources []SourceRef
	Components  []*model.Component
}

// NewEnvelope builds the envelope for components, listing sources by reference.
func NewEnvelope(components []*model.Component, sources []*model.DataSource, now time.Time) *Envelope {
	env := &Envelope{
		Version:     Version,
		ExportedAt:  now.UTC(),
		DataSources: make([]SourceRef, 0, len(sources)),
		Components:  components,
	}
	if env.Components == nil {
		env.Components = []*model.Component{}
	}
	for _, ds := range sources {
		env.DataSources = append(env.DataSources, SourceRef{ID: ds.ID, Name: ds.Name, Type: ds.Type})
	}
	return env
}

// Write encodes the envelope for components as indented JSON.
func Write(w io.Writer, components []*model.Component, sources []*model.DataSource) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewEnvelope(components, sources, time.Now())); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// Marshal is Write into a byte slice.
func Marshal(components []*model.Component, sources []*model.DataSource) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, components, sources); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse accepts an envelope, a bare array of components, or any object with
// a components key. Everything else is rejected with an error wrapping
// ErrInvalidFormat.
func Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}

	switch trimmed[0] {
	case '[':
		var components []*model.Component
		if err := json.Unmarshal(trimmed, &components); err != nil {
			return nil, fmt.Errorf("%w: component array: %v", ErrInvalidFormat, err)
		}
		return newDocument("", nil, components)
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		comps, ok := raw["components"]
		if !ok {
			return nil, fmt.Errorf("%w: object has no \"components\" key", ErrInvalidFormat)
		}
		var components []*model.Component
		if err := json.Unmarshal(comps, &components); err != nil {
			return nil, fmt.Errorf("%w: components: %v", ErrInvalidFormat, err)
		}
		var version string
		if v, ok := raw["version"]; ok {
			_ = json.Unmarshal(v, &version)
		}
		var sources []SourceRef
		if v, ok := raw["dataSources"]; ok {
			if err := json.Unmarshal(v, &sources); err != nil {
				return nil, fmt.Errorf("%w: dataSources: %v", ErrInvalidFormat, err)
			}
		}
		return newDocument(version, sources, components)
	default:
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: not JSON", ErrInvalidFormat)
		}
		return nil, fmt.Errorf("%w: expected an object or an array", ErrInvalidFormat)
	}
}

func newDocument(version string, sources []SourceRef, components []*model.Component) (*Document, error) {
	if components == nil {
		components = []*model.Component{}
	}
	seen := make(map[string]bool)
	if err := check(components, seen); err != nil {
		return nil, err
	}
	return &Document{Version: version, DataSources: sources, Components: components}, nil
}

// check rejects trees that break the unique-id rule or hold null entries.
func check(list []*model.Component, seen map[string]bool) error {
	for i, c := range list {
		if c == nil {
			return fmt.Errorf("%w: null component at index %d", ErrInvalidFormat, i)
		}
		if c.ID == "" {
			return fmt.Errorf("%w: component at index %d has no id", ErrInvalidFormat, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate component id %q", ErrInvalidFormat, c.ID)
		}
		seen[c.ID] = true
		if c.Props == nil {
			c.Props = model.Props{}
		}
		if c.Styles == nil {
			c.Styles = model.Styles{}
		}
		if err := check(c.Children, seen); err != nil {
			return err
		}
	}
	return nil
}
