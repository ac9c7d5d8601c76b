package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ComponentType is the closed set of node kinds a page can contain.
type ComponentType string

const (
	TypeHeading   ComponentType = "heading"
	TypeParagraph ComponentType = "paragraph"
	TypeButton    ComponentType = "button"
	TypeImage     ComponentType = "image"
	TypeContainer ComponentType = "container"
	TypeDivider   ComponentType = "divider"
	TypeSpacer    ComponentType = "spacer"
	TypeCard      ComponentType = "card"
	TypeGrid      ComponentType = "grid"
	TypeHero      ComponentType = "hero"
	TypeRow       ComponentType = "row"
	TypeColumn    ComponentType = "column"
	// Form components
	TypeInput    ComponentType = "input"
	TypeTextarea ComponentType = "textarea"
	TypeSelect   ComponentType = "select"
	TypeCheckbox ComponentType = "checkbox"
	TypeRadio    ComponentType = "radio"
	TypeDate     ComponentType = "date"
	TypeDatetime ComponentType = "datetime"
	// Media and link components
	TypeAnchor ComponentType = "anchor"
	TypeVideo  ComponentType = "video"
	TypeAudio  ComponentType = "audio"
	TypeWebcam ComponentType = "webcam"
)

// Option is a single entry of a select or radio group.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Props holds the type-specific properties of a component (content, src, level, options, flags).
// Values are strings, numbers, bools or []Option.
type Props map[string]any

// Styles holds scalar style values keyed by camelCase CSS property names.
type Styles map[string]any

// Component is one node of a page's component tree.
//
// Children distinguishes "no children field" (nil, leaf types) from
// "container without children" (non-nil, empty).
type Component struct {
	ID       string        `json:"id"`
	Type     ComponentType `json:"type"`
	Props    Props         `json:"props"`
	Styles   Styles        `json:"styles"`
	Children []*Component  `json:"children,omitempty"`
}

// HasChildren reports whether the component carries a children list, even an empty one.
func (c *Component) HasChildren() bool {
	return c != nil && c.Children != nil
}

// MarshalJSON keeps an empty children list as [] instead of dropping it.
func (c Component) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID       string        `json:"id"`
		Type     ComponentType `json:"type"`
		Props    Props         `json:"props"`
		Styles   Styles        `json:"styles"`
		Children *[]*Component `json:"children,omitempty"`
	}
	w := wire{ID: c.ID, Type: c.Type, Props: c.Props, Styles: c.Styles}
	if w.Props == nil {
		w.Props = Props{}
	}
	if w.Styles == nil {
		w.Styles = Styles{}
	}
	if c.Children != nil {
		w.Children = &c.Children
	}
	return json.Marshal(w)
}

// Clone returns a deep copy of the component and its descendants, ids included.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	out := &Component{
		ID:     c.ID,
		Type:   c.Type,
		Props:  c.Props.Clone(),
		Styles: c.Styles.Clone(),
	}
	if c.Children != nil {
		out.Children = make([]*Component, len(c.Children))
		for i, child := range c.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// UnmarshalJSON normalizes the options list into []Option.
func (p *Props) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*p = nil
		return nil
	}
	if opts, ok := raw["options"]; ok {
		normalized, err := normalizeOptions(opts)
		if err != nil {
			return fmt.Errorf("props.options: %w", err)
		}
		raw["options"] = normalized
	}
	*p = Props(raw)
	return nil
}

func normalizeOptions(v any) ([]Option, error) {
	switch opts := v.(type) {
	case nil:
		return nil, nil
	case []Option:
		return opts, nil
	case []any:
		out := make([]Option, 0, len(opts))
		for i, item := range opts {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("option %d is %T, want object", i, item)
			}
			out = append(out, Option{Label: scalarString(m["label"]), Value: scalarString(m["value"])})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("got %T, want array", v)
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// Clone deep-copies the map, including option lists and nested JSON objects
// and arrays.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []Option:
		return append([]Option(nil), t...)
	case map[string]any:
		if t == nil {
			return t
		}
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		if t == nil {
			return t
		}
		list := make([]any, len(t))
		for i, e := range t {
			list[i] = cloneValue(e)
		}
		return list
	case map[string]string:
		if t == nil {
			return t
		}
		m := make(map[string]string, len(t))
		for k, e := range t {
			m[k] = e
		}
		return m
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// String returns the prop as a string, or "" when it is absent or not a string.
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Bool returns the prop as a bool, false when absent.
func (p Props) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Int returns a numeric prop as an int, or def when it is absent or not numeric.
func (p Props) Int(key string, def int) int {
	switch n := p[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// Options returns the options list, or nil when there is none.
func (p Props) Options() []Option {
	opts, _ := p["options"].([]Option)
	return opts
}

// Clone copies the style map.
func (s Styles) Clone() Styles {
	if s == nil {
		return nil
	}
	out := make(Styles, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
