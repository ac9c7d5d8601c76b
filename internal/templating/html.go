package templating

import (
	"html/template"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"go-page-builder/internal/generator"
	"go-page-builder/internal/interpolate"
	"go-page-builder/internal/model"
)

const indentUnit = "  "

// element is one HTML element ready to be written. text is already safe HTML.
type element struct {
	tag      string
	attrs    []attr
	text     string
	children []element
	void     bool
}

type attr struct {
	name  string
	value string
	flag  bool // boolean attribute, written without a value
}

// RenderComponents projects a component tree to an HTML fragment, one
// element per node. Children are nested and indented under their parent.
func (e *Engine) RenderComponents(roots []*model.Component) string {
	var b strings.Builder
	for i, c := range roots {
		if c == nil {
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		writeElement(&b, e.project(c), 0)
	}
	return b.String()
}

func writeElement(b *strings.Builder, el element, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(el.tag)
	for _, a := range el.attrs {
		b.WriteString(" ")
		b.WriteString(a.name)
		if !a.flag {
			b.WriteString(`="`)
			b.WriteString(template.HTMLEscapeString(a.value))
			b.WriteString(`"`)
		}
	}
	if el.void {
		b.WriteString(" />")
		return
	}
	b.WriteString(">")
	if len(el.children) == 0 {
		b.WriteString(el.text)
	} else {
		b.WriteString("\n")
		if el.text != "" {
			b.WriteString(indent + indentUnit + el.text + "\n")
		}
		for _, child := range el.children {
			writeElement(b, child, depth+1)
			b.WriteString("\n")
		}
		b.WriteString(indent)
	}
	b.WriteString("</")
	b.WriteString(el.tag)
	b.WriteString(">")
}

func (e *Engine) project(c *model.Component) element {
	style := styleAttr(c.Styles)
	with := func(tag string, attrs ...attr) element {
		return element{tag: tag, attrs: append(attrs, style...)}
	}

	switch c.Type {
	case model.TypeHeading:
		level := c.Props.Int("level", 1)
		if level < 1 || level > 6 {
			level = 1
		}
		el := with("h" + strconv.Itoa(level))
		el.text = e.text(c.Props, "content", "")
		return el
	case model.TypeParagraph:
		el := with("p")
		el.text = e.text(c.Props, "content", "")
		return el
	case model.TypeButton:
		el := with("button", attr{name: "type", value: "button"})
		el.text = e.text(c.Props, "content", "Button")
		return el
	case model.TypeImage:
		el := with("img", attr{name: "src", value: safeURL(prop(c.Props, "src"))}, attr{name: "alt", value: prop(c.Props, "alt")})
		el.void = true
		return el
	case model.TypeDivider:
		el := with("hr")
		el.void = true
		return el
	case model.TypeInput, model.TypeDate, model.TypeDatetime:
		inputType := prop(c.Props, "inputType")
		switch {
		case c.Type == model.TypeDate:
			inputType = "date"
		case c.Type == model.TypeDatetime:
			inputType = "datetime-local"
		case inputType == "":
			inputType = "text"
		}
		control := element{tag: "input", void: true, attrs: formAttrs(c.Props,
			attr{name: "type", value: inputType},
			optional("placeholder", prop(c.Props, "placeholder")))}
		return e.field(c, style, control)
	case model.TypeTextarea:
		control := element{tag: "textarea", attrs: formAttrs(c.Props, optional("placeholder", prop(c.Props, "placeholder")))}
		return e.field(c, style, control)
	case model.TypeSelect:
		placeholder := prop(c.Props, "placeholder")
		if placeholder == "" {
			placeholder = "Select..."
		}
		sel := element{tag: "select", attrs: formAttrs(c.Props)}
		sel.children = append(sel.children, element{tag: "option", attrs: []attr{{name: "value"}}, text: e.sanitize(placeholder)})
		for _, opt := range c.Props.Options() {
			sel.children = append(sel.children, element{tag: "option", attrs: []attr{{name: "value", value: opt.Value}}, text: e.sanitize(opt.Label)})
		}
		return e.field(c, style, sel)
	case model.TypeCheckbox:
		el := element{tag: "label", attrs: style}
		el.children = []element{{tag: "input", void: true, attrs: formAttrs(c.Props, attr{name: "type", value: "checkbox"})}}
		if label := prop(c.Props, "label"); label != "" {
			el.children = append(el.children, element{tag: "span", text: e.sanitize(label)})
		}
		return el
	case model.TypeRadio:
		el := element{tag: "fieldset", attrs: style}
		if label := prop(c.Props, "label"); label != "" {
			el.children = append(el.children, element{tag: "legend", text: e.sanitize(label)})
		}
		for _, opt := range c.Props.Options() {
			el.children = append(el.children, element{tag: "label", children: []element{
				{tag: "input", void: true, attrs: formAttrs(c.Props, attr{name: "type", value: "radio"}, attr{name: "value", value: opt.Value})},
				{tag: "span", text: e.sanitize(opt.Label)},
			}})
		}
		return el
	case model.TypeAnchor:
		attrs := []attr{{name: "href", value: safeURL(prop(c.Props, "href"))}}
		if target := prop(c.Props, "target"); target != "" {
			attrs = append(attrs, attr{name: "target", value: target})
			if target == "_blank" {
				attrs = append(attrs, attr{name: "rel", value: "noopener noreferrer"})
			}
		}
		el := with("a", attrs...)
		el.text = e.text(c.Props, "content", "")
		return el
	case model.TypeVideo, model.TypeAudio:
		attrs := []attr{{name: "src", value: safeURL(prop(c.Props, "src"))}}
		if c.Type == model.TypeVideo {
			attrs = append(attrs, optional("poster", safeURL(prop(c.Props, "poster"))))
		}
		attrs = append(attrs, flags(c.Props, "controls", "autoplay", "loop", "muted")...)
		return with(string(c.Type), compact(attrs)...)
	case model.TypeWebcam:
		return with("video", attr{name: "data-webcam", flag: true}, attr{name: "autoplay", flag: true},
			attr{name: "muted", flag: true}, attr{name: "playsinline", flag: true})
	case model.TypeSpacer:
		return with("div")
	}

	el := with("div")
	if c.HasChildren() || generator.IsContainer(c.Type) {
		for _, child := range c.Children {
			if child != nil {
				el.children = append(el.children, e.project(child))
			}
		}
		return el
	}
	el.text = e.text(c.Props, "content", "")
	return el
}

// field wraps a form control in a styled block with an optional label.
func (e *Engine) field(c *model.Component, style []attr, control element) element {
	el := element{tag: "div", attrs: style}
	if label := prop(c.Props, "label"); label != "" {
		var forAttr []attr
		if name := prop(c.Props, "name"); name != "" {
			forAttr = []attr{{name: "for", value: c.ID}}
			control.attrs = append([]attr{{name: "id", value: c.ID}}, control.attrs...)
		}
		el.children = append(el.children, element{tag: "label", attrs: forAttr, text: e.sanitize(label)})
	}
	el.children = append(el.children, control)
	return el
}

// text returns the sanitized prop value, or def when the prop is absent.
func (e *Engine) text(p model.Props, key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return e.sanitize(def)
	}
	return e.sanitize(interpolate.Stringify(v))
}

func (e *Engine) sanitize(s string) string {
	if s == "" {
		return ""
	}
	return e.policy.Sanitize(s)
}

func prop(p model.Props, key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	return interpolate.Stringify(v)
}

func optional(name, value string) attr {
	if value == "" {
		return attr{}
	}
	return attr{name: name, value: value}
}

func flags(p model.Props, names ...string) []attr {
	var out []attr
	for _, name := range names {
		if p.Bool(name) {
			out = append(out, attr{name: name, flag: true})
		}
	}
	return out
}

func formAttrs(p model.Props, extra ...attr) []attr {
	attrs := append([]attr{}, extra...)
	attrs = append(attrs, optional("name", prop(p, "name")))
	attrs = append(attrs, flags(p, "required", "disabled")...)
	return compact(attrs)
}

func compact(attrs []attr) []attr {
	out := attrs[:0]
	for _, a := range attrs {
		if a.name != "" {
			out = append(out, a)
		}
	}
	return out
}

// safeURL drops URLs with a scheme other than http, https, mailto, tel or an image data URL.
func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return raw
	case "data":
		if strings.HasPrefix(strings.ToLower(u.Opaque), "image/") {
			return raw
		}
	}
	return ""
}

// styleAttr builds the inline style: camelCase keys become kebab-case,
// pairs are sorted by key and joined with "; ".
func styleAttr(styles model.Styles) []attr {
	if len(styles) == 0 {
		return nil
	}
	keys := make([]string, 0, len(styles))
	for k, v := range styles {
		if v == nil || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = kebab(k) + ": " + interpolate.Stringify(styles[k])
	}
	return []attr{{name: "style", value: strings.Join(pairs, "; ")}}
}

// kebab converts a camelCase key such as backgroundColor to background-color.
func kebab(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
