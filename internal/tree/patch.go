package tree

import "go-page-builder/internal/model"

// Patch is one field-group change applied by Update. The set of patches is
// closed: props and styles are replaced or edited independently.
type Patch interface {
	apply(c *model.Component)
}

type replaceProps struct{ props model.Props }
type replaceStyles struct{ styles model.Styles }
type setProp struct {
	key   string
	value any
}
type setStyle struct {
	key   string
	value any
}
type removeProp struct{ key string }
type removeStyle struct{ key string }

// ReplaceProps swaps the whole props map.
func ReplaceProps(p model.Props) Patch { return replaceProps{props: p.Clone()} }

// ReplaceStyles swaps the whole styles map.
func ReplaceStyles(s model.Styles) Patch { return replaceStyles{styles: s.Clone()} }

// SetProp sets a single prop, copying the map first.
func SetProp(key string, value any) Patch { return setProp{key: key, value: value} }

// SetStyle sets a single style, copying the map first.
func SetStyle(key string, value any) Patch { return setStyle{key: key, value: value} }

// RemoveProp deletes a single prop.
func RemoveProp(key string) Patch { return removeProp{key: key} }

// RemoveStyle deletes a single style.
func RemoveStyle(key string) Patch { return removeStyle{key: key} }

func (p replaceProps) apply(c *model.Component) {
	c.Props = p.props
	if c.Props == nil {
		c.Props = model.Props{}
	}
}

func (p replaceStyles) apply(c *model.Component) {
	c.Styles = p.styles
	if c.Styles == nil {
		c.Styles = model.Styles{}
	}
}

func (p setProp) apply(c *model.Component) {
	props := c.Props.Clone()
	if props == nil {
		props = model.Props{}
	}
	props[p.key] = p.value
	c.Props = props
}

func (p setStyle) apply(c *model.Component) {
	styles := c.Styles.Clone()
	if styles == nil {
		styles = model.Styles{}
	}
	styles[p.key] = p.value
	c.Styles = styles
}

func (p removeProp) apply(c *model.Component) {
	if _, ok := c.Props[p.key]; !ok {
		return
	}
	props := c.Props.Clone()
	delete(props, p.key)
	c.Props = props
}

func (p removeStyle) apply(c *model.Component) {
	if _, ok := c.Styles[p.key]; !ok {
		return
	}
	styles := c.Styles.Clone()
	delete(styles, p.key)
	c.Styles = styles
}
