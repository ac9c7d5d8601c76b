package interpolate

import "go-page-builder/internal/model"

// InterpolateNode returns a new node whose string props (and option labels and
// values) are interpolated, recursing into children. Styles are copied as is.
// The input node is never modified.
func (r *Resolver) InterpolateNode(node *model.Component, sources []*model.DataSource) *model.Component {
	if node == nil {
		return nil
	}
	out := &model.Component{
		ID:     node.ID,
		Type:   node.Type,
		Styles: node.Styles.Clone(),
	}
	if node.Props != nil {
		out.Props = make(model.Props, len(node.Props))
		for k, v := range node.Props {
			out.Props[k] = r.InterpolateValue(v, sources)
		}
	}
	if node.Children != nil {
		out.Children = r.InterpolateTree(node.Children, sources)
	}
	return out
}

// InterpolateTree interpolates every node of a root list into a new list.
func (r *Resolver) InterpolateTree(roots []*model.Component, sources []*model.DataSource) []*model.Component {
	if roots == nil {
		return nil
	}
	out := make([]*model.Component, len(roots))
	for i, c := range roots {
		out[i] = r.InterpolateNode(c, sources)
	}
	return out
}

// InterpolateValue walks an arbitrary decoded value, interpolating every string
// it finds in maps, slices and option lists. Other scalars are returned as is.
func (r *Resolver) InterpolateValue(v any, sources []*model.DataSource) any {
	switch val := v.(type) {
	case string:
		return r.Interpolate(val, sources)
	case []model.Option:
		out := make([]model.Option, len(val))
		for i, o := range val {
			out[i] = model.Option{
				Label: r.Interpolate(o.Label, sources),
				Value: r.Interpolate(o.Value, sources),
			}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = r.InterpolateValue(item, sources)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = r.InterpolateValue(item, sources)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = r.Interpolate(item, sources)
		}
		return out
	default:
		return v
	}
}

// InterpolateNode uses the package's default resolver.
func InterpolateNode(node *model.Component, sources []*model.DataSource) *model.Component {
	return defaultResolver.InterpolateNode(node, sources)
}

// InterpolateTree uses the package's default resolver.
func InterpolateTree(roots []*model.Component, sources []*model.DataSource) []*model.Component {
	return defaultResolver.InterpolateTree(roots, sources)
}

// InterpolateValue uses the package's default resolver.
func InterpolateValue(v any, sources []*model.DataSource) any {
	return defaultResolver.InterpolateValue(v, sources)
}
