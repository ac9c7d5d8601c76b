package generator

import "go-page-builder/internal/model"

// Category groups definitions in the palette.
type Category string

const (
	CategoryText       Category = "text"
	CategoryMedia      Category = "media"
	CategoryForm       Category = "form"
	CategoryLayout     Category = "layout"
	CategoryStructural Category = "structural"
	CategoryLink       Category = "link"
)

// Definition holds the defaults the factory applies when creating a component of Type.
type Definition struct {
	Type          model.ComponentType `json:"type"`
	Label         string              `json:"label"`
	Category      Category            `json:"category"`
	DefaultProps  model.Props         `json:"defaultProps"`
	DefaultStyles model.Styles        `json:"defaultStyles"`
	IsContainer   bool                `json:"isContainer"`
}

// definitions is the static registry, in palette order.
var definitions = []Definition{
	{
		Type:     model.TypeRow,
		Label:    "Row",
		Category: CategoryLayout,
		DefaultStyles: model.Styles{
			"padding":        "16px",
			"gap":            "16px",
			"flexDirection":  "row",
			"justifyContent": "start",
			"alignItems":     "stretch",
		},
		IsContainer: true,
	},
	{
		Type:     model.TypeColumn,
		Label:    "Column",
		Category: CategoryLayout,
		DefaultStyles: model.Styles{
			"padding":         "16px",
			"width":           "50%",
			"columnSpan":      1,
			"backgroundColor": "#252538",
			"borderRadius":    "8px",
		},
		IsContainer: true,
	},
	{
		Type:         model.TypeHeading,
		Label:        "Heading",
		Category:     CategoryText,
		DefaultProps: model.Props{"content": "Heading Text", "level": 1},
		DefaultStyles: model.Styles{
			"fontSize":   "32px",
			"fontWeight": "700",
			"margin":     "0 0 16px 0",
		},
	},
	{
		Type:     model.TypeParagraph,
		Label:    "Paragraph",
		Category: CategoryText,
		DefaultProps: model.Props{
			"content": "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
		},
		DefaultStyles: model.Styles{"fontSize": "16px", "margin": "0 0 16px 0"},
	},
	{
		Type:          model.TypeButton,
		Label:         "Button",
		Category:      CategoryText,
		DefaultProps:  model.Props{"content": "Click Me", "variant": "primary"},
		DefaultStyles: model.Styles{"padding": "12px 24px", "borderRadius": "8px"},
	},
	{
		Type:     model.TypeImage,
		Label:    "Image",
		Category: CategoryMedia,
		DefaultProps: model.Props{
			"src": "https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?w=800&h=400&fit=crop",
			"alt": "Placeholder image",
		},
		DefaultStyles: model.Styles{"width": "100%", "borderRadius": "8px"},
	},
	{
		Type:          model.TypeContainer,
		Label:         "Container",
		Category:      CategoryLayout,
		DefaultStyles: model.Styles{"padding": "24px", "backgroundColor": "#1a1a2e", "borderRadius": "8px"},
		IsContainer:   true,
	},
	{
		Type:          model.TypeDivider,
		Label:         "Divider",
		Category:      CategoryStructural,
		DefaultStyles: model.Styles{"margin": "24px 0"},
	},
	{
		Type:          model.TypeSpacer,
		Label:         "Spacer",
		Category:      CategoryStructural,
		DefaultStyles: model.Styles{"height": "48px"},
	},
	{
		Type:          model.TypeCard,
		Label:         "Card",
		Category:      CategoryLayout,
		DefaultStyles: model.Styles{"padding": "24px", "backgroundColor": "#252538", "borderRadius": "12px"},
		IsContainer:   true,
	},
	{
		Type:          model.TypeGrid,
		Label:         "Grid",
		Category:      CategoryLayout,
		DefaultStyles: model.Styles{"gap": "16px", "columns": 2},
		IsContainer:   true,
	},
	{
		Type:          model.TypeHero,
		Label:         "Hero Section",
		Category:      CategoryLayout,
		DefaultProps:  model.Props{"content": "Hero Section"},
		DefaultStyles: model.Styles{"padding": "80px 24px", "backgroundColor": "#1a1a2e", "textAlign": "center"},
		IsContainer:   true,
	},
	{
		Type:     model.TypeInput,
		Label:    "Input",
		Category: CategoryForm,
		DefaultProps: model.Props{
			"label":       "Label",
			"name":        "input",
			"placeholder": "Enter text...",
			"inputType":   "text",
			"required":    false,
			"disabled":    false,
		},
		DefaultStyles: model.Styles{"width": "100%", "margin": "0 0 16px 0"},
	},
	{
		Type:     model.TypeTextarea,
		Label:    "Textarea",
		Category: CategoryForm,
		DefaultProps: model.Props{
			"label":       "Message",
			"name":        "message",
			"placeholder": "Enter your message...",
			"required":    false,
			"disabled":    false,
		},
		DefaultStyles: model.Styles{"width": "100%", "height": "120px", "margin": "0 0 16px 0"},
	},
	{
		Type:     model.TypeSelect,
		Label:    "Select",
		Category: CategoryForm,
		DefaultProps: model.Props{
			"label":       "Choose an option",
			"name":        "select",
			"placeholder": "Select...",
			"options": []model.Option{
				{Label: "Option 1", Value: "option-1"},
				{Label: "Option 2", Value: "option-2"},
				{Label: "Option 3", Value: "option-3"},
			},
			"multiSelect": false,
			"filterable":  false,
		},
		DefaultStyles: model.Styles{"width": "100%", "margin": "0 0 16px 0"},
	},
	{
		Type:          model.TypeCheckbox,
		Label:         "Checkbox",
		Category:      CategoryForm,
		DefaultProps:  model.Props{"label": "I agree", "name": "checkbox", "required": false, "disabled": false},
		DefaultStyles: model.Styles{"margin": "0 0 16px 0"},
	},
	{
		Type:     model.TypeRadio,
		Label:    "Radio Group",
		Category: CategoryForm,
		DefaultProps: model.Props{
			"label": "Pick one",
			"name":  "radio",
			"options": []model.Option{
				{Label: "Yes", Value: "yes"},
				{Label: "No", Value: "no"},
			},
			"disabled": false,
		},
		DefaultStyles: model.Styles{"margin": "0 0 16px 0"},
	},
	{
		Type:          model.TypeDate,
		Label:         "Date",
		Category:      CategoryForm,
		DefaultProps:  model.Props{"label": "Date", "name": "date", "required": false, "disabled": false},
		DefaultStyles: model.Styles{"width": "100%", "margin": "0 0 16px 0"},
	},
	{
		Type:          model.TypeDatetime,
		Label:         "Date & Time",
		Category:      CategoryForm,
		DefaultProps:  model.Props{"label": "Date & time", "name": "datetime", "required": false, "disabled": false},
		DefaultStyles: model.Styles{"width": "100%", "margin": "0 0 16px 0"},
	},
	{
		Type:          model.TypeAnchor,
		Label:         "Link",
		Category:      CategoryLink,
		DefaultProps:  model.Props{"content": "Link text", "href": "#", "target": "_self"},
		DefaultStyles: model.Styles{"textColor": "#6366f1"},
	},
	{
		Type:     model.TypeVideo,
		Label:    "Video",
		Category: CategoryMedia,
		DefaultProps: model.Props{
			"src":      "",
			"poster":   "",
			"controls": true,
			"autoplay": false,
			"loop":     false,
			"muted":    false,
		},
		DefaultStyles: model.Styles{"width": "100%", "borderRadius": "8px"},
	},
	{
		Type:          model.TypeAudio,
		Label:         "Audio",
		Category:      CategoryMedia,
		DefaultProps:  model.Props{"src": "", "controls": true, "autoplay": false, "loop": false},
		DefaultStyles: model.Styles{"width": "100%"},
	},
	{
		Type:          model.TypeWebcam,
		Label:         "Webcam",
		Category:      CategoryMedia,
		DefaultProps:  model.Props{},
		DefaultStyles: model.Styles{"width": "100%", "height": "240px", "borderRadius": "8px"},
	},
}

var definitionIndex = func() map[model.ComponentType]*Definition {
	idx := make(map[model.ComponentType]*Definition, len(definitions))
	for i := range definitions {
		idx[definitions[i].Type] = &definitions[i]
	}
	return idx
}()

// Definitions returns a copy of the registry in palette order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	for i, d := range definitions {
		d.DefaultProps = d.DefaultProps.Clone()
		d.DefaultStyles = d.DefaultStyles.Clone()
		out[i] = d
	}
	return out
}

// Lookup returns the definition registered for t.
func Lookup(t model.ComponentType) (Definition, bool) {
	d, ok := definitionIndex[t]
	if !ok {
		return Definition{}, false
	}
	return *d, true
}

// IsContainer reports whether components of type t always carry a children list.
func IsContainer(t model.ComponentType) bool {
	d, ok := definitionIndex[t]
	return ok && d.IsContainer
}

// IsRegistered reports whether t has a definition.
func IsRegistered(t model.ComponentType) bool {
	_, ok := definitionIndex[t]
	return ok
}
