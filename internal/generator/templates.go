package generator

import (
	"errors"
	"fmt"

	"go-page-builder/internal/model"
)

// ErrUnknownTemplate is returned when no prebuilt block has the requested id.
var ErrUnknownTemplate = errors.New("unknown template")

// TemplateCategory groups prebuilt blocks in the palette.
type TemplateCategory string

const (
	TemplateBlocks   TemplateCategory = "blocks"
	TemplateForms    TemplateCategory = "forms"
	TemplateSections TemplateCategory = "sections"
)

// Template is a prebuilt component subtree the palette can drop in one go.
type Template struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    TemplateCategory `json:"category"`
	build       func(f *Factory) *model.Component
}

var templates = []Template{
	{
		ID:          "hero-simple",
		Title:       "Hero + CTA",
		Description: "Hero section with heading, copy and button",
		Category:    TemplateSections,
		build: func(f *Factory) *model.Component {
			hero := f.MustCreate(model.TypeHero)
			heading := withContent(f.MustCreate(model.TypeHeading), "Build pages with variables")
			heading.Props["level"] = 1
			para := withContent(f.MustCreate(model.TypeParagraph),
				"Type {{ to insert data source variables. Switch to Preview to see interpolation.")
			button := withContent(f.MustCreate(model.TypeButton), "Get Started")
			hero.Children = []*model.Component{heading, para, button}
			return hero
		},
	},
	{
		ID:          "contact-form",
		Title:       "Contact Form",
		Description: "Heading + inputs + message + submit",
		Category:    TemplateForms,
		build: func(f *Factory) *model.Component {
			card := f.MustCreate(model.TypeCard)
			heading := withContent(f.MustCreate(model.TypeHeading), "Contact us")
			heading.Props["level"] = 2

			name := f.MustCreate(model.TypeInput)
			name.Props["label"], name.Props["name"], name.Props["placeholder"] = "Name", "name", "Your name"

			email := f.MustCreate(model.TypeInput)
			email.Props["label"], email.Props["name"], email.Props["placeholder"] = "Email", "email", "you@company.com"
			email.Props["inputType"] = "email"

			message := f.MustCreate(model.TypeTextarea)
			message.Props["label"], message.Props["name"], message.Props["placeholder"] = "Message", "message", "How can we help?"

			submit := withContent(f.MustCreate(model.TypeButton), "Send message")
			card.Children = []*model.Component{heading, name, email, message, submit}
			return card
		},
	},
	{
		ID:          "two-col-feature",
		Title:       "2-Column Block",
		Description: "Row with 2 columns and text",
		Category:    TemplateBlocks,
		build: func(f *Factory) *model.Component {
			row := f.MustCreate(model.TypeRow)
			left, right := row.Children[0], row.Children[1]
			left.Children = []*model.Component{
				withContent(f.MustCreate(model.TypeHeading), "Left title"),
				withContent(f.MustCreate(model.TypeParagraph), "Left content"),
			}
			right.Children = []*model.Component{
				withContent(f.MustCreate(model.TypeHeading), "Right title"),
				withContent(f.MustCreate(model.TypeParagraph), "Right content"),
			}
			return row
		},
	},
}

func withContent(c *model.Component, text string) *model.Component {
	c.Props["content"] = text
	return c
}

// Templates lists the prebuilt blocks.
func Templates() []Template {
	return append([]Template(nil), templates...)
}

// BuildTemplate builds a fresh subtree for the template with the given id.
func (f *Factory) BuildTemplate(id string) (*model.Component, error) {
	for _, t := range templates {
		if t.ID == id {
			return t.build(f), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
}
