package pagemanager

import (
	"go-page-builder/internal/generator"
	"go-page-builder/internal/model"
)

// SeedDemo creates the "My Website" demo project: a Home landing page with a
// hero section plus empty About and News pages.
func (m *PageManager) SeedDemo() (*model.Project, error) {
	p, err := m.CreateProject("My Website")
	if err != nil {
		return nil, err
	}
	home, err := m.CreatePage(p.ID, "Home", model.PageLanding)
	if err != nil {
		return nil, err
	}
	for _, extra := range []struct {
		name string
		typ  model.PageType
	}{{"About", model.PageAbout}, {"News", model.PageNews}} {
		if _, err := m.CreatePage(p.ID, extra.name, extra.typ); err != nil {
			return nil, err
		}
	}

	if _, err := m.UpdatePageComponents(p.ID, home.ID, demoHero(&generator.Factory{NewID: m.NewID})); err != nil {
		return nil, err
	}
	m.logger.Info("Seeded demo project", "projectID", p.ID)
	return m.GetProject(p.ID)
}

func demoHero(f *generator.Factory) []*model.Component {
	hero := f.MustCreate(model.TypeHero)
	hero.Props["content"] = "Welcome to Our Company"
	hero.Styles = model.Styles{
		"backgroundColor": "#1a1a2e",
		"textColor":       "#ffffff",
		"padding":         "80px",
		"textAlign":       "center",
	}

	heading := f.MustCreate(model.TypeHeading)
	heading.Props["content"] = "Build Something Amazing"
	heading.Props["level"] = 1
	heading.Styles = model.Styles{
		"fontSize":   "48px",
		"fontWeight": "700",
		"textColor":  "#ffffff",
		"margin":     "0 0 16px 0",
	}

	para := f.MustCreate(model.TypeParagraph)
	para.Props["content"] = "Create stunning websites with our drag and drop builder. No coding required."
	para.Styles = model.Styles{
		"fontSize":  "18px",
		"textColor": "#a0a0a0",
		"margin":    "0 0 32px 0",
	}

	button := f.MustCreate(model.TypeButton)
	button.Props["content"] = "Get Started"
	button.Props["variant"] = "primary"
	button.Styles = model.Styles{
		"padding":      "12px 32px",
		"borderRadius": "8px",
	}

	hero.Children = []*model.Component{heading, para, button}
	return []*model.Component{hero}
}
