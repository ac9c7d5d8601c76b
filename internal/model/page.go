package model

import "time"

// PageType categorizes a page within a project.
type PageType string

const (
	PageLanding PageType = "landing"
	PageAbout   PageType = "about"
	PageNews    PageType = "news"
	PageEvents  PageType = "events"
	PageContact PageType = "contact"
	PageCustom  PageType = "custom"
)

// Valid reports whether t is one of the known page types.
func (t PageType) Valid() bool {
	switch t {
	case PageLanding, PageAbout, PageNews, PageEvents, PageContact, PageCustom:
		return true
	}
	return false
}

// Page is a single routable page holding the root list of components.
type Page struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Slug       string       `json:"slug"` // URL-safe, derived from Name
	Type       PageType     `json:"type"`
	Components []*Component `json:"components"` // Root-level components in display order
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Project groups the pages of one site.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pages     []*Page   `json:"pages"` // Ordered; the first page is the default one
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageByID returns the page with the given id, or nil.
func (p *Project) PageByID(id string) *Page {
	for _, page := range p.Pages {
		if page.ID == id {
			return page
		}
	}
	return nil
}
