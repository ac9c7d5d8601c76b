package pagemanager

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go-page-builder/internal/generator"
	"go-page-builder/internal/model"
	"go-page-builder/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrPageNotFound    = errors.New("page not found")
	ErrInvalidInput    = errors.New("invalid input")
)

const projectKeyPrefix = "project-"

// PageManager provides methods for managing projects and their pages.
// Each project, pages included, is persisted as a single document.
type PageManager struct {
	store  storage.Store
	logger *slog.Logger
	mu     sync.Mutex // Serializes load-modify-save of project documents

	NewID func() string
	Now   func() time.Time
}

// NewManager creates a new PageManager instance.
func NewManager(store storage.Store, logger *slog.Logger) *PageManager {
	if logger == nil {
		// Provide a default discard logger if none is provided
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PageManager{
		store:  store,
		logger: logger,
		NewID:  uuid.NewString,
		Now:    time.Now,
	}
}

// GetStore returns the underlying Store instance.
func (m *PageManager) GetStore() storage.Store {
	return m.store
}

func projectKey(id string) string {
	return projectKeyPrefix + id
}

func (m *PageManager) now() time.Time {
	return m.Now().UTC()
}

func (m *PageManager) load(projectID string) (*model.Project, error) {
	if projectID == "" || !storage.ValidKey(projectKey(projectID)) {
		return nil, fmt.Errorf("%w: %q", ErrProjectNotFound, projectID)
	}
	var p model.Project
	if err := m.store.Load(projectKey(projectID), &p); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		return nil, fmt.Errorf("loading project %s failed: %w", projectID, err)
	}
	if p.Pages == nil {
		p.Pages = []*model.Page{}
	}
	for _, page := range p.Pages {
		if page.Components == nil {
			page.Components = []*model.Component{}
		}
	}
	return &p, nil
}

func (m *PageManager) save(p *model.Project) error {
	if err := m.store.Save(projectKey(p.ID), p); err != nil {
		m.logger.Error("Error saving project", "projectID", p.ID, "error", err)
		return fmt.Errorf("saving project %s failed: %w", p.ID, err)
	}
	return nil
}

// update loads a project, applies fn and saves the result when fn succeeds.
func (m *PageManager) update(projectID string, fn func(p *model.Project) error) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.load(projectID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = m.now()
	if err := m.save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject creates an empty project.
func (m *PageManager) CreateProject(name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}

	now := m.now()
	p := &model.Project{
		ID:        m.NewID(),
		Name:      name,
		Pages:     []*model.Page{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.save(p); err != nil {
		return nil, err
	}
	m.logger.Info("Created project", "projectID", p.ID, "name", name)
	return p, nil
}

// GetProject loads a project with all its pages.
func (m *PageManager) GetProject(projectID string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(projectID)
}

// ListProjects returns every stored project, oldest first.
func (m *PageManager) ListProjects() ([]*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys, err := m.store.Keys(projectKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing projects failed: %w", err)
	}
	projects := make([]*model.Project, 0, len(keys))
	for _, key := range keys {
		p, err := m.load(strings.TrimPrefix(key, projectKeyPrefix))
		if err != nil {
			// A single unreadable document should not hide the others.
			m.logger.Warn("Skipping unreadable project", "key", key, "error", err)
			continue
		}
		projects = append(projects, p)
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

// RenameProject changes a project's display name.
func (m *PageManager) RenameProject(projectID, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	p, err := m.update(projectID, func(p *model.Project) error {
		p.Name = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("Renamed project", "projectID", projectID, "name", name)
	return p, nil
}

// DeleteProject removes a project and all its pages.
func (m *PageManager) DeleteProject(projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.load(projectID); err != nil {
		return err
	}
	if err := m.store.Delete(projectKey(projectID)); err != nil {
		m.logger.Error("Error deleting project", "projectID", projectID, "error", err)
		return fmt.Errorf("deleting project %s failed: %w", projectID, err)
	}
	m.logger.Info("Deleted project", "projectID", projectID)
	return nil
}

func uniqueSlug(p *model.Project, name, exceptPageID string) string {
	base := generator.GenerateSlug(name)
	taken := make(map[string]bool, len(p.Pages))
	for _, page := range p.Pages {
		if page.ID != exceptPageID {
			taken[page.Slug] = true
		}
	}
	slug := base
	for i := 2; taken[slug]; i++ {
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return slug
}

func findPage(p *model.Project, pageID string) (int, error) {
	for i, page := range p.Pages {
		if page.ID == pageID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s in project %s", ErrPageNotFound, pageID, p.ID)
}

// CreatePage appends an empty page to the project. The slug is derived from
// the name and suffixed when another page of the project already uses it.
func (m *PageManager) CreatePage(projectID, name string, pageType model.PageType) (*model.Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: page name is required", ErrInvalidInput)
	}
	if pageType == "" {
		pageType = model.PageCustom
	}
	if !pageType.Valid() {
		return nil, fmt.Errorf("%w: unknown page type %q", ErrInvalidInput, pageType)
	}

	var page *model.Page
	_, err := m.update(projectID, func(p *model.Project) error {
		now := m.now()
		page = &model.Page{
			ID:         m.NewID(),
			Name:       name,
			Slug:       uniqueSlug(p, name, ""),
			Type:       pageType,
			Components: []*model.Component{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		p.Pages = append(p.Pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("Created page", "projectID", projectID, "pageID", page.ID, "slug", page.Slug)
	return page, nil
}

// GetPage returns one page of a project.
func (m *PageManager) GetPage(projectID, pageID string) (*model.Page, error) {
	p, err := m.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	i, err := findPage(p, pageID)
	if err != nil {
		return nil, err
	}
	return p.Pages[i], nil
}

// PageBySlug returns the project and its page with the given slug.
func (m *PageManager) PageBySlug(projectID, slug string) (*model.Project, *model.Page, error) {
	p, err := m.GetProject(projectID)
	if err != nil {
		return nil, nil, err
	}
	for _, page := range p.Pages {
		if page.Slug == slug {
			return p, page, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: slug %q in project %s", ErrPageNotFound, slug, projectID)
}

// RenamePage changes a page's name and regenerates its slug.
func (m *PageManager) RenamePage(projectID, pageID, name string) (*model.Page, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: page name is required", ErrInvalidInput)
	}
	var page *model.Page
	_, err := m.update(projectID, func(p *model.Project) error {
		i, err := findPage(p, pageID)
		if err != nil {
			return err
		}
		page = p.Pages[i]
		page.Name = name
		page.Slug = uniqueSlug(p, name, pageID)
		page.UpdatedAt = m.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("Renamed page", "projectID", projectID, "pageID", pageID, "slug", page.Slug)
	return page, nil
}

// UpdatePageComponents replaces the page's root component list.
func (m *PageManager) UpdatePageComponents(projectID, pageID string, components []*model.Component) (*model.Page, error) {
	if components == nil {
		components = []*model.Component{}
	}
	var page *model.Page
	_, err := m.update(projectID, func(p *model.Project) error {
		i, err := findPage(p, pageID)
		if err != nil {
			return err
		}
		page = p.Pages[i]
		page.Components = components
		page.UpdatedAt = m.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Saved page components", "projectID", projectID, "pageID", pageID, "roots", len(components))
	return page, nil
}

// DeletePage removes a page from its project.
func (m *PageManager) DeletePage(projectID, pageID string) error {
	_, err := m.update(projectID, func(p *model.Project) error {
		i, err := findPage(p, pageID)
		if err != nil {
			return err
		}
		p.Pages = append(p.Pages[:i], p.Pages[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info("Deleted page", "projectID", projectID, "pageID", pageID)
	return nil
}
