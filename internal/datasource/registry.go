// Package datasource keeps the named data sources that placeholders draw from.
//
// Stored records are never modified in place: every write builds a new record
// and swaps it in, so a reader holding a record always sees a consistent value.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go-page-builder/internal/model"
	"go-page-builder/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StorageKey is the store key holding the full list of data sources.
const StorageKey = "builder-datasources"

// DefaultConcurrency bounds parallel refreshes in RefreshAll.
const DefaultConcurrency = 4

var (
	ErrNotFound = errors.New("data source not found")
	ErrNotHTTP  = errors.New("data source is not an http-api source")
	ErrInvalid  = errors.New("invalid data source")
	ErrFetch    = errors.New("data source fetch failed")
)

// Registry holds the data sources in insertion order.
type Registry struct {
	mu      sync.RWMutex
	sources []*model.DataSource

	store   storage.Store
	fetcher Fetcher
	logger  *slog.Logger

	// Concurrency bounds RefreshAll; values below 1 mean DefaultConcurrency.
	Concurrency int
	NewID       func() string
	Now         func() time.Time
}

// NewRegistry creates an empty registry. store may be nil for an in-memory
// registry; fetcher may be nil when http-api sources are never refreshed.
func NewRegistry(store storage.Store, fetcher Fetcher, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = discardLogger()
	}
	return &Registry{
		store:       store,
		fetcher:     fetcher,
		logger:      logger,
		Concurrency: DefaultConcurrency,
		NewID:       uuid.NewString,
		Now:         time.Now,
	}
}

func validate(ds *model.DataSource) error {
	if strings.TrimSpace(ds.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.ContainsAny(ds.Name, ".{}") {
		return fmt.Errorf("%w: name %q may not contain dots or braces", ErrInvalid, ds.Name)
	}
	if !ds.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, ds.Type)
	}
	if ds.Type == model.SourceHTTPAPI && (ds.HTTPConfig == nil || ds.HTTPConfig.URL == "") {
		return fmt.Errorf("%w: http-api source %q needs a url", ErrInvalid, ds.Name)
	}
	return nil
}

func clone(ds *model.DataSource) *model.DataSource {
	cp := *ds
	if ds.KeyValueData != nil {
		cp.KeyValueData = make(map[string]string, len(ds.KeyValueData))
		for k, v := range ds.KeyValueData {
			cp.KeyValueData[k] = v
		}
	}
	if ds.HTTPConfig != nil {
		cfg := *ds.HTTPConfig
		cfg.Headers = copyStrings(ds.HTTPConfig.Headers)
		cfg.QueryParams = copyStrings(ds.HTTPConfig.QueryParams)
		cp.HTTPConfig = &cfg
	}
	if ds.LastFetched != nil {
		t := *ds.LastFetched
		cp.LastFetched = &t
	}
	return &cp
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *Registry) indexOf(id string) int {
	for i, ds := range r.sources {
		if ds.ID == id {
			return i
		}
	}
	return -1
}

// Add stores a copy of ds with a fresh id (unless it carries an unused one)
// and returns the stored copy.
func (r *Registry) Add(ds model.DataSource) (*model.DataSource, error) {
	rec := clone(&ds)
	if err := validate(rec); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" || r.indexOf(rec.ID) != -1 {
		rec.ID = r.NewID()
	}
	now := r.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	next := append(append([]*model.DataSource(nil), r.sources...), rec)
	if err := r.persist(next); err != nil {
		return nil, err
	}
	r.sources = next
	r.logger.Info("Data source added", "id", rec.ID, "name", rec.Name, "type", rec.Type)
	return clone(rec), nil
}

// Update applies fn to a copy of the source and swaps the copy in.
// The id and creation time cannot be changed.
func (r *Registry) Update(id string, fn func(ds *model.DataSource)) (*model.DataSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i == -1 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rec := clone(r.sources[i])
	fn(rec)
	rec.ID = id
	rec.CreatedAt = r.sources[i].CreatedAt
	rec.UpdatedAt = r.Now().UTC()
	if err := validate(rec); err != nil {
		return nil, err
	}

	next := append([]*model.DataSource(nil), r.sources...)
	next[i] = rec
	if err := r.persist(next); err != nil {
		return nil, err
	}
	r.sources = next
	r.logger.Info("Data source updated", "id", id, "name", rec.Name)
	return clone(rec), nil
}

// Delete removes the source. Components referencing it are left alone; their
// placeholders simply stop resolving.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i == -1 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := make([]*model.DataSource, 0, len(r.sources)-1)
	next = append(next, r.sources[:i]...)
	next = append(next, r.sources[i+1:]...)
	if err := r.persist(next); err != nil {
		return err
	}
	r.sources = next
	r.logger.Info("Data source deleted", "id", id)
	return nil
}

// Get returns a copy of the source with the given id.
func (r *Registry) Get(id string) (*model.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i == -1 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(r.sources[i]), nil
}

// FindByName returns the first source whose name matches case-insensitively.
func (r *Registry) FindByName(name string) (*model.DataSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ds := range r.sources {
		if strings.EqualFold(ds.Name, name) {
			return clone(ds), true
		}
	}
	return nil, false
}

// List returns a snapshot of all sources in insertion order.
func (r *Registry) List() []*model.DataSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.DataSource, len(r.sources))
	for i, ds := range r.sources {
		out[i] = clone(ds)
	}
	return out
}

// Refresh fetches an http-api source and replaces its cached data and
// fetch time. The fetch runs without holding the registry lock.
func (r *Registry) Refresh(ctx context.Context, id string) (*model.DataSource, error) {
	ds, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if ds.Type != model.SourceHTTPAPI || ds.HTTPConfig == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotHTTP, ds.Name)
	}
	if r.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured for %s", ds.Name)
	}

	payload, err := r.fetcher.Fetch(ctx, *ds.HTTPConfig)
	if err != nil {
		r.logger.Warn("Data source refresh failed", "id", id, "name", ds.Name, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, ds.Name, err)
	}

	fetched := r.Now().UTC()
	updated, err := r.Update(id, func(rec *model.DataSource) {
		rec.CachedData = payload
		rec.LastFetched = &fetched
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("Data source refreshed", "id", id, "name", ds.Name)
	return updated, nil
}

// RefreshAll refreshes every http-api source with bounded parallelism. One
// failing source does not stop the others; all failures are joined.
func (r *Registry) RefreshAll(ctx context.Context) error {
	var ids []string
	for _, ds := range r.List() {
		if ds.Type == model.SourceHTTPAPI {
			ids = append(ids, ds.ID)
		}
	}

	limit := r.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)

	var mu sync.Mutex
	var errs []error
	for _, id := range ids {
		g.Go(func() error {
			if _, err := r.Refresh(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Load replaces the registry contents with the persisted list. A store with
// nothing saved yet leaves the registry empty.
func (r *Registry) Load() error {
	if r.store == nil {
		return nil
	}
	var loaded []*model.DataSource
	if err := r.store.Load(StorageKey, &loaded); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load data sources: %w", err)
	}

	kept := loaded[:0]
	for _, ds := range loaded {
		if ds == nil {
			continue
		}
		if err := validate(ds); err != nil {
			r.logger.Warn("Skipping stored data source", "id", ds.ID, "error", err)
			continue
		}
		kept = append(kept, ds)
	}

	r.mu.Lock()
	r.sources = kept
	r.mu.Unlock()
	r.logger.Debug("Data sources loaded", "count", len(kept))
	return nil
}

// Save writes the current list to the store.
func (r *Registry) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persist(r.sources)
}

func (r *Registry) persist(list []*model.DataSource) error {
	if r.store == nil {
		return nil
	}
	if list == nil {
		list = []*model.DataSource{}
	}
	if err := r.store.Save(StorageKey, list); err != nil {
		r.logger.Error("Failed to persist data sources", "error", err)
		return fmt.Errorf("save data sources: %w", err)
	}
	return nil
}
