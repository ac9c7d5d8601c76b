package main

import (
	"log/slog"
	"strings"
	"sync"

	"go-page-builder/internal/builder"
	"go-page-builder/internal/pagemanager"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSessionCacheSize = 64

// sessionCache keeps one editing session per page. A session pushed out of the
// LRU is saved and closed, unless a drag is open on it; those are parked until
// the page is used again so the drag can still end.
type sessionCache struct {
	mu     sync.Mutex // serializes open-or-get so a page never has two live sessions
	pages  *pagemanager.PageManager
	cache  *lru.Cache[string, *builder.Session]
	parked map[string]*builder.Session
	logger *slog.Logger
}

func newSessionCache(pages *pagemanager.PageManager, logger *slog.Logger, size int) *sessionCache {
	c := &sessionCache{pages: pages, parked: make(map[string]*builder.Session), logger: logger}
	cache, err := lru.NewWithEvict[string, *builder.Session](size, c.evicted)
	if err != nil {
		panic(err)
	}
	c.cache = cache
	return c
}

func sessionKey(projectID, pageID string) string {
	return projectID + "/" + pageID
}

// evicted runs for every session leaving the LRU, with c.mu held by the caller
// of Add or Remove.
func (c *sessionCache) evicted(key string, s *builder.Session) {
	if s.Closed() {
		return
	}
	if s.Dragging() {
		c.parked[key] = s
		c.logger.Debug("Parked editing session with an open drag", "key", key)
		return
	}
	if err := s.Close(); err != nil {
		c.logger.Error("Failed to save evicted session", "key", key, "error", err)
	}
}

// get returns the page's session, opening it from storage if needed.
func (c *sessionCache) get(projectID, pageID string) (*builder.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := sessionKey(projectID, pageID)
	if s, ok := c.cache.Get(key); ok {
		return s, nil
	}
	if s, ok := c.parked[key]; ok {
		delete(c.parked, key)
		c.cache.Add(key, s)
		return s, nil
	}
	s, err := builder.Open(c.pages, projectID, pageID, c.logger)
	if err != nil {
		return nil, err
	}
	s.Autosave = true
	c.cache.Add(key, s)
	c.logger.Debug("Opened editing session", "projectID", projectID, "pageID", pageID)
	return s, nil
}

// drop discards the session under key without saving. The lock must be held.
func (c *sessionCache) drop(key string) {
	if s, ok := c.cache.Peek(key); ok {
		s.Discard()
		c.cache.Remove(key)
	}
	if s, ok := c.parked[key]; ok {
		s.Discard()
		delete(c.parked, key)
	}
}

// forget drops the session of a deleted page.
func (c *sessionCache) forget(projectID, pageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop(sessionKey(projectID, pageID))
}

// forgetProject drops every session of a deleted project.
func (c *sessionCache) forgetProject(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := projectID + "/"
	for _, key := range c.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.drop(key)
		}
	}
	for key := range c.parked {
		if strings.HasPrefix(key, prefix) {
			c.drop(key)
		}
	}
}

// closeAll saves and closes every session, parked ones included.
func (c *sessionCache) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
	for key, s := range c.parked {
		if err := s.Close(); err != nil {
			c.logger.Error("Failed to save session", "key", key, "error", err)
		}
		delete(c.parked, key)
	}
}
