// Package interpolate substitutes {{source.path}} placeholders with values drawn
// from data sources. Unresolvable placeholders are left in place untouched.
package interpolate

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"go-page-builder/internal/model"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ohler55/ojg/oj"
)

// DefaultCacheSize bounds the number of parsed static-json payloads kept per resolver.
const DefaultCacheSize = 128

var placeholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Resolver resolves data-source values. It caches parsed static-json payloads
// keyed by their raw text, so editing a source's JSON naturally misses the cache.
// A Resolver is safe for concurrent use.
type Resolver struct {
	cache  *lru.Cache[string, any]
	logger *slog.Logger
}

// NewResolver creates a resolver keeping up to size parsed payloads.
func NewResolver(size int, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		// Only reachable with a non-positive size, ruled out above.
		panic(err)
	}
	return &Resolver{cache: cache, logger: logger}
}

var defaultResolver = NewResolver(DefaultCacheSize, nil)

// Data returns the backing value of a data source: the parsed JSON of a
// static-json source (nil when invalid), the map of a key-value source, or the
// cached response of an http-api source.
func (r *Resolver) Data(ds *model.DataSource) any {
	if ds == nil {
		return nil
	}
	switch ds.Type {
	case model.SourceStaticJSON:
		return r.parseJSON(ds)
	case model.SourceKeyValue:
		kv := make(map[string]any, len(ds.KeyValueData))
		for k, v := range ds.KeyValueData {
			kv[k] = v
		}
		return kv
	case model.SourceHTTPAPI:
		return ds.CachedData
	default:
		return nil
	}
}

func (r *Resolver) parseJSON(ds *model.DataSource) any {
	raw := strings.TrimSpace(ds.JSONData)
	if raw == "" {
		return nil
	}
	if v, ok := r.cache.Get(raw); ok {
		return v
	}
	v, err := oj.ParseString(raw)
	if err != nil {
		r.logger.Warn("Invalid static json in data source", "source", ds.Name, "error", err)
		r.cache.Add(raw, nil)
		return nil
	}
	r.cache.Add(raw, v)
	return v
}

// Interpolate replaces every {{source.path}} span in template. Each span is
// resolved on its own; spans naming an unknown source, a missing path or a nil
// value are kept verbatim.
func (r *Resolver) Interpolate(template string, sources []*model.DataSource) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		inner := strings.TrimSpace(match[2 : len(match)-2])
		name, rest, _ := strings.Cut(inner, ".")

		ds := FindSource(sources, name)
		if ds == nil {
			return match
		}
		data := r.Data(ds)
		if data == nil {
			return match
		}
		value, ok := ResolvePath(data, rest)
		if !ok {
			return match
		}
		return Stringify(value)
	})
}

// FindSource returns the first source whose name matches case-insensitively.
func FindSource(sources []*model.DataSource, name string) *model.DataSource {
	for _, ds := range sources {
		if ds != nil && strings.EqualFold(ds.Name, name) {
			return ds
		}
	}
	return nil
}

// Stringify renders a resolved value for substitution: strings verbatim,
// everything else as compact JSON.
func Stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// HasVariables reports whether text contains at least one placeholder.
func HasVariables(text string) bool {
	return placeholder.MatchString(text)
}

// ExtractVariables returns the trimmed inner text of every placeholder, in order.
func ExtractVariables(text string) []string {
	matches := placeholder.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = strings.TrimSpace(m[1])
	}
	return out
}

// Interpolate uses the package's default resolver.
func Interpolate(template string, sources []*model.DataSource) string {
	return defaultResolver.Interpolate(template, sources)
}
