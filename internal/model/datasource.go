package model

import "time"

// DataSourceType selects how a data source's backing value is obtained.
type DataSourceType string

const (
	SourceStaticJSON DataSourceType = "static-json"
	SourceKeyValue   DataSourceType = "key-value"
	SourceHTTPAPI    DataSourceType = "http-api"
)

// Valid reports whether t is a known data source type.
func (t DataSourceType) Valid() bool {
	switch t {
	case SourceStaticJSON, SourceKeyValue, SourceHTTPAPI:
		return true
	}
	return false
}

// HTTPConfig describes the request issued to refresh an http-api source.
type HTTPConfig struct {
	URL         string            `json:"url" yaml:"url"`
	Method      string            `json:"method" yaml:"method"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
}

// DataSource is a named provider of values for {{name.path}} placeholders.
// Name is matched case-insensitively by the interpolator.
type DataSource struct {
	ID           string            `json:"id" yaml:"id,omitempty"`
	Name         string            `json:"name" yaml:"name"`
	Type         DataSourceType    `json:"type" yaml:"type"`
	JSONData     string            `json:"jsonData,omitempty" yaml:"jsonData,omitempty"`         // static-json: raw JSON text
	KeyValueData map[string]string `json:"keyValueData,omitempty" yaml:"keyValueData,omitempty"` // key-value
	HTTPConfig   *HTTPConfig       `json:"httpConfig,omitempty" yaml:"httpConfig,omitempty"`     // http-api
	CachedData   any               `json:"cachedData,omitempty" yaml:"cachedData,omitempty"`     // http-api: last fetched response
	LastFetched  *time.Time        `json:"lastFetched,omitempty" yaml:"-"`
	CreatedAt    time.Time         `json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time         `json:"updatedAt" yaml:"-"`
}
