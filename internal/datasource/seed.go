package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"go-page-builder/internal/model"

	"gopkg.in/yaml.v3"
)

// seedEntry is one data source in a seed file. Static sources may give their
// payload as a YAML value under data instead of raw JSON text.
type seedEntry struct {
	model.DataSource `yaml:",inline"`
	Data             any `yaml:"data,omitempty"`
}

type seedFile struct {
	DataSources []seedEntry `yaml:"datasources"`
}

// LoadSeed reads data source definitions from YAML:
//
//	datasources:
//	  - name: site
//	    type: key-value
//	    keyValueData: {title: Acme}
//	  - name: user
//	    type: static-json
//	    data: {profile: {name: Ada}}
func LoadSeed(r io.Reader) ([]model.DataSource, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	out := make([]model.DataSource, 0, len(f.DataSources))
	for i, e := range f.DataSources {
		ds := e.DataSource
		if e.Data != nil {
			if ds.JSONData != "" {
				return nil, fmt.Errorf("seed entry %d (%s): both data and jsonData given", i, ds.Name)
			}
			if ds.Type == "" {
				ds.Type = model.SourceStaticJSON
			}
			raw, err := json.Marshal(e.Data)
			if err != nil {
				return nil, fmt.Errorf("seed entry %d (%s): %w", i, ds.Name, err)
			}
			ds.JSONData = string(raw)
		}
		if err := validate(&ds); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		out = append(out, ds)
	}
	return out, nil
}

// LoadSeedFile opens path and reads it with LoadSeed.
func LoadSeedFile(path string) ([]model.DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// Import adds every seed source whose name is not registered yet and returns
// how many were added.
func (r *Registry) Import(seed []model.DataSource) (int, error) {
	added := 0
	for _, ds := range seed {
		if _, exists := r.FindByName(ds.Name); exists {
			r.logger.Debug("Seed data source already present", "name", ds.Name)
			continue
		}
		if _, err := r.Add(ds); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
