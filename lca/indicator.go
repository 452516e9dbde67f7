/*
Copyright © 2021 the SanProc authors.
This file is part of SanProc.

SanProc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SanProc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SanProc.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package lca handles life cycle assessment metadata: impact
// indicators looked up by ID or synonym through an explicit registry.
package lca

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Indicator is a life cycle impact assessment indicator, e.g. global
// warming potential in kg CO2-eq.
type Indicator struct {
	ID          string
	Unit        string
	Method      string
	Category    string
	Description string
}

// Registry holds impact indicators and resolves IDs and synonyms.
// Registries are independent of each other; callers create one per
// assessment rather than sharing global state.
type Registry struct {
	byName map[string]*Indicator
}

// NewRegistry returns an empty indicator registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Indicator)}
}

// Add registers an indicator. The ID must not collide with any
// registered ID or synonym.
func (r *Registry) Add(ind Indicator) error {
	if ind.ID == "" {
		return fmt.Errorf("lca: indicator ID must not be empty")
	}
	if used, ok := r.byName[ind.ID]; ok {
		return fmt.Errorf("lca: ID %q is already in use by indicator %q", ind.ID, used.ID)
	}
	r.byName[ind.ID] = &ind
	return nil
}

// AddSynonym registers an alternative name for the indicator with the
// given ID.
func (r *Registry) AddSynonym(id, synonym string) error {
	ind, ok := r.byName[id]
	if !ok {
		return fmt.Errorf("lca: no indicator with ID %q", id)
	}
	if used, ok := r.byName[synonym]; ok {
		if used == ind {
			return nil
		}
		return fmt.Errorf("lca: synonym %q is already in use by indicator %q", synonym, used.ID)
	}
	r.byName[synonym] = ind
	return nil
}

// Get returns the indicator registered under the given ID or synonym.
func (r *Registry) Get(name string) (*Indicator, error) {
	ind, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("lca: no indicator named %q; valid names are %s", name, strings.Join(r.names(), ", "))
	}
	return ind, nil
}

// Synonyms returns all names the indicator with the given ID is
// registered under, the ID included, in sorted order.
func (r *Registry) Synonyms(id string) []string {
	ind, ok := r.byName[id]
	if !ok {
		return nil
	}
	var o []string
	for name, i := range r.byName {
		if i == ind {
			o = append(o, name)
		}
	}
	sort.Strings(o)
	return o
}

// Indicators returns all registered indicators sorted by ID.
func (r *Registry) Indicators() []*Indicator {
	seen := make(map[*Indicator]bool)
	var o []*Indicator
	for _, ind := range r.byName {
		if !seen[ind] {
			seen[ind] = true
			o = append(o, ind)
		}
	}
	sort.Slice(o, func(i, j int) bool { return o[i].ID < o[j].ID })
	return o
}

func (r *Registry) names() []string {
	o := make([]string, 0, len(r.byName))
	for name := range r.byName {
		o = append(o, name)
	}
	sort.Strings(o)
	return o
}

// csvColumns is the required header of an indicator CSV file.
var csvColumns = []string{"indicator", "synonym", "unit", "method", "category", "description"}

// ReadCSV registers the indicators listed in CSV format: one row per
// indicator with the columns indicator, synonym, unit, method,
// category, and description. Rows whose indicator is already
// registered are skipped.
func (r *Registry) ReadCSV(f io.Reader) error {
	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("lca: reading indicator CSV header: %w", err)
	}
	if len(header) != len(csvColumns) {
		return fmt.Errorf("lca: indicator CSV must have columns %v, not %v", csvColumns, header)
	}
	for i, col := range csvColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return fmt.Errorf("lca: indicator CSV column %d must be %q, not %q", i, col, header[i])
		}
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("lca: reading indicator CSV: %w", err)
		}
		id := strings.TrimSpace(rec[0])
		if _, ok := r.byName[id]; ok {
			continue
		}
		if err := r.Add(Indicator{
			ID:          id,
			Unit:        strings.TrimSpace(rec[2]),
			Method:      strings.TrimSpace(rec[3]),
			Category:    strings.TrimSpace(rec[4]),
			Description: strings.TrimSpace(rec[5]),
		}); err != nil {
			return err
		}
		if syn := strings.TrimSpace(rec[1]); syn != "" {
			if err := r.AddSynonym(id, syn); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadCSV registers the indicators listed in the CSV file at path.
func (r *Registry) LoadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("lca: opening indicator file: %w", err)
	}
	defer f.Close()
	return r.ReadCSV(f)
}
