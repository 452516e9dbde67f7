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

package units

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// SeparatorConfig parameterizes a sludge separator loaded from a
// parameter file.
type SeparatorConfig struct {
	SludgeMoisture float64  `toml:"sludge_moisture"`
	SolidIDs       []string `toml:"solid_ids"`
}

// Params bundles the unit model configurations loadable from a single
// TOML parameter file, one table per unit.
type Params struct {
	BaffledReactor BaffledReactorConfig `toml:"baffled_reactor"`
	Digestion      DigestionConfig      `toml:"digestion"`
	SludgeDigester SludgeDigesterConfig `toml:"sludge_digester"`
	Separator      SeparatorConfig      `toml:"separator"`
}

// DefaultParams returns the default configuration of every unit model.
func DefaultParams() Params {
	return Params{
		BaffledReactor: DefaultBaffledReactorConfig(),
		Digestion:      DefaultDigestionConfig(),
		SludgeDigester: DefaultSludgeDigesterConfig(),
		Separator: SeparatorConfig{
			SludgeMoisture: 0.96,
		},
	}
}

// LoadParams reads unit model parameters from the TOML file at path,
// overlaying the defaults. Unknown keys are an error rather than being
// silently dropped.
func LoadParams(path string) (Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return Params{}, fmt.Errorf("units: opening parameter file: %w", err)
	}
	defer f.Close()
	return ReadParams(f)
}

// ReadParams reads unit model parameters in TOML format from r,
// overlaying the defaults.
func ReadParams(r io.Reader) (Params, error) {
	p := DefaultParams()
	md, err := toml.NewDecoder(r).Decode(&p)
	if err != nil {
		return Params{}, fmt.Errorf("units: decoding parameters: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return Params{}, fmt.Errorf("units: unknown parameter keys: %s", strings.Join(keys, ", "))
	}
	return p, nil
}
