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

package lca

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(Indicator{ID: "GWP", Unit: "kg CO2-eq", Method: "TRACI", Category: "environmental impact"}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddSynonym("GWP", "GlobalWarming"); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"GWP", "GlobalWarming"} {
		ind, err := r.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		if ind.ID != "GWP" {
			t.Errorf("%s: have ID %q, want GWP", name, ind.ID)
		}
	}
	if _, err := r.Get("xxxx"); err == nil {
		t.Error("unknown name should be an error")
	}

	want := []string{"GWP", "GlobalWarming"}
	if diff := cmp.Diff(want, r.Synonyms("GWP")); diff != "" {
		t.Errorf("synonym mismatch (-want +have):\n%s", diff)
	}

	// Registering a synonym under itself is a no-op, not an error.
	if err := r.AddSynonym("GWP", "GlobalWarming"); err != nil {
		t.Error(err)
	}
}

func TestRegistryCollisions(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(Indicator{ID: "GWP"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Indicator{ID: "GWP"}); err == nil {
		t.Error("duplicate ID should be an error")
	}
	if err := r.Add(Indicator{}); err == nil {
		t.Error("empty ID should be an error")
	}
	if err := r.Add(Indicator{ID: "FEC"}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddSynonym("FEC", "GWP"); err == nil {
		t.Error("synonym colliding with another ID should be an error")
	}
	if err := r.AddSynonym("xxxx", "Energy"); err == nil {
		t.Error("synonym for an unknown ID should be an error")
	}
}

func TestRegistryIsolation(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	if err := a.Add(Indicator{ID: "GWP"}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Get("GWP"); err == nil {
		t.Error("registries should not share indicators")
	}
}

func TestReadCSV(t *testing.T) {
	const data = `indicator,synonym,unit,method,category,description
GlobalWarming,GWP,kg CO2-eq,TRACI,environmental impact,The global warming potential.
FossilEnergyConsumption,FEC,MJ,Cumulative energy demand,resource consumption,
`
	r := NewRegistry()
	if err := r.ReadCSV(strings.NewReader(data)); err != nil {
		t.Fatal(err)
	}

	ind, err := r.Get("GWP")
	if err != nil {
		t.Fatal(err)
	}
	if ind.ID != "GlobalWarming" || ind.Unit != "kg CO2-eq" {
		t.Errorf("have %+v", ind)
	}
	if n := len(r.Indicators()); n != 2 {
		t.Errorf("indicators: have %d, want 2", n)
	}

	// A second load of the same data skips existing indicators.
	if err := r.ReadCSV(strings.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	if n := len(r.Indicators()); n != 2 {
		t.Errorf("indicators after reload: have %d, want 2", n)
	}
}

func TestReadCSVBadHeader(t *testing.T) {
	r := NewRegistry()
	err := r.ReadCSV(strings.NewReader("indicator,unit\nGWP,kg CO2-eq\n"))
	if err == nil {
		t.Error("wrong column count should be an error")
	}
	err = r.ReadCSV(strings.NewReader("id,synonym,unit,method,category,description\n"))
	if err == nil {
		t.Error("wrong column name should be an error")
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadCSV("testdata/nonexistent.csv"); err == nil {
		t.Error("missing file should be an error")
	}
}
