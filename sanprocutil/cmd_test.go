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

package sanprocutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOptionDefaults(t *testing.T) {
	if v := Cfg.GetFloat64("Reactor.LiquidVolume"); v != 3400 {
		t.Errorf("Reactor.LiquidVolume: have %g, want 3400", v)
	}
	if v := Cfg.GetString("Reactor.PressureMode"); v != "variable" {
		t.Errorf("Reactor.PressureMode: have %q, want variable", v)
	}
	if v := Cfg.GetString("Sim.Solver"); v != "rk4" {
		t.Errorf("Sim.Solver: have %q, want rk4", v)
	}

	// Map-valued options arrive as JSON strings from their flag
	// defaults and must round-trip through the config helpers.
	conc, err := influentConcentrations(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if conc["S_su"] != 5000 {
		t.Errorf("default influent S_su: have %g, want 5000", conc["S_su"])
	}
	p, err := saProblem(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"KDec", "KMAc"}, p.Names); diff != "" {
		t.Errorf("default SA parameters (-want +have):\n%s", diff)
	}
}

func TestCommandTree(t *testing.T) {
	for _, name := range []string{"version", "run", "sa"} {
		found := false
		for _, c := range Root.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("Root has no %s command", name)
		}
	}
	for _, name := range []string{"morris", "sobol"} {
		found := false
		for _, c := range saCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("sa has no %s command", name)
		}
	}
}
