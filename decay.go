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

package sanproc

import "math"

// FirstOrderDecay returns the fraction of a substance degraded after
// time t [yr] under first-order kinetics with rate constant k [1/yr],
// bounded by the maximum degradable fraction maxDecay.
func FirstOrderDecay(k, t, maxDecay float64) float64 {
	return maxDecay * (1 - math.Exp(-k*t))
}

// AllocateNRemoval splits a total nitrogen loss between ammonia and
// non-ammonia nitrogen, removing ammonia preferentially. totalLoss and
// nh3 share the same mass unit; the two returned removals sum to
// totalLoss.
func AllocateNRemoval(totalLoss, nh3 float64) (nh3Removed, otherRemoved float64) {
	if totalLoss <= nh3 {
		return totalLoss, 0
	}
	return nh3, totalLoss - nh3
}
