/*
Copyright © 2020 the mtd authors.
This file is part of mtd.

mtd is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mtd is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mtd.  If not, see <http://www.gnu.org/licenses/>.
*/

package mtd

import (
	"testing"

	"github.com/spatialmodel/mtd/mtdatt"
)

func TestDefaultInterestFunctionsCoversAllKeys(t *testing.T) {
	fns := DefaultInterestFunctions()
	if len(fns) != len(interestSelectors) {
		t.Fatalf("DefaultInterestFunctions has %d entries, want %d", len(fns), len(interestSelectors))
	}
	for key := range interestSelectors {
		if _, ok := fns[key]; !ok {
			t.Errorf("DefaultInterestFunctions missing key %q", key)
		}
	}
}

func TestDefaultInterestFunctionsPeakNearZeroDisagreement(t *testing.T) {
	fns := DefaultInterestFunctions()
	if got := fns["space_centroid_dist"].Eval(0); got != 1 {
		t.Errorf("space_centroid_dist at 0 = %v, want 1", got)
	}
	if got := fns["direction_diff"].Eval(180); got != 0 {
		t.Errorf("direction_diff at 180 = %v, want 0", got)
	}
}

func TestMustPiecewisePanicsOnBadKnots(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unsorted knots")
		}
	}()
	mustPiecewise([]mtdatt.Knot{{X: 5, Y: 0}, {X: 0, Y: 1}})
}

func TestInterestSelectorsWireIntoCalculator(t *testing.T) {
	fns := DefaultInterestFunctions()
	ic := mtdatt.NewInterestCalculator()
	for key, sel := range interestSelectors {
		if err := ic.Add(key, 1, fns[key], sel); err != nil {
			t.Fatalf("adding term %q: %v", key, err)
		}
	}
	if err := ic.Check(); err != nil {
		t.Fatal(err)
	}
	p := &mtdatt.PairAtt3D{}
	got := ic.Eval(p)
	if got < 0 || got > 1 {
		t.Errorf("Eval with zero-valued pair = %v, want in [0,1]", got)
	}
}
