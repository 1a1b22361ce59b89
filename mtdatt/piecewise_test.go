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

package mtdatt

import "testing"

func TestPiecewiseLinearInterpolates(t *testing.T) {
	fn, err := NewPiecewiseLinear([]Knot{{X: 0, Y: 0}, {X: 10, Y: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if got := fn.Eval(5); got != 0.5 {
		t.Errorf("Eval(5) = %v, want 0.5", got)
	}
	if got := fn.Eval(-5); got != 0 {
		t.Errorf("Eval below first knot should clamp to first knot's y, got %v", got)
	}
	if got := fn.Eval(15); got != 1 {
		t.Errorf("Eval above last knot should clamp to last knot's y, got %v", got)
	}
}

func TestPiecewiseLinearRejectsUnsortedKnots(t *testing.T) {
	_, err := NewPiecewiseLinear([]Knot{{X: 10, Y: 0}, {X: 0, Y: 1}})
	if err == nil {
		t.Error("expected error for unsorted knots")
	}
}

func TestPiecewiseLinearRejectsEmpty(t *testing.T) {
	if _, err := NewPiecewiseLinear(nil); err == nil {
		t.Error("expected error for no knots")
	}
}
