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

import "fmt"

// Knot is one (x, y) point of a piecewise-linear function.
type Knot struct {
	X, Y float64
}

// PiecewiseLinear is a 1D piecewise-linear function defined by a sorted
// list of knots. Below the first knot it returns the first knot's y;
// above the last knot it returns the last knot's y; in between it
// linearly interpolates.
type PiecewiseLinear struct {
	knots []Knot
}

// NewPiecewiseLinear builds a PiecewiseLinear from knots, which must
// already be sorted by X ascending and contain at least one point.
func NewPiecewiseLinear(knots []Knot) (*PiecewiseLinear, error) {
	if len(knots) == 0 {
		return nil, fmt.Errorf("mtdatt.NewPiecewiseLinear: no knots given")
	}
	for i := 1; i < len(knots); i++ {
		if knots[i].X < knots[i-1].X {
			return nil, fmt.Errorf("mtdatt.NewPiecewiseLinear: knots must be sorted by x, got %v then %v", knots[i-1], knots[i])
		}
	}
	cp := make([]Knot, len(knots))
	copy(cp, knots)
	return &PiecewiseLinear{knots: cp}, nil
}

// Eval evaluates the function at x.
func (p *PiecewiseLinear) Eval(x float64) float64 {
	n := len(p.knots)
	if x <= p.knots[0].X {
		return p.knots[0].Y
	}
	if x >= p.knots[n-1].X {
		return p.knots[n-1].Y
	}
	for i := 1; i < n; i++ {
		if x <= p.knots[i].X {
			x0, y0 := p.knots[i-1].X, p.knots[i-1].Y
			x1, y1 := p.knots[i].X, p.knots[i].Y
			if x1 == x0 {
				return y0
			}
			frac := (x - x0) / (x1 - x0)
			return y0 + frac*(y1-y0)
		}
	}
	return p.knots[n-1].Y
}
