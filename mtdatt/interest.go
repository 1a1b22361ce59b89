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

// Selector extracts one scalar pair attribute as a float64, standing in
// for the pointer-to-member selectors of the original engine.
type Selector func(*PairAtt3D) float64

// Standard selectors for the eight interest terms.
var (
	SelectSpaceCentroidDist   Selector = func(p *PairAtt3D) float64 { return p.SpaceCentroidDist }
	SelectTimeCentroidDelta   Selector = func(p *PairAtt3D) float64 { return p.TimeCentroidDelta }
	SelectSpeedDelta          Selector = func(p *PairAtt3D) float64 { return p.SpeedDelta }
	SelectDirectionDifference Selector = func(p *PairAtt3D) float64 { return p.DirectionDifference }
	SelectVolumeRatio         Selector = func(p *PairAtt3D) float64 { return p.VolumeRatio }
	SelectAxisDiff            Selector = func(p *PairAtt3D) float64 { return p.AxisDiff }
	SelectStartTimeDelta      Selector = func(p *PairAtt3D) float64 { return float64(p.StartTimeDelta) }
	SelectEndTimeDelta        Selector = func(p *PairAtt3D) float64 { return float64(p.EndTimeDelta) }
)

type interestTerm struct {
	weight   float64
	fn       *PiecewiseLinear
	selector Selector
	name     string
}

// InterestCalculator combines piecewise-linear transforms of pair
// attributes into a single weighted total-interest score in [0,1].
type InterestCalculator struct {
	terms []interestTerm
	scale float64
	built bool
}

// NewInterestCalculator returns an empty InterestCalculator ready to
// accept terms via Add.
func NewInterestCalculator() *InterestCalculator {
	return &InterestCalculator{}
}

// Add adds one (weight, function, selector) term. A weight of exactly 0
// causes the term to be silently skipped (not stored), matching the
// original engine. A negative weight is a fatal configuration error.
func (ic *InterestCalculator) Add(name string, weight float64, fn *PiecewiseLinear, sel Selector) error {
	if weight < 0 {
		return fmt.Errorf("mtdatt.InterestCalculator.Add: negative weight %v for term %q", weight, name)
	}
	if weight == 0 {
		return nil
	}
	ic.terms = append(ic.terms, interestTerm{weight: weight, fn: fn, selector: sel, name: name})
	return nil
}

// Check computes Scale = 1 / sum(weights). At least one weight must be
// greater than 0, i.e. at least one term must have been added.
func (ic *InterestCalculator) Check() error {
	var sum float64
	for _, t := range ic.terms {
		sum += t.weight
	}
	if sum <= 0 {
		return fmt.Errorf("mtdatt.InterestCalculator.Check: no positive-weight terms were added")
	}
	ic.scale = 1.0 / sum
	ic.built = true
	return nil
}

// Eval returns the weighted total interest for p, in [0,1]. Check must
// have been called first.
func (ic *InterestCalculator) Eval(p *PairAtt3D) float64 {
	if !ic.built {
		panic("mtdatt.InterestCalculator.Eval: Check was not called")
	}
	var sum float64
	for _, t := range ic.terms {
		x := t.selector(p)
		sum += t.weight * t.fn.Eval(x)
	}
	return sum * ic.scale
}
