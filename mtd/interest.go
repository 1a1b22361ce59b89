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

import "github.com/spatialmodel/mtd/mtdatt"

func mustPiecewise(knots []mtdatt.Knot) *mtdatt.PiecewiseLinear {
	fn, err := mtdatt.NewPiecewiseLinear(knots)
	if err != nil {
		panic(err) // the knot tables below are fixed and always well-formed
	}
	return fn
}

// DefaultInterestFunctions returns the built-in piecewise-linear interest
// transform for each of the eight recognized interest terms, used
// whenever a configuration does not override a term via
// "function.<name>". The shapes (full credit near 0, fading to no credit
// past a term-specific range) follow the same "interest decays with
// disagreement" convention the original engine's default configuration
// uses; the specific knot values are this port's own reasonable defaults
// and are expected to be tuned per deployment.
func DefaultInterestFunctions() map[string]*mtdatt.PiecewiseLinear {
	return map[string]*mtdatt.PiecewiseLinear{
		"space_centroid_dist": mustPiecewise([]mtdatt.Knot{{X: 0, Y: 1}, {X: 10, Y: 1}, {X: 20, Y: 0}}),
		"time_centroid_delta": mustPiecewise([]mtdatt.Knot{{X: -5, Y: 0}, {X: 0, Y: 1}, {X: 5, Y: 0}}),
		"speed_delta":         mustPiecewise([]mtdatt.Knot{{X: -5, Y: 0}, {X: 0, Y: 1}, {X: 5, Y: 0}}),
		"direction_diff":      mustPiecewise([]mtdatt.Knot{{X: 0, Y: 1}, {X: 90, Y: 0}, {X: 180, Y: 0}}),
		"volume_ratio":        mustPiecewise([]mtdatt.Knot{{X: 0.5, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}),
		"axis_angle_diff":     mustPiecewise([]mtdatt.Knot{{X: 0, Y: 1}, {X: 90, Y: 0}}),
		"start_time_delta":    mustPiecewise([]mtdatt.Knot{{X: -5, Y: 0}, {X: 0, Y: 1}, {X: 5, Y: 0}}),
		"end_time_delta":      mustPiecewise([]mtdatt.Knot{{X: -5, Y: 0}, {X: 0, Y: 1}, {X: 5, Y: 0}}),
	}
}

// interestSelectors maps each recognized interest term name to the
// PairAtt3D field it draws from.
var interestSelectors = map[string]mtdatt.Selector{
	"space_centroid_dist": mtdatt.SelectSpaceCentroidDist,
	"time_centroid_delta": mtdatt.SelectTimeCentroidDelta,
	"speed_delta":         mtdatt.SelectSpeedDelta,
	"direction_diff":      mtdatt.SelectDirectionDifference,
	"volume_ratio":        mtdatt.SelectVolumeRatio,
	"axis_angle_diff":     mtdatt.SelectAxisDiff,
	"start_time_delta":    mtdatt.SelectStartTimeDelta,
	"end_time_delta":      mtdatt.SelectEndTimeDelta,
}
