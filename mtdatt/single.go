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

// Package mtdatt computes per-object and per-object-pair attributes of
// space-time objects, combines pair attributes into a total-interest
// score, and formats both into the fixed-width text rows consumed by the
// output writers.
package mtdatt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/spatialmodel/mtd/grid"
	"github.com/spatialmodel/mtd/mtdvol"
)

// SingleAtt3D holds the full set of scalar attributes computed for one
// 3D (x,y,t) object.
type SingleAtt3D struct {
	ObjectNumber  int // 1-based
	ClusterNumber int // 1-based; 0 or negative = unassigned
	IsFcst        bool
	IsSimple      bool

	Xbar, Ybar, Tbar float64
	Lat, Lon         float64

	Xmin, Xmax, Ymin, Ymax, Tmin, Tmax int

	Volume     int
	Complexity float64

	Xvelocity, Yvelocity float64
	SpatialAxisAngle     float64

	CentroidDistTravelled float64

	Ptile10, Ptile25, Ptile50, Ptile75, Ptile90 float64
	PtileUser                                   float64
}

// NTimes returns Tmax - Tmin + 1, the object's temporal extent.
func (s *SingleAtt3D) NTimes() int {
	return s.Tmax - s.Tmin + 1
}

// CalcSingleAtt3D computes the full SingleAtt3D for one object, given its
// binary mask (obj), the raw field it was detected in (raw), the grid
// geometry, the object's 1-based number, whether it is a forecast or
// observation object, whether it is simple (as opposed to a cluster), and
// the user-requested intensity percentile userPct in [0,100].
//
// obj must contain at least one non-zero cell; an empty object reaching
// this stage is a programmer error, not a runtime condition, and panics.
func CalcSingleAtt3D(obj *mtdvol.IntVolume, raw *mtdvol.FloatVolume, g *grid.Grid, objectNumber int, isFcst, isSimple bool, userPct int) (SingleAtt3D, error) {
	m := obj.Calc3DMoments()
	if m.N == 0 {
		panic("mtdatt.CalcSingleAtt3D: empty object reached attribute computation")
	}

	var s SingleAtt3D
	s.ObjectNumber = objectNumber
	s.IsFcst = isFcst
	s.IsSimple = isSimple
	s.Volume = m.N

	s.Xbar, s.Ybar, s.Tbar = m.Centroid()

	if g != nil {
		lat, lon, err := g.XYToLatLon(s.Xbar, s.Ybar)
		if err != nil {
			return s, fmt.Errorf("mtdatt.CalcSingleAtt3D: %w", err)
		}
		s.Lat, s.Lon = lat, lon
	}

	xMin, xMax, yMin, yMax, tMin, tMax, ok := obj.Calc3DBBox()
	if !ok {
		panic("mtdatt.CalcSingleAtt3D: empty object reached bounding-box computation")
	}
	s.Xmin, s.Xmax, s.Ymin, s.Ymax, s.Tmin, s.Tmax = xMin, xMax, yMin, yMax, tMin, tMax

	bboxVol := (xMax - xMin + 1) * (yMax - yMin + 1) * (tMax - tMin + 1)
	if bboxVol > 0 {
		s.Complexity = float64(s.Volume) / float64(bboxVol)
	}

	if s.NTimes() <= 1 {
		s.Xvelocity, s.Yvelocity = 0, 0
		s.SpatialAxisAngle = foldAxisAngle(0)
	} else {
		s.Xvelocity, s.Yvelocity = m.Velocity()
		s.SpatialAxisAngle = m.AxisAngle()
	}

	if g != nil {
		dist, err := centroidTravel(obj, g, tMin, tMax)
		if err != nil {
			return s, err
		}
		s.CentroidDistTravelled = dist
	}

	vals := intensityValues(obj, raw)
	if len(vals) > 0 {
		floats.Sort(vals)
		s.Ptile10 = percentile(vals, 10)
		s.Ptile25 = percentile(vals, 25)
		s.Ptile50 = percentile(vals, 50)
		s.Ptile75 = percentile(vals, 75)
		s.Ptile90 = percentile(vals, 90)
		s.PtileUser = percentile(vals, float64(userPct))
	}

	return s, nil
}

// foldAxisAngle folds an angle in degrees into the half-open interval
// (-90, 90], matching mtdvol's internal fold (duplicated here so this
// package need not export it from mtdvol).
func foldAxisAngle(a float64) float64 {
	return a + 180.0*math.Floor((90.0-a)/180.0)
}

// centroidTravel sums the great-circle distance between consecutive
// per-time 2D centroids from tMin+1 to tMax, reusing the previous
// lat/lon when a time slice is empty.
func centroidTravel(obj *mtdvol.IntVolume, g *grid.Grid, tMin, tMax int) (float64, error) {
	var total float64
	var prevLat, prevLon float64
	havePrev := false
	for t := tMin; t <= tMax; t++ {
		xbar, ybar, ok := obj.Calc2DCentroidAtT(t)
		var lat, lon float64
		if ok {
			var err error
			lat, lon, err = g.XYToLatLon(xbar, ybar)
			if err != nil {
				return 0, fmt.Errorf("mtdatt.centroidTravel: %w", err)
			}
		} else if havePrev {
			lat, lon = prevLat, prevLon
		} else {
			continue
		}
		if havePrev {
			total += grid.GCDist(prevLat, prevLon, lat, lon)
		}
		prevLat, prevLon = lat, lon
		havePrev = true
	}
	return total, nil
}

// intensityValues collects the raw field values of cells inside obj's
// mask.
func intensityValues(obj *mtdvol.IntVolume, raw *mtdvol.FloatVolume) []float64 {
	var vals []float64
	for t := 0; t < obj.Nt; t++ {
		for y := 0; y < obj.Ny; y++ {
			for x := 0; x < obj.Nx; x++ {
				if obj.At(x, y, t) != 0 {
					vals = append(vals, raw.At(x, y, t))
				}
			}
		}
	}
	return vals
}

// IntensityPercentile returns the p-th percentile (p in [0,100]) of the
// raw field values of cells inside obj's mask, using the same linear-
// nearest-rank method CalcSingleAtt3D uses for its own percentile
// columns. Exposed so callers (e.g. a Driver post-split area/intensity
// filter) can evaluate a percentile threshold before the full
// SingleAtt3D is computed.
func IntensityPercentile(obj *mtdvol.IntVolume, raw *mtdvol.FloatVolume, p float64) float64 {
	vals := intensityValues(obj, raw)
	if len(vals) == 0 {
		return 0
	}
	floats.Sort(vals)
	return percentile(vals, p)
}

// percentile returns the p-th percentile (p in [0,100]) of a sorted
// ascending slice using linear-nearest-rank: index round(p/100*(n-1)).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Round(p / 100.0 * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}
