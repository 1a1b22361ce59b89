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

import (
	"math"

	"github.com/spatialmodel/mtd/mtdvol"
)

// PairAtt3D holds the full set of scalar attributes computed for one
// (forecast, observation) object pair.
type PairAtt3D struct {
	FcstObjectNumber, ObsObjectNumber   int // 1-based
	FcstClusterNumber, ObsClusterNumber int // 1-based; 0 or negative = unassigned
	IsSimple                            bool

	IntersectionVol     int
	TimeCentroidDelta   float64
	SpaceCentroidDist   float64
	DirectionDifference float64
	SpeedDelta          float64
	VolumeRatio         float64
	AxisDiff            float64
	StartTimeDelta      int
	EndTimeDelta        int
	DurationDifference  int

	// TotalInterest is in [0,1], or -1 if not computed (cluster pairs).
	TotalInterest float64
}

// directionTolerance is the minimum speed below which a velocity vector is
// treated as undefined for direction-difference purposes.
const directionTolerance = 1.0e-3

// parallelTolerance is the dot-product threshold above which two unit
// vectors are treated as parallel (avoiding acos domain/precision issues
// right at 1.0).
const parallelTolerance = 0.999999

// CalcPairAtt3D computes the PairAtt3D for one (fcst, obs) object pair
// given their binary masks on the same grid shape and their already-
// computed SingleAtt3Ds.
func CalcPairAtt3D(fcstMask, obsMask *mtdvol.IntVolume, fcst, obs *SingleAtt3D) PairAtt3D {
	var p PairAtt3D
	p.FcstObjectNumber = fcst.ObjectNumber
	p.ObsObjectNumber = obs.ObjectNumber
	p.FcstClusterNumber = fcst.ClusterNumber
	p.ObsClusterNumber = obs.ClusterNumber
	p.IsSimple = fcst.IsSimple && obs.IsSimple
	p.TotalInterest = -1

	p.IntersectionVol = intersectionVolume(fcstMask, obsMask)

	p.TimeCentroidDelta = obs.Tbar - fcst.Tbar
	dx := fcst.Xbar - obs.Xbar
	dy := fcst.Ybar - obs.Ybar
	p.SpaceCentroidDist = math.Sqrt(dx*dx + dy*dy)

	fcstSpeed := math.Hypot(fcst.Xvelocity, fcst.Yvelocity)
	obsSpeed := math.Hypot(obs.Xvelocity, obs.Yvelocity)
	p.SpeedDelta = fcstSpeed - obsSpeed

	p.DirectionDifference = directionDifference(fcst.Xvelocity, fcst.Yvelocity, fcstSpeed, obs.Xvelocity, obs.Yvelocity, obsSpeed)

	if obs.Volume != 0 {
		p.VolumeRatio = float64(fcst.Volume) / float64(obs.Volume)
	}

	p.AxisDiff = axisDiff(fcst.SpatialAxisAngle, obs.SpatialAxisAngle)

	p.StartTimeDelta = fcst.Tmin - obs.Tmin
	p.EndTimeDelta = fcst.Tmax - obs.Tmax
	p.DurationDifference = fcst.NTimes() - obs.NTimes()

	return p
}

func intersectionVolume(a, b *mtdvol.IntVolume) int {
	n := 0
	for i := range a.Data {
		if a.Data[i] != 0 && b.Data[i] != 0 {
			n++
		}
	}
	return n
}

// directionDifference returns the angle in degrees, in [0,180], between
// the fcst and obs velocity unit vectors. If either speed is below
// directionTolerance, the result is 0. If the unit vectors' dot product
// exceeds parallelTolerance, the result is 0 (near-parallel short-circuit).
func directionDifference(fx, fy, fSpeed, ox, oy, oSpeed float64) float64 {
	if fSpeed < directionTolerance || oSpeed < directionTolerance {
		return 0
	}
	ux, uy := fx/fSpeed, fy/fSpeed
	vx, vy := ox/oSpeed, oy/oSpeed
	b := ux*vx + uy*vy
	if b > parallelTolerance {
		return 0
	}
	if b < -1 {
		b = -1
	}
	if b > 1 {
		b = 1
	}
	return math.Acos(b) * 180.0 / math.Pi
}

// axisDiff folds the absolute angle difference between two spatial axis
// angles: if it exceeds 90 degrees, 90 is subtracted. This literally
// reproduces the original engine's behavior (see design notes); it is not
// the "smaller of the two angles" min(d, 180-d) one might otherwise
// expect, and must not be corrected.
func axisDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 90.0 {
		d -= 90.0
	}
	return d
}
