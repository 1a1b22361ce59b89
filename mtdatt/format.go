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

// NA is the printed sentinel for a missing value in text output.
const NA = "NA"

// objectID formats a 1-based object number with the given side/level tag
// ("F"/"O" for simple objects, "CF"/"CO" for clusters), e.g. F000, O012,
// CF003.
func objectID(tag string, number int) string {
	return fmt.Sprintf("%s%03d", tag, number)
}

// ID returns this object's OBJECT_ID text-table column, e.g. "F000",
// "O012", "CF003", "CO001".
func (s *SingleAtt3D) ID() string {
	tag := "O"
	if s.IsFcst {
		tag = "F"
	}
	if !s.IsSimple {
		tag = "C" + tag
	}
	return objectID(tag, s.ObjectNumber)
}

// Cat returns this object's OBJECT_CAT (composite tag) column: the
// cluster ID formatted the same way as ID, or NA if unassigned.
func (s *SingleAtt3D) Cat() string {
	if s.ClusterNumber <= 0 {
		return NA
	}
	tag := "CO"
	if s.IsFcst {
		tag = "CF"
	}
	return objectID(tag, s.ClusterNumber)
}

// WriteTextRow returns this object's 20-column 3D single-attribute row as
// a new slice of fields (one row's worth), matching the original
// engine's write_txt column ordering exactly.
func (s *SingleAtt3D) WriteTextRow() []string {
	return []string{
		s.ID(),
		s.Cat(),
		fmt.Sprintf("%.2f", s.Xbar),
		fmt.Sprintf("%.2f", s.Ybar),
		fmt.Sprintf("%.2f", s.Tbar),
		fmt.Sprintf("%.3f", s.Lat),
		fmt.Sprintf("%.3f", -s.Lon), // longitude printed negated
		fmt.Sprintf("%.2f", s.Xvelocity),
		fmt.Sprintf("%.2f", s.Yvelocity),
		fmt.Sprintf("%.2f", s.SpatialAxisAngle),
		fmt.Sprintf("%d", s.Volume),
		fmt.Sprintf("%d", s.Tmin),
		fmt.Sprintf("%d", s.Tmax),
		fmt.Sprintf("%.2f", s.CentroidDistTravelled),
		fmt.Sprintf("%.2f", s.Ptile10),
		fmt.Sprintf("%.2f", s.Ptile25),
		fmt.Sprintf("%.2f", s.Ptile50),
		fmt.Sprintf("%.2f", s.Ptile75),
		fmt.Sprintf("%.2f", s.Ptile90),
		fmt.Sprintf("%.2f", s.PtileUser),
	}
}

// pairID formats the F000_O000-style compound identifier for a pair.
func pairID(fcstTag string, fcstNum int, obsTag string, obsNum int) string {
	return fmt.Sprintf("%s_%s", objectID(fcstTag, fcstNum), objectID(obsTag, obsNum))
}

// ID returns this pair's OBJECT_ID column.
func (p *PairAtt3D) ID() string {
	fcstTag, obsTag := "F", "O"
	if !p.IsSimple {
		fcstTag, obsTag = "CF", "CO"
	}
	return pairID(fcstTag, p.FcstObjectNumber, obsTag, p.ObsObjectNumber)
}

// Cat returns this pair's cluster-tag column: CF000_CO000 if both sides
// share the same non-zero cluster number, else "0".
func (p *PairAtt3D) Cat() string {
	if p.FcstClusterNumber > 0 && p.FcstClusterNumber == p.ObsClusterNumber {
		return pairID("CF", p.FcstClusterNumber, "CO", p.ObsClusterNumber)
	}
	return "0"
}

// WriteTextRow returns this pair's 13-column 3D pair-attribute row,
// matching the original engine's write_txt column ordering exactly.
func (p *PairAtt3D) WriteTextRow() []string {
	interest := NA
	if p.TotalInterest >= 0 {
		interest = fmt.Sprintf("%.3f", p.TotalInterest)
	}
	return []string{
		p.ID(),
		p.Cat(),
		fmt.Sprintf("%.2f", p.SpaceCentroidDist),
		fmt.Sprintf("%.2f", p.TimeCentroidDelta),
		fmt.Sprintf("%.2f", p.AxisDiff),
		fmt.Sprintf("%.2f", p.SpeedDelta),
		fmt.Sprintf("%.2f", p.DirectionDifference),
		fmt.Sprintf("%.3f", p.VolumeRatio),
		fmt.Sprintf("%d", p.StartTimeDelta),
		fmt.Sprintf("%d", p.EndTimeDelta),
		fmt.Sprintf("%d", p.IntersectionVol),
		fmt.Sprintf("%d", p.DurationDifference),
		interest,
	}
}
