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

func TestSingleAtt3DID(t *testing.T) {
	cases := []struct {
		s    SingleAtt3D
		want string
	}{
		{SingleAtt3D{IsFcst: true, IsSimple: true, ObjectNumber: 3}, "F003"},
		{SingleAtt3D{IsFcst: false, IsSimple: true, ObjectNumber: 12}, "O012"},
		{SingleAtt3D{IsFcst: true, IsSimple: false, ObjectNumber: 1}, "CF001"},
		{SingleAtt3D{IsFcst: false, IsSimple: false, ObjectNumber: 1}, "CO001"},
	}
	for _, c := range cases {
		if got := c.s.ID(); got != c.want {
			t.Errorf("ID() = %q, want %q", got, c.want)
		}
	}
}

func TestSingleAtt3DCat(t *testing.T) {
	s := SingleAtt3D{IsFcst: true, IsSimple: true, ObjectNumber: 1, ClusterNumber: 2}
	if got := s.Cat(); got != "CF002" {
		t.Errorf("Cat() = %q, want CF002", got)
	}
	unassigned := SingleAtt3D{IsFcst: true, IsSimple: true, ObjectNumber: 1}
	if got := unassigned.Cat(); got != NA {
		t.Errorf("Cat() of unassigned object = %q, want %q", got, NA)
	}
}

func TestSingleAtt3DWriteTextRowColumnCount(t *testing.T) {
	s := SingleAtt3D{IsFcst: true, IsSimple: true, ObjectNumber: 1}
	row := s.WriteTextRow()
	if len(row) != 20 {
		t.Errorf("WriteTextRow has %d columns, want 20", len(row))
	}
}

func TestSingleAtt3DLongitudeNegatedInOutput(t *testing.T) {
	s := SingleAtt3D{Lon: 95.5}
	row := s.WriteTextRow()
	if row[6] != "-95.500" {
		t.Errorf("longitude column = %q, want -95.500 (negated)", row[6])
	}
}

func TestPairAtt3DID(t *testing.T) {
	p := PairAtt3D{FcstObjectNumber: 1, ObsObjectNumber: 2, IsSimple: true}
	if got := p.ID(); got != "F001_O002" {
		t.Errorf("ID() = %q, want F001_O002", got)
	}
	p.IsSimple = false
	if got := p.ID(); got != "CF001_CO002" {
		t.Errorf("composite ID() = %q, want CF001_CO002", got)
	}
}

func TestPairAtt3DCat(t *testing.T) {
	p := PairAtt3D{FcstClusterNumber: 2, ObsClusterNumber: 2}
	if got := p.Cat(); got != "CF002_CO002" {
		t.Errorf("Cat() = %q, want CF002_CO002", got)
	}
	unmatched := PairAtt3D{FcstClusterNumber: 1, ObsClusterNumber: 2}
	if got := unmatched.Cat(); got != "0" {
		t.Errorf("Cat() of pair in different clusters = %q, want 0", got)
	}
}

func TestPairAtt3DWriteTextRowColumnCountAndNA(t *testing.T) {
	p := PairAtt3D{TotalInterest: -1}
	row := p.WriteTextRow()
	if len(row) != 13 {
		t.Errorf("WriteTextRow has %d columns, want 13", len(row))
	}
	if row[len(row)-1] != NA {
		t.Errorf("uncomputed TotalInterest should render as %q, got %q", NA, row[len(row)-1])
	}
}
