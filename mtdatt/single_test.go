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
	"testing"
	"time"

	"github.com/spatialmodel/mtd/grid"
	"github.com/spatialmodel/mtd/mtdvol"
)

func singleCellObject(t *testing.T) (*mtdvol.IntVolume, *mtdvol.FloatVolume) {
	t.Helper()
	obj := mtdvol.NewIntVolume(5, 5, 1)
	obj.Set(2, 2, 0, 1)
	raw, err := mtdvol.NewFloatVolume(5, 5, 1, nil, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return obj, raw
}

func TestCalcSingleAtt3DEmptyObjectPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an empty object")
		}
	}()
	obj := mtdvol.NewIntVolume(3, 3, 1)
	raw, _ := mtdvol.NewFloatVolume(3, 3, 1, nil, time.Hour)
	CalcSingleAtt3D(obj, raw, nil, 1, true, true, 50)
}

func TestCalcSingleAtt3DSingleCellCentroid(t *testing.T) {
	obj, raw := singleCellObject(t)
	raw.Set(2, 2, 0, 9.5)
	s, err := CalcSingleAtt3D(obj, raw, nil, 1, true, true, 50)
	if err != nil {
		t.Fatal(err)
	}
	if s.Xbar != 2 || s.Ybar != 2 || s.Tbar != 0 {
		t.Errorf("centroid = (%v,%v,%v), want (2,2,0)", s.Xbar, s.Ybar, s.Tbar)
	}
	if s.Volume != 1 {
		t.Errorf("Volume = %d, want 1", s.Volume)
	}
	if s.Ptile50 != 9.5 {
		t.Errorf("median intensity = %v, want 9.5", s.Ptile50)
	}
	if s.Xvelocity != 0 || s.Yvelocity != 0 {
		t.Error("a single-time object should have zero velocity")
	}
}

func TestNTimes(t *testing.T) {
	s := SingleAtt3D{Tmin: 2, Tmax: 5}
	if s.NTimes() != 4 {
		t.Errorf("NTimes = %d, want 4", s.NTimes())
	}
}

func TestCalcSingleAtt3DUsesGridForLatLon(t *testing.T) {
	obj, raw := singleCellObject(t)
	g, err := grid.New(5, 5, nil, 100, 200, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	s, err := CalcSingleAtt3D(obj, raw, g, 1, true, true, 50)
	if err != nil {
		t.Fatal(err)
	}
	// No SR configured: XYToLatLon passes projected coords through as
	// (lat=y, lon=x) in the grid's origin-shifted space.
	wantLat, wantLon := 202.0, 102.0
	if s.Lat != wantLat || s.Lon != wantLon {
		t.Errorf("Lat,Lon = %v,%v, want %v,%v", s.Lat, s.Lon, wantLat, wantLon)
	}
}

func TestFoldAxisAngleRange(t *testing.T) {
	for _, a := range []float64{-400, -90, 0, 90, 271} {
		f := foldAxisAngle(a)
		if f <= -90 || f > 90 {
			t.Errorf("foldAxisAngle(%v) = %v, out of (-90,90]", a, f)
		}
	}
}
