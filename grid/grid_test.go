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

package grid

import (
	"math"
	"testing"
)

func TestNewValidatesDimensions(t *testing.T) {
	if _, err := New(0, 10, nil, 0, 0, 1, 1); err == nil {
		t.Error("expected error for zero nx")
	}
	if _, err := New(10, 10, nil, 0, 0, 0, 1); err == nil {
		t.Error("expected error for zero dx")
	}
}

func TestXYToLatLonPassthroughWithoutSR(t *testing.T) {
	g, err := New(10, 10, nil, 100, 200, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	lat, lon, err := g.XYToLatLon(5, 3)
	if err != nil {
		t.Fatal(err)
	}
	if lat != 203 || lon != 105 {
		t.Errorf("got lat=%v lon=%v, want lat=203 lon=105", lat, lon)
	}

	x, y, err := g.LatLonToXY(lat, lon)
	if err != nil {
		t.Fatal(err)
	}
	if x != 5 || y != 3 {
		t.Errorf("LatLonToXY without SR should invert XYToLatLon, got x=%v y=%v, want x=5 y=3", x, y)
	}
}

func TestGCDistZeroForSamePoint(t *testing.T) {
	d := GCDist(40.0, -90.0, 40.0, -90.0)
	if d != 0 {
		t.Errorf("GCDist of identical points = %v, want 0", d)
	}
}

func TestGCDistQuarterEquator(t *testing.T) {
	// Two points 90 degrees apart on the equator are one quarter of the
	// way around the globe.
	d := GCDist(0, 0, 0, 90)
	want := math.Pi / 2 * earthRadiusKm
	if math.Abs(d-want) > 1e-6 {
		t.Errorf("GCDist(0,0,0,90) = %v, want %v", d, want)
	}
}

func TestEqual(t *testing.T) {
	a, _ := New(5, 5, nil, 0, 0, 1, 1)
	b, _ := New(5, 5, nil, 0, 0, 1, 1)
	c, _ := New(5, 5, nil, 0, 0, 2, 1)
	if !a.Equal(b) {
		t.Error("identical grids should be Equal")
	}
	if a.Equal(c) {
		t.Error("grids with different dx should not be Equal")
	}
	if (*Grid)(nil).Equal(nil) == false {
		t.Error("two nil grids should be Equal")
	}
}
