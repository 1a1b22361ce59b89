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

import (
	"io/ioutil"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/mtd/grid"
	"github.com/spatialmodel/mtd/mtdatt"
	"github.com/spatialmodel/mtd/mtdio"
	"github.com/spatialmodel/mtd/mtdutil"
	"github.com/spatialmodel/mtd/mtdvol"
)

func TestIdsPlusOne(t *testing.T) {
	got := idsPlusOne([]int{0, 2, 5})
	want := []int{1, 3, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("idsPlusOne = %v, want %v", got, want)
	}
}

func TestIdsPlusOneEmpty(t *testing.T) {
	if got := idsPlusOne(nil); len(got) != 0 {
		t.Errorf("idsPlusOne(nil) = %v, want empty", got)
	}
}

func TestStampCluster(t *testing.T) {
	dst := mtdvol.NewIntVolume(2, 2, 1)
	mask := mtdvol.NewIntVolume(2, 2, 1)
	mask.Set(0, 0, 0, 1)
	stampCluster(dst, mask, 7)
	if dst.At(0, 0, 0) != 7 {
		t.Errorf("stamped cell = %d, want 7", dst.At(0, 0, 0))
	}
	if dst.At(1, 1, 0) != 0 {
		t.Errorf("unmasked cell = %d, want 0", dst.At(1, 1, 0))
	}
}

func TestBuildInterestCalculatorRejectsUnknownTerm(t *testing.T) {
	d := &Driver{Cfg: &mtdutil.RunConfig{
		Weights: map[string]mtdutil.WeightedFunction{
			"not_a_real_term": {Weight: 1, Function: flatFn(1)},
		},
	}}
	if _, err := d.buildInterestCalculator(); err == nil {
		t.Error("expected error for unrecognized interest term")
	}
}

func TestBuildInterestCalculatorSucceedsWithDefaults(t *testing.T) {
	fns := DefaultInterestFunctions()
	weights := make(map[string]mtdutil.WeightedFunction, len(fns))
	for key, fn := range fns {
		weights[key] = mtdutil.WeightedFunction{Weight: 1, Function: fn}
	}
	d := &Driver{Cfg: &mtdutil.RunConfig{Weights: weights}}
	ic, err := d.buildInterestCalculator()
	if err != nil {
		t.Fatal(err)
	}
	if ic == nil {
		t.Fatal("expected a non-nil InterestCalculator")
	}
}

func TestLatLonVolumesPassthroughWithoutSR(t *testing.T) {
	g, err := grid.New(2, 2, nil, 10, 20, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	v, err := mtdvol.NewFloatVolume(2, 2, 1, g, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	lat, lon := latLonVolumes(v)
	if lat.At(1, 1, 0) != 21 || lon.At(1, 1, 0) != 11 {
		t.Errorf("lat,lon at (1,1) = %v,%v, want 21,11", lat.At(1, 1, 0), lon.At(1, 1, 0))
	}
}

func flatFn(y float64) *mtdatt.PiecewiseLinear {
	fn, _ := mtdatt.NewPiecewiseLinear([]mtdatt.Knot{{X: 0, Y: y}})
	return fn
}

// TestShapeRowsMultiShapePerSlice guards against shapeRows (and the
// write2DAtt it replaced) collapsing distinct shapes in the same time
// slice onto one merged centroid.
func TestShapeRowsMultiShapePerSlice(t *testing.T) {
	obj := mtdvol.NewIntVolume(5, 1, 1)
	// Two spatially disjoint 2-cell shapes in the same slice, separated
	// by a background gap at x=2.
	obj.Set(0, 0, 0, 1)
	obj.Set(1, 0, 0, 1)
	obj.Set(3, 0, 0, 1)
	obj.Set(4, 0, 0, 1)

	rows := shapeRows("fcst", obj)
	if len(rows) != 2 {
		t.Fatalf("shapeRows returned %d rows, want 2", len(rows))
	}

	byXbar := map[float64]mtdio.Shape2D{}
	for _, r := range rows {
		byXbar[r.Xbar] = r
	}

	left, ok := byXbar[0.5]
	if !ok {
		t.Fatalf("no row with Xbar=0.5 (left shape), got rows %+v", rows)
	}
	if left.Area != 2 {
		t.Errorf("left shape Area = %d, want 2", left.Area)
	}
	if left.DisplayArea <= left.Area {
		t.Errorf("left shape DisplayArea = %d, want > Area (%d)", left.DisplayArea, left.Area)
	}

	right, ok := byXbar[3.5]
	if !ok {
		t.Fatalf("no row with Xbar=3.5 (right shape), got rows %+v", rows)
	}
	if right.Area != 2 {
		t.Errorf("right shape Area = %d, want 2", right.Area)
	}
	if right.DisplayArea <= right.Area {
		t.Errorf("right shape DisplayArea = %d, want > Area (%d)", right.DisplayArea, right.Area)
	}
}

func TestFilterByAreaIntensityDropsSmallObjects(t *testing.T) {
	obj := mtdvol.NewIntVolume(4, 1, 1)
	obj.Set(0, 0, 0, 1)
	obj.NObjects = 2
	obj.Set(2, 0, 0, 2)
	obj.Set(3, 0, 0, 2)
	obj.Volume = []int{1, 2}

	log := logrus.New()
	log.SetOutput(ioutil.Discard)
	d := &Driver{
		Log: log,
		Cfg: &mtdutil.RunConfig{
			AreaThreshSet: true,
			AreaThresh:    mtdvol.Thresh{Op: mtdvol.OpGE, Value: 2},
		},
	}
	raw, rerr := mtdvol.NewFloatVolume(4, 1, 1, nil, time.Hour)
	if rerr != nil {
		t.Fatal(rerr)
	}
	d.filterByAreaIntensity(obj, raw)

	if obj.NObjects != 1 {
		t.Fatalf("NObjects after filter = %d, want 1", obj.NObjects)
	}
	if obj.At(2, 0, 0) != 1 || obj.At(3, 0, 0) != 1 {
		t.Errorf("surviving object not relabeled to 1: %v", obj.Data)
	}
	if obj.At(0, 0, 0) != 0 {
		t.Errorf("filtered-out object still present: %v", obj.Data)
	}
}
