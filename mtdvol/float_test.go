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

package mtdvol

import (
	"testing"
	"time"
)

func TestNewFloatVolumeFillsMissing(t *testing.T) {
	v, err := NewFloatVolume(2, 2, 1, nil, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if v.At(0, 0, 0) != Missing {
		t.Errorf("new volume cells should start Missing, got %v", v.At(0, 0, 0))
	}
}

func TestThreshSatisfies(t *testing.T) {
	cases := []struct {
		th   Thresh
		val  float64
		want bool
	}{
		{Thresh{OpGT, 3}, 4, true},
		{Thresh{OpGT, 3}, 3, false},
		{Thresh{OpGE, 3}, 3, true},
		{Thresh{OpLT, 3}, 2, true},
		{Thresh{OpLE, 3}, 3, true},
		{Thresh{OpEQ, 3}, 3, true},
		{Thresh{OpNE, 3}, 4, true},
		{Thresh{OpGT, 3}, Missing, false},
	}
	for _, c := range cases {
		if got := c.th.Satisfies(c.val); got != c.want {
			t.Errorf("Thresh%+v.Satisfies(%v) = %v, want %v", c.th, c.val, got, c.want)
		}
	}
}

func TestConvolveUniformFieldPreservesValue(t *testing.T) {
	v, err := NewFloatVolume(5, 5, 1, nil, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			v.Set(x, y, 0, 7)
		}
	}
	out, err := v.Convolve(1, 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.At(2, 2, 0); got != 7 {
		t.Errorf("convolving a uniform field should preserve its value, got %v", got)
	}
}

func TestConvolveExcludesMissing(t *testing.T) {
	v, err := NewFloatVolume(3, 3, 1, nil, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	v.Set(1, 1, 0, 10)
	// Every other cell stays Missing.
	out, err := v.Convolve(1, 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.At(1, 1, 0); got != 10 {
		t.Errorf("disk mean over one non-missing neighbor should equal that value, got %v", got)
	}
}

func TestConvolveRejectsBadTimeWindow(t *testing.T) {
	v, _ := NewFloatVolume(3, 3, 3, nil, time.Hour)
	if _, err := v.Convolve(0, 1, 0, 0); err == nil {
		t.Error("expected error for conv_time_beg > 0")
	}
	if _, err := v.Convolve(0, 0, -1, 0); err == nil {
		t.Error("expected error for conv_time_end < 0")
	}
}

func TestThreshold(t *testing.T) {
	v, _ := NewFloatVolume(2, 1, 1, nil, time.Hour)
	v.Set(0, 0, 0, 5)
	v.Set(1, 0, 0, 1)
	mask := v.Threshold(Thresh{OpGT, 3})
	if mask.At(0, 0, 0) != 1 || mask.At(1, 0, 0) != 0 {
		t.Error("threshold mask mismatch")
	}
}

func TestMinMax(t *testing.T) {
	v, _ := NewFloatVolume(3, 1, 1, nil, time.Hour)
	v.Set(0, 0, 0, 5)
	v.Set(1, 0, 0, -2)
	min, max := v.MinMax()
	if min != -2 || max != 5 {
		t.Errorf("MinMax = (%v,%v), want (-2,5)", min, max)
	}
}
