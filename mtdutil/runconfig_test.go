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

package mtdutil

import (
	"testing"

	"github.com/spatialmodel/mtd/mtdatt"
	"github.com/spatialmodel/mtd/mtdvol"
)

func TestParseThreshValid(t *testing.T) {
	cases := map[string]struct {
		op  mtdvol.CompareOp
		val float64
	}{
		">3.0":  {mtdvol.OpGT, 3.0},
		">=-1":  {mtdvol.OpGE, -1},
		"<=2.5": {mtdvol.OpLE, 2.5},
		"<0":    {mtdvol.OpLT, 0},
		"==1":   {mtdvol.OpEQ, 1},
		"!=7":   {mtdvol.OpNE, 7},
	}
	for s, want := range cases {
		th, err := parseThresh(s)
		if err != nil {
			t.Errorf("parseThresh(%q) error: %v", s, err)
			continue
		}
		if th.Op != want.op || th.Value != want.val {
			t.Errorf("parseThresh(%q) = %+v, want {%v %v}", s, th, want.op, want.val)
		}
	}
}

func TestParseThreshInvalid(t *testing.T) {
	for _, s := range []string{"", "foo", ">", "3.0", ">>3"} {
		if _, err := parseThresh(s); err == nil {
			t.Errorf("parseThresh(%q) expected error, got none", s)
		}
	}
}

func TestParsePiecewiseLinearKnotList(t *testing.T) {
	fn, err := parsePiecewiseLinear("0:0,5:0.5,10:1")
	if err != nil {
		t.Fatal(err)
	}
	if got := fn.Eval(5); got != 0.5 {
		t.Errorf("Eval(5) = %v, want 0.5", got)
	}
}

func TestParsePiecewiseLinearRejectsMalformedKnot(t *testing.T) {
	if _, err := parsePiecewiseLinear("0:0,badpair"); err == nil {
		t.Error("expected error for malformed knot pair")
	}
}

func TestParsePiecewiseLinearFormula(t *testing.T) {
	fn, err := parsePiecewiseLinear("x*2")
	if err != nil {
		t.Fatal(err)
	}
	if got := fn.Eval(0.5); got != 1 {
		t.Errorf("Eval(0.5) = %v, want 1 for formula x*2", got)
	}
}

func TestParsePiecewiseLinearRejectsBadFormula(t *testing.T) {
	if _, err := parsePiecewiseLinear("x +"); err == nil {
		t.Error("expected error for malformed formula")
	}
}

func TestFromCfgValidatesIntenPercValue(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Set("inten_perc_value", 150)
	if _, err := FromCfg(cfg, mtdDefaultFunctionsForTest()); err == nil {
		t.Error("expected error for out-of-range inten_perc_value")
	}
}

func TestFromCfgValidatesTotalInterestThresh(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Set("total_interest_thresh", 1.5)
	if _, err := FromCfg(cfg, mtdDefaultFunctionsForTest()); err == nil {
		t.Error("expected error for out-of-range total_interest_thresh")
	}
}

func TestFromCfgValidatesNegativeWeight(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Set("weight.space_centroid_dist", -0.5)
	if _, err := FromCfg(cfg, mtdDefaultFunctionsForTest()); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestFromCfgValidatesSideConvTimeWindow(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Set("fcst.conv_time_beg", 1)
	if _, err := FromCfg(cfg, mtdDefaultFunctionsForTest()); err == nil {
		t.Error("expected error for conv_time_beg > 0")
	}
}

func TestFromCfgValidatesSideConvRadius(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Set("obs.conv_radius", -1)
	if _, err := FromCfg(cfg, mtdDefaultFunctionsForTest()); err == nil {
		t.Error("expected error for negative conv_radius")
	}
}

func TestFromCfgDefaults(t *testing.T) {
	cfg := InitializeConfig()
	rc, err := FromCfg(cfg, mtdDefaultFunctionsForTest())
	if err != nil {
		t.Fatal(err)
	}
	if rc.TotalInterestThresh != 0.7 {
		t.Errorf("TotalInterestThresh = %v, want 0.7 (default)", rc.TotalInterestThresh)
	}
	if len(rc.Weights) != len(interestKeys) {
		t.Errorf("Weights has %d entries, want %d", len(rc.Weights), len(interestKeys))
	}
}

func TestFromCfgFunctionOverride(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Set("function.space_centroid_dist", "0:1,10:1")
	rc, err := FromCfg(cfg, mtdDefaultFunctionsForTest())
	if err != nil {
		t.Fatal(err)
	}
	if got := rc.Weights["space_centroid_dist"].Function.Eval(5); got != 1 {
		t.Errorf("overridden function Eval(5) = %v, want 1", got)
	}
}

func TestFromCfgParsesAreaAndIntenThresh(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Set("area_thresh", ">=100")
	cfg.Set("inten_thresh", "<=10.0")
	rc, err := FromCfg(cfg, mtdDefaultFunctionsForTest())
	if err != nil {
		t.Fatal(err)
	}
	if !rc.AreaThreshSet || rc.AreaThresh.Op != mtdvol.OpGE || rc.AreaThresh.Value != 100 {
		t.Errorf("AreaThresh = %+v (set=%v), want {OpGE 100} (set=true)", rc.AreaThresh, rc.AreaThreshSet)
	}
	if !rc.IntenThreshSet || rc.IntenThresh.Op != mtdvol.OpLE || rc.IntenThresh.Value != 10.0 {
		t.Errorf("IntenThresh = %+v (set=%v), want {OpLE 10} (set=true)", rc.IntenThresh, rc.IntenThreshSet)
	}
}

func TestFromCfgAreaAndIntenThreshUnsetByDefault(t *testing.T) {
	cfg := InitializeConfig()
	rc, err := FromCfg(cfg, mtdDefaultFunctionsForTest())
	if err != nil {
		t.Fatal(err)
	}
	if rc.AreaThreshSet || rc.IntenThreshSet {
		t.Errorf("expected AreaThreshSet and IntenThreshSet both false by default, got %v, %v", rc.AreaThreshSet, rc.IntenThreshSet)
	}
}

func TestFromCfgRejectsMalformedAreaThresh(t *testing.T) {
	cfg := InitializeConfig()
	cfg.Set("area_thresh", "not-a-threshold")
	if _, err := FromCfg(cfg, mtdDefaultFunctionsForTest()); err == nil {
		t.Error("expected error for malformed area_thresh")
	}
}

func TestFromCfgWarnsOnMaskField(t *testing.T) {
	Warnings() // drain any prior warnings
	cfg := InitializeConfig()
	cfg.Set("fcst_mask_grid", "somefile.nc")
	if _, err := FromCfg(cfg, mtdDefaultFunctionsForTest()); err != nil {
		t.Fatal(err)
	}
	w := Warnings()
	if len(w) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(w), w)
	}
}

func mtdDefaultFunctionsForTest() map[string]*mtdatt.PiecewiseLinear {
	flat, _ := mtdatt.NewPiecewiseLinear([]mtdatt.Knot{{X: 0, Y: 1}, {X: 1, Y: 1}})
	m := make(map[string]*mtdatt.PiecewiseLinear, len(interestKeys))
	for _, k := range interestKeys {
		m[k] = flat
	}
	return m
}
