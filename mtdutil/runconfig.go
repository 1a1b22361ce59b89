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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/spatialmodel/mtd/mtdatt"
	"github.com/spatialmodel/mtd/mtdvol"
)

// SideConfig holds the per-side (forecast or observation) configuration
// options.
type SideConfig struct {
	ConvRadius        int
	ConvTimeBeg       int
	ConvTimeEnd       int
	ConvThresh        mtdvol.Thresh
	ValidThreshold    float64
}

// NCOutputConfig selects which NetCDF variables to write.
type NCOutputConfig struct {
	Enabled        bool
	LatLon         bool
	Raw            bool
	ObjectID       bool
	ClusterID      bool
}

// TxtOutputConfig selects which text tables to write.
type TxtOutputConfig struct {
	Do2DAtt bool
	Do3DAtt bool
}

// WeightedFunction is one interest term's configured weight and
// piecewise-linear transform.
type WeightedFunction struct {
	Weight   float64
	Function *mtdatt.PiecewiseLinear
}

// RunConfig is the fully-typed, validated configuration for one run,
// derived from a Cfg.
type RunConfig struct {
	Model, Desc, Obtype string

	Fcst, Obs SideConfig

	MinVolume      int
	ZeroBorderSize int
	IntenPercValue int

	// AreaThresh and IntenThresh are optional post-toss object filters,
	// applied by the driver after TossSmallObjects and before attribute
	// computation; the *Set flags distinguish "unset" from the
	// zero-value Thresh{Op: OpGT, Value: 0}.
	AreaThreshSet  bool
	AreaThresh     mtdvol.Thresh
	IntenThreshSet bool
	IntenThresh    mtdvol.Thresh

	Weights map[string]WeightedFunction

	TotalInterestThresh float64

	NCOutput  NCOutputConfig
	TxtOutput TxtOutputConfig

	OutputPrefix string
	OutDir       string
}

// interestKeys are the eight recognized interest-term names, in the
// canonical order they are summed.
var interestKeys = []string{
	"space_centroid_dist",
	"time_centroid_delta",
	"speed_delta",
	"direction_diff",
	"volume_ratio",
	"axis_angle_diff",
	"start_time_delta",
	"end_time_delta",
}

// FromCfg builds a validated RunConfig from cfg. defaultFunctions supplies
// the piecewise-linear function for each interest key that the
// configuration file does not override via "function.<key>" (a
// comma-separated "x:y" knot list, or a govaluate formula string
// evaluated over a default probe range if it contains no ':').
func FromCfg(cfg *Cfg, defaultFunctions map[string]*mtdatt.PiecewiseLinear) (*RunConfig, error) {
	rc := &RunConfig{
		Model:  cfg.GetString("model"),
		Desc:   cfg.GetString("desc"),
		Obtype: cfg.GetString("obtype"),

		MinVolume:      cfg.GetInt("min_volume"),
		ZeroBorderSize: cfg.GetInt("zero_border_size"),
		IntenPercValue: cfg.GetInt("inten_perc_value"),

		TotalInterestThresh: cfg.GetFloat64("total_interest_thresh"),
		OutputPrefix:        cfg.GetString("output_prefix"),
		OutDir:              cfg.GetString("outdir"),
	}

	var err error
	rc.Fcst, err = sideConfig(cfg, "fcst")
	if err != nil {
		return nil, err
	}
	rc.Obs, err = sideConfig(cfg, "obs")
	if err != nil {
		return nil, err
	}

	if rc.IntenPercValue < 0 || rc.IntenPercValue > 100 {
		return nil, fmt.Errorf("mtdutil: inten_perc_value must be in [0,100], got %d", rc.IntenPercValue)
	}
	if rc.TotalInterestThresh < 0 || rc.TotalInterestThresh > 1 {
		return nil, fmt.Errorf("mtdutil: total_interest_thresh must be in [0,1], got %v", rc.TotalInterestThresh)
	}

	if s := cfg.GetString("area_thresh"); s != "" {
		th, err := parseThresh(s)
		if err != nil {
			return nil, fmt.Errorf("mtdutil: area_thresh: %w", err)
		}
		rc.AreaThreshSet, rc.AreaThresh = true, th
	}
	if s := cfg.GetString("inten_thresh"); s != "" {
		th, err := parseThresh(s)
		if err != nil {
			return nil, fmt.Errorf("mtdutil: inten_thresh: %w", err)
		}
		rc.IntenThreshSet, rc.IntenThresh = true, th
	}

	rc.Weights = make(map[string]WeightedFunction, len(interestKeys))
	for _, key := range interestKeys {
		w := cfg.GetFloat64("weight." + key)
		if w < 0 {
			return nil, fmt.Errorf("mtdutil: weight.%s must be >= 0, got %v", key, w)
		}
		fn := defaultFunctions[key]
		if s := cfg.GetString("function." + key); s != "" {
			fn, err = parsePiecewiseLinear(s)
			if err != nil {
				return nil, fmt.Errorf("mtdutil: function.%s: %w", key, err)
			}
		}
		rc.Weights[key] = WeightedFunction{Weight: w, Function: fn}
	}

	rc.NCOutput = NCOutputConfig{
		Enabled:   cfg.GetBool("nc_output"),
		LatLon:    cfg.GetBool("nc_output.latlon_flag"),
		Raw:       cfg.GetBool("nc_output.raw_flag"),
		ObjectID:  cfg.GetBool("nc_output.object_id_flag"),
		ClusterID: cfg.GetBool("nc_output.cluster_id_flag"),
	}
	rc.TxtOutput = TxtOutputConfig{
		Do2DAtt: cfg.GetBool("txt_output.do_2d_att_flag"),
		Do3DAtt: cfg.GetBool("txt_output.do_3d_att_flag"),
	}

	for _, field := range []string{"fcst_mask_grid", "fcst_mask_poly", "obs_mask_grid", "obs_mask_poly"} {
		if cfg.GetString(field) != "" {
			// Masking is an accepted passthrough, not an implemented
			// feature; see DESIGN.md.
			logWarnUnimplementedMask(field, cfg.GetString(field))
		}
	}

	return rc, nil
}

func sideConfig(cfg *Cfg, side string) (SideConfig, error) {
	th, err := parseThresh(cfg.GetString(side + ".conv_thresh"))
	if err != nil {
		return SideConfig{}, fmt.Errorf("mtdutil: %s.conv_thresh: %w", side, err)
	}
	sc := SideConfig{
		ConvRadius:     cfg.GetInt(side + ".conv_radius"),
		ConvTimeBeg:    cfg.GetInt(side + ".conv_time_beg"),
		ConvTimeEnd:    cfg.GetInt(side + ".conv_time_end"),
		ConvThresh:     th,
		ValidThreshold: cfg.GetFloat64(side + ".vld_thresh"),
	}
	if sc.ConvRadius < 0 {
		return sc, fmt.Errorf("mtdutil: %s.conv_radius must be >= 0", side)
	}
	if sc.ConvTimeBeg > 0 || sc.ConvTimeEnd < 0 {
		return sc, fmt.Errorf("mtdutil: %s.conv_time_beg must be <= 0 and conv_time_end must be >= 0", side)
	}
	return sc, nil
}

var threshRe = regexp.MustCompile(`^\s*(>=|<=|==|!=|>|<)\s*(-?[0-9.eE+-]+)\s*$`)

// parseThresh parses a threshold string like ">3.0" or "<=-1" into a
// mtdvol.Thresh.
func parseThresh(s string) (mtdvol.Thresh, error) {
	m := threshRe.FindStringSubmatch(s)
	if m == nil {
		return mtdvol.Thresh{}, fmt.Errorf("invalid threshold syntax %q", s)
	}
	val, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return mtdvol.Thresh{}, fmt.Errorf("invalid threshold value %q: %w", m[2], err)
	}
	var op mtdvol.CompareOp
	switch m[1] {
	case ">":
		op = mtdvol.OpGT
	case ">=":
		op = mtdvol.OpGE
	case "<":
		op = mtdvol.OpLT
	case "<=":
		op = mtdvol.OpLE
	case "==":
		op = mtdvol.OpEQ
	case "!=":
		op = mtdvol.OpNE
	}
	return mtdvol.Thresh{Op: op, Value: val}, nil
}

// parsePiecewiseLinear parses either an explicit knot list
// ("0:0,5:0.5,10:1") or, if it contains no ':', a govaluate formula
// string sampled over [0,1] in 0.1 steps to build an equivalent knot
// table. Explicit knot tables are the primary, spec-mandated mechanism;
// formulas are an optional convenience for documentation/debugging.
func parsePiecewiseLinear(s string) (*mtdatt.PiecewiseLinear, error) {
	if strings.Contains(s, ":") {
		var knots []mtdatt.Knot
		for _, pair := range strings.Split(s, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			parts := strings.SplitN(pair, ":", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid knot %q", pair)
			}
			x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid knot x %q: %w", parts[0], err)
			}
			y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid knot y %q: %w", parts[1], err)
			}
			knots = append(knots, mtdatt.Knot{X: x, Y: y})
		}
		return mtdatt.NewPiecewiseLinear(knots)
	}

	expr, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return nil, fmt.Errorf("invalid interest-function formula %q: %w", s, err)
	}
	var knots []mtdatt.Knot
	for i := 0; i <= 10; i++ {
		x := float64(i) / 10.0
		result, err := expr.Evaluate(map[string]interface{}{"x": x})
		if err != nil {
			return nil, fmt.Errorf("evaluating formula %q at x=%v: %w", s, x, err)
		}
		y, ok := result.(float64)
		if !ok {
			return nil, fmt.Errorf("formula %q did not evaluate to a number", s)
		}
		knots = append(knots, mtdatt.Knot{X: x, Y: y})
	}
	return mtdatt.NewPiecewiseLinear(knots)
}

func logWarnUnimplementedMask(field, value string) {
	// Deliberately minimal: this is an accepted-but-unimplemented
	// passthrough (see DESIGN.md), not a runtime error. The warning is
	// collected here and printed to stderr by cmd/mtd; mtdutil stays free
	// of a logging dependency so it can be imported by tests without side
	// effects.
	warnings = append(warnings, fmt.Sprintf("%s=%s was set but masking is not implemented; ignoring", field, value))
}

// Warnings returns and clears any non-fatal configuration warnings
// accumulated since the last call, such as unimplemented masking
// passthroughs.
func Warnings() []string {
	w := warnings
	warnings = nil
	return w
}

var warnings []string
