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
	"fmt"
	"time"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/mtd/grid"
)

// Missing is the sentinel value representing a missing/invalid cell.
const Missing = -9999.0

// Thresh is a single logical threshold: a comparison operator and value,
// e.g. Thresh{Op: OpGT, Value: 3.0} for "> 3.0".
type Thresh struct {
	Op    CompareOp
	Value float64
}

// CompareOp is a threshold comparison operator.
type CompareOp int

// Recognized comparison operators.
const (
	OpGT CompareOp = iota
	OpGE
	OpLT
	OpLE
	OpEQ
	OpNE
)

// Satisfies reports whether val satisfies the threshold. A missing value
// never satisfies any threshold.
func (th Thresh) Satisfies(val float64) bool {
	if val == Missing {
		return false
	}
	switch th.Op {
	case OpGT:
		return val > th.Value
	case OpGE:
		return val >= th.Value
	case OpLT:
		return val < th.Value
	case OpLE:
		return val <= th.Value
	case OpEQ:
		return val == th.Value
	case OpNE:
		return val != th.Value
	}
	return false
}

// FloatVolume owns an (nx, ny, nt) grid of floating-point cell values plus
// its geo-grid metadata: a spatial convolution radius and temporal
// convolution window (set if this volume was produced by Convolve), lead
// times, a start valid time, and the time step between frames.
type FloatVolume struct {
	Nx, Ny, Nt int
	Data       []float64
	Grid       *grid.Grid

	// Radius and [TimeBeg,TimeEnd] describe how this volume was produced
	// by Convolve, if it was.
	Radius           int
	TimeBeg, TimeEnd int

	LeadTime  []time.Duration // per-frame lead time, length Nt
	ValidTime time.Time       // start valid time of frame 0
	DeltaT    time.Duration   // time between frames; must be > 0

	min, max       float64
	minMaxComputed bool
}

// NewFloatVolume allocates a FloatVolume of the given shape, filled with
// the missing sentinel.
func NewFloatVolume(nx, ny, nt int, g *grid.Grid, deltaT time.Duration) (*FloatVolume, error) {
	if nx <= 0 || ny <= 0 || nt <= 0 {
		return nil, fmt.Errorf("mtdvol.NewFloatVolume: invalid dimensions %dx%dx%d", nx, ny, nt)
	}
	if deltaT <= 0 {
		return nil, fmt.Errorf("mtdvol.NewFloatVolume: delta_t must be > 0, got %v", deltaT)
	}
	data := make([]float64, nx*ny*nt)
	for i := range data {
		data[i] = Missing
	}
	return &FloatVolume{Nx: nx, Ny: ny, Nt: nt, Data: data, Grid: g, DeltaT: deltaT}, nil
}

func (v *FloatVolume) index(x, y, t int) int {
	return (t*v.Ny+y)*v.Nx + x
}

// At returns the cell value at (x, y, t).
func (v *FloatVolume) At(x, y, t int) float64 {
	if x < 0 || x >= v.Nx || y < 0 || y >= v.Ny || t < 0 || t >= v.Nt {
		panic(fmt.Sprintf("mtdvol.FloatVolume.At: index (%d,%d,%d) out of bounds for %dx%dx%d", x, y, t, v.Nx, v.Ny, v.Nt))
	}
	return v.Data[v.index(x, y, t)]
}

// Set assigns the cell value at (x, y, t).
func (v *FloatVolume) Set(x, y, t int, val float64) {
	if x < 0 || x >= v.Nx || y < 0 || y >= v.Ny || t < 0 || t >= v.Nt {
		panic(fmt.Sprintf("mtdvol.FloatVolume.Set: index (%d,%d,%d) out of bounds for %dx%dx%d", x, y, t, v.Nx, v.Ny, v.Nt))
	}
	v.Data[v.index(x, y, t)] = val
	v.minMaxComputed = false
}

// MinMax returns the cached min/max of non-missing cell values, computing
// it on first use.
func (v *FloatVolume) MinMax() (min, max float64) {
	if v.minMaxComputed {
		return v.min, v.max
	}
	first := true
	for _, val := range v.Data {
		if val == Missing {
			continue
		}
		if first {
			v.min, v.max = val, val
			first = false
			continue
		}
		if val < v.min {
			v.min = val
		}
		if val > v.max {
			v.max = val
		}
	}
	v.minMaxComputed = true
	return v.min, v.max
}

// ConstTSlice returns the 2D float slice at time t as an nt=1 volume.
func (v *FloatVolume) ConstTSlice(t int) (*FloatVolume, error) {
	out, err := NewFloatVolume(v.Nx, v.Ny, 1, v.Grid, v.DeltaT)
	if err != nil {
		return nil, err
	}
	for y := 0; y < v.Ny; y++ {
		for x := 0; x < v.Nx; x++ {
			out.Set(x, y, 0, v.At(x, y, t))
		}
	}
	return out, nil
}

// Convolve returns a new FloatVolume of the same shape in which each
// output cell (x,y,t) is the mean of input cells inside the union of a
// spatial disk of radius R (grid-cell units, Euclidean) centered at
// (x,y), at every time step t' in [t+Tb, t+Te] clipped to [0,Nt). Cells
// with missing input are excluded from both the sum and the count; if the
// count is zero the output cell is missing. vldThresh, if > 0, requires
// at least that fraction of the neighborhood to be non-missing for the
// output to be considered valid at all (supplements the core spec: see
// fcst.vld_thresh / obs.vld_thresh).
func (v *FloatVolume) Convolve(radius, tb, te int, vldThresh float64) (*FloatVolume, error) {
	if radius < 0 {
		return nil, fmt.Errorf("mtdvol.FloatVolume.Convolve: radius must be >= 0, got %d", radius)
	}
	if tb > 0 || te < 0 {
		return nil, fmt.Errorf("mtdvol.FloatVolume.Convolve: time window must satisfy Tb<=0<=Te, got [%d,%d]", tb, te)
	}

	out, err := NewFloatVolume(v.Nx, v.Ny, v.Nt, v.Grid, v.DeltaT)
	if err != nil {
		return nil, err
	}
	out.Radius = radius
	out.TimeBeg, out.TimeEnd = tb, te

	// Per-time-slice summed-area tables (prefix sums) of value and count,
	// built once and reused across all (x,y,t) queries that touch that
	// slice, so each row of the disk at any (x,y) is one O(1)
	// rectangle-difference lookup rather than a rescan of its cells.
	sat := make([]*summedAreaTable, v.Nt)
	satFor := func(t int) *summedAreaTable {
		if sat[t] == nil {
			sat[t] = newSummedAreaTable(v, t)
		}
		return sat[t]
	}

	// Precompute disk offsets relative to center for radius R.
	offsets := diskOffsets(radius)

	for t := 0; t < v.Nt; t++ {
		tLo, tHi := t+tb, t+te
		if tLo < 0 {
			tLo = 0
		}
		if tHi >= v.Nt {
			tHi = v.Nt - 1
		}
		for y := 0; y < v.Ny; y++ {
			for x := 0; x < v.Nx; x++ {
				var sum float64
				var count, total int
				for t2 := tLo; t2 <= tHi; t2++ {
					s := satFor(t2)
					ds, dc, dn := s.diskSum(x, y, offsets)
					sum += ds
					count += dc
					total += dn
				}
				if count == 0 || (vldThresh > 0 && float64(count) < vldThresh*float64(total)) {
					out.Set(x, y, t, Missing)
					continue
				}
				out.Set(x, y, t, sum/float64(count))
			}
		}
	}
	return out, nil
}

// diskOffsets returns the (dx,dy) offsets of all grid cells within
// Euclidean distance radius of the origin.
func diskOffsets(radius int) [][2]int {
	var offsets [][2]int
	r2 := float64(radius) * float64(radius)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if float64(dx*dx+dy*dy) <= r2 {
				offsets = append(offsets, [2]int{dx, dy})
			}
		}
	}
	return offsets
}

// summedAreaTable holds per-slice prefix sums of value (over non-missing
// cells) and of the non-missing indicator, enabling O(1) rectangular
// range sums for the disk-convolution inner loop.
type summedAreaTable struct {
	nx, ny    int
	sumTable  []float64
	cntTable  []int
}

func newSummedAreaTable(v *FloatVolume, t int) *summedAreaTable {
	s := &summedAreaTable{nx: v.Nx, ny: v.Ny}
	s.sumTable = make([]float64, (v.Nx+1)*(v.Ny+1))
	s.cntTable = make([]int, (v.Nx+1)*(v.Ny+1))
	w := v.Nx + 1
	for y := 0; y < v.Ny; y++ {
		for x := 0; x < v.Nx; x++ {
			val := v.At(x, y, t)
			var fv float64
			var fc int
			if val != Missing {
				fv, fc = val, 1
			}
			above := s.sumTable[y*w+(x+1)]
			left := s.sumTable[(y+1)*w+x]
			diag := s.sumTable[y*w+x]
			s.sumTable[(y+1)*w+(x+1)] = fv + above + left - diag

			aboveC := s.cntTable[y*w+(x+1)]
			leftC := s.cntTable[(y+1)*w+x]
			diagC := s.cntTable[y*w+x]
			s.cntTable[(y+1)*w+(x+1)] = fc + aboveC + leftC - diagC
		}
	}
	return s
}

// rectSum returns the sum and count over the rectangle [x0,x1)x[y0,y1),
// clipped to the slice bounds.
func (s *summedAreaTable) rectSum(x0, y0, x1, y1 int) (sum float64, count int) {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > s.nx {
		x1 = s.nx
	}
	if y1 > s.ny {
		y1 = s.ny
	}
	if x0 >= x1 || y0 >= y1 {
		return 0, 0
	}
	w := s.nx + 1
	sum = s.sumTable[y1*w+x1] - s.sumTable[y0*w+x1] - s.sumTable[y1*w+x0] + s.sumTable[y0*w+x0]
	count = s.cntTable[y1*w+x1] - s.cntTable[y0*w+x1] - s.cntTable[y1*w+x0] + s.cntTable[y0*w+x0]
	return sum, count
}

// diskSum returns the sum and count of non-missing cells in the disk of
// the given offsets centered at (x,y), plus the disk's nominal cell count
// before clipping to the slice. It groups the offsets into one contiguous
// dx span per row and resolves each span with a single rectSum lookup.
func (s *summedAreaTable) diskSum(x, y int, offsets [][2]int) (sum float64, count, total int) {
	// Group offsets by dy into contiguous dx spans (the disk is
	// symmetric per row), then resolve each row span via rectSum.
	rows := map[int][2]int{}
	for _, o := range offsets {
		dy := o[1]
		r, ok := rows[dy]
		if !ok {
			rows[dy] = [2]int{o[0], o[0]}
			continue
		}
		if o[0] < r[0] {
			r[0] = o[0]
		}
		if o[0] > r[1] {
			r[1] = o[0]
		}
		rows[dy] = r
	}
	for dy, span := range rows {
		x0, x1 := x+span[0], x+span[1]+1
		total += (x1 - x0) // nominal row width before clipping
		rs, rc := s.rectSum(x0, y+dy, x1, y+dy+1)
		sum += rs
		count += rc
	}
	return sum, count, total
}

// Threshold returns a binary mask: 1 where the cell value satisfies th,
// else 0. Missing values never satisfy any threshold.
func (v *FloatVolume) Threshold(th Thresh) *IntVolume {
	out := NewIntVolume(v.Nx, v.Ny, v.Nt)
	for i, val := range v.Data {
		if th.Satisfies(val) {
			out.Data[i] = 1
		}
	}
	return out
}

// Regrid returns a new volume on the target grid, resampling this volume's
// data via nearest-neighbor lookup in normalized grid-cell space; this
// volume is left unchanged.
// It is a thin hook: the core requires only that after regridding,
// forecast.Grid == observation.Grid (same Nx, Ny) and matching Nt/DeltaT;
// it does not mandate a specific resampling algorithm.
func (v *FloatVolume) Regrid(target *grid.Grid) (*FloatVolume, error) {
	if target == nil {
		return nil, fmt.Errorf("mtdvol.FloatVolume.Regrid: nil target grid")
	}
	out, err := NewFloatVolume(target.Nx, target.Ny, v.Nt, target, v.DeltaT)
	if err != nil {
		return nil, err
	}
	for t := 0; t < v.Nt; t++ {
		for y := 0; y < target.Ny; y++ {
			for x := 0; x < target.Nx; x++ {
				sx := x * v.Nx / target.Nx
				sy := y * v.Ny / target.Ny
				out.Set(x, y, t, v.At(sx, sy, t))
			}
		}
	}
	out.LeadTime = v.LeadTime
	out.ValidTime = v.ValidTime
	return out, nil
}

// DenseArray converts the volume's flat data into a sparse.DenseArray of
// shape (nt, ny, nx).
func (v *FloatVolume) DenseArray() *sparse.DenseArray {
	arr := sparse.ZerosDense(v.Nt, v.Ny, v.Nx)
	for t := 0; t < v.Nt; t++ {
		for y := 0; y < v.Ny; y++ {
			for x := 0; x < v.Nx; x++ {
				arr.Set(v.At(x, y, t), t, y, x)
			}
		}
	}
	return arr
}
