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

	"github.com/ctessum/sparse"
)

// IntVolume owns an (nx, ny, nt) grid of integer cell values. Depending on
// how it was produced, its content is either a binary mask (values 0/1)
// or a set of densely labeled objects (values 0..N, 0 = background), with
// an optional parallel per-label cell-count array.
type IntVolume struct {
	Nx, Ny, Nt int
	Data       []int

	// NObjects is the number of distinct non-zero labels currently
	// present (0 for an un-split binary mask).
	NObjects int

	// Volume[k-1] is the cell count of label k, 1-based, populated by
	// Split and kept current by TossSmallObjects/SiftObjects.
	Volume []int
}

// NewIntVolume allocates a zeroed IntVolume of the given shape.
func NewIntVolume(nx, ny, nt int) *IntVolume {
	return &IntVolume{Nx: nx, Ny: ny, Nt: nt, Data: make([]int, nx*ny*nt)}
}

func (v *IntVolume) index(x, y, t int) int {
	return (t*v.Ny+y)*v.Nx + x
}

// At returns the cell value at (x, y, t). Out-of-bounds access is a fatal
// internal invariant violation.
func (v *IntVolume) At(x, y, t int) int {
	if x < 0 || x >= v.Nx || y < 0 || y >= v.Ny || t < 0 || t >= v.Nt {
		panic(fmt.Sprintf("mtdvol.IntVolume.At: index (%d,%d,%d) out of bounds for %dx%dx%d", x, y, t, v.Nx, v.Ny, v.Nt))
	}
	return v.Data[v.index(x, y, t)]
}

// Set assigns the cell value at (x, y, t).
func (v *IntVolume) Set(x, y, t, val int) {
	if x < 0 || x >= v.Nx || y < 0 || y >= v.Ny || t < 0 || t >= v.Nt {
		panic(fmt.Sprintf("mtdvol.IntVolume.Set: index (%d,%d,%d) out of bounds for %dx%dx%d", x, y, t, v.Nx, v.Ny, v.Nt))
	}
	v.Data[v.index(x, y, t)] = val
}

var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Split takes a binary mask and replaces its content with a densely
// labeled volume: labels run 1..N in the order 6-connected components are
// first encountered by a raster scan (t-major, then y, then x), matching
// the discovery order mandated so that results are reproducible.
func (v *IntVolume) Split() {
	labels := make([]int, len(v.Data))
	nextLabel := 0
	var stack [][3]int

	for t := 0; t < v.Nt; t++ {
		for y := 0; y < v.Ny; y++ {
			for x := 0; x < v.Nx; x++ {
				idx := v.index(x, y, t)
				if v.Data[idx] == 0 || labels[idx] != 0 {
					continue
				}
				nextLabel++
				labels[idx] = nextLabel
				stack = append(stack[:0], [3]int{x, y, t})
				count := 0
				for len(stack) > 0 {
					c := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					count++
					for _, off := range neighborOffsets {
						nx, ny, nt := c[0]+off[0], c[1]+off[1], c[2]+off[2]
						if nx < 0 || nx >= v.Nx || ny < 0 || ny >= v.Ny || nt < 0 || nt >= v.Nt {
							continue
						}
						nidx := v.index(nx, ny, nt)
						if v.Data[nidx] == 0 || labels[nidx] != 0 {
							continue
						}
						labels[nidx] = nextLabel
						stack = append(stack, [3]int{nx, ny, nt})
					}
				}
				_ = count
			}
		}
	}

	v.Data = labels
	v.NObjects = nextLabel
	v.Volume = make([]int, nextLabel)
	for _, l := range labels {
		if l > 0 {
			v.Volume[l-1]++
		}
	}
}

// SiftObjects renumbers the volume's labels in place: newToOld[j] (0-based,
// j in [0,nNew)) gives the old 1-based label that becomes new label j+1;
// old labels not present in newToOld become 0 (background). Volume is
// rebuilt to match.
func (v *IntVolume) SiftObjects(newToOld []int) {
	remap := make([]int, v.NObjects+1)
	for j, old := range newToOld {
		remap[old] = j + 1
	}
	for i, l := range v.Data {
		if l > 0 {
			v.Data[i] = remap[l]
		}
	}
	v.NObjects = len(newToOld)
	v.Volume = make([]int, v.NObjects)
	for _, l := range v.Data {
		if l > 0 {
			v.Volume[l-1]++
		}
	}
}

// TossSmallObjects drops every label whose cell count is below minVolume,
// then densely renumbers the survivors in their original label order.
func (v *IntVolume) TossSmallObjects(minVolume int) {
	var newToOld []int
	for k := 1; k <= v.NObjects; k++ {
		if v.Volume[k-1] >= minVolume {
			newToOld = append(newToOld, k)
		}
	}
	v.SiftObjects(newToOld)
}

// Select returns a binary mask of cells equal to the 1-based label k.
func (v *IntVolume) Select(k int) *IntVolume {
	out := NewIntVolume(v.Nx, v.Ny, v.Nt)
	for i, l := range v.Data {
		if l == k {
			out.Data[i] = 1
		}
	}
	return out
}

// SelectCluster returns a binary mask of cells whose label is in ids (a
// set of 1-based labels).
func (v *IntVolume) SelectCluster(ids []int) *IntVolume {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	out := NewIntVolume(v.Nx, v.Ny, v.Nt)
	for i, l := range v.Data {
		if l != 0 && set[l] {
			out.Data[i] = 1
		}
	}
	return out
}

// ConstTSlice returns the full 2D slice at time t as an nt=1 volume.
func (v *IntVolume) ConstTSlice(t int) *IntVolume {
	out := NewIntVolume(v.Nx, v.Ny, 1)
	for y := 0; y < v.Ny; y++ {
		for x := 0; x < v.Nx; x++ {
			out.Set(x, y, 0, v.At(x, y, t))
		}
	}
	return out
}

// ConstTMask returns a binary mask of label k at time t, as an nt=1 volume.
func (v *IntVolume) ConstTMask(t, k int) *IntVolume {
	out := NewIntVolume(v.Nx, v.Ny, 1)
	for y := 0; y < v.Ny; y++ {
		for x := 0; x < v.Nx; x++ {
			if v.At(x, y, t) == k {
				out.Set(x, y, 0, 1)
			}
		}
	}
	return out
}

// ZeroBorder forces the outer n cells of every spatial slice to 0, in
// place. Supplements the core spec per original MtdIntFile::zero_border.
func (v *IntVolume) ZeroBorder(n int) {
	if n <= 0 {
		return
	}
	for t := 0; t < v.Nt; t++ {
		for y := 0; y < v.Ny; y++ {
			for x := 0; x < v.Nx; x++ {
				if x < n || x >= v.Nx-n || y < n || y >= v.Ny-n {
					v.Set(x, y, t, 0)
				}
			}
		}
	}
}

// Fatten dilates a binary nt=1 slice mask by one cell in each of the four
// cardinal directions. Supplements the core spec per original
// MtdIntFile::fatten, used only for the 2D per-time-slice display mask.
func (v *IntVolume) Fatten() *IntVolume {
	if v.Nt != 1 {
		panic("mtdvol.IntVolume.Fatten: requires nt == 1")
	}
	out := NewIntVolume(v.Nx, v.Ny, 1)
	for y := 0; y < v.Ny; y++ {
		for x := 0; x < v.Nx; x++ {
			if v.At(x, y, 0) == 0 {
				continue
			}
			out.Set(x, y, 0, 1)
			if x+1 < v.Nx {
				out.Set(x+1, y, 0, 1)
			}
			if x-1 >= 0 {
				out.Set(x-1, y, 0, 1)
			}
			if y+1 < v.Ny {
				out.Set(x, y+1, 0, 1)
			}
			if y-1 >= 0 {
				out.Set(x, y-1, 0, 1)
			}
		}
	}
	return out
}

// SplitConstT labels each time slice independently with 2D (4-)connected
// component labeling, used only to populate the 2D per-time-slice
// attribute table with its own object identifiers, distinct from the 3D
// object IDs. Supplements the core spec per original MtdIntFile::split_const_t.
func (v *IntVolume) SplitConstT() (out *IntVolume, nShapes int) {
	out = NewIntVolume(v.Nx, v.Ny, v.Nt)
	label := 0
	for t := 0; t < v.Nt; t++ {
		visited := make([]bool, v.Nx*v.Ny)
		for y := 0; y < v.Ny; y++ {
			for x := 0; x < v.Nx; x++ {
				li := y*v.Nx + x
				if v.At(x, y, t) == 0 || visited[li] {
					continue
				}
				label++
				visited[li] = true
				out.Set(x, y, t, label)
				stack := [][2]int{{x, y}}
				for len(stack) > 0 {
					c := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					for _, off := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
						nx, ny := c[0]+off[0], c[1]+off[1]
						if nx < 0 || nx >= v.Nx || ny < 0 || ny >= v.Ny {
							continue
						}
						ni := ny*v.Nx + nx
						if v.At(nx, ny, t) == 0 || visited[ni] {
							continue
						}
						visited[ni] = true
						out.Set(nx, ny, t, label)
						stack = append(stack, [2]int{nx, ny})
					}
				}
			}
		}
	}
	out.NObjects = label
	return out, label
}

// Calc3DMoments returns the raw first- and second-order moments over all
// non-zero cells, using cell indices (x, y, t) as coordinates.
func (v *IntVolume) Calc3DMoments() Moments3D {
	var m Moments3D
	for t := 0; t < v.Nt; t++ {
		for y := 0; y < v.Ny; y++ {
			for x := 0; x < v.Nx; x++ {
				if v.At(x, y, t) != 0 {
					m.Add(x, y, t)
				}
			}
		}
	}
	return m
}

// Calc3DBBox returns the axis-aligned bounding box over all non-zero
// cells. If the volume has no non-zero cells, ok is false.
func (v *IntVolume) Calc3DBBox() (xMin, xMax, yMin, yMax, tMin, tMax int, ok bool) {
	xMin, yMin, tMin = v.Nx, v.Ny, v.Nt
	xMax, yMax, tMax = -1, -1, -1
	for t := 0; t < v.Nt; t++ {
		for y := 0; y < v.Ny; y++ {
			for x := 0; x < v.Nx; x++ {
				if v.At(x, y, t) == 0 {
					continue
				}
				ok = true
				if x < xMin {
					xMin = x
				}
				if x > xMax {
					xMax = x
				}
				if y < yMin {
					yMin = y
				}
				if y > yMax {
					yMax = y
				}
				if t < tMin {
					tMin = t
				}
				if t > tMax {
					tMax = t
				}
			}
		}
	}
	return
}

// Calc2DCentroidAtT returns the 2D centroid of non-zero cells at time t.
// ok is false if the slice at t is empty.
func (v *IntVolume) Calc2DCentroidAtT(t int) (xbar, ybar float64, ok bool) {
	var sx, sy float64
	var n int
	for y := 0; y < v.Ny; y++ {
		for x := 0; x < v.Nx; x++ {
			if v.At(x, y, t) != 0 {
				sx += float64(x)
				sy += float64(y)
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	return sx / float64(n), sy / float64(n), true
}

// TotalVolume returns the sum of all recorded object volumes.
func (v *IntVolume) TotalVolume() int {
	total := 0
	for _, c := range v.Volume {
		total += c
	}
	return total
}

// DenseArray converts the volume's flat data into a sparse.DenseArrayInt
// of shape (nt, ny, nx), matching the dense staging buffer used by the
// NetCDF I/O layer.
func (v *IntVolume) DenseArray() *sparse.DenseArrayInt {
	arr := sparse.ZerosDenseInt(v.Nt, v.Ny, v.Nx)
	for t := 0; t < v.Nt; t++ {
		for y := 0; y < v.Ny; y++ {
			for x := 0; x < v.Nx; x++ {
				arr.Set(v.At(x, y, t), t, y, x)
			}
		}
	}
	return arr
}
