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
	"math"

	"gonum.org/v1/gonum/mat"
)

// Moments3D accumulates the first- and second-order raw sums of an
// indicator-selected set of 3D grid cells, and derives centroid,
// velocity, and spatial-axis statistics from them.
type Moments3D struct {
	N                          int
	Sx, Sy, St                 float64
	Sxx, Syy, Stt, Sxy, Sxt, Syt float64
}

// Add folds one cell (x, y, t) with indicator weight 1 into the moments.
func (m *Moments3D) Add(x, y, t int) {
	fx, fy, ft := float64(x), float64(y), float64(t)
	m.N++
	m.Sx += fx
	m.Sy += fy
	m.St += ft
	m.Sxx += fx * fx
	m.Syy += fy * fy
	m.Stt += ft * ft
	m.Sxy += fx * fy
	m.Sxt += fx * ft
	m.Syt += fy * ft
}

// Centroid returns the first-moment mean position (Xbar, Ybar, Tbar).
func (m *Moments3D) Centroid() (xbar, ybar, tbar float64) {
	if m.N == 0 {
		return 0, 0, 0
	}
	n := float64(m.N)
	return m.Sx / n, m.Sy / n, m.St / n
}

// Central returns a new Moments3D whose second-order sums are centralized
// (i.e. computed about the centroid rather than the origin), following
// the standard sum-of-squares decentralizing identity
// Sxx' = Sxx - Sx*Sx/N.
func (m *Moments3D) Central() Moments3D {
	c := *m
	if m.N == 0 {
		return c
	}
	n := float64(m.N)
	c.Sxx = m.Sxx - m.Sx*m.Sx/n
	c.Syy = m.Syy - m.Sy*m.Sy/n
	c.Stt = m.Stt - m.St*m.St/n
	c.Sxy = m.Sxy - m.Sx*m.Sy/n
	c.Sxt = m.Sxt - m.Sx*m.St/n
	c.Syt = m.Syt - m.Sy*m.St/n
	return c
}

// Velocity returns the 3D velocity (Vx, Vy) derived from centralized
// sums. If there are fewer than 2 cells or the time extent collapses to a
// single instant (central Stt == 0), both components are 0 by convention.
func (m *Moments3D) Velocity() (vx, vy float64) {
	if m.N < 2 {
		return 0, 0
	}
	c := m.Central()
	if c.Stt == 0 {
		return 0, 0
	}
	return c.Sxt / c.Stt, c.Syt / c.Stt
}

// AxisAngle returns the spatial axis angle in degrees, the direction of
// the principal eigenvector of the 2D spatial covariance matrix
// [[Sxx,Sxy],[Sxy,Syy]] (summed over all time), folded into the
// half-open interval (-90, 90].
func (m *Moments3D) AxisAngle() float64 {
	c := m.Central()
	if c.Sxx == 0 && c.Syy == 0 && c.Sxy == 0 {
		return foldAxisAngle(0)
	}
	sym := mat.NewSymDense(2, []float64{c.Sxx, c.Sxy, c.Sxy, c.Syy})
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return foldAxisAngle(0)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Pick the eigenvector belonging to the larger eigenvalue: that is
	// the principal (major) axis.
	col := 0
	if values[1] > values[0] {
		col = 1
	}
	vx := vectors.At(0, col)
	vy := vectors.At(1, col)
	angle := math.Atan2(vy, vx) * 180.0 / math.Pi
	return foldAxisAngle(angle)
}

// foldAxisAngle folds an angle in degrees into the half-open interval
// (-90, 90], matching the original engine's fold formula
// a := a + 180*floor((90-a)/180).
func foldAxisAngle(a float64) float64 {
	return a + 180.0*math.Floor((90.0-a)/180.0)
}
