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

// Package grid supplies the geographic-grid collaborator that the core
// verification engine depends on but does not implement itself: the
// mapping between grid-cell coordinates and latitude/longitude, and
// great-circle distance between two points.
package grid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
)

// earthRadiusKm is the mean radius used for great-circle distance, matching
// the constant used throughout the MET verification tools.
const earthRadiusKm = 6371.2

// Grid is an immutable (nx, ny) grid backed by a map projection. It
// implements xy_to_latlon, latlon_to_xy and gc_dist for the core package.
type Grid struct {
	Nx, Ny int

	forward, inverse proj.Transformer // projected-meters <-> lon/lat degrees
	originX, originY float64          // projected-space origin of cell (0,0)
	dx, dy           float64          // projected-space cell size
}

// New creates a Grid over an nx by ny domain using sr to convert between
// projected (x, y) meters and longitude/latitude degrees, with the grid's
// cell (0,0) centered at (originX, originY) in projected coordinates and
// cells dx by dy meters in size. sr may be nil, in which case the grid's
// projected coordinates are treated as longitude/latitude degrees directly.
func New(nx, ny int, sr *proj.SR, originX, originY, dx, dy float64) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("grid.New: invalid dimensions %dx%d", nx, ny)
	}
	if dx == 0 || dy == 0 {
		return nil, fmt.Errorf("grid.New: zero cell size")
	}
	g := &Grid{Nx: nx, Ny: ny, originX: originX, originY: originY, dx: dx, dy: dy}
	if sr != nil {
		fwd, inv, err := sr.Transformers()
		if err != nil {
			return nil, fmt.Errorf("grid.New: %w", err)
		}
		g.forward, g.inverse = fwd, inv
	}
	return g, nil
}

// XYToLatLon converts fractional grid-cell coordinates to a latitude and
// longitude in degrees.
func (g *Grid) XYToLatLon(x, y float64) (lat, lon float64, err error) {
	px := g.originX + x*g.dx
	py := g.originY + y*g.dy
	if g.inverse == nil {
		// No projection configured: treat projected coordinates as
		// degrees directly (plate carree passthrough).
		return py, px, nil
	}
	lon, lat, err = g.inverse(px, py)
	if err != nil {
		return 0, 0, fmt.Errorf("grid.Grid.XYToLatLon: %w", err)
	}
	return lat, lon, nil
}

// LatLonToXY is the inverse of XYToLatLon.
func (g *Grid) LatLonToXY(lat, lon float64) (x, y float64, err error) {
	if g.forward == nil {
		return (lon - g.originX) / g.dx, (lat - g.originY) / g.dy, nil
	}
	px, py, err := g.forward(lon, lat)
	if err != nil {
		return 0, 0, fmt.Errorf("grid.Grid.LatLonToXY: %w", err)
	}
	x = (px - g.originX) / g.dx
	y = (py - g.originY) / g.dy
	return x, y, nil
}

// GCDist returns the great-circle distance, in kilometers, between two
// (lat, lon) points given in degrees.
func GCDist(lat1, lon1, lat2, lon2 float64) float64 {
	const deg2rad = math.Pi / 180.0
	phi1 := lat1 * deg2rad
	phi2 := lat2 * deg2rad
	dPhi := (lat2 - lat1) * deg2rad
	dLambda := (lon2 - lon1) * deg2rad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Equal reports whether two grids have matching dimensions and cell
// geometry, used by the driver to enforce the forecast/observation grid
// match post-condition.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.Nx == o.Nx && g.Ny == o.Ny &&
		g.originX == o.originX && g.originY == o.originY &&
		g.dx == o.dx && g.dy == o.dy
}
