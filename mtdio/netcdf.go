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

// Package mtdio reads forecast and observation gridded fields from NetCDF
// files and writes the engine's NetCDF and text-table outputs.
package mtdio

import (
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/spatialmodel/mtd/grid"
	"github.com/spatialmodel/mtd/mtdvol"
)

// DataVersion is written to the "data_version" global attribute of every
// file this package writes. The readers in this package do not check it.
const DataVersion = "mtd-1"

// VarName is the variable holding the gridded field of interest within
// an input NetCDF file.
const VarName = "data"

// ReadVolume opens the NetCDF file at path and reads its VarName variable
// into a FloatVolume, using global attributes nx, ny, nt, x0, y0, dx, dy,
// delta_t_seconds, and valid_time_unix to populate the volume's grid and
// time metadata. This mirrors the attribute-driven layout the rest of the
// stack uses for gridded data, adapted from a 2D field (x, y) to this
// engine's 3D (t, y, x) field.
func ReadVolume(path string) (*mtdvol.FloatVolume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mtdio.ReadVolume: %w", err)
	}
	defer f.Close()

	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("mtdio.ReadVolume: %w", err)
	}

	getFloat := func(name string) float64 {
		a := nc.Header.GetAttribute("", name)
		if v, ok := a.([]float64); ok && len(v) > 0 {
			return v[0]
		}
		return 0
	}
	getInt := func(name string) int {
		a := nc.Header.GetAttribute("", name)
		if v, ok := a.([]int32); ok && len(v) > 0 {
			return int(v[0])
		}
		return 0
	}

	dims := nc.Header.Lengths(VarName)
	if len(dims) != 3 {
		return nil, fmt.Errorf("mtdio.ReadVolume: %s: expected 3 dimensions (t,y,x), got %d", path, len(dims))
	}
	nt, ny, nx := dims[0], dims[1], dims[2]

	deltaT := time.Duration(getInt("delta_t_seconds")) * time.Second
	if deltaT <= 0 {
		deltaT = time.Hour
	}

	var g *grid.Grid
	g, err = grid.New(nx, ny, nil, getFloat("x0"), getFloat("y0"), getFloat("dx"), getFloat("dy"))
	if err != nil {
		return nil, fmt.Errorf("mtdio.ReadVolume: %w", err)
	}

	v, err := mtdvol.NewFloatVolume(nx, ny, nt, g, deltaT)
	if err != nil {
		return nil, fmt.Errorf("mtdio.ReadVolume: %w", err)
	}
	if sec := getInt("valid_time_unix"); sec != 0 {
		v.ValidTime = time.Unix(int64(sec), 0).UTC()
	}
	v.LeadTime = make([]time.Duration, nt)
	for t := 0; t < nt; t++ {
		v.LeadTime[t] = time.Duration(t) * deltaT
	}

	r := nc.Reader(VarName, nil, nil)
	raw := make([]float32, nx*ny*nt)
	if _, err := r.Read(raw); err != nil {
		return nil, fmt.Errorf("mtdio.ReadVolume: reading %s: %w", VarName, err)
	}
	i := 0
	for t := 0; t < nt; t++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				v.Set(x, y, t, float64(raw[i]))
				i++
			}
		}
	}
	return v, nil
}

// ReadSeries reads paths, each a single time-slice NetCDF file holding a
// 2D (y,x) VarName variable and the same x0/y0/dx/dy/delta_t_seconds grid
// attributes, in the order given, and stacks them into one FloatVolume
// with Nt == len(paths). This is the common entry point for both the
// "fcst" and "obs" file-list configuration options, which each accept one
// file per valid time rather than one pre-combined volume file.
func ReadSeries(paths []string) (*mtdvol.FloatVolume, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("mtdio.ReadSeries: no files given")
	}

	var v *mtdvol.FloatVolume
	for i, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("mtdio.ReadSeries: %w", err)
		}
		nc, err := cdf.Open(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mtdio.ReadSeries: %w", err)
		}

		getFloat := func(name string) float64 {
			a := nc.Header.GetAttribute("", name)
			if v, ok := a.([]float64); ok && len(v) > 0 {
				return v[0]
			}
			return 0
		}
		getInt := func(name string) int {
			a := nc.Header.GetAttribute("", name)
			if v, ok := a.([]int32); ok && len(v) > 0 {
				return int(v[0])
			}
			return 0
		}

		dims := nc.Header.Lengths(VarName)
		if len(dims) != 2 {
			f.Close()
			return nil, fmt.Errorf("mtdio.ReadSeries: %s: expected 2 dimensions (y,x), got %d", path, len(dims))
		}
		ny, nx := dims[0], dims[1]

		if v == nil {
			deltaT := time.Duration(getInt("delta_t_seconds")) * time.Second
			if deltaT <= 0 {
				deltaT = time.Hour
			}
			g, err := grid.New(nx, ny, nil, getFloat("x0"), getFloat("y0"), getFloat("dx"), getFloat("dy"))
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("mtdio.ReadSeries: %w", err)
			}
			v, err = mtdvol.NewFloatVolume(nx, ny, len(paths), g, deltaT)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("mtdio.ReadSeries: %w", err)
			}
			v.LeadTime = make([]time.Duration, len(paths))
		} else if v.Nx != nx || v.Ny != ny {
			f.Close()
			return nil, fmt.Errorf("mtdio.ReadSeries: %s: grid %dx%d does not match preceding files' %dx%d", path, nx, ny, v.Nx, v.Ny)
		}

		if i == 0 {
			if sec := getInt("valid_time_unix"); sec != 0 {
				v.ValidTime = time.Unix(int64(sec), 0).UTC()
			}
		}
		v.LeadTime[i] = time.Duration(getInt("lead_time_seconds")) * time.Second

		r := nc.Reader(VarName, nil, nil)
		raw := make([]float32, nx*ny)
		_, err = r.Read(raw)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("mtdio.ReadSeries: reading %s: %w", path, err)
		}
		k := 0
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				v.Set(x, y, i, float64(raw[k]))
				k++
			}
		}
	}
	return v, nil
}

// ncVar names one output layer and whether it is float (Raw) or int
// (ObjectID/ClusterID) valued.
type ncVar struct {
	name        string
	description string
	floatData   *sparse.DenseArray
	intData     *sparse.DenseArrayInt
}

// OutputVolumes collects the optional NetCDF output layers for one side
// (forecast or observation), selected per mtdutil.NCOutputConfig.
type OutputVolumes struct {
	Raw       *mtdvol.FloatVolume
	ObjectID  *mtdvol.IntVolume
	ClusterID *mtdvol.IntVolume
	Lat, Lon  *mtdvol.FloatVolume // only written if LatLon is requested
}

// WriteNC writes fcst and obs output layers, plus global run metadata, to
// a single NetCDF file at path. The final write is wrapped with an
// exponential-backoff retry: NetCDF output commonly lands on shared or
// network filesystems where a transient write failure should not abort an
// otherwise-complete run.
func WriteNC(path, model, desc, obtype string, fcst, obs OutputVolumes, wantLatLon, wantRaw, wantObjectID, wantClusterID bool) error {
	var vars []ncVar
	addSide := func(side string, o OutputVolumes) {
		if wantRaw && o.Raw != nil {
			vars = append(vars, ncVar{name: side + "_raw", description: side + " raw field", floatData: o.Raw.DenseArray()})
		}
		if wantObjectID && o.ObjectID != nil {
			vars = append(vars, ncVar{name: side + "_obj_id", description: side + " simple object ID", intData: o.ObjectID.DenseArray()})
		}
		if wantClusterID && o.ClusterID != nil {
			vars = append(vars, ncVar{name: side + "_clus_id", description: side + " cluster object ID", intData: o.ClusterID.DenseArray()})
		}
		if wantLatLon && o.Lat != nil && o.Lon != nil {
			// Longitude is written negated (west-positive), as in the text tables.
			lon := o.Lon.DenseArray()
			for i, val := range lon.Elements {
				if val != mtdvol.Missing {
					lon.Elements[i] = -val
				}
			}
			vars = append(vars,
				ncVar{name: side + "_lat", description: side + " latitude", floatData: o.Lat.DenseArray()},
				ncVar{name: side + "_lon", description: side + " longitude, west-positive", floatData: lon},
			)
		}
	}
	addSide("fcst", fcst)
	addSide("obs", obs)

	if len(vars) == 0 {
		return nil
	}

	shape := firstShape(vars)

	op := func() error {
		return writeNCOnce(path, model, desc, obtype, shape, vars)
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("mtdio.WriteNC: %w", err)
	}
	return nil
}

func firstShape(vars []ncVar) []int {
	for _, v := range vars {
		if v.floatData != nil {
			return v.floatData.Shape
		}
		if v.intData != nil {
			return v.intData.Shape
		}
	}
	return nil
}

func writeNCOnce(path, model, desc, obtype string, shape []int, vars []ncVar) error {
	h := cdf.NewHeader([]string{"t", "y", "x"}, shape)
	h.AddAttribute("", "data_version", DataVersion)
	h.AddAttribute("", "model", model)
	h.AddAttribute("", "desc", desc)
	h.AddAttribute("", "obtype", obtype)

	for _, v := range vars {
		h.AddVariable(v.name, []string{"t", "y", "x"}, []float32{0})
		h.AddAttribute(v.name, "description", v.description)
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	nc, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("creating header: %w", err)
	}
	for _, v := range vars {
		var data32 []float32
		switch {
		case v.floatData != nil:
			data32 = make([]float32, len(v.floatData.Elements))
			for i, e := range v.floatData.Elements {
				data32[i] = float32(e)
			}
		case v.intData != nil:
			data32 = make([]float32, len(v.intData.Elements))
			for i, e := range v.intData.Elements {
				data32[i] = float32(e)
			}
		}
		end := nc.Header.Lengths(v.name)
		start := make([]int, len(end))
		w := nc.Writer(v.name, start, end)
		if _, err := w.Write(data32); err != nil {
			return fmt.Errorf("writing variable %s: %w", v.name, err)
		}
	}
	return cdf.UpdateNumRecs(f)
}
