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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/mtd/mtdatt"
	"github.com/spatialmodel/mtd/mtdio"
	"github.com/spatialmodel/mtd/mtdmatch"
	"github.com/spatialmodel/mtd/mtdutil"
	"github.com/spatialmodel/mtd/mtdvol"
)

// Driver runs one end-to-end verification: read, convolve, threshold,
// split, attribute, match/merge, and emit.
type Driver struct {
	Log *logrus.Logger
	Cfg *mtdutil.RunConfig

	FcstFiles, ObsFiles []string
}

// NewDriver returns a Driver with a default logrus logger.
func NewDriver(cfg *mtdutil.RunConfig, fcstFiles, obsFiles []string) *Driver {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Driver{Log: log, Cfg: cfg, FcstFiles: fcstFiles, ObsFiles: obsFiles}
}

// side holds one side's (forecast or observation) intermediate products
// as the pipeline progresses.
type side struct {
	name string
	raw  *mtdvol.FloatVolume
	mask *mtdvol.IntVolume // after threshold + zero-border
	obj  *mtdvol.IntVolume // after split + toss

	att []mtdatt.SingleAtt3D // 0-based, index i holds object i+1's attributes
}

// Run executes the full pipeline and writes the configured outputs to
// outDir, with filenames prefixed by outputPrefix. The labeled object
// volumes produced by convolve/threshold/split/toss/filter are cached on
// disk next to the other outputs (see objectCachePath); a valid cache hit
// skips straight to attribute computation on a re-run with the same
// outDir/outputPrefix.
func (d *Driver) Run(outDir, outputPrefix string) error {
	start := time.Now()
	d.Log.Infof("mtd %s starting", Version)

	cachedFcstObj, cachedObsObj := d.loadObjectCache(outDir, outputPrefix)

	fcst, err := d.prepareSide("fcst", d.FcstFiles, d.Cfg.Fcst, cachedFcstObj)
	if err != nil {
		return err
	}
	obs, err := d.prepareSide("obs", d.ObsFiles, d.Cfg.Obs, cachedObsObj)
	if err != nil {
		return err
	}
	if !fcst.raw.Grid.Equal(obs.raw.Grid) {
		return fmt.Errorf("mtd.Driver.Run: fcst and obs grids do not match")
	}

	if cachedFcstObj == nil || cachedObsObj == nil {
		d.saveObjectCache(outDir, outputPrefix, fcst.obj, obs.obj)
	}

	d.Log.Infof("fcst: %d simple objects, obs: %d simple objects", len(fcst.att), len(obs.att))

	ic, err := d.buildInterestCalculator()
	if err != nil {
		return fmt.Errorf("mtd.Driver.Run: %w", err)
	}

	pairs, engine, err := d.matchMerge(fcst, obs, ic)
	if err != nil {
		return err
	}
	d.Log.Infof("found %d composites", engine.NComposites())

	clusterSingles, clusterPairs, fcstClusterObj, obsClusterObj, err := d.buildClusters(fcst, obs, engine)
	if err != nil {
		return err
	}

	if err := d.writeOutputs(outDir, outputPrefix, fcst, obs, pairs, clusterSingles, clusterPairs, fcstClusterObj, obsClusterObj); err != nil {
		return err
	}

	d.Log.Infof("mtd finished in %s", time.Since(start))
	return nil
}

// prepareSide reads, convolves, thresholds, zero-borders, splits, tosses,
// filters, and computes per-object attributes for one side. If cached is
// non-nil it is used in place of recomputing the labeled object volume
// (convolve through the area/intensity filter are all skipped).
func (d *Driver) prepareSide(name string, files []string, sc mtdutil.SideConfig, cached *mtdvol.IntVolume) (*side, error) {
	d.Log.Infof("%s: reading %d file(s)", name, len(files))
	raw, err := mtdio.ReadSeries(files)
	if err != nil {
		return nil, fmt.Errorf("mtd.Driver.Run: %s: %w", name, err)
	}

	var mask, obj *mtdvol.IntVolume
	if cached != nil {
		d.Log.Infof("%s: using cached object volume (%d objects)", name, cached.NObjects)
		mask, obj = cached, cached
	} else {
		conv, err := raw.Convolve(sc.ConvRadius, sc.ConvTimeBeg, sc.ConvTimeEnd, sc.ValidThreshold)
		if err != nil {
			return nil, fmt.Errorf("mtd.Driver.Run: %s: %w", name, err)
		}

		mask = conv.Threshold(sc.ConvThresh)
		mask.ZeroBorder(d.Cfg.ZeroBorderSize)

		obj = mask
		obj.Split()
		d.Log.Infof("%s: %d objects before volume toss", name, obj.NObjects)
		obj.TossSmallObjects(d.Cfg.MinVolume)
		d.Log.Infof("%s: %d objects after volume toss", name, obj.NObjects)

		d.filterByAreaIntensity(obj, raw)
		d.Log.Infof("%s: %d objects after area/intensity filter", name, obj.NObjects)
	}

	isFcst := name == "fcst"
	att := make([]mtdatt.SingleAtt3D, obj.NObjects)
	for k := 1; k <= obj.NObjects; k++ {
		single := obj.Select(k)
		a, err := mtdatt.CalcSingleAtt3D(single, raw, raw.Grid, k, isFcst, true, d.Cfg.IntenPercValue)
		if err != nil {
			return nil, fmt.Errorf("mtd.Driver.Run: %s object %d: %w", name, k, err)
		}
		att[k-1] = a
	}

	return &side{name: name, raw: raw, mask: mask, obj: obj, att: att}, nil
}

// filterByAreaIntensity drops every object in obj that fails a configured
// area_thresh (cell-count volume) or inten_thresh (user-percentile
// intensity) comparison, then densely renumbers the survivors. No-op if
// neither threshold is configured. Applied after TossSmallObjects and
// before attribute computation, per the original engine's secondary
// object-size/intensity gating.
func (d *Driver) filterByAreaIntensity(obj *mtdvol.IntVolume, raw *mtdvol.FloatVolume) {
	if !d.Cfg.AreaThreshSet && !d.Cfg.IntenThreshSet {
		return
	}
	var newToOld []int
	for k := 1; k <= obj.NObjects; k++ {
		if d.Cfg.AreaThreshSet && !d.Cfg.AreaThresh.Satisfies(float64(obj.Volume[k-1])) {
			continue
		}
		if d.Cfg.IntenThreshSet {
			v := mtdatt.IntensityPercentile(obj.Select(k), raw, float64(d.Cfg.IntenPercValue))
			if !d.Cfg.IntenThresh.Satisfies(v) {
				continue
			}
		}
		newToOld = append(newToOld, k)
	}
	obj.SiftObjects(newToOld)
}

// objectCachePath is the gob-encoded cache file holding both sides'
// post-filter labeled object volumes for a given outDir/outputPrefix.
func objectCachePath(outDir, outputPrefix string) string {
	return filepath.Join(outDir, outputPrefix+"objects.cache")
}

// loadObjectCache returns the cached fcst and obs object volumes for this
// outDir/outputPrefix, or nil, nil if no usable cache exists.
func (d *Driver) loadObjectCache(outDir, outputPrefix string) (fcstObj, obsObj *mtdvol.IntVolume) {
	path := objectCachePath(outDir, outputPrefix)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()
	fcstObj, obsObj, err = Load(f)
	if err != nil {
		d.Log.Warnf("mtd: ignoring incompatible object cache %s: %v", path, err)
		return nil, nil
	}
	d.Log.Infof("mtd: loaded object cache %s", path)
	return fcstObj, obsObj
}

// saveObjectCache writes fcst and obs's labeled object volumes to the
// cache file for this outDir/outputPrefix. Failures are logged, not
// fatal: the cache is a re-run optimization, not a required output.
func (d *Driver) saveObjectCache(outDir, outputPrefix string, fcstObj, obsObj *mtdvol.IntVolume) {
	path := objectCachePath(outDir, outputPrefix)
	f, err := os.Create(path)
	if err != nil {
		d.Log.Warnf("mtd: could not write object cache %s: %v", path, err)
		return
	}
	defer f.Close()
	if err := Save(f, fcstObj, obsObj); err != nil {
		d.Log.Warnf("mtd: could not write object cache %s: %v", path, err)
	}
}

// buildInterestCalculator assembles an InterestCalculator from the
// configured weights and interest-term functions.
func (d *Driver) buildInterestCalculator() (*mtdatt.InterestCalculator, error) {
	ic := mtdatt.NewInterestCalculator()
	for name, wf := range d.Cfg.Weights {
		sel, ok := interestSelectors[name]
		if !ok {
			return nil, fmt.Errorf("mtd.buildInterestCalculator: unrecognized interest term %q", name)
		}
		if err := ic.Add(name, wf.Weight, wf.Function, sel); err != nil {
			return nil, err
		}
	}
	if err := ic.Check(); err != nil {
		return nil, err
	}
	return ic, nil
}

// matchMerge computes the pair attributes and total interest for every
// (fcst, obs) simple-object pair concurrently, admits an edge to the
// match-merge engine for every pair at or above the configured interest
// threshold, and runs the merge.
func (d *Driver) matchMerge(fcst, obs *side, ic *mtdatt.InterestCalculator) ([]mtdatt.PairAtt3D, *mtdmatch.MatchMergeEngine, error) {
	nFcst, nObs := len(fcst.att), len(obs.att)
	pairs := make([]mtdatt.PairAtt3D, nFcst*nObs)

	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	total := nFcst * nObs
	wg.Add(nprocs)
	for p := 0; p < nprocs; p++ {
		go func(p int) {
			defer wg.Done()
			for idx := p; idx < total; idx += nprocs {
				j, k := idx/nObs, idx%nObs
				fcstMask := fcst.obj.Select(j + 1)
				obsMask := obs.obj.Select(k + 1)
				pa := mtdatt.CalcPairAtt3D(fcstMask, obsMask, &fcst.att[j], &obs.att[k])
				pa.TotalInterest = ic.Eval(&pa)
				pairs[idx] = pa
			}
		}(p)
	}
	wg.Wait()

	engine := mtdmatch.NewMatchMergeEngine()
	engine.SetSize(nFcst, nObs)
	for idx, pa := range pairs {
		if pa.TotalInterest >= d.Cfg.TotalInterestThresh {
			j, k := idx/nObs, idx%nObs
			engine.SetFOEdge(j, k)
		}
	}
	engine.DoMatchMerge()

	for j := range fcst.att {
		if c := engine.CompositeWithFcst(j); c >= 0 {
			fcst.att[j].ClusterNumber = c + 1
		}
	}
	for k := range obs.att {
		if c := engine.CompositeWithObs(k); c >= 0 {
			obs.att[k].ClusterNumber = c + 1
		}
	}
	for idx := range pairs {
		j, k := idx/nObs, idx%nObs
		pairs[idx].FcstClusterNumber = fcst.att[j].ClusterNumber
		pairs[idx].ObsClusterNumber = obs.att[k].ClusterNumber
	}

	return pairs, engine, nil
}

// buildClusters computes, for every composite found by the match-merge
// engine, its merged object mask and SingleAtt3D per side, and, when the
// composite has members on both sides, one PairAtt3D between its fcst
// cluster and its obs cluster. Pairs between clusters of different
// composites are not computed.
func (d *Driver) buildClusters(fcst, obs *side, engine *mtdmatch.MatchMergeEngine) (singles []mtdatt.SingleAtt3D, pairs []mtdatt.PairAtt3D, fcstClusterObj, obsClusterObj *mtdvol.IntVolume, err error) {
	fcstClusterObj = mtdvol.NewIntVolume(fcst.obj.Nx, fcst.obj.Ny, fcst.obj.Nt)
	obsClusterObj = mtdvol.NewIntVolume(obs.obj.Nx, obs.obj.Ny, obs.obj.Nt)

	for c := 0; c < engine.NComposites(); c++ {
		fcstIDs := engine.FcstComposite(c)
		obsIDs := engine.ObsComposite(c)

		var fcstAtt, obsAtt *mtdatt.SingleAtt3D
		if len(fcstIDs) > 0 {
			mask := fcst.obj.SelectCluster(idsPlusOne(fcstIDs))
			stampCluster(fcstClusterObj, mask, c+1)
			a, aerr := mtdatt.CalcSingleAtt3D(mask, fcst.raw, fcst.raw.Grid, c+1, true, false, d.Cfg.IntenPercValue)
			if aerr != nil {
				return nil, nil, nil, nil, fmt.Errorf("mtd.buildClusters: fcst cluster %d: %w", c+1, aerr)
			}
			a.ClusterNumber = c + 1
			singles = append(singles, a)
			fcstAtt = &singles[len(singles)-1]
		}
		if len(obsIDs) > 0 {
			mask := obs.obj.SelectCluster(idsPlusOne(obsIDs))
			stampCluster(obsClusterObj, mask, c+1)
			a, aerr := mtdatt.CalcSingleAtt3D(mask, obs.raw, obs.raw.Grid, c+1, false, false, d.Cfg.IntenPercValue)
			if aerr != nil {
				return nil, nil, nil, nil, fmt.Errorf("mtd.buildClusters: obs cluster %d: %w", c+1, aerr)
			}
			a.ClusterNumber = c + 1
			singles = append(singles, a)
			obsAtt = &singles[len(singles)-1]
		}
		if fcstAtt != nil && obsAtt != nil {
			fcstMask := fcst.obj.SelectCluster(idsPlusOne(fcstIDs))
			obsMask := obs.obj.SelectCluster(idsPlusOne(obsIDs))
			pairs = append(pairs, mtdatt.CalcPairAtt3D(fcstMask, obsMask, fcstAtt, obsAtt))
		}
	}
	return singles, pairs, fcstClusterObj, obsClusterObj, nil
}

func idsPlusOne(ids []int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = id + 1
	}
	return out
}

func stampCluster(dst, mask *mtdvol.IntVolume, clusterID int) {
	for i, v := range mask.Data {
		if v != 0 {
			dst.Data[i] = clusterID
		}
	}
}

func (d *Driver) writeOutputs(outDir, outputPrefix string, fcst, obs *side, pairs []mtdatt.PairAtt3D, clusterSingles []mtdatt.SingleAtt3D, clusterPairs []mtdatt.PairAtt3D, fcstClusterObj, obsClusterObj *mtdvol.IntVolume) error {
	prefix := filepath.Join(outDir, outputPrefix)

	if d.Cfg.TxtOutput.Do3DAtt {
		allSingles := append(append([]mtdatt.SingleAtt3D{}, fcst.att...), obs.att...)
		allSingles = append(allSingles, clusterSingles...)
		if err := mtdio.WriteSingleAttText(prefix+"3d_single_att.txt", allSingles); err != nil {
			return fmt.Errorf("mtd.Driver.Run: %w", err)
		}
		allPairs := append(append([]mtdatt.PairAtt3D{}, pairs...), clusterPairs...)
		if err := mtdio.WritePairAttText(prefix+"3d_pair_att.txt", allPairs); err != nil {
			return fmt.Errorf("mtd.Driver.Run: %w", err)
		}
	}

	if d.Cfg.TxtOutput.Do2DAtt {
		if err := d.write2DAtt(prefix, fcst, obs); err != nil {
			return err
		}
	}

	if d.Cfg.NCOutput.Enabled {
		fcstOut := mtdio.OutputVolumes{Raw: fcst.raw, ObjectID: fcst.obj, ClusterID: fcstClusterObj}
		obsOut := mtdio.OutputVolumes{Raw: obs.raw, ObjectID: obs.obj, ClusterID: obsClusterObj}
		if d.Cfg.NCOutput.LatLon {
			fcstOut.Lat, fcstOut.Lon = latLonVolumes(fcst.raw)
			obsOut.Lat, obsOut.Lon = latLonVolumes(obs.raw)
		}
		if err := mtdio.WriteNC(prefix+"obj.nc", d.Cfg.Model, d.Cfg.Desc, d.Cfg.Obtype, fcstOut, obsOut,
			d.Cfg.NCOutput.LatLon, d.Cfg.NCOutput.Raw, d.Cfg.NCOutput.ObjectID, d.Cfg.NCOutput.ClusterID); err != nil {
			return fmt.Errorf("mtd.Driver.Run: %w", err)
		}
	}
	return nil
}

// shapeRows computes one Shape2D row per distinct 2D shape in each time
// slice of obj, labeled independently via SplitConstT. Each shape's
// centroid and area are computed only from that shape's own cells, and
// its mask is fattened per the original engine's fatten()-before-emit
// convention to populate the display-only DisplayArea column.
func shapeRows(sideName string, obj *mtdvol.IntVolume) []mtdio.Shape2D {
	var rows []mtdio.Shape2D
	shapes, _ := obj.SplitConstT()
	for t := 0; t < shapes.Nt; t++ {
		slice := shapes.ConstTSlice(t)
		seen := map[int]bool{}
		for _, lbl := range slice.Data {
			if lbl == 0 || seen[lbl] {
				continue
			}
			seen[lbl] = true

			mask := mtdvol.NewIntVolume(slice.Nx, slice.Ny, 1)
			area := 0
			var sx, sy float64
			for i, v := range slice.Data {
				if v != lbl {
					continue
				}
				mask.Data[i] = 1
				area++
				sx += float64(i % slice.Nx)
				sy += float64(i / slice.Nx)
			}
			if area == 0 {
				continue
			}

			displayArea := 0
			for _, v := range mask.Fatten().Data {
				if v != 0 {
					displayArea++
				}
			}

			rows = append(rows, mtdio.Shape2D{
				ObjectID:    fmt.Sprintf("%s_%d_%d", sideName, t, lbl),
				TimeIndex:   t,
				Xbar:        sx / float64(area),
				Ybar:        sy / float64(area),
				Area:        area,
				DisplayArea: displayArea,
			})
		}
	}
	return rows
}

// write2DAtt writes the per-time-slice 2D shape table, supplementing the
// 3D attribute tables per the original engine's do_2d_att_flag output.
func (d *Driver) write2DAtt(prefix string, fcst, obs *side) error {
	var rows []mtdio.Shape2D
	rows = append(rows, shapeRows(fcst.name, fcst.obj)...)
	rows = append(rows, shapeRows(obs.name, obs.obj)...)
	if err := mtdio.WriteShape2DText(prefix+"2d_att.txt", rows); err != nil {
		return fmt.Errorf("mtd.Driver.write2DAtt: %w", err)
	}
	return nil
}

func latLonVolumes(v *mtdvol.FloatVolume) (lat, lon *mtdvol.FloatVolume) {
	lat, _ = mtdvol.NewFloatVolume(v.Nx, v.Ny, v.Nt, v.Grid, v.DeltaT)
	lon, _ = mtdvol.NewFloatVolume(v.Nx, v.Ny, v.Nt, v.Grid, v.DeltaT)
	for y := 0; y < v.Ny; y++ {
		for x := 0; x < v.Nx; x++ {
			la, lo, err := v.Grid.XYToLatLon(float64(x), float64(y))
			if err != nil {
				continue
			}
			for t := 0; t < v.Nt; t++ {
				lat.Set(x, y, t, la)
				lon.Set(x, y, t, lo)
			}
		}
	}
	return lat, lon
}
