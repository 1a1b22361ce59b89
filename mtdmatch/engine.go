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

package mtdmatch

// MatchMergeEngine owns a bipartite forecast/observation interest graph
// and a partition over the combined ID space, and derives the composite
// (cluster) structure from them.
//
// By design the engine only ever merges a forecast vertex with an
// observation vertex it shares an edge with: it never adds direct
// fcst-fcst or obs-obs edges. Composites consisting of only forecasts or
// only observations can still arise, but purely as the transitive
// closure of edges through a shared partner on the other side. This is
// intentional, preserved from the original engine's design, and produces
// sometimes-surprising topology (e.g. two observations merge only
// because they happen to share a forecast) — see the design notes.
type MatchMergeEngine struct {
	graph *FOGraph
	part  *Partition

	nComposites int
	compToEq    []int // partition class index for each composite, in insertion order
}

// NewMatchMergeEngine returns an engine with no vertices yet; call
// SetSize before use.
func NewMatchMergeEngine() *MatchMergeEngine {
	return &MatchMergeEngine{graph: NewFOGraph(0, 0), part: NewPartition()}
}

// SetSize sizes the forecast/observation graph and seeds the partition
// with NTotal() singleton classes {0}, {1}, ....
func (e *MatchMergeEngine) SetSize(nFcst, nObs int) {
	e.graph.SetSize(nFcst, nObs)
	e.part = NewPartition()
	for i := 0; i < e.graph.NTotal(); i++ {
		e.part.AddNoRepeat(i)
	}
	e.nComposites = 0
	e.compToEq = nil
}

// SetFOEdge records an edge between forecast j and observation k,
// intended to be called whenever the computed total interest for that
// pair meets or exceeds the configured threshold.
func (e *MatchMergeEngine) SetFOEdge(j, k int) {
	e.graph.SetFOEdge(j, k)
}

// HasFOEdge reports whether an edge was recorded between forecast j and
// observation k.
func (e *MatchMergeEngine) HasFOEdge(j, k int) bool {
	return e.graph.HasFOEdge(j, k)
}

// DoMatchMerge merges the partition along every recorded fcst-obs edge,
// then enumerates the resulting composites: classes of size >= 2, in
// partition class-insertion order.
func (e *MatchMergeEngine) DoMatchMerge() {
	for j := 0; j < e.graph.NFcst(); j++ {
		for k := 0; k < e.graph.NObs(); k++ {
			if e.graph.HasFOEdge(j, k) {
				e.part.MergeValues(e.graph.FIndex(j), e.graph.OIndex(k))
			}
		}
	}

	// fcst, fcst -- intentionally no direct edges are ever added here.
	// obs, obs   -- intentionally no direct edges are ever added here.

	e.compToEq = nil
	for i := 0; i < e.part.NClasses(); i++ {
		if len(e.part.ClassMembers(i)) >= 2 {
			e.compToEq = append(e.compToEq, i)
		}
	}
	e.nComposites = len(e.compToEq)
}

// NComposites returns the number of composites found by the last
// DoMatchMerge call.
func (e *MatchMergeEngine) NComposites() int {
	return e.nComposites
}

// compositeMembers splits the partition class backing composite c into
// its 0-based fcst and obs members.
func (e *MatchMergeEngine) compositeMembers(c int) (fcstIDs, obsIDs []int) {
	nFcst := e.graph.NFcst()
	for _, m := range e.part.ClassMembers(e.compToEq[c]) {
		if m < nFcst {
			fcstIDs = append(fcstIDs, m)
		} else {
			obsIDs = append(obsIDs, m-nFcst)
		}
	}
	return fcstIDs, obsIDs
}

// FcstComposite returns the 0-based forecast IDs belonging to composite c.
func (e *MatchMergeEngine) FcstComposite(c int) []int {
	f, _ := e.compositeMembers(c)
	return f
}

// ObsComposite returns the 0-based observation IDs belonging to composite c.
func (e *MatchMergeEngine) ObsComposite(c int) []int {
	_, o := e.compositeMembers(c)
	return o
}

// CompositeWithFcst returns the composite index containing forecast j
// (0-based), or -1 if j's partition class has size 1 (it is not part of
// any composite).
func (e *MatchMergeEngine) CompositeWithFcst(j int) int {
	return e.mapToComposite(e.graph.FIndex(j))
}

// CompositeWithObs returns the composite index containing observation k
// (0-based), or -1 analogously.
func (e *MatchMergeEngine) CompositeWithObs(k int) int {
	return e.mapToComposite(e.graph.OIndex(k))
}

// MapFcstIDToComposite is semantically identical to CompositeWithFcst;
// kept as a distinct operation because it is called separately by
// attribute back-annotation, matching the original engine's API surface.
func (e *MatchMergeEngine) MapFcstIDToComposite(j int) int {
	return e.CompositeWithFcst(j)
}

// MapObsIDToComposite is semantically identical to CompositeWithObs.
func (e *MatchMergeEngine) MapObsIDToComposite(k int) int {
	return e.CompositeWithObs(k)
}

func (e *MatchMergeEngine) mapToComposite(compoundIdx int) int {
	classIdx := e.part.WhichClass(compoundIdx)
	for c, eq := range e.compToEq {
		if eq == classIdx {
			return c
		}
	}
	return -1
}
