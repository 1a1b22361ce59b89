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

import "fmt"

// FOGraph is a bipartite graph between nFcst forecast vertices and nObs
// observation vertices, with a boolean nFcst x nObs edge matrix.
type FOGraph struct {
	nFcst, nObs int
	edges       []bool // row-major, nFcst x nObs
}

// NewFOGraph allocates an FOGraph with all edges false.
func NewFOGraph(nFcst, nObs int) *FOGraph {
	return &FOGraph{nFcst: nFcst, nObs: nObs, edges: make([]bool, nFcst*nObs)}
}

// SetSize reallocates the graph to the given size, clearing all edges.
func (g *FOGraph) SetSize(nFcst, nObs int) {
	g.nFcst, g.nObs = nFcst, nObs
	g.edges = make([]bool, nFcst*nObs)
}

// NFcst returns the number of forecast vertices.
func (g *FOGraph) NFcst() int { return g.nFcst }

// NObs returns the number of observation vertices.
func (g *FOGraph) NObs() int { return g.nObs }

// NTotal returns nFcst + nObs, the size of the combined ID space shared
// with Partition.
func (g *FOGraph) NTotal() int { return g.nFcst + g.nObs }

// FIndex returns the compound index of forecast vertex j.
func (g *FOGraph) FIndex(j int) int { return j }

// OIndex returns the compound index of observation vertex k.
func (g *FOGraph) OIndex(k int) int { return g.nFcst + k }

func (g *FOGraph) checkBounds(j, k int) {
	if j < 0 || j >= g.nFcst || k < 0 || k >= g.nObs {
		panic(fmt.Sprintf("mtdmatch.FOGraph: index (%d,%d) out of bounds for %dx%d", j, k, g.nFcst, g.nObs))
	}
}

// SetFOEdge sets the edge between forecast j and observation k to true.
func (g *FOGraph) SetFOEdge(j, k int) {
	g.checkBounds(j, k)
	g.edges[j*g.nObs+k] = true
}

// HasFOEdge reports whether the edge between forecast j and observation k
// is set.
func (g *FOGraph) HasFOEdge(j, k int) bool {
	g.checkBounds(j, k)
	return g.edges[j*g.nObs+k]
}
