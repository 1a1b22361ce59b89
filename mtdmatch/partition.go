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

// Package mtdmatch implements the bipartite forecast/observation
// interest graph and the union-find partition used to merge simple
// objects into composite clusters.
package mtdmatch

import (
	"fmt"
	"io"
)

// partClass is one equivalence class: an ordered set of member integers,
// preserving first-insertion order within the class.
type partClass struct {
	members []int
}

// Partition is a set of disjoint equivalence classes over a dynamically
// grown set of non-negative integers, iterated in class-insertion order.
// Each class is a slice of members plus a side index mapping a member
// back to its class, giving O(1) WhichClass lookups at the cost of an
// O(n) class-merge scan, matching the original engine's stated
// complexity targets for its own list-of-lists partition structure.
type Partition struct {
	classes    []*partClass
	classOf    map[int]int // value -> index into classes
}

// NewPartition returns an empty Partition.
func NewPartition() *Partition {
	return &Partition{classOf: make(map[int]int)}
}

// AddNoRepeat adds the singleton class {v} if v is not already present;
// no-op if it is.
func (p *Partition) AddNoRepeat(v int) {
	if _, ok := p.classOf[v]; ok {
		return
	}
	p.classes = append(p.classes, &partClass{members: []int{v}})
	p.classOf[v] = len(p.classes) - 1
}

// WhichClass returns the class index containing v, or panics if v is
// absent (a programmer error: every ID must be seeded via AddNoRepeat
// before being merged or queried).
func (p *Partition) WhichClass(v int) int {
	idx, ok := p.classOf[v]
	if !ok {
		panic(fmt.Sprintf("mtdmatch.Partition.WhichClass: value %d is not present", v))
	}
	return idx
}

// MergeValues replaces the two classes containing a and b with their
// union. No-op if a and b are already in the same class.
func (p *Partition) MergeValues(a, b int) {
	ca, cb := p.WhichClass(a), p.WhichClass(b)
	if ca == cb {
		return
	}
	// Merge the class with the larger index into the one with the
	// smaller index, preserving the smaller's insertion position and
	// appending the larger's members afterward; then remove the larger.
	lo, hi := ca, cb
	if lo > hi {
		lo, hi = hi, lo
	}
	p.classes[lo].members = append(p.classes[lo].members, p.classes[hi].members...)
	for _, m := range p.classes[hi].members {
		p.classOf[m] = lo
	}
	p.classes = append(p.classes[:hi], p.classes[hi+1:]...)
	for i := hi; i < len(p.classes); i++ {
		for _, m := range p.classes[i].members {
			p.classOf[m] = i
		}
	}
}

// NClasses returns the number of distinct classes currently present.
func (p *Partition) NClasses() int {
	return len(p.classes)
}

// ClassMembers returns the members of the class at insertion-order index
// i, in first-insertion order within the class.
func (p *Partition) ClassMembers(i int) []int {
	return p.classes[i].members
}

// SpecializedDump writes a textual dump of every non-singleton class,
// rendered as the sets of 0-based fcst IDs and 0-based obs IDs (with
// nFcst subtracted) it contains, matching the original engine's
// specialized_dump.
func (p *Partition) SpecializedDump(w io.Writer, nFcst, nObs int) error {
	for i, c := range p.classes {
		if len(c.members) <= 1 {
			continue
		}
		var fcstIDs, obsIDs []int
		for _, m := range c.members {
			if m < nFcst {
				fcstIDs = append(fcstIDs, m)
			} else {
				obsIDs = append(obsIDs, m-nFcst)
			}
		}
		if _, err := fmt.Fprintf(w, "class %d: fcst=%v obs=%v\n", i, fcstIDs, obsIDs); err != nil {
			return err
		}
	}
	return nil
}
