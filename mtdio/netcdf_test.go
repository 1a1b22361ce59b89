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

package mtdio

import (
	"testing"

	"github.com/ctessum/sparse"
)

func TestFirstShapeReturnsFloatShape(t *testing.T) {
	arr := sparse.ZerosDense(2, 3, 4)
	vars := []ncVar{{name: "x", floatData: arr}}
	shape := firstShape(vars)
	if len(shape) != 3 || shape[0] != 2 || shape[1] != 3 || shape[2] != 4 {
		t.Errorf("firstShape = %v, want [2 3 4]", shape)
	}
}

func TestFirstShapeFallsBackToIntShape(t *testing.T) {
	arr := sparse.ZerosDenseInt(5, 6)
	vars := []ncVar{{name: "x", intData: arr}}
	shape := firstShape(vars)
	if len(shape) != 2 || shape[0] != 5 || shape[1] != 6 {
		t.Errorf("firstShape = %v, want [5 6]", shape)
	}
}

func TestFirstShapeEmpty(t *testing.T) {
	if got := firstShape(nil); got != nil {
		t.Errorf("firstShape(nil) = %v, want nil", got)
	}
}

func TestWriteNCNoOpWhenNoVariablesRequested(t *testing.T) {
	err := WriteNC(t.TempDir()+"/out.nc", "model", "desc", "obtype", OutputVolumes{}, OutputVolumes{}, false, false, false, false)
	if err != nil {
		t.Errorf("WriteNC with nothing selected should no-op, got error: %v", err)
	}
}
