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
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/spatialmodel/mtd/mtdvol"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	fcst := mtdvol.NewIntVolume(2, 2, 1)
	fcst.Set(0, 0, 0, 1)
	fcst.NObjects = 1
	fcst.Volume = []int{1}

	obs := mtdvol.NewIntVolume(2, 2, 1)
	obs.Set(1, 1, 0, 1)
	obs.NObjects = 1
	obs.Volume = []int{1}

	var buf bytes.Buffer
	if err := Save(&buf, fcst, obs); err != nil {
		t.Fatal(err)
	}

	gotFcst, gotObs, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if gotFcst.At(0, 0, 0) != 1 {
		t.Errorf("round-tripped fcst cell (0,0,0) = %d, want 1", gotFcst.At(0, 0, 0))
	}
	if gotObs.At(1, 1, 0) != 1 {
		t.Errorf("round-tripped obs cell (1,1,0) = %d, want 1", gotObs.At(1, 1, 0))
	}
	if gotFcst.NObjects != 1 || gotObs.NObjects != 1 {
		t.Error("NObjects did not survive round trip")
	}
}

func TestSaveRejectsNilVolume(t *testing.T) {
	var buf bytes.Buffer
	if err := Save(&buf, nil, mtdvol.NewIntVolume(1, 1, 1)); err == nil {
		t.Error("expected error saving with a nil volume")
	}
}

func TestLoadRejectsIncompatibleVersion(t *testing.T) {
	var buf bytes.Buffer
	data := versionedVolumes{
		DataVersion: "incompatible-version",
		Fcst:        mtdvol.NewIntVolume(1, 1, 1),
		Obs:         mtdvol.NewIntVolume(1, 1, 1),
	}
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(&buf); err == nil {
		t.Error("expected error loading data saved under a different version")
	}
}
