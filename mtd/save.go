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
	"encoding/gob"
	"fmt"
	"io"

	"github.com/spatialmodel/mtd/mtdvol"
)

// versionedVolumes is the gob-encoded payload written by Save and read by
// Load: the two convolved-and-thresholded object volumes plus the data
// version that produced them, so a later Load can refuse an incompatible
// file rather than silently misinterpreting it.
type versionedVolumes struct {
	DataVersion string
	Fcst, Obs   *mtdvol.IntVolume
}

// Save writes fcst and obs, the split object volumes for the forecast and
// observation sides, to w in gob format, tagged with the current package
// Version.
func Save(w io.Writer, fcst, obs *mtdvol.IntVolume) error {
	if fcst == nil || obs == nil {
		return fmt.Errorf("mtd.Save: fcst and obs volumes must both be non-nil")
	}
	data := versionedVolumes{DataVersion: Version, Fcst: fcst, Obs: obs}
	if err := gob.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("mtd.Save: %w", err)
	}
	return nil
}

// Load reads a file previously written by Save from r, returning its
// forecast and observation object volumes. It refuses files written by an
// incompatible data version.
func Load(r io.Reader) (fcst, obs *mtdvol.IntVolume, err error) {
	var data versionedVolumes
	if err := gob.NewDecoder(r).Decode(&data); err != nil {
		return nil, nil, fmt.Errorf("mtd.Load: %w", err)
	}
	if data.DataVersion != Version {
		return nil, nil, fmt.Errorf("mtd.Load: data version %s is not compatible with required version %s", data.DataVersion, Version)
	}
	return data.Fcst, data.Obs, nil
}
