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
	"fmt"
	"io"
	"os"

	"github.com/spatialmodel/mtd/mtdatt"
)

// singleHeader3D is the 20-column header for the 3D single-object
// attribute table, matching mtdatt.SingleAtt3D.WriteTextRow's column
// order exactly.
var singleHeader3D = []string{
	"OBJECT_ID", "OBJECT_CAT", "CENTROID_X", "CENTROID_Y", "CENTROID_T",
	"CENTROID_LAT", "CENTROID_LON", "XVEL", "YVEL", "AXIS_ANG",
	"VOLUME", "START_T", "END_T", "CDIST_TRAVELLED",
	"P10", "P25", "P50", "P75", "P90", "PUSER",
}

// pairHeader3D is the 13-column header for the 3D pair attribute table.
var pairHeader3D = []string{
	"OBJECT_ID", "OBJECT_CAT", "CENTROID_DIST", "CENTROID_T_DELTA",
	"AXIS_DIFF", "SPEED_DELTA", "DIRECTION_DIFF", "VOLUME_RATIO",
	"START_T_DELTA", "END_T_DELTA", "INTERSECTION_VOLUME",
	"DURATION_DIFF", "TOTAL_INTEREST",
}

// header2D is the header for the 2D per-time-slice shape table.
var header2D = []string{
	"OBJECT_ID", "TIME_INDEX", "CENTROID_X", "CENTROID_Y", "AREA", "DISPLAY_AREA",
}

func writeRow(w io.Writer, cols []string) error {
	for i, c := range cols {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%-20s", c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeHeader(w io.Writer, cols []string) error {
	return writeRow(w, cols)
}

// WriteSingleAttText writes the 3D single-object attribute table to path.
func WriteSingleAttText(path string, rows []mtdatt.SingleAtt3D) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mtdio.WriteSingleAttText: %w", err)
	}
	defer f.Close()
	if err := writeHeader(f, singleHeader3D); err != nil {
		return fmt.Errorf("mtdio.WriteSingleAttText: %w", err)
	}
	for i := range rows {
		if err := writeRow(f, rows[i].WriteTextRow()); err != nil {
			return fmt.Errorf("mtdio.WriteSingleAttText: %w", err)
		}
	}
	return nil
}

// WritePairAttText writes the 3D pair attribute table to path.
func WritePairAttText(path string, rows []mtdatt.PairAtt3D) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mtdio.WritePairAttText: %w", err)
	}
	defer f.Close()
	if err := writeHeader(f, pairHeader3D); err != nil {
		return fmt.Errorf("mtdio.WritePairAttText: %w", err)
	}
	for i := range rows {
		if err := writeRow(f, rows[i].WriteTextRow()); err != nil {
			return fmt.Errorf("mtdio.WritePairAttText: %w", err)
		}
	}
	return nil
}

// Shape2D is one row of the 2D per-time-slice shape table, supplementing
// the 3D attribute tables with per-slice shape information the original
// engine's do_2d_att_flag output provides.
type Shape2D struct {
	ObjectID   string
	TimeIndex  int
	Xbar, Ybar float64
	Area       int

	// DisplayArea is the cell count of the shape's mask after Fatten(),
	// a slightly enlarged display-only mask distinct from Area.
	DisplayArea int
}

// WriteShape2DText writes the 2D per-time-slice shape table to path.
func WriteShape2DText(path string, rows []Shape2D) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mtdio.WriteShape2DText: %w", err)
	}
	defer f.Close()
	if err := writeHeader(f, header2D); err != nil {
		return fmt.Errorf("mtdio.WriteShape2DText: %w", err)
	}
	for _, r := range rows {
		cols := []string{
			r.ObjectID,
			fmt.Sprintf("%d", r.TimeIndex),
			fmt.Sprintf("%.2f", r.Xbar),
			fmt.Sprintf("%.2f", r.Ybar),
			fmt.Sprintf("%d", r.Area),
			fmt.Sprintf("%d", r.DisplayArea),
		}
		if err := writeRow(f, cols); err != nil {
			return fmt.Errorf("mtdio.WriteShape2DText: %w", err)
		}
	}
	return nil
}
