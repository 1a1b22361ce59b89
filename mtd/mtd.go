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

// Package mtd implements a space-time object-based verification engine:
// it compares a forecast field and an observation field defined on the
// same grid over a sequence of time steps, identifies matching space-time
// objects, and reports their attributes.
//
// It is a from-scratch Go rendition of the long-standing MODE Time Domain
// tool from NOAA/NCAR's Model Evaluation Tools suite, restructured around
// Go idioms: explicit error returns, small composable packages (grid,
// mtdvol, mtdatt, mtdmatch, mtdio, mtdutil), and a CLI built on cobra.
package mtd

// Version is the data-format version recorded in volumes persisted by
// Save and checked by Load. NetCDF output records mtdio.DataVersion instead.
const Version = "1.0.0"
