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

// Package mtdvol implements the gridded-volume layer of the verification
// engine: FloatVolume (raw and convolved fields, thresholding) and
// IntVolume (binary masks and labeled 3D objects), plus the Moments3D
// statistics carrier they both feed into attribute computation.
package mtdvol
