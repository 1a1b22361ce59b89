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

// Command mtd is a command-line interface for the space-time
// object-based verification engine.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/mtd/mtd"
	"github.com/spatialmodel/mtd/mtdutil"
)

func main() {
	cfg := mtdutil.InitializeConfig()
	cfg.SetRunE(run)

	if err := cfg.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cfg *mtdutil.Cfg) error {
	rc, err := mtdutil.FromCfg(cfg, mtd.DefaultInterestFunctions())
	if err != nil {
		return err
	}
	for _, w := range mtdutil.Warnings() {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	fcstFiles := cfg.GetStringSlice("fcst")
	obsFiles := cfg.GetStringSlice("obs")
	if len(fcstFiles) == 0 || len(obsFiles) == 0 {
		return fmt.Errorf("mtd: --fcst and --obs must each name at least one file")
	}

	d := mtd.NewDriver(rc, fcstFiles, obsFiles)
	if path := cfg.GetString("log"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("mtd: opening log file: %w", err)
		}
		defer f.Close()
		d.Log.SetOutput(f)
	}
	if lvl := cfg.GetString("v"); lvl != "" {
		if parsed, err := logrus.ParseLevel(lvl); err == nil {
			d.Log.SetLevel(parsed)
		}
	}
	return d.Run(rc.OutDir, rc.OutputPrefix)
}
