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

// Package mtdutil provides the configuration loading and CLI command
// tree for the mtd verification engine, following the declarative
// options-table pattern used throughout the ancestor project this
// module's CLI plumbing is adapted from.
package mtdutil

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds all configuration for one mtd run.
type Cfg struct {
	*viper.Viper

	inputFiles  []string
	outputFiles []string

	Root, versionCmd, runCmd *cobra.Command
}

// SetRunE attaches the handler for the "run" subcommand. It is set by
// main rather than by InitializeConfig so that mtdutil does not need to
// import the driver package that actually runs the engine.
func (cfg *Cfg) SetRunE(fn func(cfg *Cfg) error) {
	cfg.runCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return fn(cfg)
	}
}

// InputFiles returns the names of the configuration options that are
// input file names.
func (cfg *Cfg) InputFiles() []string { return cfg.inputFiles }

// OutputFiles returns the names of the configuration options that are
// output file names.
func (cfg *Cfg) OutputFiles() []string { return cfg.outputFiles }

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
	isInputFile            bool
	isOutputFile           bool
}

// Version is the mtd release version reported by the "version" subcommand.
const Version = "1.0.0"

// InitializeConfig builds the cobra command tree and declarative options
// table, binds every option to pflag and viper, and returns the resulting
// Cfg. Mirrors the ancestor project's InitializeConfig.
func InitializeConfig() *Cfg {
	cfg := &Cfg{Viper: viper.New()}

	cfg.Root = &cobra.Command{
		Use:   "mtd",
		Short: "A space-time object-based verification engine.",
		Long: `mtd compares a forecast field and an observation field defined on the
same grid over a sequence of time steps, identifies matching space-time
objects, and reports their attributes as text tables and NetCDF output.

Configuration can be set via a configuration file (--config), command-line
flags, or environment variables prefixed with MTD_.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setConfig(cfg)
		},
	}

	cfg.versionCmd = &cobra.Command{
		Use:               "version",
		Short:             "Print the version number",
		DisableAutoGenTag: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("mtd v%s\n", Version)
		},
	}

	cfg.runCmd = &cobra.Command{
		Use:               "run",
		Short:             "Run the verification engine.",
		Long:              "run reads forecast and observation fields, computes objects and attributes, and writes the configured outputs.",
		DisableAutoGenTag: true,
	}

	cfg.Root.AddCommand(cfg.versionCmd, cfg.runCmd)

	options := []option{
		{name: "config", usage: "config specifies the configuration file location.", defaultVal: "", isInputFile: true, flagsets: []*pflag.FlagSet{cfg.Root.PersistentFlags()}},
		{name: "fcst", usage: "fcst specifies one or more forecast field files.", defaultVal: []string{}, isInputFile: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obs", usage: "obs specifies one or more observation field files.", defaultVal: []string{}, isInputFile: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "single", usage: "single is accepted but not applied: there is no single-field mode, and run requires --fcst and --obs.", defaultVal: []string{}, isInputFile: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "outdir", usage: "outdir specifies the output directory.", defaultVal: ".", isOutputFile: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "log", usage: "log specifies the log file path (empty means stderr).", defaultVal: "", isOutputFile: true, flagsets: []*pflag.FlagSet{cfg.Root.PersistentFlags()}},
		{name: "v", usage: "v specifies the log verbosity level.", defaultVal: "info", flagsets: []*pflag.FlagSet{cfg.Root.PersistentFlags()}},
		{name: "output_prefix", usage: "output_prefix is prepended to output filenames.", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},

		{name: "model", usage: "model is the free-text model name recorded in output headers.", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "desc", usage: "desc is a free-text description recorded in output headers.", defaultVal: "NA", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obtype", usage: "obtype is the free-text observation type recorded in output headers.", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},

		{name: "fcst.conv_radius", usage: "fcst.conv_radius is the forecast spatial convolution radius, in grid cells.", defaultVal: 0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obs.conv_radius", usage: "obs.conv_radius is the observation spatial convolution radius, in grid cells.", defaultVal: 0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "fcst.conv_time_beg", usage: "fcst.conv_time_beg is the forecast temporal convolution window start offset (<=0).", defaultVal: 0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "fcst.conv_time_end", usage: "fcst.conv_time_end is the forecast temporal convolution window end offset (>=0).", defaultVal: 0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obs.conv_time_beg", usage: "obs.conv_time_beg is the observation temporal convolution window start offset (<=0).", defaultVal: 0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obs.conv_time_end", usage: "obs.conv_time_end is the observation temporal convolution window end offset (>=0).", defaultVal: 0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "fcst.conv_thresh", usage: "fcst.conv_thresh is the forecast threshold, e.g. '>3.0'.", defaultVal: ">0.0", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obs.conv_thresh", usage: "obs.conv_thresh is the observation threshold, e.g. '>3.0'.", defaultVal: ">0.0", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "fcst.vld_thresh", usage: "fcst.vld_thresh is the minimum valid-data fraction required of a forecast convolution neighborhood.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obs.vld_thresh", usage: "obs.vld_thresh is the minimum valid-data fraction required of an observation convolution neighborhood.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},

		{name: "min_volume", usage: "min_volume is the minimum object cell count; smaller objects are discarded.", defaultVal: 1, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "zero_border_size", usage: "zero_border_size zeros out this many cells at the edge of every spatial slice before splitting.", defaultVal: 0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "inten_perc_value", usage: "inten_perc_value is the user-chosen intensity percentile, in [0,100].", defaultVal: 50, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "area_thresh", usage: "area_thresh optionally discards objects whose cell-count volume fails this comparison, e.g. '>=100', applied after min_volume toss.", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "inten_thresh", usage: "inten_thresh optionally discards objects whose inten_perc_value intensity percentile fails this comparison, e.g. '>=10.0', applied after min_volume toss.", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},

		{name: "weight.space_centroid_dist", usage: "weight.space_centroid_dist is the interest weight for spatial centroid distance.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "weight.time_centroid_delta", usage: "weight.time_centroid_delta is the interest weight for time centroid delta.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "weight.speed_delta", usage: "weight.speed_delta is the interest weight for speed delta.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "weight.direction_diff", usage: "weight.direction_diff is the interest weight for direction difference.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "weight.volume_ratio", usage: "weight.volume_ratio is the interest weight for volume ratio.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "weight.axis_angle_diff", usage: "weight.axis_angle_diff is the interest weight for axis-angle difference.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "weight.start_time_delta", usage: "weight.start_time_delta is the interest weight for start-time delta.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "weight.end_time_delta", usage: "weight.end_time_delta is the interest weight for end-time delta.", defaultVal: 0.0, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},

		{name: "total_interest_thresh", usage: "total_interest_thresh is the minimum total interest for an fcst-obs edge to be admitted, in [0,1].", defaultVal: 0.7, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},

		{name: "nc_output", usage: "nc_output enables NetCDF object-file output.", defaultVal: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "nc_output.latlon_flag", usage: "nc_output.latlon_flag writes lat/lon variables.", defaultVal: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "nc_output.raw_flag", usage: "nc_output.raw_flag writes raw field variables.", defaultVal: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "nc_output.object_id_flag", usage: "nc_output.object_id_flag writes object-ID variables.", defaultVal: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "nc_output.cluster_id_flag", usage: "nc_output.cluster_id_flag writes cluster-ID variables.", defaultVal: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},

		{name: "txt_output.do_2d_att_flag", usage: "txt_output.do_2d_att_flag writes the 2D per-time-slice attribute table.", defaultVal: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "txt_output.do_3d_att_flag", usage: "txt_output.do_3d_att_flag writes the 3D single/pair attribute tables.", defaultVal: true, flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},

		{name: "fcst_mask_grid", usage: "fcst_mask_grid names a forecast masking grid (currently accepted but not applied).", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "fcst_mask_poly", usage: "fcst_mask_poly names a forecast masking polygon file (currently accepted but not applied).", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obs_mask_grid", usage: "obs_mask_grid names an observation masking grid (currently accepted but not applied).", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
		{name: "obs_mask_poly", usage: "obs_mask_poly names an observation masking polygon file (currently accepted but not applied).", defaultVal: "", flagsets: []*pflag.FlagSet{cfg.runCmd.Flags()}},
	}

	cfg.SetEnvPrefix("MTD")
	cfg.AutomaticEnv()

	for _, opt := range options {
		if opt.isInputFile {
			cfg.inputFiles = append(cfg.inputFiles, opt.name)
		}
		if opt.isOutputFile {
			cfg.outputFiles = append(cfg.outputFiles, opt.name)
		}
		for i, set := range opt.flagsets {
			if i != 0 {
				set.AddFlag(opt.flagsets[0].Lookup(opt.name))
				continue
			}
			switch v := opt.defaultVal.(type) {
			case string:
				set.String(opt.name, v, opt.usage)
			case []string:
				set.StringSlice(opt.name, v, opt.usage)
			case bool:
				set.Bool(opt.name, v, opt.usage)
			case int:
				set.Int(opt.name, v, opt.usage)
			case float64:
				set.Float64(opt.name, v, opt.usage)
			default:
				panic(fmt.Errorf("mtdutil: invalid option default type: %T", opt.defaultVal))
			}
			cfg.BindPFlag(opt.name, set.Lookup(opt.name))
		}
	}

	return cfg
}

// setConfig reads in the configuration file named by --config, if any.
func setConfig(cfg *Cfg) error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("mtdutil: problem reading configuration file: %w", err)
		}
	}
	return nil
}
