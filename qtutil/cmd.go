/*
Copyright © 2017 the quadtree authors.
This file is part of quadtree.

quadtree is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

quadtree is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with quadtree.  If not, see <http://www.gnu.org/licenses/>.
*/

package qtutil

import (
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/quadtree"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives progress messages and warnings.
var Log logrus.FieldLogger = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	gridFlags := []*pflag.FlagSet{buildCmd.Flags()}

	// Options are the configuration options available to quadtree.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "grid_file",
			usage: `
              grid_file specifies the location of the binary quadtree
              grid file. It is written by the build and mask commands
              and read by the mask, export and info commands.`,
			shorthand:  "g",
			defaultVal: "quadtree.qtr",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags(), maskCmd.Flags(), exportCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "x0",
			usage: `
              x0 specifies the X coordinate of the lower-left corner
              of the grid.`,
			defaultVal: 0.0,
			flagsets:   gridFlags,
		},
		{
			name: "y0",
			usage: `
              y0 specifies the Y coordinate of the lower-left corner
              of the grid.`,
			defaultVal: 0.0,
			flagsets:   gridFlags,
		},
		{
			name: "dx",
			usage: `
              dx specifies the X edge length of the coarsest grid cells,
              in the units of the grid coordinate system.`,
			defaultVal: 100.0,
			flagsets:   gridFlags,
		},
		{
			name: "dy",
			usage: `
              dy specifies the Y edge length of the coarsest grid cells,
              in the units of the grid coordinate system.`,
			defaultVal: 100.0,
			flagsets:   gridFlags,
		},
		{
			name: "nmax",
			usage: `
              nmax specifies the number of rows of coarsest grid cells.`,
			defaultVal: 10,
			flagsets:   gridFlags,
		},
		{
			name: "mmax",
			usage: `
              mmax specifies the number of columns of coarsest grid cells.`,
			defaultVal: 10,
			flagsets:   gridFlags,
		},
		{
			name: "rotation",
			usage: `
              rotation specifies the counter-clockwise rotation of the
              grid around its lower-left corner, in degrees.`,
			defaultVal: 0.0,
			flagsets:   gridFlags,
		},
		{
			name: "epsg",
			usage: `
              epsg specifies the EPSG code of the grid coordinate system.
              0 means that the grid has no coordinate system. Mask
              shapefile polygons are converted to this system. Codes
              without a known definition are stored in the grid but
              can't be used for conversion or projection files unless
              they are listed in projections.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags(), maskCmd.Flags()},
		},
		{
			name: "projections",
			usage: `
              projections specifies additional coordinate system
              definitions in the format "epsg:proj4", for example
              "2154:+proj=lcc +lat_1=49 +lat_2=44 +lat_0=46.5 +lon_0=3
              +x_0=700000 +y_0=6600000 +ellps=GRS80 +units=m +no_defs".
              Definitions contain spaces and often commas, so they are
              best given as a list in the configuration file.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "refinement_polygons",
			usage: `
              refinement_polygons specifies a list of polygon files
              and the levels to refine the grid to inside of them, in
              the format "file:level". Files can be GeoJSON or
              shapefiles. Shapefile polygons are converted to the grid
              coordinate system.`,
			defaultVal: []string{},
			flagsets:   gridFlags,
		},
		{
			name: "elevation_file",
			usage: `
              elevation_file specifies the location of a netcdf
              elevation raster to sample onto the grid. If empty, the
              grid has no elevation.`,
			defaultVal: "",
			flagsets:   gridFlags,
		},
		{
			name: "mask.zmin",
			usage: `
              mask.zmin specifies the lowest elevation of initially
              active cells.`,
			defaultVal: -99999.0,
			flagsets:   []*pflag.FlagSet{maskCmd.Flags()},
		},
		{
			name: "mask.zmax",
			usage: `
              mask.zmax specifies the highest elevation of initially
              active cells. If it is not greater than mask.zmin, only
              cells in the include polygons are active.`,
			defaultVal: 99999.0,
			flagsets:   []*pflag.FlagSet{maskCmd.Flags()},
		},
		{
			name: "mask.include",
			usage: `
              mask.include specifies polygon files in which cells are
              made active.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{maskCmd.Flags()},
		},
		{
			name: "mask.exclude",
			usage: `
              mask.exclude specifies polygon files in which cells are
              made inactive.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{maskCmd.Flags()},
		},
		{
			name: "mask.open_boundary",
			usage: `
              mask.open_boundary specifies polygon files in which active
              cells at the edge of the active area are open boundaries.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{maskCmd.Flags()},
		},
		{
			name: "mask.outflow_boundary",
			usage: `
              mask.outflow_boundary specifies polygon files in which
              active cells at the edge of the active area are outflow
              boundaries.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{maskCmd.Flags()},
		},
		{
			name: "mask_file",
			usage: `
              mask_file specifies the location of the flow mask file.
              It is written by the mask command and read by the export
              command.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{maskCmd.Flags(), exportCmd.Flags()},
		},
		{
			name: "wave_mask_file",
			usage: `
              wave_mask_file specifies the location of the wave mask
              file. If empty, no wave mask is created, and the snapwave
              export treats all cells as active.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{maskCmd.Flags(), exportCmd.Flags()},
		},
		{
			name: "cut_inactive",
			usage: `
              cut_inactive specifies whether to remove cells that are
              inactive in all masks and save the reduced grid.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{maskCmd.Flags()},
		},
		{
			name: "export.dir",
			usage: `
              export.dir specifies the directory that exported files are
              written to.`,
			shorthand:  "o",
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "export.formats",
			usage: `
              export.formats specifies the export formats. Options are
              shp, ugrid, snapwave, geojson and png. snapwave writes the
              wave model mesh of the cells active in wave_mask_file.
              geojson requires mask_file.`,
			defaultVal: []string{"shp", "ugrid"},
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "export.mask_option",
			usage: `
              export.mask_option specifies which mask cells are exported
              as points: all, include, open or outflow.`,
			defaultVal: "all",
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "export.image_size",
			usage: `
              export.image_size specifies the width and height in pixels
              of the png mesh image.`,
			defaultVal: []int{1024, 768},
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("QUADTREE")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
			case bool:
				set.Bool(option.name, option.defaultVal.(bool), option.usage)
			case int:
				set.Int(option.name, option.defaultVal.(int), option.usage)
			case []int:
				set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
			case float64:
				set.Float64(option.name, option.defaultVal.(float64), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(buildCmd)
	Root.AddCommand(maskCmd)
	Root.AddCommand(exportCmd)
	Root.AddCommand(infoCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("quadtree: problem reading configuration file: %v", err)
		}
	}
	return registerProjections(Cfg.GetStringSlice("projections"))
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "quadtree",
	Short: "Build quadtree meshes for coastal models.",
	Long: `quadtree builds multi-resolution quadtree meshes for coastal flow and
wave models. Use the subcommands specified below to build a grid, create
masks for it, export it to other formats or summarize it.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'QUADTREE_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version of the quadtree file format written by this program.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("quadtree file format v%d\n", quadtree.Version)
	},
	DisableAutoGenTag: true,
}

// buildCmd is a command that creates and saves a new quadtree grid.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a quadtree grid",
	Long: `build creates a quadtree grid as specified by the information in the
configuration file, optionally samples elevation onto it, and saves it to
grid_file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := GridConfig(Cfg)
		if err != nil {
			return err
		}
		return Build(expand(Cfg.GetString("grid_file")), expand(Cfg.GetString("elevation_file")), c)
	},
	DisableAutoGenTag: true,
}

// maskCmd is a command that creates masks for a grid.
var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Create masks for a quadtree grid",
	Long: `mask creates a flow mask and optionally a wave mask for the grid in
grid_file and saves them to mask_file and wave_mask_file. If cut_inactive is
set, cells that are inactive in all masks are removed from the grid, and
the reduced grid is saved to grid_file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := MaskConfig(Cfg)
		if err != nil {
			return err
		}
		return Mask(
			expand(Cfg.GetString("grid_file")),
			expand(Cfg.GetString("mask_file")),
			expand(Cfg.GetString("wave_mask_file")),
			c, Cfg.GetBool("cut_inactive"))
	},
	DisableAutoGenTag: true,
}

// exportCmd is a command that writes a grid in other formats.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a quadtree grid",
	Long: `export writes the grid in grid_file, and the mask in mask_file if
there is one, to export.dir in each of export.formats. The snapwave format
is a mesh connecting the centres of the cells active in wave_mask_file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ExportConfig(Cfg)
		if err != nil {
			return err
		}
		return Export(expand(Cfg.GetString("grid_file")), expand(Cfg.GetString("mask_file")), c)
	},
	DisableAutoGenTag: true,
}

// infoCmd is a command that summarizes a grid.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize a quadtree grid",
	Long:  `info logs the number of cells in each level and the elevation range of the grid in grid_file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := Info(expand(Cfg.GetString("grid_file")))
		return err
	},
	DisableAutoGenTag: true,
}
