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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/quadtree"
	"github.com/spf13/cast"
)

// expand expands the environment variables in s.
func expand(s string) string { return os.ExpandEnv(s) }

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// GridConfig unmarshals a viper configuration for a quadtree grid.
func GridConfig(cfg *viper.Viper) (*quadtree.GridConfig, error) {
	c := &quadtree.GridConfig{
		X0:       cfg.GetFloat64("x0"),
		Y0:       cfg.GetFloat64("y0"),
		DX:       cfg.GetFloat64("dx"),
		DY:       cfg.GetFloat64("dy"),
		Rotation: cfg.GetFloat64("rotation"),
		NMax:     cfg.GetInt("nmax"),
		MMax:     cfg.GetInt("mmax"),
		EPSG:     cfg.GetInt("epsg"),
	}

	vars := []float64{c.DX, c.DY}
	varNames := []string{"dx", "dy"}
	for i, v := range vars {
		if !(v > 0) {
			return nil, fmt.Errorf("parsing grid configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	ivars := []int{c.NMax, c.MMax}
	varNames = []string{"nmax", "mmax"}
	for i, v := range ivars {
		if v <= 0 {
			return nil, fmt.Errorf("parsing grid configuration: %s=%d but should be >0", varNames[i], v)
		}
	}

	for _, entry := range expandStringSlice(cfg.GetStringSlice("refinement_polygons")) {
		file, level, err := parseRefinement(entry)
		if err != nil {
			return nil, fmt.Errorf("parsing grid configuration: refinement_polygons: %v", err)
		}
		polys, err := readPolygons(file, c.EPSG)
		if err != nil {
			return nil, err
		}
		for _, p := range polys {
			c.RefinementPolygons = append(c.RefinementPolygons, quadtree.RefinementPolygon{
				Polygonal: p.Polygonal,
				Level:     level,
				Zmin:      p.Zmin,
				Zmax:      p.Zmax,
			})
		}
	}
	return c, nil
}

// parseRefinement splits a refinement polygon entry in the format
// "file:level".
func parseRefinement(entry string) (file string, level int, err error) {
	i := strings.LastIndex(entry, ":")
	if i <= 0 {
		return "", 0, fmt.Errorf("entry %q should be in the format file:level", entry)
	}
	level, err = cast.ToIntE(strings.TrimSpace(entry[i+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("invalid level in entry %q: %v", entry, err)
	}
	if level < 0 {
		return "", 0, fmt.Errorf("negative level in entry %q", entry)
	}
	return strings.TrimSpace(entry[:i]), level, nil
}

// registerProjections adds the coordinate system definitions in
// entries, which are in the format "epsg:proj4".
func registerProjections(entries []string) error {
	for _, entry := range entries {
		i := strings.Index(entry, ":")
		if i <= 0 {
			return fmt.Errorf("parsing projections: entry %q should be in the format epsg:proj4", entry)
		}
		epsg, err := cast.ToIntE(strings.TrimSpace(entry[:i]))
		if err != nil {
			return fmt.Errorf("parsing projections: invalid EPSG code in entry %q: %v", entry, err)
		}
		if err = quadtree.RegisterProjDef(epsg, strings.TrimSpace(entry[i+1:])); err != nil {
			return err
		}
	}
	return nil
}

// MaskConfig unmarshals a viper configuration for grid masks. The mask
// polygons are converted to the coordinate system of the grid, which
// is not known until the grid is loaded, so shapefile polygons are
// read in the coordinate system given by the epsg configuration
// variable.
func MaskConfig(cfg *viper.Viper) (*quadtree.MaskConfig, error) {
	c := &quadtree.MaskConfig{
		Zmin: cfg.GetFloat64("mask.zmin"),
		Zmax: cfg.GetFloat64("mask.zmax"),
	}
	epsg := cfg.GetInt("epsg")
	for _, v := range []struct {
		name string
		dst  *[]quadtree.MaskPolygon
	}{
		{"mask.include", &c.Include},
		{"mask.exclude", &c.Exclude},
		{"mask.open_boundary", &c.OpenBoundary},
		{"mask.outflow_boundary", &c.OutflowBoundary},
	} {
		for _, file := range expandStringSlice(cfg.GetStringSlice(v.name)) {
			polys, err := readPolygons(file, epsg)
			if err != nil {
				return nil, fmt.Errorf("parsing mask configuration: %s: %v", v.name, err)
			}
			for _, p := range polys {
				*v.dst = append(*v.dst, quadtree.MaskPolygon{Polygonal: p.Polygonal, Zmin: p.Zmin, Zmax: p.Zmax})
			}
		}
	}
	return c, nil
}

// ExportOptions specify how a grid is exported.
type ExportOptions struct {
	Dir           string
	Formats       []string
	MaskOption    string
	Width, Height int

	// WaveMaskFile is the wave mask used for the snapwave format.
	WaveMaskFile string
}

var exportFormats = map[string]bool{"shp": true, "ugrid": true, "snapwave": true, "geojson": true, "png": true}

// ExportConfig unmarshals a viper configuration for grid exports.
func ExportConfig(cfg *viper.Viper) (*ExportOptions, error) {
	size, err := toIntSliceE(cfg.Get("export.image_size"))
	if err != nil {
		return nil, fmt.Errorf("parsing export configuration: export.image_size: %v", err)
	}
	if len(size) != 2 || size[0] <= 0 || size[1] <= 0 {
		return nil, fmt.Errorf("parsing export configuration: export.image_size=%v but should be two positive numbers", size)
	}
	o := &ExportOptions{
		Dir:        expand(cfg.GetString("export.dir")),
		Formats:    cfg.GetStringSlice("export.formats"),
		MaskOption: cfg.GetString("export.mask_option"),
		Width:      size[0],
		Height:     size[1],

		WaveMaskFile: expand(cfg.GetString("wave_mask_file")),
	}
	if len(o.Formats) == 0 {
		return nil, fmt.Errorf("parsing export configuration: export.formats is not specified")
	}
	for _, f := range o.Formats {
		if !exportFormats[f] {
			return nil, fmt.Errorf("parsing export configuration: invalid format %q; valid formats are shp, ugrid, snapwave, geojson and png", f)
		}
	}
	return o, nil
}

// toIntSliceE converts a configuration value that may be a list from a
// configuration file or a string from a flag or environment variable.
func toIntSliceE(s interface{}) ([]int, error) {
	if str, ok := s.(string); ok {
		str = strings.Trim(strings.TrimSpace(str), "[]")
		if str == "" {
			return nil, nil
		}
		var o []int
		for _, v := range strings.Split(str, ",") {
			i, err := cast.ToIntE(strings.TrimSpace(v))
			if err != nil {
				return nil, err
			}
			o = append(o, i)
		}
		return o, nil
	}
	return cast.ToIntSliceE(s)
}

// polygon is a polygon read from a file, along with the optional
// elevation range stored with it.
type polygon struct {
	geom.Polygonal
	Zmin, Zmax float64
}

// readPolygons reads the polygons in a GeoJSON file or a shapefile.
// Shapefile polygons are converted to the coordinate system with the
// given EPSG code unless it is zero. GeoJSON polygons are assumed to
// already be in the grid coordinate system.
func readPolygons(file string, epsg int) ([]polygon, error) {
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".shp":
		var sr *proj.SR
		if epsg != 0 {
			var err error
			sr, err = quadtree.SpatialReference(epsg)
			if err != nil {
				return nil, fmt.Errorf("quadtree: reprojecting %s: %v", file, err)
			}
		}
		return readShapefilePolygons(file, sr)
	case ".json", ".geojson":
		return readGeoJSONPolygons(file)
	default:
		return nil, fmt.Errorf("quadtree: invalid polygon file type %s; valid types are .shp, .json and .geojson", ext)
	}
}

// geoJSONObject holds the members of any GeoJSON object that are needed
// to find the polygons in it.
type geoJSONObject struct {
	Type        string                 `json:"type"`
	Coordinates interface{}            `json:"coordinates"`
	Geometry    *geoJSONObject         `json:"geometry"`
	Geometries  []*geoJSONObject       `json:"geometries"`
	Features    []*geoJSONObject       `json:"features"`
	Properties  map[string]interface{} `json:"properties"`
}

// readGeoJSONPolygons returns the polygons in the given GeoJSON file,
// which may hold a geometry, a feature or a feature collection. Each
// Polygon or MultiPolygon geometry becomes one polygon. The elevation
// range is taken from the zmin and zmax feature properties, if present.
func readGeoJSONPolygons(file string) ([]polygon, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("quadtree: reading polygon file: %v", err)
	}
	var obj geoJSONObject
	if err = json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("quadtree: decoding polygon file %s: %v", file, err)
	}
	o, err := obj.polygons(nil)
	if err != nil {
		return nil, fmt.Errorf("quadtree: decoding polygon file %s: %v", file, err)
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("quadtree: polygon file %s contains no polygons", file)
	}
	return o, nil
}

func (obj *geoJSONObject) polygons(props map[string]interface{}) ([]polygon, error) {
	var o []polygon
	switch obj.Type {
	case "FeatureCollection":
		for _, f := range obj.Features {
			if f == nil {
				continue
			}
			p, err := f.polygons(nil)
			if err != nil {
				return nil, err
			}
			o = append(o, p...)
		}
	case "Feature":
		if obj.Geometry == nil {
			return nil, nil
		}
		return obj.Geometry.polygons(obj.Properties)
	case "GeometryCollection":
		for _, g := range obj.Geometries {
			if g == nil {
				continue
			}
			p, err := g.polygons(props)
			if err != nil {
				return nil, err
			}
			o = append(o, p...)
		}
	case "Polygon":
		p, err := decodeGeoJSONPolygon(obj.Coordinates)
		if err != nil {
			return nil, err
		}
		return withZRange(p, props)
	case "MultiPolygon":
		parts, ok := obj.Coordinates.([]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid MultiPolygon coordinates")
		}
		mp := make(geom.MultiPolygon, len(parts))
		for i, c := range parts {
			p, err := decodeGeoJSONPolygon(c)
			if err != nil {
				return nil, err
			}
			mp[i] = p
		}
		return withZRange(mp, props)
	default:
		return nil, fmt.Errorf("invalid geometry type %q; should be Polygon or MultiPolygon", obj.Type)
	}
	return o, nil
}

// decodeGeoJSONPolygon converts the coordinates of a GeoJSON polygon.
func decodeGeoJSONPolygon(coordinates interface{}) (geom.Polygon, error) {
	g, err := geojson.FromGeoJSON(&geojson.Geometry{Type: "Polygon", Coordinates: coordinates})
	if err != nil {
		return nil, err
	}
	return g.(geom.Polygon), nil
}

// withZRange attaches the zmin and zmax properties of a feature to p.
func withZRange(p geom.Polygonal, props map[string]interface{}) ([]polygon, error) {
	o := polygon{Polygonal: p}
	for name, dst := range map[string]*float64{"zmin": &o.Zmin, "zmax": &o.Zmax} {
		for k, v := range props {
			if !strings.EqualFold(k, name) {
				continue
			}
			z, err := cast.ToFloat64E(v)
			if err != nil {
				return nil, fmt.Errorf("property %s: %v", k, err)
			}
			*dst = z
		}
	}
	return []polygon{o}, nil
}

// readShapefilePolygons reads the polygons in a shapefile, along with
// their Zmin and Zmax attributes if the shapefile has them.
func readShapefilePolygons(file string, sr *proj.SR) ([]polygon, error) {
	d, err := shp.NewDecoder(file)
	if err != nil {
		return nil, fmt.Errorf("quadtree: opening polygon shapefile: %v", err)
	}
	defer d.Close()

	var trans proj.Transformer
	if sr != nil {
		fileSR, err := d.SR()
		if err != nil {
			return nil, fmt.Errorf("quadtree: reading projection of %s: %v", file, err)
		}
		trans, err = fileSR.NewTransform(sr)
		if err != nil {
			return nil, fmt.Errorf("quadtree: converting projection of %s: %v", file, err)
		}
	}

	var o []polygon
	for {
		var rec struct {
			geom.Geom
			Zmin, Zmax float64
		}
		if !d.DecodeRow(&rec) {
			break
		}
		g := rec.Geom
		if trans != nil {
			g, err = g.Transform(trans)
			if err != nil {
				return nil, fmt.Errorf("quadtree: converting polygon in %s: %v", file, err)
			}
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("quadtree: %s contains %T but should only contain polygons", file, g)
		}
		o = append(o, polygon{Polygonal: p, Zmin: rec.Zmin, Zmax: rec.Zmax})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("quadtree: reading polygon shapefile: %v", err)
	}
	return o, nil
}
