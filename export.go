/*
Copyright © 2013 the quadtree authors.
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

package quadtree

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// WriteCellsShapefile writes the outline of each cell to a shapefile,
// with the index, level, row, column and elevation of each cell as
// attributes.
func (g *Grid) WriteCellsShapefile(filename string) error {
	filename = shpName(filename)
	fields := []goshp.Field{
		goshp.NumberField("Index", 10),
		goshp.NumberField("Level", 4),
		goshp.NumberField("N", 10),
		goshp.NumberField("M", 10),
		goshp.FloatField("Z", 14, 4),
	}
	e, err := shp.NewEncoderFromFields(filename, goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("quadtree: creating cell shapefile: %v", err)
	}
	for i := range g.Level {
		z := 0.
		if g.Z != nil {
			z = g.Z[i]
		}
		if err = e.EncodeFields(g.CellPolygon(i), i, g.Level[i], g.N[i], g.M[i], z); err != nil {
			e.Close()
			return fmt.Errorf("quadtree: writing cell shapefile: %v", err)
		}
	}
	e.Close()
	return g.writePrj(filename)
}

// WriteLinksShapefile writes the links of the mesh to a shapefile, with
// the indices of the two nodes of each link as attributes.
func (g *Grid) WriteLinksShapefile(filename string) error {
	mesh, err := g.Mesh()
	if err != nil {
		return err
	}
	filename = shpName(filename)
	e, err := shp.NewEncoderFromFields(filename, goshp.POLYLINE,
		goshp.NumberField("Node1", 10), goshp.NumberField("Node2", 10))
	if err != nil {
		return fmt.Errorf("quadtree: creating link shapefile: %v", err)
	}
	for _, l := range mesh.Links {
		line := geom.LineString{
			{X: mesh.NodeX[l[0]], Y: mesh.NodeY[l[0]]},
			{X: mesh.NodeX[l[1]], Y: mesh.NodeY[l[1]]},
		}
		if err = e.EncodeFields(line, l[0], l[1]); err != nil {
			e.Close()
			return fmt.Errorf("quadtree: writing link shapefile: %v", err)
		}
	}
	e.Close()
	return g.writePrj(filename)
}

// WriteMaskShapefile writes the centres of the cells selected from mask
// by option to a point shapefile, with the cell index and mask value as
// attributes. See Mask.Select for the options.
func (g *Grid) WriteMaskShapefile(filename string, mask Mask, option string) error {
	if err := g.checkMask(mask); err != nil {
		return err
	}
	filename = shpName(filename)
	e, err := shp.NewEncoderFromFields(filename, goshp.POINT,
		goshp.NumberField("Index", 10), goshp.NumberField("Mask", 4))
	if err != nil {
		return fmt.Errorf("quadtree: creating mask shapefile: %v", err)
	}
	for _, i := range mask.Select(option) {
		if err = e.EncodeFields(geom.Point{X: g.X[i], Y: g.Y[i]}, i, int(mask[i])); err != nil {
			e.Close()
			return fmt.Errorf("quadtree: writing mask shapefile: %v", err)
		}
	}
	e.Close()
	return g.writePrj(filename)
}

// writePrj writes the projection file for a shapefile, if g has a
// coordinate system.
func (g *Grid) writePrj(filename string) error {
	if g.EPSG == 0 {
		return nil
	}
	def, err := ProjDef(g.EPSG)
	if err != nil {
		return err
	}
	f, err := os.Create(strings.TrimSuffix(filename, filepath.Ext(filename)) + ".prj")
	if err != nil {
		return fmt.Errorf("quadtree: creating prj file: %v", err)
	}
	if _, err = fmt.Fprint(f, def); err != nil {
		f.Close()
		return fmt.Errorf("quadtree: writing prj file: %v", err)
	}
	return f.Close()
}

// shpName makes sure filename has a .shp extension.
func shpName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".shp"
}

type feature struct {
	Type       string                 `json:"type"`
	Geometry   *geojson.Geometry      `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

// WriteMaskGeoJSON writes the centres of the cells selected from mask by
// option to w as a GeoJSON feature collection.
func (g *Grid) WriteMaskGeoJSON(w io.Writer, mask Mask, option string) error {
	if err := g.checkMask(mask); err != nil {
		return err
	}
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, i := range mask.Select(option) {
		gj, err := geojson.ToGeoJSON(geom.Point{X: g.X[i], Y: g.Y[i]})
		if err != nil {
			return fmt.Errorf("quadtree: encoding mask point: %v", err)
		}
		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   gj,
			Properties: map[string]interface{}{"index": i, "mask": mask[i]},
		})
	}
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		return fmt.Errorf("quadtree: writing mask GeoJSON: %v", err)
	}
	return nil
}

// WriteUGRID writes the mesh to netcdf file w following the UGRID
// conventions. mask is optional.
func (g *Grid) WriteUGRID(w *os.File, mask Mask) error {
	if mask != nil {
		if err := g.checkMask(mask); err != nil {
			return err
		}
	}
	mesh, err := g.Mesh()
	if err != nil {
		return err
	}
	nNodes, nFaces, nEdges := len(mesh.NodeX), len(mesh.Faces), len(mesh.Links)

	h := cdf.NewHeader(
		[]string{"nNodes", "nFaces", "nEdges", "nMaxFaceNodes", "Two"},
		[]int{nNodes, nFaces, nEdges, 4, 2})
	h.AddAttribute("", "Conventions", "UGRID-1.0")
	h.AddAttribute("", "comment", "Quadtree mesh")
	h.AddAttribute("", "x0", []float64{g.X0})
	h.AddAttribute("", "y0", []float64{g.Y0})
	h.AddAttribute("", "dx", []float64{g.DX})
	h.AddAttribute("", "dy", []float64{g.DY})
	h.AddAttribute("", "rotation", []float64{g.Rotation})
	h.AddAttribute("", "epsg", []int32{int32(g.EPSG)})
	h.AddAttribute("", "nr_levels", []int32{int32(g.NumLevels)})

	h.AddVariable("mesh2d", []string{}, []int32{0})
	h.AddAttribute("mesh2d", "cf_role", "mesh_topology")
	h.AddAttribute("mesh2d", "topology_dimension", []int32{2})
	h.AddAttribute("mesh2d", "node_coordinates", "node_x node_y")
	h.AddAttribute("mesh2d", "face_node_connectivity", "face_nodes")
	h.AddAttribute("mesh2d", "edge_node_connectivity", "edge_nodes")

	h.AddVariable("node_x", []string{"nNodes"}, []float64{0})
	h.AddAttribute("node_x", "standard_name", "projection_x_coordinate")
	h.AddVariable("node_y", []string{"nNodes"}, []float64{0})
	h.AddAttribute("node_y", "standard_name", "projection_y_coordinate")
	h.AddVariable("face_nodes", []string{"nFaces", "nMaxFaceNodes"}, []int32{0})
	h.AddAttribute("face_nodes", "cf_role", "face_node_connectivity")
	h.AddAttribute("face_nodes", "start_index", []int32{0})
	h.AddVariable("edge_nodes", []string{"nEdges", "Two"}, []int32{0})
	h.AddAttribute("edge_nodes", "cf_role", "edge_node_connectivity")
	h.AddAttribute("edge_nodes", "start_index", []int32{0})
	h.AddVariable("level", []string{"nFaces"}, []int32{0})
	h.AddVariable("z", []string{"nFaces"}, []float32{0})
	h.AddAttribute("z", "units", "m")
	if mask != nil {
		h.AddVariable("mask", []string{"nFaces"}, []int32{0})
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("quadtree: creating UGRID file: %v", err)
	}

	faces := make([]int32, 0, 4*nFaces)
	for _, fc := range mesh.Faces {
		for _, n := range fc {
			faces = append(faces, int32(n))
		}
	}
	edges := make([]int32, 0, 2*nEdges)
	for _, l := range mesh.Links {
		edges = append(edges, int32(l[0]), int32(l[1]))
	}
	level := make([]int32, nFaces)
	z := make([]float32, nFaces)
	for i := range g.Level {
		level[i] = int32(g.Level[i])
		if g.Z != nil {
			z[i] = float32(g.Z[i])
		}
	}
	data := []struct {
		name string
		v    interface{}
	}{
		{"node_x", mesh.NodeX},
		{"node_y", mesh.NodeY},
		{"face_nodes", faces},
		{"edge_nodes", edges},
		{"level", level},
		{"z", z},
	}
	if mask != nil {
		m := make([]int32, nFaces)
		for i, v := range mask {
			m[i] = int32(v)
		}
		data = append(data, struct {
			name string
			v    interface{}
		}{"mask", m})
	}
	for _, d := range data {
		if err := writeNCFVar(f, d.name, d.v); err != nil {
			return fmt.Errorf("quadtree: writing variable %s to UGRID file: %v", d.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCFVar(f *cdf.File, name string, data interface{}) error {
	end := f.Header.Lengths(name)
	if len(end) == 0 {
		return nil
	}
	start := make([]int, len(end))
	_, err := f.Writer(name, start, end).Write(data)
	return err
}

// DrawMesh draws the links of the mesh to w as a PNG image of the given
// size in pixels. The grid is scaled to fit the image.
func (g *Grid) DrawMesh(w io.Writer, width, height int) error {
	mesh, err := g.Mesh()
	if err != nil {
		return err
	}
	b := g.Bounds()
	img := vgimg.NewWith(vgimg.UseWH(vg.Length(width), vg.Length(height)), vgimg.UseDPI(72))
	dc := draw.New(img)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	sx := float64(dc.Max.X-dc.Min.X) / (b.Max.X - b.Min.X)
	sy := float64(dc.Max.Y-dc.Min.Y) / (b.Max.Y - b.Min.Y)
	s := sx
	if sy < s {
		s = sy
	}
	toCanvas := func(x, y float64) (vg.Length, vg.Length) {
		return dc.Min.X + vg.Length((x-b.Min.X)*s), dc.Min.Y + vg.Length((y-b.Min.Y)*s)
	}
	ls := draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}
	for _, l := range mesh.Links {
		x0, y0 := toCanvas(mesh.NodeX[l[0]], mesh.NodeY[l[0]])
		x1, y1 := toCanvas(mesh.NodeX[l[1]], mesh.NodeY[l[1]])
		dc.StrokeLine2(ls, x0, y0, x1, y1)
	}
	if _, err = (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("quadtree: writing mesh image: %v", err)
	}
	return nil
}
