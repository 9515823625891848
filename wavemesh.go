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
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// WaveMesh is the unstructured triangle and quadrilateral mesh used by
// spectral wave models, in which each node is a cell centre.
type WaveMesh struct {
	// NodeX, NodeY and NodeZ are the centre coordinates and elevation
	// of each node.
	NodeX, NodeY, NodeZ []float64

	// Mask is the mask value of the cell at each node.
	Mask []int8

	// Cell is the grid index of the cell at each node.
	Cell []int

	// Faces are the nodes around each face in counter-clockwise order.
	// Triangles have -1 as their fourth node.
	Faces [][4]int
}

// WaveMesh connects the centres of the active cells of g into a mesh.
// Each cell corner shared by three or four distinct active cells becomes
// a triangle or a quadrilateral. Cells are active if their value in mask
// is not MaskInactive; if mask is nil, all cells are active.
func (g *Grid) WaveMesh(mask Mask) (*WaveMesh, error) {
	if mask != nil {
		if err := g.checkMask(mask); err != nil {
			return nil, err
		}
	}
	active := func(i int) bool { return mask == nil || mask[i] != MaskInactive }

	o := new(WaveMesh)
	node := make([]int, g.NumCells())
	for i := range g.Level {
		if !active(i) {
			node[i] = -1
			continue
		}
		node[i] = len(o.Cell)
		o.Cell = append(o.Cell, i)
		o.NodeX = append(o.NodeX, g.X[i])
		o.NodeY = append(o.NodeY, g.Y[i])
		z := 0.
		if g.Z != nil {
			z = g.Z[i]
		}
		o.NodeZ = append(o.NodeZ, z)
		v := MaskActive
		if mask != nil {
			v = mask[i]
		}
		o.Mask = append(o.Mask, v)
	}

	// Corners are indexed at the finest resolution.
	top := g.NumLevels - 1
	var nmax int
	for i, l := range g.Level {
		nmax = maxInt(nmax, (g.N[i]+1)<<uint(top-l))
	}
	keys := make([]int64, 0, 4*g.NumCells())
	for i, l := range g.Level {
		f := 1 << uint(top-l)
		n0, n1 := g.N[i]*f, (g.N[i]+1)*f
		m0, m1 := g.M[i]*f, (g.M[i]+1)*f
		keys = append(keys,
			cellKey(n0, m0, nmax), cellKey(n0, m1, nmax),
			cellKey(n1, m1, nmax), cellKey(n1, m0, nmax))
	}
	keys = uniqueKeys(keys)

	idx := g.levelIndexes()
	// owner returns the cell that covers the finest-resolution unit at
	// row n and column m.
	owner := func(n, m int) (int, bool) {
		for l := 0; l <= top; l++ {
			s := uint(top - l)
			if i, ok := idx[l].find(n>>s, m>>s); ok {
				return i, true
			}
		}
		return -1, false
	}

	for _, k := range keys {
		m, n := int(k/int64(nmax+1)), int(k%int64(nmax+1))
		if n == 0 || m == 0 {
			continue
		}
		var cells [4]int
		ok := true
		for j, u := range [4][2]int{{n - 1, m - 1}, {n - 1, m}, {n, m}, {n, m - 1}} {
			c, found := owner(u[0], u[1])
			if !found || !active(c) {
				ok = false
				break
			}
			cells[j] = c
		}
		if !ok {
			continue
		}
		face := [4]int{-1, -1, -1, -1}
		var nf int
		for j, c := range cells {
			if c == cells[(j+3)%4] {
				continue
			}
			face[nf] = node[c]
			nf++
		}
		if nf >= 3 {
			o.Faces = append(o.Faces, face)
		}
	}
	return o, nil
}

// WriteWaveUGRID writes the wave mesh of g to netcdf file w following the
// UGRID conventions. mask is optional; see WaveMesh.
func (g *Grid) WriteWaveUGRID(w *os.File, mask Mask) error {
	mesh, err := g.WaveMesh(mask)
	if err != nil {
		return err
	}
	nNodes, nFaces := len(mesh.NodeX), len(mesh.Faces)
	if nFaces == 0 {
		return fmt.Errorf("quadtree: wave mesh has no faces")
	}

	h := cdf.NewHeader(
		[]string{"nNodes", "nFaces", "nMaxFaceNodes"},
		[]int{nNodes, nFaces, 4})
	h.AddAttribute("", "Conventions", "UGRID-1.0")
	h.AddAttribute("", "comment", "Quadtree wave mesh")
	h.AddAttribute("", "epsg", []int32{int32(g.EPSG)})

	h.AddVariable("mesh2d", []string{}, []int32{0})
	h.AddAttribute("mesh2d", "cf_role", "mesh_topology")
	h.AddAttribute("mesh2d", "topology_dimension", []int32{2})
	h.AddAttribute("mesh2d", "node_coordinates", "node_x node_y")
	h.AddAttribute("mesh2d", "face_node_connectivity", "face_nodes")

	h.AddVariable("node_x", []string{"nNodes"}, []float64{0})
	h.AddAttribute("node_x", "standard_name", "projection_x_coordinate")
	h.AddVariable("node_y", []string{"nNodes"}, []float64{0})
	h.AddAttribute("node_y", "standard_name", "projection_y_coordinate")
	h.AddVariable("face_nodes", []string{"nFaces", "nMaxFaceNodes"}, []int32{0})
	h.AddAttribute("face_nodes", "cf_role", "face_node_connectivity")
	h.AddAttribute("face_nodes", "start_index", []int32{0})
	h.AddAttribute("face_nodes", "_FillValue", []int32{-1})
	h.AddVariable("z", []string{"nNodes"}, []float32{0})
	h.AddAttribute("z", "units", "m")
	h.AddVariable("mask", []string{"nNodes"}, []int32{0})
	h.AddVariable("cell", []string{"nNodes"}, []int32{0})
	h.AddAttribute("cell", "long_name", "index of the grid cell at each node")
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("quadtree: creating wave UGRID file: %v", err)
	}

	faces := make([]int32, 0, 4*nFaces)
	for _, fc := range mesh.Faces {
		for _, n := range fc {
			faces = append(faces, int32(n))
		}
	}
	z := make([]float32, nNodes)
	m := make([]int32, nNodes)
	cell := make([]int32, nNodes)
	for i := range mesh.Cell {
		z[i] = float32(mesh.NodeZ[i])
		m[i] = int32(mesh.Mask[i])
		cell[i] = int32(mesh.Cell[i])
	}
	for _, d := range []struct {
		name string
		v    interface{}
	}{
		{"node_x", mesh.NodeX},
		{"node_y", mesh.NodeY},
		{"face_nodes", faces},
		{"z", z},
		{"mask", m},
		{"cell", cell},
	} {
		if err := writeNCFVar(f, d.name, d.v); err != nil {
			return fmt.Errorf("quadtree: writing variable %s to wave UGRID file: %v", d.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}
