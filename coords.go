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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// computeCellCentres sets the X and Y fields of g.
func (g *Grid) computeCellCentres() {
	g.X = make([]float64, g.NumCells())
	g.Y = make([]float64, g.NumCells())
	cos, sin := g.rotation()
	for i, l := range g.Level {
		dx, dy := g.cellSize(l)
		g.X[i], g.Y[i] = g.toWorld((float64(g.M[i])+0.5)*dx, (float64(g.N[i])+0.5)*dy, cos, sin)
	}
}

// UVPoints returns the locations of the velocity points on the right and
// top sides of each cell. Sides shared with two finer cells have a point
// at the middle of each half.
func (g *Grid) UVPoints() []geom.Point {
	var o []geom.Point
	cos, sin := g.rotation()
	pt := func(l int, u, v float64) geom.Point {
		dx, dy := g.cellSize(l)
		x, y := g.toWorld(u*dx, v*dy, cos, sin)
		return geom.Point{X: x, Y: y}
	}
	for i, l := range g.Level {
		m, n := float64(g.M[i]), float64(g.N[i])
		switch nb := g.Neighbors.Get(i, Right); nb.Relation {
		case SameLevel, Coarser:
			o = append(o, pt(l, m+1, n+0.5))
		case Finer:
			if nb.First >= 0 {
				o = append(o, pt(l, m+1, n+0.25))
			}
			if nb.Second >= 0 {
				o = append(o, pt(l, m+1, n+0.75))
			}
		}
		switch nb := g.Neighbors.Get(i, Above); nb.Relation {
		case SameLevel, Coarser:
			o = append(o, pt(l, m+0.5, n+1))
		case Finer:
			if nb.First >= 0 {
				o = append(o, pt(l, m+0.25, n+1))
			}
			if nb.Second >= 0 {
				o = append(o, pt(l, m+0.75, n+1))
			}
		}
	}
	return o
}

// CellPolygon returns the outline of cell i.
func (g *Grid) CellPolygon(i int) geom.Polygon {
	cos, sin := g.rotation()
	dx, dy := g.cellSize(g.Level[i])
	u0, u1 := float64(g.M[i])*dx, float64(g.M[i]+1)*dx
	v0, v1 := float64(g.N[i])*dy, float64(g.N[i]+1)*dy
	p := make(geom.Path, 0, 5)
	for _, c := range [5][2]float64{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}, {u0, v0}} {
		x, y := g.toWorld(c[0], c[1], cos, sin)
		p = append(p, geom.Point{X: x, Y: y})
	}
	return geom.Polygon{p}
}

// Bounds returns the extent of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for i := range g.Level {
		b.Extend(g.CellPolygon(i).Bounds())
	}
	return b
}

// cellShape is a cell outline stored in the spatial index.
type cellShape struct {
	geom.Polygon
	index int
}

// spatialIndex returns an index of the cell outlines, creating it if
// necessary.
func (g *Grid) spatialIndex() *rtree.Rtree {
	if g.index != nil {
		return g.index
	}
	g.index = rtree.NewTree(25, 50)
	for i := range g.Level {
		g.index.Insert(&cellShape{Polygon: g.CellPolygon(i), index: i})
	}
	return g.index
}

// CellAt returns the index of the cell containing (x, y). Points on a
// shared edge belong to the cell with the lowest index.
func (g *Grid) CellAt(x, y float64) (int, bool) {
	p := geom.Point{X: x, Y: y}
	var hits []int
	for _, cI := range g.spatialIndex().SearchIntersect(p.Bounds()) {
		c := cI.(*cellShape)
		if p.Within(c.Polygon) != geom.Outside {
			hits = append(hits, c.index)
		}
	}
	if len(hits) == 0 {
		return -1, false
	}
	sort.Ints(hits)
	return hits[0], true
}

// CellsIn returns the indices of the cells whose centres are within
// poly, in ascending order.
func (g *Grid) CellsIn(poly geom.Polygonal) []int {
	var o []int
	for _, cI := range g.spatialIndex().SearchIntersect(poly.Bounds()) {
		c := cI.(*cellShape)
		if inPolygon(geom.Point{X: g.X[c.index], Y: g.Y[c.index]}, poly) {
			o = append(o, c.index)
		}
	}
	sort.Ints(o)
	return o
}
