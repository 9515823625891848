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
	"sort"
)

// Mesh is the node and edge representation of a grid.
type Mesh struct {
	// NodeX and NodeY are the coordinates of the unique cell corners.
	NodeX, NodeY []float64

	// Links are the cell edges, as pairs of node indices. Each stretch of
	// cell boundary is covered by exactly one link.
	Links [][2]int

	// Faces are the corner nodes of each cell, in the order lower-left,
	// lower-right, upper-right, upper-left.
	Faces [][4]int
}

// Mesh finds the nodes and links of g.
func (g *Grid) Mesh() (*Mesh, error) {
	if g.Neighbors == nil || g.Neighbors.Len() != g.NumCells() {
		return nil, fmt.Errorf("quadtree: neighbors must be found before creating the mesh")
	}
	top := g.NumLevels - 1

	// Corners are indexed at the finest resolution.
	var nmax int
	for i, l := range g.Level {
		f := 1 << uint(top-l)
		nmax = maxInt(nmax, (g.N[i]+1)*f)
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

	o := &Mesh{
		NodeX: make([]float64, len(keys)),
		NodeY: make([]float64, len(keys)),
		Faces: make([][4]int, g.NumCells()),
	}
	dx, dy := g.cellSize(top)
	cos, sin := g.rotation()
	for i, k := range keys {
		m, n := k/int64(nmax+1), k%int64(nmax+1)
		o.NodeX[i], o.NodeY[i] = g.toWorld(float64(m)*dx, float64(n)*dy, cos, sin)
	}
	node := func(n, m int) int {
		i, ok := search(keys, cellKey(n, m, nmax))
		if !ok {
			panic(fmt.Errorf("quadtree: missing node n=%d, m=%d", n, m))
		}
		return i
	}

	for i, l := range g.Level {
		f := 1 << uint(top-l)
		h := f / 2
		n0, n1 := g.N[i]*f, (g.N[i]+1)*f
		m0, m1 := g.M[i]*f, (g.M[i]+1)*f
		o.Faces[i] = [4]int{node(n0, m0), node(n0, m1), node(n1, m1), node(n1, m0)}

		link := func(na, ma, nb, mb int) {
			o.Links = append(o.Links, [2]int{node(na, ma), node(nb, mb)})
		}

		// Left and bottom sides always emit their edges.
		if g.Neighbors.Get(i, Left).Relation == Finer {
			link(n0, m0, n0+h, m0)
			link(n0+h, m0, n1, m0)
		} else {
			link(n0, m0, n1, m0)
		}
		if g.Neighbors.Get(i, Below).Relation == Finer {
			link(n0, m0, n0, m0+h)
			link(n0, m0+h, n0, m1)
		} else {
			link(n0, m0, n0, m1)
		}

		// Right and top sides only emit edges no neighbor will emit.
		switch nb := g.Neighbors.Get(i, Right); nb.Relation {
		case None:
			link(n0, m1, n1, m1)
		case Finer:
			if nb.First < 0 {
				link(n0, m1, n0+h, m1)
			}
			if nb.Second < 0 {
				link(n0+h, m1, n1, m1)
			}
		}
		switch nb := g.Neighbors.Get(i, Above); nb.Relation {
		case None:
			link(n1, m0, n1, m1)
		case Finer:
			if nb.First < 0 {
				link(n1, m0, n1, m0+h)
			}
			if nb.Second < 0 {
				link(n1, m0+h, n1, m1)
			}
		}
	}
	return o, nil
}

// uniqueKeys sorts keys and removes duplicates in place.
func uniqueKeys(keys []int64) []int64 {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	o := keys[:0]
	for _, k := range keys {
		if len(o) == 0 || k != o[len(o)-1] {
			o = append(o, k)
		}
	}
	return o
}
