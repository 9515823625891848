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

import "fmt"

// Direction is one of the four sides of a cell.
type Direction int

// These are the cell sides.
const (
	Left  Direction = iota // towards decreasing m
	Right                  // towards increasing m
	Below                  // towards decreasing n
	Above                  // towards increasing n
)

// Directions lists all cell sides.
var Directions = [4]Direction{Left, Right, Below, Above}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Below:
		return "below"
	case Above:
		return "above"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Opposite returns the direction pointing back from a neighbor.
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Below:
		return Above
	default:
		return Below
	}
}

// Relation describes the size of a neighboring cell relative to the cell
// whose neighbor it is.
type Relation int8

// These are the neighbor relations.
const (
	None      Relation = iota // no neighbor on this side
	SameLevel                 // one neighbor of the same size
	Coarser                   // one neighbor twice as large
	Finer                     // up to two neighbors half as large
)

func (r Relation) String() string {
	switch r {
	case None:
		return "none"
	case SameLevel:
		return "same"
	case Coarser:
		return "coarser"
	case Finer:
		return "finer"
	default:
		return fmt.Sprintf("Relation(%d)", int8(r))
	}
}

// Neighbor is the neighbor of a cell on one side.
type Neighbor struct {
	Relation Relation

	// First is the index of the neighboring cell. For a Finer relation,
	// First and Second are the cells along the lower (Left and Right
	// sides) or left (Below and Above sides) and the upper or right half
	// of the side. Absent cells are -1; a Finer neighbor has at least one
	// of the two.
	First, Second int
}

var noNeighbor = Neighbor{Relation: None, First: -1, Second: -1}

func sameLevel(i int) Neighbor { return Neighbor{Relation: SameLevel, First: i, Second: -1} }
func coarser(i int) Neighbor   { return Neighbor{Relation: Coarser, First: i, Second: -1} }

// Cells returns the indices of the neighboring cells, skipping absent
// ones.
func (nb Neighbor) Cells() []int {
	var o []int
	for _, i := range [2]int{nb.First, nb.Second} {
		if i >= 0 {
			o = append(o, i)
		}
	}
	return o
}

// NeighborTable holds the neighbors of every cell on every side.
type NeighborTable struct {
	dirs [4][]Neighbor
}

// NewNeighborTable returns a table of n cells with no neighbors.
func NewNeighborTable(n int) *NeighborTable {
	t := new(NeighborTable)
	for d := range t.dirs {
		t.dirs[d] = make([]Neighbor, n)
		for i := range t.dirs[d] {
			t.dirs[d][i] = noNeighbor
		}
	}
	return t
}

// Len returns the number of cells in the table.
func (t *NeighborTable) Len() int { return len(t.dirs[Left]) }

// Get returns the neighbor of cell i in direction d.
func (t *NeighborTable) Get(i int, d Direction) Neighbor { return t.dirs[d][i] }

// Set sets the neighbor of cell i in direction d.
func (t *NeighborTable) Set(i int, d Direction, nb Neighbor) { t.dirs[d][i] = nb }

// setFiner records cell j as the finer neighbor of cell i in direction d,
// in the first (slot 0) or second (slot 1) half of the side.
func (t *NeighborTable) setFiner(i int, d Direction, slot, j int) {
	nb := t.dirs[d][i]
	if nb.Relation != Finer {
		nb = Neighbor{Relation: Finer, First: -1, Second: -1}
	}
	if slot == 0 {
		nb.First = j
	} else {
		nb.Second = j
	}
	t.dirs[d][i] = nb
}

// FindNeighbors determines the neighbors of every cell in g. Levels are
// processed from coarsest to finest. On each side, a neighbor at the same
// level is preferred, then a coarser one, then finer ones. Only the Right
// and Above sides are searched; Left and Below are filled in from the
// cells on the other side.
func (g *Grid) FindNeighbors() (*NeighborTable, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	t := NewNeighborTable(g.NumCells())
	idx := g.levelIndexes()

	for l, cur := range idx {
		// Same level
		for _, i := range cur.cells {
			n, m := g.N[i], g.M[i]
			if j, ok := cur.find(n, m+1); ok {
				t.Set(i, Right, sameLevel(j))
				t.Set(j, Left, sameLevel(i))
			}
			if n < cur.maxN {
				if j, ok := cur.find(n+1, m); ok {
					t.Set(i, Above, sameLevel(j))
					t.Set(j, Below, sameLevel(i))
				}
			}
		}

		// Coarser level
		if l > 0 {
			crs := idx[l-1]
			for _, i := range cur.cells {
				n, m := g.N[i], g.M[i]
				if t.Get(i, Right).Relation == None && m%2 == 1 {
					if j, ok := crs.find(n/2, (m+1)/2); ok {
						t.Set(i, Right, coarser(j))
						t.setFiner(j, Left, n%2, i)
					}
				}
				if t.Get(i, Above).Relation == None && n%2 == 1 {
					if j, ok := crs.find((n+1)/2, m/2); ok {
						t.Set(i, Above, coarser(j))
						t.setFiner(j, Below, m%2, i)
					}
				}
			}
		}

		// Finer level
		if l < len(idx)-1 {
			fine := idx[l+1]
			for _, i := range cur.cells {
				n, m := g.N[i], g.M[i]
				if t.Get(i, Right).Relation == None {
					for slot := 0; slot < 2; slot++ {
						if j, ok := fine.find(2*n+slot, 2*(m+1)); ok {
							t.setFiner(i, Right, slot, j)
							t.Set(j, Left, coarser(i))
						}
					}
				}
				if t.Get(i, Above).Relation == None {
					for slot := 0; slot < 2; slot++ {
						if j, ok := fine.find(2*(n+1), 2*m+slot); ok {
							t.setFiner(i, Above, slot, j)
							t.Set(j, Below, coarser(i))
						}
					}
				}
			}
		}
	}
	return t, nil
}

// SetNeighbors replaces the neighbor table of g with t.
func (g *Grid) SetNeighbors(t *NeighborTable) error {
	if t.Len() != g.NumCells() {
		return invalidf("neighbor table has %d cells but the grid has %d", t.Len(), g.NumCells())
	}
	g.Neighbors = t
	return nil
}
