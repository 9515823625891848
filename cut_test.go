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
	"reflect"
	"testing"
)

func TestCutInactiveCells(t *testing.T) {
	g := coastGrid(t)
	flow, err := g.BuildMask(&MaskConfig{Zmin: -10, Zmax: 0})
	if err != nil {
		t.Fatal(err)
	}
	wave := make(Mask, g.NumCells())
	wave[1] = MaskActive

	masks, err := g.CutInactiveCells(flow, wave)
	if err != nil {
		t.Fatal(err)
	}
	if g.NumCells() != 10 {
		t.Fatalf("want 10 cells but have %d", g.NumCells())
	}
	if want := []int{0, 1, 1, 1, 2, 2, 2, 3, 3, 3}; !reflect.DeepEqual(g.M, want) {
		t.Errorf("want columns %v but have %v", want, g.M)
	}
	if g.N[0] != 1 {
		t.Errorf("first cell should be in row 1 but is in row %d", g.N[0])
	}
	if len(masks) != 2 || len(masks[0]) != 10 || len(masks[1]) != 10 {
		t.Fatalf("bad mask lengths: %v", masks)
	}
	if want := (Mask{0, 1, 1, 1, 1, 1, 1, 1, 1, 1}); !reflect.DeepEqual(masks[0], want) {
		t.Errorf("flow: want %v but have %v", want, masks[0])
	}
	if want := (Mask{1, 0, 0, 0, 0, 0, 0, 0, 0, 0}); !reflect.DeepEqual(masks[1], want) {
		t.Errorf("wave: want %v but have %v", want, masks[1])
	}
	if len(g.Z) != 10 || g.Z[0] != 5 || g.Z[1] != -5 {
		t.Errorf("elevation not filtered: %v", g.Z)
	}
	if g.X[1] != 1.5 || g.Y[1] != 0.5 {
		t.Errorf("want second centre (1.5, 0.5) but have (%g, %g)", g.X[1], g.Y[1])
	}

	// The remaining land cell has lost its neighbors below and above.
	if nb := g.Neighbors.Get(0, Below); nb.Relation != None {
		t.Errorf("want no neighbor below but have %+v", nb)
	}
	if nb := g.Neighbors.Get(0, Right); nb != sameLevel(2) {
		t.Errorf("want same-level neighbor 2 to the right but have %+v", nb)
	}
	checkNeighborConsistency(t, g)

	if i, ok := g.CellAt(0.5, 0.5); ok {
		t.Errorf("removed cell found at index %d", i)
	}
}

func TestCutInactiveCellsRefined(t *testing.T) {
	g := refinedGrid(t)
	// Remove one of the four fine cells and one coarse cell.
	if _, err := g.CutInactiveCells(Mask{1, 0, 1, 1, 1, 0, 1}); err != nil {
		t.Fatal(err)
	}
	want := []cellID{{0, 1, 0}, {0, 1, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}
	if have := cellIDs(g); !reflect.DeepEqual(have, want) {
		t.Errorf("want cells %v but have %v", want, have)
	}
	if want := []int{0, 2}; !reflect.DeepEqual(g.IFirst, want) {
		t.Errorf("want ifirst %v but have %v", want, g.IFirst)
	}
	// The coarse cell above the fine cells keeps both halves.
	if nb := g.Neighbors.Get(0, Below); nb != (Neighbor{Relation: Finer, First: 3, Second: 4}) {
		t.Errorf("unexpected neighbor below cell 0: %+v", nb)
	}
	checkNeighborConsistency(t, g)

	mesh, err := g.Mesh()
	if err != nil {
		t.Fatal(err)
	}
	checkLinkCoverage(t, g, mesh)
}

func TestCutInactiveCellsWholeLevel(t *testing.T) {
	g := refinedGrid(t)
	if _, err := g.CutInactiveCells(Mask{1, 1, 1, 0, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if g.NumLevels != 2 {
		t.Errorf("want 2 levels but have %d", g.NumLevels)
	}
	if want := []int{0, 3}; !reflect.DeepEqual(g.IFirst, want) {
		t.Errorf("want ifirst %v but have %v", want, g.IFirst)
	}
	if nb := g.Neighbors.Get(0, Below); nb.Relation != None {
		t.Errorf("want no neighbor below but have %+v", nb)
	}
}

func TestCutInactiveCellsBadMask(t *testing.T) {
	g := uniformGrid(t, 2, 2)
	if _, err := g.CutInactiveCells(Mask{1, 1}); err == nil {
		t.Error("want error for wrong mask length")
	}
}
