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
	"math"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
)

// square returns a square polygon with the given lower-left corner and
// side length.
func square(x, y, size float64) geom.Polygon {
	return geom.Polygon{geom.Path{
		{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size},
		{X: x, Y: y + size}, {X: x, Y: y},
	}}
}

// uniformGrid returns an unrefined grid with unit cells.
func uniformGrid(t *testing.T, nmax, mmax int) *Grid {
	g, err := Build(&GridConfig{DX: 1, DY: 1, NMax: nmax, MMax: mmax})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// refinedGrid returns a 2x2 grid of unit cells in which the lower-left
// cell is split into four.
func refinedGrid(t *testing.T) *Grid {
	g, err := Build(&GridConfig{
		DX: 1, DY: 1, NMax: 2, MMax: 2,
		RefinementPolygons: []RefinementPolygon{
			{Polygonal: square(0.1, 0.1, 0.3), Level: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

type cellID struct{ l, n, m int }

func cellIDs(g *Grid) []cellID {
	o := make([]cellID, g.NumCells())
	for i := range o {
		o[i] = cellID{g.Level[i], g.N[i], g.M[i]}
	}
	return o
}

func TestBuildUniform(t *testing.T) {
	g := uniformGrid(t, 3, 3)
	if g.NumCells() != 9 {
		t.Errorf("want 9 cells but have %d", g.NumCells())
	}
	if g.NumLevels != 1 {
		t.Errorf("want 1 level but have %d", g.NumLevels)
	}
	// Cells are in column-major order.
	for i := 0; i < 9; i++ {
		if g.N[i] != i%3 || g.M[i] != i/3 {
			t.Errorf("cell %d: want n=%d, m=%d but have n=%d, m=%d", i, i%3, i/3, g.N[i], g.M[i])
		}
	}
	for i, z := range g.Z {
		if !math.IsNaN(z) {
			t.Errorf("cell %d: elevation should be unset but is %g", i, z)
		}
	}
	if g.HasElevation() {
		t.Error("grid should not have elevation")
	}
}

func TestBuildRefined(t *testing.T) {
	g := refinedGrid(t)
	want := []cellID{
		{0, 1, 0}, {0, 0, 1}, {0, 1, 1},
		{1, 0, 0}, {1, 1, 0}, {1, 0, 1}, {1, 1, 1},
	}
	if have := cellIDs(g); !reflect.DeepEqual(have, want) {
		t.Errorf("want cells %v but have %v", want, have)
	}
	if want := []int{0, 3}; !reflect.DeepEqual(g.IFirst, want) {
		t.Errorf("want ifirst %v but have %v", want, g.IFirst)
	}
}

func TestRefinementPropagation(t *testing.T) {
	// Only the lower-left cell at level 2 is in the polygon.
	g, err := Build(&GridConfig{
		DX: 1, DY: 1, NMax: 2, MMax: 2,
		RefinementPolygons: []RefinementPolygon{
			{Polygonal: square(0.05, 0.05, 0.15), Level: 2},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []cellID{
		{0, 1, 0}, {0, 0, 1}, {0, 1, 1},
		{1, 1, 0}, {1, 0, 1}, {1, 1, 1},
		{2, 0, 0}, {2, 1, 0}, {2, 0, 1}, {2, 1, 1},
	}
	if have := cellIDs(g); !reflect.DeepEqual(have, want) {
		t.Errorf("want cells %v but have %v", want, have)
	}
	if want := []int{0, 3, 6}; !reflect.DeepEqual(g.IFirst, want) {
		t.Errorf("want ifirst %v but have %v", want, g.IFirst)
	}
	checkCoverage(t, g)
}

// checkCoverage checks that the cells of g tile the grid area without
// gaps or overlaps.
func checkCoverage(t *testing.T, g *Grid) {
	top := g.NumLevels - 1
	var nmax, mmax int
	for i, l := range g.Level {
		f := 1 << uint(top-l)
		nmax = maxInt(nmax, (g.N[i]+1)*f)
		mmax = maxInt(mmax, (g.M[i]+1)*f)
	}
	count := make([]int, nmax*mmax)
	for i, l := range g.Level {
		f := 1 << uint(top-l)
		for n := g.N[i] * f; n < (g.N[i]+1)*f; n++ {
			for m := g.M[i] * f; m < (g.M[i]+1)*f; m++ {
				count[m*nmax+n]++
			}
		}
	}
	for i, c := range count {
		if c != 1 {
			t.Errorf("finest cell %d is covered %d times", i, c)
		}
	}
}

func TestRefinementBalance(t *testing.T) {
	// Adjacent cells never differ by more than one level.
	g, err := Build(&GridConfig{
		X0: 100, Y0: 200, DX: 8, DY: 8, NMax: 4, MMax: 5,
		Rotation: 30,
		RefinementPolygons: []RefinementPolygon{
			{Polygonal: square(110, 210, 3), Level: 3},
			{Polygonal: square(120, 215, 10), Level: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.NumLevels != 4 {
		t.Errorf("want 4 levels but have %d", g.NumLevels)
	}
	checkCoverage(t, g)
	for i := range g.Level {
		for _, d := range Directions {
			for _, j := range g.Neighbors.Get(i, d).Cells() {
				if diff := g.Level[i] - g.Level[j]; diff > 1 || diff < -1 {
					t.Errorf("cells %d and %d differ by %d levels", i, j, diff)
				}
			}
		}
	}
}

func TestRefinementOutsideGrid(t *testing.T) {
	g, err := Build(&GridConfig{
		DX: 1, DY: 1, NMax: 2, MMax: 2,
		RefinementPolygons: []RefinementPolygon{
			{Polygonal: square(10, 10, 1), Level: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.NumLevels != 2 {
		t.Errorf("want 2 levels but have %d", g.NumLevels)
	}
	if g.NumCells() != 4 {
		t.Errorf("want 4 cells but have %d", g.NumCells())
	}
	if want := []int{0, 4}; !reflect.DeepEqual(g.IFirst, want) {
		t.Errorf("want ifirst %v but have %v", want, g.IFirst)
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name string
		c    GridConfig
	}{
		{name: "dx", c: GridConfig{DX: 0, DY: 1, NMax: 1, MMax: 1}},
		{name: "dy", c: GridConfig{DX: 1, DY: -1, NMax: 1, MMax: 1}},
		{name: "nmax", c: GridConfig{DX: 1, DY: 1, NMax: 0, MMax: 1}},
		{name: "negative level", c: GridConfig{DX: 1, DY: 1, NMax: 1, MMax: 1,
			RefinementPolygons: []RefinementPolygon{{Polygonal: square(0, 0, 1), Level: -1}}}},
		{name: "large level", c: GridConfig{DX: 1, DY: 1, NMax: 1, MMax: 1,
			RefinementPolygons: []RefinementPolygon{{Polygonal: square(0, 0, 1), Level: 200}}}},
		{name: "no geometry", c: GridConfig{DX: 1, DY: 1, NMax: 1, MMax: 1,
			RefinementPolygons: []RefinementPolygon{{Level: 1}}}},
		{name: "epsg", c: GridConfig{DX: 1, DY: 1, NMax: 1, MMax: 1, EPSG: -1}},
		{name: "deep level", c: GridConfig{DX: 1, DY: 1, NMax: 1, MMax: 1,
			RefinementPolygons: []RefinementPolygon{{Polygonal: square(0, 0, 1), Level: 63}}}},
		{name: "too many cells", c: GridConfig{DX: 1, DY: 1, NMax: 1 << 15, MMax: 1 << 14}},
		{name: "too many refined cells", c: GridConfig{DX: 1, DY: 1, NMax: 1000, MMax: 1000,
			RefinementPolygons: []RefinementPolygon{{Polygonal: square(0, 0, 1), Level: 5}}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Build(&test.c)
			if _, ok := err.(*InvalidGridError); !ok {
				t.Errorf("want *InvalidGridError but have %T: %v", err, err)
			}
		})
	}
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name string
		g    Grid
	}{
		{name: "no levels", g: Grid{}},
		{name: "lengths", g: Grid{NumLevels: 1, Level: []int{0, 0}, N: []int{0}, M: []int{0, 1}}},
		{name: "level range", g: Grid{NumLevels: 1, Level: []int{1}, N: []int{0}, M: []int{0}}},
		{name: "level order", g: Grid{NumLevels: 2, Level: []int{1, 0}, N: []int{0, 0}, M: []int{0, 0}}},
		{name: "negative index", g: Grid{NumLevels: 1, Level: []int{0}, N: []int{-1}, M: []int{0}}},
		{name: "z length", g: Grid{NumLevels: 1, Level: []int{0}, N: []int{0}, M: []int{0}, Z: []float64{}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.g.validate()
			if _, ok := err.(*InvalidGridError); !ok {
				t.Errorf("want *InvalidGridError but have %T: %v", err, err)
			}
		})
	}
}

func TestComputeLevelOffsets(t *testing.T) {
	g := &Grid{NumLevels: 4, Level: []int{0, 0, 2, 2, 2, 3}}
	g.computeLevelOffsets()
	if want := []int{0, 2, 2, 5}; !reflect.DeepEqual(g.IFirst, want) {
		t.Errorf("want %v but have %v", want, g.IFirst)
	}
	g = &Grid{NumLevels: 2, Level: []int{0}}
	g.computeLevelOffsets()
	if want := []int{0, 1}; !reflect.DeepEqual(g.IFirst, want) {
		t.Errorf("want %v but have %v", want, g.IFirst)
	}
}

func TestSiblings(t *testing.T) {
	for n := 0; n < 4; n++ {
		for m := 0; m < 4; m++ {
			for _, s := range siblings(n, m) {
				if parent(s[0]) != parent(n) || parent(s[1]) != parent(m) {
					t.Errorf("(%d, %d) and %v do not share a parent", n, m, s)
				}
				if s[0] == n && s[1] == m {
					t.Errorf("(%d, %d) is its own sibling", n, m)
				}
			}
		}
	}
}
