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

func TestCellCentres(t *testing.T) {
	g, err := Build(&GridConfig{X0: 10, Y0: 20, DX: 2, DY: 1, NMax: 2, MMax: 2})
	if err != nil {
		t.Fatal(err)
	}
	wantX := []float64{11, 11, 13, 13}
	wantY := []float64{20.5, 21.5, 20.5, 21.5}
	if !reflect.DeepEqual(g.X, wantX) || !reflect.DeepEqual(g.Y, wantY) {
		t.Errorf("want centres %v, %v but have %v, %v", wantX, wantY, g.X, g.Y)
	}

	g, err = Build(&GridConfig{X0: 10, Y0: 20, DX: 2, DY: 1, NMax: 2, MMax: 2, Rotation: 90})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(g.X[0]-9.5) > 1e-12 || math.Abs(g.Y[0]-21) > 1e-12 {
		t.Errorf("want rotated centre (9.5, 21) but have (%g, %g)", g.X[0], g.Y[0])
	}
}

func TestCellPolygon(t *testing.T) {
	g := refinedGrid(t)
	want := geom.Polygon{geom.Path{{X: 0.5, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0.5}, {X: 0.5, Y: 0.5}, {X: 0.5, Y: 0}}}
	if have := g.CellPolygon(5); !reflect.DeepEqual(have, want) {
		t.Errorf("want %v but have %v", want, have)
	}
	b := g.Bounds()
	if b.Min.X != 0 || b.Min.Y != 0 || b.Max.X != 2 || b.Max.Y != 2 {
		t.Errorf("want bounds 0-2 but have %+v", b)
	}
}

func TestCellAt(t *testing.T) {
	g := refinedGrid(t)
	tests := []struct {
		x, y float64
		want int
		ok   bool
	}{
		{x: 0.25, y: 0.25, want: 3, ok: true},
		{x: 0.75, y: 0.75, want: 6, ok: true},
		{x: 1.5, y: 0.5, want: 1, ok: true},
		{x: 0.5, y: 1.5, want: 0, ok: true},
		{x: 1, y: 1.5, want: 0, ok: true}, // shared edge
		{x: 3, y: 1, want: -1, ok: false},
	}
	for _, test := range tests {
		have, ok := g.CellAt(test.x, test.y)
		if have != test.want || ok != test.ok {
			t.Errorf("(%g, %g): want %d, %v but have %d, %v", test.x, test.y, test.want, test.ok, have, ok)
		}
	}
}

func TestCellsIn(t *testing.T) {
	g := refinedGrid(t)
	have := g.CellsIn(square(0.6, 0, 1.4))
	if want := []int{1, 5, 6}; !reflect.DeepEqual(have, want) {
		t.Errorf("want %v but have %v", want, have)
	}
	if have := g.CellsIn(square(5, 5, 1)); len(have) != 0 {
		t.Errorf("want no cells but have %v", have)
	}
}

func TestUVPoints(t *testing.T) {
	g := uniformGrid(t, 3, 3)
	if have := len(g.UVPoints()); have != 12 {
		t.Errorf("want 12 points but have %d", have)
	}

	g = refinedGrid(t)
	pts := g.UVPoints()
	// Right then top of each cell. Cell 2 has neither.
	want := []geom.Point{
		{X: 1, Y: 1.5},
		{X: 1.5, Y: 1},
		{X: 0.5, Y: 0.25}, {X: 0.25, Y: 0.5},
		{X: 0.5, Y: 0.75}, {X: 0.25, Y: 1},
		{X: 1, Y: 0.25}, {X: 0.75, Y: 0.5},
		{X: 1, Y: 0.75}, {X: 0.75, Y: 1},
	}
	if !reflect.DeepEqual(pts, want) {
		t.Errorf("want %v but have %v", want, pts)
	}
}
