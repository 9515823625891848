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
	"bytes"
	"reflect"
	"testing"
)

// coastGrid returns a grid with 3 rows and 4 columns of unit cells in
// which the first column is land at 5 m and the rest is water at -5 m.
func coastGrid(t *testing.T) *Grid {
	g := uniformGrid(t, 3, 4)
	r := &Raster{DX: 1, DY: 1, NX: 4, NY: 3, Z: make([]float64, 12)}
	for j := 0; j < r.NY; j++ {
		for i := 0; i < r.NX; i++ {
			if i == 0 {
				r.Z[j*r.NX+i] = 5
			} else {
				r.Z[j*r.NX+i] = -5
			}
		}
	}
	g.SetElevation(r)
	return g
}

func TestBuildMaskElevation(t *testing.T) {
	g := coastGrid(t)
	mask, err := g.BuildMask(&MaskConfig{Zmin: -10, Zmax: 0})
	if err != nil {
		t.Fatal(err)
	}
	want := Mask{0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	if !reflect.DeepEqual(mask, want) {
		t.Errorf("want %v but have %v", want, mask)
	}
}

func TestBuildMaskBoundary(t *testing.T) {
	g := coastGrid(t)
	everywhere := MaskPolygon{Polygonal: square(-1, -1, 10)}
	mask, err := g.BuildMask(&MaskConfig{
		Zmin: -10, Zmax: 0,
		OpenBoundary: []MaskPolygon{everywhere},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Only the cell at n=1, m=2 is away from land and the grid edge.
	want := Mask{0, 0, 0, 2, 2, 2, 2, 1, 2, 2, 2, 2}
	if !reflect.DeepEqual(mask, want) {
		t.Errorf("want %v but have %v", want, mask)
	}
	if have := mask.Select("include"); !reflect.DeepEqual(have, []int{7}) {
		t.Errorf("include: want [7] but have %v", have)
	}
	if have := mask.Select("open"); len(have) != 8 {
		t.Errorf("open: want 8 cells but have %v", have)
	}
	if have := mask.Select("all"); len(have) != 9 {
		t.Errorf("all: want 9 cells but have %v", have)
	}
	if have := mask.Select("outflow"); len(have) != 0 {
		t.Errorf("outflow: want no cells but have %v", have)
	}
	if have := mask.Select(""); len(have) != 12 {
		t.Errorf("default: want 12 cells but have %v", have)
	}
	if !mask.HasOpenBoundaries() {
		t.Error("mask should have open boundaries")
	}

	// Boundary polygons are not used for wave masks.
	wave, err := g.BuildWaveMask(&MaskConfig{
		Zmin: -10, Zmax: 0,
		OpenBoundary: []MaskPolygon{everywhere},
	})
	if err != nil {
		t.Fatal(err)
	}
	if wave.HasOpenBoundaries() {
		t.Error("wave mask should not have open boundaries")
	}
}

func TestBuildMaskOutflow(t *testing.T) {
	g := coastGrid(t)
	// Covers the centres of the right column only.
	right := MaskPolygon{Polygonal: square(3.1, -1, 5)}
	mask, err := g.BuildMask(&MaskConfig{
		Zmin: -10, Zmax: 0,
		OutflowBoundary: []MaskPolygon{right},
	})
	if err != nil {
		t.Fatal(err)
	}
	if have := mask.Select("outflow"); !reflect.DeepEqual(have, []int{9, 10, 11}) {
		t.Errorf("want outflow cells [9 10 11] but have %v", have)
	}
}

func TestBuildMaskIncludeExclude(t *testing.T) {
	g := coastGrid(t)
	// No elevation range, so only include polygons activate cells.
	mask, err := g.BuildMask(&MaskConfig{
		Include: []MaskPolygon{
			{Polygonal: square(-1, -1, 10), Zmin: 0, Zmax: 10},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := (Mask{1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}); !reflect.DeepEqual(mask, want) {
		t.Errorf("want %v but have %v", want, mask)
	}

	mask, err = g.BuildMask(&MaskConfig{
		Zmin: -10, Zmax: 0,
		Exclude: []MaskPolygon{{Polygonal: square(3, 0, 1)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if mask[9] != MaskInactive || mask[10] != MaskActive {
		t.Errorf("cell 9 should be excluded: %v", mask)
	}
}

func TestBuildMaskEmpty(t *testing.T) {
	g := coastGrid(t)
	mask, err := g.BuildMask(&MaskConfig{Zmin: 0, Zmax: 0})
	if _, ok := err.(*EmptyMaskWarning); !ok {
		t.Fatalf("want *EmptyMaskWarning but have %T: %v", err, err)
	}
	if !IsWarning(err) {
		t.Error("should be a warning")
	}
	if len(mask) != g.NumCells() || len(mask.Select("all")) != 0 {
		t.Errorf("want empty mask of %d cells but have %v", g.NumCells(), mask)
	}

	wave, err := g.BuildWaveMask(&MaskConfig{Zmin: 5, Zmax: -5})
	if _, ok := err.(*EmptyMaskWarning); !ok {
		t.Errorf("want *EmptyMaskWarning but have %T: %v", err, err)
	}
	if len(wave) != g.NumCells() {
		t.Errorf("want %d cells but have %d", g.NumCells(), len(wave))
	}
}

func TestBuildMaskNoElevation(t *testing.T) {
	g := uniformGrid(t, 2, 2)
	mask, err := g.BuildMask(&MaskConfig{Zmin: -10, Zmax: 0})
	if _, ok := err.(*EmptyMaskWarning); !ok {
		t.Errorf("want *EmptyMaskWarning but have %T: %v", err, err)
	}
	if len(mask.Select("all")) != 0 {
		t.Errorf("want empty mask but have %v", mask)
	}

	mask, err = g.BuildMask(&MaskConfig{
		Zmin: -10, Zmax: 0,
		Include: []MaskPolygon{{Polygonal: square(0, 0, 1)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := (Mask{1, 0, 0, 0}); !reflect.DeepEqual(mask, want) {
		t.Errorf("want %v but have %v", want, mask)
	}
}

func TestWriteReadMask(t *testing.T) {
	m := Mask{0, 1, 2, 3, 1}
	var buf bytes.Buffer
	if err := WriteMask(&buf, m); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 5 {
		t.Errorf("want 5 bytes but have %d", buf.Len())
	}
	m2, err := ReadMask(&buf, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m, m2) {
		t.Errorf("want %v but have %v", m, m2)
	}
	if _, err := ReadMask(bytes.NewReader([]byte{1}), 2); err == nil {
		t.Error("want error for short mask")
	}
}

func TestCheckMask(t *testing.T) {
	g := uniformGrid(t, 2, 2)
	if err := g.checkMask(Mask{1}); err == nil {
		t.Error("want error for wrong length")
	}
}
