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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// File relation codes. Zero is used both for a neighbor at the same
// level and for no neighbor, which are told apart by the index.
const (
	codeCoarser int8 = -1
	codeSame    int8 = 0
	codeFiner   int8 = 1
)

// fileDirections is the order in which neighbor arrays are stored.
var fileDirections = [4]Direction{Above, Right, Below, Left}

// header is the fixed-size start of a quadtree file.
type header struct {
	Version   int8
	EPSG      int32
	NumCells  int32
	NumLevels int8
	X0, Y0    float32
	DX, DY    float32
	Rotation  float32
}

// Save writes g to w in the binary quadtree format. Indices are stored
// one-based so that zero means no value.
func (g *Grid) Save(w io.Writer) error {
	if err := g.validate(); err != nil {
		return err
	}
	if g.Neighbors == nil || g.Neighbors.Len() != g.NumCells() {
		return invalidf("neighbors must be found before saving")
	}
	bw := bufio.NewWriter(w)
	n := g.NumCells()
	h := header{
		Version:   g.Version,
		EPSG:      int32(g.EPSG),
		NumCells:  int32(n),
		NumLevels: int8(g.NumLevels),
		X0:        float32(g.X0),
		Y0:        float32(g.Y0),
		DX:        float32(g.DX),
		DY:        float32(g.DY),
		Rotation:  float32(g.Rotation),
	}
	level := make([]int8, n)
	nn := make([]int32, n)
	mm := make([]int32, n)
	for i := range g.Level {
		level[i] = int8(g.Level[i] + 1)
		nn[i] = int32(g.N[i] + 1)
		mm[i] = int32(g.M[i] + 1)
	}
	data := []interface{}{h, level, nn, mm}
	for _, d := range fileDirections {
		codes := make([]int8, n)
		i1 := make([]int32, n)
		i2 := make([]int32, n)
		for i := 0; i < n; i++ {
			codes[i], i1[i], i2[i] = encodeNeighbor(g.Neighbors.Get(i, d))
		}
		data = append(data, codes, i1, i2)
	}
	z := make([]float32, n)
	for i := range z {
		if g.Z == nil {
			z[i] = float32(math.NaN())
		} else {
			z[i] = float32(g.Z[i])
		}
	}
	data = append(data, z)

	for _, d := range data {
		if err := binary.Write(bw, binary.LittleEndian, d); err != nil {
			return fmt.Errorf("quadtree: saving grid: %v", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("quadtree: saving grid: %v", err)
	}
	return nil
}

func encodeNeighbor(nb Neighbor) (code int8, i1, i2 int32) {
	switch nb.Relation {
	case SameLevel:
		code = codeSame
	case Coarser:
		code = codeCoarser
	case Finer:
		code = codeFiner
	}
	return code, int32(nb.First + 1), int32(nb.Second + 1)
}

func decodeNeighbor(code int8, i1, i2 int32, ncells int) (Neighbor, error) {
	nb := Neighbor{First: int(i1) - 1, Second: int(i2) - 1}
	if nb.First < -1 || nb.First >= ncells || nb.Second < -1 || nb.Second >= ncells {
		return nb, fmt.Errorf("neighbor index out of range: %d, %d", nb.First, nb.Second)
	}
	switch code {
	case codeSame:
		nb.Relation = SameLevel
	case codeCoarser:
		nb.Relation = Coarser
	case codeFiner:
		nb.Relation = Finer
	default:
		return nb, fmt.Errorf("invalid neighbor code %d", code)
	}
	if nb.Relation != Finer {
		nb.Second = -1
		if nb.First < 0 {
			return noNeighbor, nil
		}
	} else if nb.First < 0 && nb.Second < 0 {
		return noNeighbor, nil
	}
	return nb, nil
}

// Load reads a grid in the binary quadtree format from r. If the
// coordinate system in the file is not recognized, the grid is returned
// along with an *UnknownCRSWarning error.
func Load(r io.Reader) (*Grid, error) {
	br := bufio.NewReader(r)
	read := func(v interface{}) error {
		if err := binary.Read(br, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("quadtree: loading grid: %v", err)
		}
		return nil
	}
	var h header
	if err := read(&h); err != nil {
		return nil, err
	}
	if h.NumCells < 0 {
		return nil, invalidf("negative number of cells %d", h.NumCells)
	}
	n := int(h.NumCells)
	g := &Grid{
		Version:   h.Version,
		EPSG:      int(h.EPSG),
		NumLevels: int(h.NumLevels),
		X0:        float64(h.X0),
		Y0:        float64(h.Y0),
		DX:        float64(h.DX),
		DY:        float64(h.DY),
		Rotation:  float64(h.Rotation),
	}

	level := make([]int8, n)
	nn := make([]int32, n)
	mm := make([]int32, n)
	for _, v := range []interface{}{level, nn, mm} {
		if err := read(v); err != nil {
			return nil, err
		}
	}
	g.Level = make([]int, n)
	g.N = make([]int, n)
	g.M = make([]int, n)
	for i := 0; i < n; i++ {
		g.Level[i] = int(level[i]) - 1
		g.N[i] = int(nn[i]) - 1
		g.M[i] = int(mm[i]) - 1
	}
	if err := g.validate(); err != nil {
		return nil, err
	}

	nt := NewNeighborTable(n)
	codes := make([]int8, n)
	i1 := make([]int32, n)
	i2 := make([]int32, n)
	for _, d := range fileDirections {
		for _, v := range []interface{}{codes, i1, i2} {
			if err := read(v); err != nil {
				return nil, err
			}
		}
		for i := 0; i < n; i++ {
			nb, err := decodeNeighbor(codes[i], i1[i], i2[i], n)
			if err != nil {
				return nil, invalidf("cell %d, %s: %v", i, d, err)
			}
			nt.Set(i, d, nb)
		}
	}
	if err := g.SetNeighbors(nt); err != nil {
		return nil, err
	}

	z := make([]float32, n)
	if err := read(z); err != nil {
		return nil, err
	}
	g.Z = make([]float64, n)
	for i, v := range z {
		g.Z[i] = float64(v)
	}

	g.computeLevelOffsets()
	g.computeCellCentres()

	if g.EPSG != 0 {
		if _, err := ProjDef(g.EPSG); err != nil {
			return g, err
		}
	}
	return g, nil
}
