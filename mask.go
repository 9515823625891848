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
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ctessum/geom"
)

// Mask values.
const (
	MaskInactive        int8 = 0
	MaskActive          int8 = 1
	MaskOpenBoundary    int8 = 2
	MaskOutflowBoundary int8 = 3
)

// Mask holds a value for each cell of a grid.
type Mask []int8

// MaskPolygon is a region used to build a mask. Cells are only affected
// if their elevation is between Zmin and Zmax. A polygon whose Zmin is
// not less than its Zmax applies no elevation limit.
type MaskPolygon struct {
	geom.Polygonal
	Zmin, Zmax float64
}

// MaskConfig holds the information needed to build a mask.
type MaskConfig struct {
	// Cells with elevation between Zmin and Zmax are initially active.
	// If Zmin is not less than Zmax, no cells are initially active.
	Zmin, Zmax float64

	// Include and Exclude polygons activate and deactivate cells.
	Include, Exclude []MaskPolygon

	// OpenBoundary and OutflowBoundary polygons mark active cells at the
	// edge of the active area as boundary cells. They are not used for
	// wave masks.
	OpenBoundary, OutflowBoundary []MaskPolygon
}

// BuildMask creates a flow mask for g. An *EmptyMaskWarning error is
// returned along with a valid mask if no cells could be activated.
func (g *Grid) BuildMask(c *MaskConfig) (Mask, error) {
	mask, warn := g.baseMask(c)
	if mask == nil {
		return make(Mask, g.NumCells()), warn
	}
	for _, p := range c.OpenBoundary {
		g.markBoundary(mask, p, MaskOpenBoundary)
	}
	for _, p := range c.OutflowBoundary {
		g.markBoundary(mask, p, MaskOutflowBoundary)
	}
	if warn != nil {
		return mask, warn
	}
	return mask, nil
}

// BuildWaveMask creates a wave model mask for g. Boundary polygons in c
// are ignored.
func (g *Grid) BuildWaveMask(c *MaskConfig) (Mask, error) {
	mask, warn := g.baseMask(c)
	if mask == nil {
		return make(Mask, g.NumCells()), warn
	}
	if warn != nil {
		return mask, warn
	}
	return mask, nil
}

// baseMask applies the elevation range and the include and exclude
// polygons. It returns a nil mask if no cells can be active.
func (g *Grid) baseMask(c *MaskConfig) (Mask, *EmptyMaskWarning) {
	if g.X == nil {
		g.computeCellCentres()
	}
	mask := make(Mask, g.NumCells())
	hasZ := g.HasElevation()
	var warn *EmptyMaskWarning
	if c.Zmin >= c.Zmax {
		if len(c.Include) == 0 {
			return nil, &EmptyMaskWarning{Reason: "zmax must be greater than zmin, or include polygons must be provided"}
		}
	} else if hasZ {
		for i, z := range g.Z {
			if z >= c.Zmin && z <= c.Zmax {
				mask[i] = MaskActive
			}
		}
	} else {
		warn = &EmptyMaskWarning{Reason: "no elevation values found on grid"}
	}

	for _, p := range c.Include {
		for _, i := range g.CellsIn(p) {
			if g.zInRange(i, p, hasZ) {
				mask[i] = MaskActive
			}
		}
	}
	for _, p := range c.Exclude {
		for _, i := range g.CellsIn(p) {
			if g.zInRange(i, p, hasZ) {
				mask[i] = MaskInactive
			}
		}
	}
	if warn != nil && len(mask.Select("all")) > 0 {
		warn = nil
	}
	return mask, warn
}

// zInRange reports whether the elevation of cell i is within the range
// of p. Grids without elevation are always in range.
func (g *Grid) zInRange(i int, p MaskPolygon, hasZ bool) bool {
	if !hasZ || p.Zmin >= p.Zmax {
		return true
	}
	z := g.Z[i]
	return !math.IsNaN(z) && z >= p.Zmin && z <= p.Zmax
}

// markBoundary sets cells in p to value if they are active and are next
// to an inactive cell or the edge of the grid.
func (g *Grid) markBoundary(mask Mask, p MaskPolygon, value int8) {
	hasZ := g.HasElevation()
	for _, i := range g.CellsIn(p) {
		if mask[i] > MaskInactive && g.zInRange(i, p, hasZ) && g.touchesInactive(i, mask) {
			mask[i] = value
		}
	}
}

// touchesInactive reports whether cell i has a side that borders an
// inactive cell or no cell.
func (g *Grid) touchesInactive(i int, mask Mask) bool {
	for _, d := range Directions {
		nb := g.Neighbors.Get(i, d)
		switch nb.Relation {
		case None:
			return true
		case Finer:
			for _, j := range [2]int{nb.First, nb.Second} {
				if j < 0 || mask[j] == MaskInactive {
					return true
				}
			}
		default:
			if mask[nb.First] == MaskInactive {
				return true
			}
		}
	}
	return false
}

// Select returns the indices of the cells matching option, which is one
// of "all" (any active cell), "include" (active non-boundary cells),
// "open" (open boundary cells) or "outflow" (outflow boundary cells).
// Any other option selects every cell.
func (m Mask) Select(option string) []int {
	var o []int
	for i, v := range m {
		var ok bool
		switch option {
		case "all":
			ok = v > MaskInactive
		case "include":
			ok = v == MaskActive
		case "open":
			ok = v == MaskOpenBoundary
		case "outflow":
			ok = v == MaskOutflowBoundary
		default:
			ok = true
		}
		if ok {
			o = append(o, i)
		}
	}
	return o
}

// HasOpenBoundaries reports whether any cell is an open boundary cell.
func (m Mask) HasOpenBoundaries() bool {
	for _, v := range m {
		if v == MaskOpenBoundary {
			return true
		}
	}
	return false
}

// WriteMask writes m to w as one byte per cell.
func WriteMask(w io.Writer, m Mask) error {
	if err := binary.Write(w, binary.LittleEndian, []int8(m)); err != nil {
		return fmt.Errorf("quadtree: writing mask: %v", err)
	}
	return nil
}

// ReadMask reads a mask of n cells from r.
func ReadMask(r io.Reader, n int) (Mask, error) {
	m := make(Mask, n)
	if err := binary.Read(r, binary.LittleEndian, []int8(m)); err != nil {
		return nil, fmt.Errorf("quadtree: reading mask: %v", err)
	}
	return m, nil
}

func (g *Grid) checkMask(m Mask) error {
	if len(m) != g.NumCells() {
		return invalidf("mask has %d values but the grid has %d cells", len(m), g.NumCells())
	}
	return nil
}
