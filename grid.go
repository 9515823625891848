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

// Package quadtree builds multi-resolution quadtree meshes for coastal
// flow and wave models, resolves the adjacency between cells of
// different sizes, and reads and writes the mesh in the binary quadtree
// file format.
package quadtree

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// Version is the version of the binary quadtree file format written by
// this package.
const Version int8 = 0

// maxLevels is the number of refinement levels that fit in the int8
// level field of the file format.
const maxLevels = 127

// maxMaskCells is the largest total number of cells, summed over all
// levels, that a grid configuration may describe. Refinement works on
// dense per-level masks, so this bounds the memory used by Build.
const maxMaskCells = 1 << 28

// GridConfig holds the information needed to build a quadtree grid.
type GridConfig struct {
	// X0 and Y0 are the coordinates of the lower-left corner of the grid.
	X0, Y0 float64

	// DX and DY are the cell sizes at the coarsest level.
	DX, DY float64

	// Rotation is the counter-clockwise rotation of the grid around
	// (X0, Y0), in degrees.
	Rotation float64

	// NMax and MMax are the number of rows and columns at the coarsest
	// level.
	NMax, MMax int

	// EPSG is the EPSG code of the grid coordinate system. Zero means
	// that the grid has no coordinate system.
	EPSG int

	// RefinementPolygons specify where the grid should be refined.
	RefinementPolygons []RefinementPolygon
}

// RefinementPolygon is a region in which the grid should be refined to
// at least Level.
type RefinementPolygon struct {
	geom.Polygonal

	// Level is the target refinement level, where 0 is the coarsest.
	Level int

	// Zmin and Zmax are an optional elevation range carried over from
	// the input file.
	Zmin, Zmax float64
}

// Grid is a quadtree mesh. Cell properties are held in parallel arrays
// indexed by cell. Cells are grouped by level, in ascending level order.
type Grid struct {
	X0, Y0   float64
	DX, DY   float64
	Rotation float64

	// NMax and MMax are the number of rows and columns at the coarsest
	// level. They are zero for grids read from a file.
	NMax, MMax int

	// EPSG is the EPSG code of the grid coordinate system, or zero.
	EPSG int

	// Version is the file format version the grid was read with.
	Version int8

	// NumLevels is the number of refinement levels.
	NumLevels int

	// Level, N and M are the refinement level, row and column of each
	// cell. N and M count cells at the resolution of the cell's level.
	Level, N, M []int

	// Z is the elevation of each cell. It is NaN where unset.
	Z []float64

	// X and Y are the coordinates of each cell centre.
	X, Y []float64

	// IFirst holds the index of the first cell in each level.
	IFirst []int

	// Neighbors holds the adjacency of each cell.
	Neighbors *NeighborTable

	index *rtree.Rtree
}

// NumCells returns the number of cells in the grid.
func (g *Grid) NumCells() int { return len(g.Level) }

// Build creates a new quadtree grid from c. Cells are refined inside of
// the refinement polygons and around them, so that adjacent cells never
// differ by more than one level.
func Build(c *GridConfig) (*Grid, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	g := &Grid{
		X0:       c.X0,
		Y0:       c.Y0,
		DX:       c.DX,
		DY:       c.DY,
		Rotation: c.Rotation,
		NMax:     c.NMax,
		MMax:     c.MMax,
		EPSG:     c.EPSG,
		Version:  Version,
	}
	masks := c.refinementMasks()
	g.NumLevels = len(masks)
	g.assemble(masks)

	g.computeCellCentres()
	nt, err := g.FindNeighbors()
	if err != nil {
		return nil, err
	}
	if err = g.SetNeighbors(nt); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *GridConfig) validate() error {
	if !(c.DX > 0) || !(c.DY > 0) {
		return invalidf("dx=%g and dy=%g but both should be >0", c.DX, c.DY)
	}
	if c.NMax <= 0 || c.MMax <= 0 {
		return invalidf("nmax=%d and mmax=%d but both should be >0", c.NMax, c.MMax)
	}
	for i, p := range c.RefinementPolygons {
		if p.Level < 0 {
			return invalidf("refinement polygon %d has negative level %d", i, p.Level)
		}
		if p.Level >= maxLevels {
			return invalidf("refinement polygon %d has level %d but the maximum is %d",
				i, p.Level, maxLevels-1)
		}
		if p.Polygonal == nil {
			return invalidf("refinement polygon %d has no geometry", i)
		}
	}
	var total int64
	for l := 0; l < c.numLevels(); l++ {
		if int64(c.NMax) > maxMaskCells>>uint(l) || int64(c.MMax) > maxMaskCells>>uint(l) {
			return invalidf("level %d of a %dx%d grid has more than %d cells", l, c.NMax, c.MMax, maxMaskCells)
		}
		total += (int64(c.NMax) << uint(l)) * (int64(c.MMax) << uint(l))
		if total > maxMaskCells {
			return invalidf("levels 0 to %d of a %dx%d grid have more than %d cells", l, c.NMax, c.MMax, maxMaskCells)
		}
	}
	if c.EPSG < 0 {
		return invalidf("epsg=%d but should be >=0", c.EPSG)
	}
	return nil
}

// validate checks that the per-cell arrays of g are consistent.
func (g *Grid) validate() error {
	if g.NumLevels <= 0 || g.NumLevels > maxLevels {
		return invalidf("%d refinement levels; should be between 1 and %d", g.NumLevels, maxLevels)
	}
	n := len(g.Level)
	if len(g.N) != n || len(g.M) != n {
		return invalidf("array lengths do not match: level=%d, n=%d, m=%d", n, len(g.N), len(g.M))
	}
	if g.Z != nil && len(g.Z) != n {
		return invalidf("z has length %d but there are %d cells", len(g.Z), n)
	}
	last := 0
	for i, l := range g.Level {
		if l < 0 || l >= g.NumLevels {
			return invalidf("cell %d has level %d; should be between 0 and %d", i, l, g.NumLevels-1)
		}
		if l < last {
			return invalidf("cell %d has level %d after a cell with level %d; "+
				"cells must be grouped by ascending level", i, l, last)
		}
		last = l
		if g.N[i] < 0 || g.M[i] < 0 {
			return invalidf("cell %d has negative index n=%d, m=%d", i, g.N[i], g.M[i])
		}
	}
	return nil
}

// computeLevelOffsets sets IFirst from the cell levels. Levels with no
// cells start where the next level starts.
func (g *Grid) computeLevelOffsets() {
	g.IFirst = make([]int, g.NumLevels)
	next := len(g.Level)
	for l := g.NumLevels - 1; l >= 0; l-- {
		g.IFirst[l] = next
		for next > 0 && g.Level[next-1] == l {
			next--
			g.IFirst[l] = next
		}
	}
}

// HasElevation reports whether any cell has an elevation value.
func (g *Grid) HasElevation() bool {
	for _, z := range g.Z {
		if !math.IsNaN(z) {
			return true
		}
	}
	return false
}

// SR returns the spatial reference of the grid.
func (g *Grid) SR() (*proj.SR, error) {
	return SpatialReference(g.EPSG)
}

// cellSize returns the cell size at the given level.
func (g *Grid) cellSize(level int) (dx, dy float64) {
	f := math.Pow(2, float64(level))
	return g.DX / f, g.DY / f
}

// rotation returns the cosine and sine of the grid rotation.
func (g *Grid) rotation() (cos, sin float64) {
	a := g.Rotation * math.Pi / 180
	return math.Cos(a), math.Sin(a)
}

// toWorld converts grid-aligned offsets from the origin into world
// coordinates.
func (g *Grid) toWorld(u, v, cos, sin float64) (x, y float64) {
	return g.X0 + cos*u - sin*v, g.Y0 + sin*u + cos*v
}
