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

	"github.com/ctessum/geom"
)

// levelMask holds the refinement state of every possible cell in one
// level. Arrays are column-major: cell (n, m) is at m*nmax+n.
type levelMask struct {
	nmax, mmax int

	// initial marks cells that lie in a refinement polygon for this level.
	initial []bool

	// refined marks cells that are superseded by finer cells.
	refined []bool

	// use marks cells that are part of the final grid.
	use []bool
}

func newLevelMask(nmax, mmax int) *levelMask {
	return &levelMask{
		nmax:    nmax,
		mmax:    mmax,
		initial: make([]bool, nmax*mmax),
		refined: make([]bool, nmax*mmax),
		use:     make([]bool, nmax*mmax),
	}
}

func (lm *levelMask) at(n, m int) int { return m*lm.nmax + n }

func (lm *levelMask) inRange(n, m int) bool {
	return n >= 0 && n < lm.nmax && m >= 0 && m < lm.mmax
}

// numLevels returns the number of refinement levels needed for the
// refinement polygons in c.
func (c *GridConfig) numLevels() int {
	nlev := 1
	for _, p := range c.RefinementPolygons {
		if p.Level+1 > nlev {
			nlev = p.Level + 1
		}
	}
	return nlev
}

// refinementMasks determines which cells at each level are part of the
// grid.
func (c *GridConfig) refinementMasks() []*levelMask {
	nlev := c.numLevels()
	masks := make([]*levelMask, nlev)
	for l := range masks {
		f := 1 << uint(l)
		masks[l] = newLevelMask(c.NMax*f, c.MMax*f)
	}
	for i := range masks[0].initial {
		masks[0].initial[i] = true
	}
	for l := nlev - 1; l > 0; l-- {
		for _, p := range c.RefinementPolygons {
			if p.Level == l {
				c.markPolygon(masks[l], l, p.Polygonal)
			}
		}
	}

	for l := nlev - 1; l >= 0; l-- {
		lm := masks[l]
		for m := 0; m < lm.mmax; m++ {
			for n := 0; n < lm.nmax; n++ {
				if lm.refined[lm.at(n, m)] {
					continue
				}
				if !lm.initial[lm.at(n, m)] && !(l < nlev-1 && lm.neighborRefined(n, m)) {
					continue
				}
				lm.use[lm.at(n, m)] = true

				// Coarser versions of this cell must not be used.
				nn, mm := n, m
				for jl := l - 1; jl >= 0; jl-- {
					nn, mm = parent(nn), parent(mm)
					masks[jl].refined[masks[jl].at(nn, mm)] = true
				}

				// Quadtree cells are refined as a unit of four.
				for _, s := range siblings(n, m) {
					if lm.inRange(s[0], s[1]) && !lm.refined[lm.at(s[0], s[1])] {
						lm.use[lm.at(s[0], s[1])] = true
					}
				}
			}
		}
	}
	return masks
}

// neighborRefined reports whether any of the four cells sharing a side
// with (n, m) is superseded by finer cells.
func (lm *levelMask) neighborRefined(n, m int) bool {
	for _, o := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
		nn, mm := n+o[0], m+o[1]
		if lm.inRange(nn, mm) && lm.refined[lm.at(nn, mm)] {
			return true
		}
	}
	return false
}

// markPolygon marks the cells at level l that have a corner or their
// centre inside of p.
func (c *GridConfig) markPolygon(lm *levelMask, l int, p geom.Polygonal) {
	f := math.Pow(2, float64(l))
	dx, dy := c.DX/f, c.DY/f
	a := c.Rotation * math.Pi / 180
	cos, sin := math.Cos(a), math.Sin(a)

	// Find the polygon extent in grid coordinates.
	b := p.Bounds()
	n0, n1 := math.MaxInt32, math.MinInt32
	m0, m1 := math.MaxInt32, math.MinInt32
	for _, pt := range []geom.Point{b.Min, b.Max, {X: b.Min.X, Y: b.Max.Y}, {X: b.Max.X, Y: b.Min.Y}} {
		u := cos*(pt.X-c.X0) + sin*(pt.Y-c.Y0)
		v := -sin*(pt.X-c.X0) + cos*(pt.Y-c.Y0)
		n0 = minInt(n0, int(math.Floor(v/dy)))
		n1 = maxInt(n1, int(math.Ceil(v/dy)))
		m0 = minInt(m0, int(math.Floor(u/dx)))
		m1 = maxInt(m1, int(math.Ceil(u/dx)))
	}
	if n1 < 0 || m1 < 0 || n0 >= lm.nmax || m0 >= lm.mmax {
		return
	}
	n0, n1 = maxInt(n0, 0), minInt(n1, lm.nmax-1)
	m0, m1 = maxInt(m0, 0), minInt(m1, lm.mmax-1)

	toWorld := func(u, v float64) geom.Point {
		return geom.Point{X: c.X0 + cos*u - sin*v, Y: c.Y0 + sin*u + cos*v}
	}
	for m := m0; m <= m1; m++ {
		for n := n0; n <= n1; n++ {
			if lm.initial[lm.at(n, m)] {
				continue
			}
			u0, u1 := float64(m)*dx, float64(m+1)*dx
			v0, v1 := float64(n)*dy, float64(n+1)*dy
			for _, pt := range [5]geom.Point{
				toWorld(u0, v0), toWorld(u1, v0), toWorld(u1, v1), toWorld(u0, v1),
				toWorld((u0+u1)/2, (v0+v1)/2),
			} {
				if inPolygon(pt, p) {
					lm.initial[lm.at(n, m)] = true
					break
				}
			}
		}
	}
}

// assemble creates the cell arrays from the refinement masks, in level
// order and column-major order within each level.
func (g *Grid) assemble(masks []*levelMask) {
	var nc int
	for _, lm := range masks {
		for _, u := range lm.use {
			if u {
				nc++
			}
		}
	}
	g.Level = make([]int, 0, nc)
	g.N = make([]int, 0, nc)
	g.M = make([]int, 0, nc)
	g.Z = make([]float64, nc)
	for i := range g.Z {
		g.Z[i] = math.NaN()
	}
	g.IFirst = make([]int, len(masks))
	for l, lm := range masks {
		g.IFirst[l] = len(g.Level)
		for m := 0; m < lm.mmax; m++ {
			for n := 0; n < lm.nmax; n++ {
				if lm.use[lm.at(n, m)] {
					g.Level = append(g.Level, l)
					g.N = append(g.N, n)
					g.M = append(g.M, m)
				}
			}
		}
	}
}

// parent returns the index of the coarser cell containing cell index k.
func parent(k int) int {
	if k%2 == 1 {
		return (k+1)/2 - 1
	}
	return k / 2
}

// siblings returns the (n, m) indices of the three cells that share a
// parent with cell (n, m).
func siblings(n, m int) [3][2]int {
	switch {
	case n%2 == 0 && m%2 == 0: // lower left
		return [3][2]int{{n + 1, m}, {n, m + 1}, {n + 1, m + 1}}
	case n%2 == 0: // lower right
		return [3][2]int{{n, m - 1}, {n + 1, m - 1}, {n + 1, m}}
	case m%2 == 0: // upper left
		return [3][2]int{{n - 1, m}, {n - 1, m + 1}, {n, m + 1}}
	default: // upper right
		return [3][2]int{{n - 1, m - 1}, {n - 1, m}, {n, m - 1}}
	}
}

// inPolygon reports whether p is inside of or on the edge of poly.
func inPolygon(p geom.Point, poly geom.Polygonal) bool {
	return p.Within(poly) != geom.Outside
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
