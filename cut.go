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

// CutInactiveCells removes the cells that are inactive in all of masks
// and finds the neighbors of the remaining cells again. It returns masks
// with the removed cells dropped, in the same order as the input.
func (g *Grid) CutInactiveCells(masks ...Mask) ([]Mask, error) {
	for _, m := range masks {
		if err := g.checkMask(m); err != nil {
			return nil, err
		}
	}
	var keep []int
	for i := range g.Level {
		var sum int
		for _, m := range masks {
			sum += int(m[i])
		}
		if sum > 0 {
			keep = append(keep, i)
		}
	}

	outMasks := make([]Mask, len(masks))
	for j, m := range masks {
		outMasks[j] = make(Mask, len(keep))
		for ni, i := range keep {
			outMasks[j][ni] = m[i]
		}
	}

	g.Level = filterInts(g.Level, keep)
	g.N = filterInts(g.N, keep)
	g.M = filterInts(g.M, keep)
	if g.Z != nil {
		g.Z = filterFloats(g.Z, keep)
	}
	if g.X != nil {
		g.X = filterFloats(g.X, keep)
		g.Y = filterFloats(g.Y, keep)
	}
	g.index = nil

	// Removing cells keeps the remaining cells in order, so they are
	// still grouped by level.
	g.computeLevelOffsets()

	nt, err := g.FindNeighbors()
	if err != nil {
		return nil, err
	}
	if err := g.SetNeighbors(nt); err != nil {
		return nil, err
	}
	return outMasks, nil
}

func filterInts(v []int, keep []int) []int {
	o := make([]int, len(keep))
	for ni, i := range keep {
		o[ni] = v[i]
	}
	return o
}

func filterFloats(v []float64, keep []int) []float64 {
	o := make([]float64, len(keep))
	for ni, i := range keep {
		o[ni] = v[i]
	}
	return o
}
