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

import "sort"

// cellKey packs row n and column m into a single integer that sorts by
// column and then by row. nmax must be at least as large as the largest
// row index that will be encoded.
func cellKey(n, m, nmax int) int64 {
	return int64(m)*int64(nmax+1) + int64(n)
}

// search returns the position of an exact match for key in the ascending
// slice keys. The second return value is false if there is no match.
func search(keys []int64, key int64) (int, bool) {
	i := sort.Search(len(keys), func(i int) bool { return keys[i] >= key })
	if i < len(keys) && keys[i] == key {
		return i, true
	}
	return -1, false
}

// levelIndex is a sorted lookup table over the cells in one refinement
// level.
type levelIndex struct {
	keys  []int64
	cells []int // cells[i] is the grid index of the cell with key keys[i].
	maxN  int   // largest row index in the level, -1 if the level is empty.
}

func (li *levelIndex) Len() int           { return len(li.keys) }
func (li *levelIndex) Less(i, j int) bool { return li.keys[i] < li.keys[j] }
func (li *levelIndex) Swap(i, j int) {
	li.keys[i], li.keys[j] = li.keys[j], li.keys[i]
	li.cells[i], li.cells[j] = li.cells[j], li.cells[i]
}

// find returns the grid index of the cell at row n and column m, or false
// if the level holds no such cell.
func (li *levelIndex) find(n, m int) (int, bool) {
	if n < 0 || m < 0 || n > li.maxN {
		return -1, false
	}
	i, ok := search(li.keys, cellKey(n, m, li.maxN))
	if !ok {
		return -1, false
	}
	return li.cells[i], true
}

// levelIndexes creates a lookup table for every refinement level in g.
// Cells do not need to be stored in key order.
func (g *Grid) levelIndexes() []*levelIndex {
	o := make([]*levelIndex, g.NumLevels)
	for l := range o {
		o[l] = &levelIndex{maxN: -1}
	}
	for i, l := range g.Level {
		li := o[l]
		li.cells = append(li.cells, i)
		if g.N[i] > li.maxN {
			li.maxN = g.N[i]
		}
	}
	for _, li := range o {
		li.keys = make([]int64, len(li.cells))
		for j, i := range li.cells {
			li.keys[j] = cellKey(g.N[i], g.M[i], li.maxN)
		}
		if !sort.IsSorted(li) {
			sort.Sort(li)
		}
	}
	return o
}
