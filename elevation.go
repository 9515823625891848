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
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
)

// ElevationSource provides elevation values. res is the size of the area
// the value should represent.
type ElevationSource interface {
	Elevation(x, y, res float64) (float64, bool)
}

// SetElevation sets the elevation of each cell from src, sampled at the
// cell centre with the cell width as the resolution. Cells for which src
// has no value are set to NaN.
func (g *Grid) SetElevation(src ElevationSource) {
	if g.X == nil {
		g.computeCellCentres()
	}
	g.Z = make([]float64, g.NumCells())
	for i, l := range g.Level {
		dx, _ := g.cellSize(l)
		if z, ok := src.Elevation(g.X[i], g.Y[i], dx); ok {
			g.Z[i] = z
		} else {
			g.Z[i] = math.NaN()
		}
	}
}

// Raster is a regular grid of elevation values. Values are stored row by
// row starting from the lower-left corner. Missing values are NaN.
type Raster struct {
	X0, Y0 float64
	DX, DY float64
	NX, NY int
	Z      []float64
}

// Elevation returns the average of the raster values within res/2 of
// (x, y), or the value of the pixel containing (x, y) if res is smaller
// than a pixel.
func (r *Raster) Elevation(x, y, res float64) (float64, bool) {
	i0 := int(math.Floor((x - res/2 - r.X0) / r.DX))
	i1 := int(math.Ceil((x+res/2-r.X0)/r.DX)) - 1
	j0 := int(math.Floor((y - res/2 - r.Y0) / r.DY))
	j1 := int(math.Ceil((y+res/2-r.Y0)/r.DY)) - 1
	if res <= r.DX || res <= r.DY {
		i0 = int(math.Floor((x - r.X0) / r.DX))
		j0 = int(math.Floor((y - r.Y0) / r.DY))
		i1, j1 = i0, j0
	}
	if i1 < 0 || j1 < 0 || i0 >= r.NX || j0 >= r.NY {
		return math.NaN(), false
	}
	i0, j0 = maxInt(i0, 0), maxInt(j0, 0)
	i1, j1 = minInt(i1, r.NX-1), minInt(j1, r.NY-1)
	var sum float64
	var n int
	for j := j0; j <= j1; j++ {
		for i := i0; i <= i1; i++ {
			if v := r.Z[j*r.NX+i]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return math.NaN(), false
	}
	return sum / float64(n), true
}

// LoadRaster reads an elevation raster from a netcdf file.
func LoadRaster(rw cdf.ReaderWriterAt) (*Raster, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("quadtree: opening elevation raster: %v", err)
	}
	r := new(Raster)
	for _, a := range []struct {
		name string
		v    *float64
	}{{"x0", &r.X0}, {"y0", &r.Y0}, {"dx", &r.DX}, {"dy", &r.DY}} {
		v, ok := f.Header.GetAttribute("", a.name).([]float64)
		if !ok || len(v) != 1 {
			return nil, fmt.Errorf("quadtree: elevation raster is missing attribute %s", a.name)
		}
		*a.v = v[0]
	}
	if !(r.DX > 0) || !(r.DY > 0) {
		return nil, fmt.Errorf("quadtree: elevation raster has dx=%g and dy=%g but both should be >0", r.DX, r.DY)
	}
	dims := f.Header.Lengths("z")
	if len(dims) != 2 {
		return nil, fmt.Errorf("quadtree: elevation raster variable z should have 2 dimensions but has %d", len(dims))
	}
	r.NY, r.NX = dims[0], dims[1]
	tmp := make([]float32, r.NX*r.NY)
	if _, err = f.Reader("z", nil, nil).Read(tmp); err != nil {
		return nil, fmt.Errorf("quadtree: reading elevation raster: %v", err)
	}
	r.Z = make([]float64, len(tmp))
	for i, v := range tmp {
		r.Z[i] = float64(v)
	}
	return r, nil
}

// Write writes r to netcdf file w.
func (r *Raster) Write(w *os.File) error {
	if len(r.Z) != r.NX*r.NY {
		return fmt.Errorf("quadtree: raster has %d values but dims are %dx%d", len(r.Z), r.NY, r.NX)
	}
	h := cdf.NewHeader([]string{"y", "x"}, []int{r.NY, r.NX})
	h.AddAttribute("", "comment", "Elevation raster")
	h.AddAttribute("", "x0", []float64{r.X0})
	h.AddAttribute("", "y0", []float64{r.Y0})
	h.AddAttribute("", "dx", []float64{r.DX})
	h.AddAttribute("", "dy", []float64{r.DY})
	h.AddVariable("z", []string{"y", "x"}, []float32{0})
	h.AddAttribute("z", "units", "m")
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("quadtree: creating elevation raster: %v", err)
	}
	z32 := make([]float32, len(r.Z))
	for i, v := range r.Z {
		z32[i] = float32(v)
	}
	if _, err = f.Writer("z", []int{0, 0}, []int{r.NY, r.NX}).Write(z32); err != nil {
		return fmt.Errorf("quadtree: writing elevation raster: %v", err)
	}
	return cdf.UpdateNumRecs(w)
}
