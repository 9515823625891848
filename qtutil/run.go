/*
Copyright © 2017 the quadtree authors.
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

package qtutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/quadtree"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Build creates a quadtree grid as specified by c, samples the elevation
// raster in elevationFile onto it if elevationFile is not empty, and
// saves it to gridFile.
func Build(gridFile, elevationFile string, c *quadtree.GridConfig) error {
	Log.WithFields(logrus.Fields{
		"nmax": c.NMax,
		"mmax": c.MMax,
		"dx":   c.DX,
		"dy":   c.DY,
	}).Info("building grid")
	g, err := quadtree.Build(c)
	if err != nil {
		return err
	}
	if elevationFile != "" {
		f, err := os.Open(elevationFile)
		if err != nil {
			return fmt.Errorf("quadtree: opening elevation file: %v", err)
		}
		r, err := quadtree.LoadRaster(f)
		f.Close()
		if err != nil {
			return err
		}
		g.SetElevation(r)
	}
	if err := saveGrid(gridFile, g); err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"cells":  g.NumCells(),
		"levels": g.NumLevels,
		"file":   gridFile,
	}).Info("saved grid")
	return nil
}

func saveGrid(gridFile string, g *quadtree.Grid) error {
	w, err := os.Create(gridFile)
	if err != nil {
		return fmt.Errorf("quadtree: creating grid file: %v", err)
	}
	if err := g.Save(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// loadGrid loads the grid in gridFile. Warnings are logged rather than
// returned.
func loadGrid(gridFile string) (*quadtree.Grid, error) {
	f, err := os.Open(gridFile)
	if err != nil {
		return nil, fmt.Errorf("quadtree: opening grid file: %v", err)
	}
	defer f.Close()
	g, err := quadtree.Load(f)
	if err != nil {
		if !quadtree.IsWarning(err) {
			return nil, err
		}
		Log.Warn(err)
	}
	return g, nil
}

// Mask creates a flow mask for the grid in gridFile as specified by c and
// saves it to maskFile. If waveMaskFile is not empty, a wave mask is
// saved there as well. If cut is true, cells that are inactive in all
// masks are removed and the reduced grid is saved to gridFile.
func Mask(gridFile, maskFile, waveMaskFile string, c *quadtree.MaskConfig, cut bool) error {
	if maskFile == "" {
		return fmt.Errorf("quadtree: mask_file is not specified")
	}
	g, err := loadGrid(gridFile)
	if err != nil {
		return err
	}
	mask, err := g.BuildMask(c)
	if err != nil {
		if !quadtree.IsWarning(err) {
			return err
		}
		Log.Warn(err)
	}
	masks := []quadtree.Mask{mask}
	files := []string{maskFile}
	if waveMaskFile != "" {
		wave, err := g.BuildWaveMask(c)
		if err != nil {
			if !quadtree.IsWarning(err) {
				return err
			}
			Log.Warn(err)
		}
		masks = append(masks, wave)
		files = append(files, waveMaskFile)
	}

	if cut {
		n := g.NumCells()
		if masks, err = g.CutInactiveCells(masks...); err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{
			"removed":   n - g.NumCells(),
			"remaining": g.NumCells(),
		}).Info("removed inactive cells")
		if err := saveGrid(gridFile, g); err != nil {
			return err
		}
	}

	for i, m := range masks {
		if err := writeMaskFile(files[i], m); err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{
			"file":   files[i],
			"active": len(m.Select("all")),
			"open":   len(m.Select("open")),
		}).Info("saved mask")
	}
	return nil
}

func writeMaskFile(file string, m quadtree.Mask) error {
	w, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("quadtree: creating mask file: %v", err)
	}
	if err := quadtree.WriteMask(w, m); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Export writes the grid in gridFile, along with the mask in maskFile if
// maskFile is not empty, in each of the formats in o. The formats are
// written concurrently.
func Export(gridFile, maskFile string, o *ExportOptions) error {
	g, err := loadGrid(gridFile)
	if err != nil {
		return err
	}
	mask, err := readMaskFile(maskFile, g.NumCells())
	if err != nil {
		return err
	}
	waveMask, err := readMaskFile(o.WaveMaskFile, g.NumCells())
	if err != nil {
		return err
	}
	for _, format := range o.Formats {
		if format == "geojson" && mask == nil {
			return fmt.Errorf("quadtree: geojson export requires mask_file")
		}
	}
	if err := os.MkdirAll(o.Dir, os.ModePerm); err != nil {
		return fmt.Errorf("quadtree: creating export directory: %v", err)
	}
	var eg errgroup.Group
	for _, format := range o.Formats {
		format := format
		switch format {
		case "shp":
			eg.Go(func() error {
				if err := g.WriteCellsShapefile(filepath.Join(o.Dir, "cells.shp")); err != nil {
					return err
				}
				if err := g.WriteLinksShapefile(filepath.Join(o.Dir, "links.shp")); err != nil {
					return err
				}
				if mask == nil {
					return nil
				}
				return g.WriteMaskShapefile(filepath.Join(o.Dir, "mask.shp"), mask, o.MaskOption)
			})
		case "ugrid":
			eg.Go(func() error {
				return writeFile(filepath.Join(o.Dir, "mesh.nc"), func(f *os.File) error {
					return g.WriteUGRID(f, mask)
				})
			})
		case "geojson":
			eg.Go(func() error {
				return writeFile(filepath.Join(o.Dir, "mask.geojson"), func(f *os.File) error {
					return g.WriteMaskGeoJSON(f, mask, o.MaskOption)
				})
			})
		case "snapwave":
			eg.Go(func() error {
				return writeFile(filepath.Join(o.Dir, "snapwave.nc"), func(f *os.File) error {
					return g.WriteWaveUGRID(f, waveMask)
				})
			})
		case "png":
			eg.Go(func() error {
				return writeFile(filepath.Join(o.Dir, "mesh.png"), func(f *os.File) error {
					return g.DrawMesh(f, o.Width, o.Height)
				})
			})
		default:
			eg.Go(func() error {
				return fmt.Errorf("quadtree: invalid export format %q", format)
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"dir":     o.Dir,
		"formats": o.Formats,
	}).Info("exported grid")
	return nil
}

// readMaskFile reads the mask in file, or returns nil if file is empty.
func readMaskFile(file string, numCells int) (quadtree.Mask, error) {
	if file == "" {
		return nil, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("quadtree: opening mask file: %v", err)
	}
	defer f.Close()
	return quadtree.ReadMask(f, numCells)
}

func writeFile(name string, write func(*os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("quadtree: creating %s: %v", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GridInfo summarizes a grid.
type GridInfo struct {
	EPSG          int
	CellsPerLevel []int
	Zmin, Zmax    float64
}

// Info summarizes the grid in gridFile and logs the summary. Zmin and
// Zmax are NaN if the grid has no elevation.
func Info(gridFile string) (*GridInfo, error) {
	g, err := loadGrid(gridFile)
	if err != nil {
		return nil, err
	}
	info := &GridInfo{
		EPSG:          g.EPSG,
		CellsPerLevel: make([]int, g.NumLevels),
		Zmin:          math.NaN(),
		Zmax:          math.NaN(),
	}
	for _, l := range g.Level {
		info.CellsPerLevel[l]++
	}
	var z []float64
	for _, v := range g.Z {
		if !math.IsNaN(v) {
			z = append(z, v)
		}
	}
	if len(z) > 0 {
		info.Zmin, info.Zmax = floats.Min(z), floats.Max(z)
	}
	for l, n := range info.CellsPerLevel {
		Log.WithFields(logrus.Fields{"level": l, "cells": n}).Info("grid level")
	}
	Log.WithFields(logrus.Fields{
		"cells": g.NumCells(),
		"epsg":  info.EPSG,
		"zmin":  info.Zmin,
		"zmax":  info.Zmax,
	}).Info("grid summary")
	return info, nil
}
