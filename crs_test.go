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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestProjDef(t *testing.T) {
	for epsg, want := range map[int]string{
		4326:  "+proj=longlat +datum=WGS84 +no_defs",
		32615: "+proj=utm +zone=15 +datum=WGS84 +units=m +no_defs",
		32733: "+proj=utm +zone=33 +south +datum=WGS84 +units=m +no_defs",
		25831: "+proj=utm +zone=31 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
		26915: "+proj=utm +zone=15 +datum=NAD83 +units=m +no_defs",
	} {
		have, err := ProjDef(epsg)
		if err != nil {
			t.Errorf("EPSG:%d: %v", epsg, err)
			continue
		}
		if have != want {
			t.Errorf("EPSG:%d: have %q, want %q", epsg, have, want)
		}
		if _, err = SpatialReference(epsg); err != nil {
			t.Errorf("EPSG:%d: %v", epsg, err)
		}
	}
	if _, err := ProjDef(28992); !IsWarning(err) {
		t.Errorf("want warning for unknown code but have %v", err)
	}
	if _, err := SpatialReference(0); err == nil {
		t.Error("want error for missing code")
	}
}

func TestRegisterProjDef(t *testing.T) {
	if err := RegisterProjDef(-5, "+proj=longlat +datum=WGS84 +no_defs"); err == nil {
		t.Error("want error for negative code")
	}
	if err := RegisterProjDef(990201, "+proj=nonsense"); err == nil {
		t.Error("want error for invalid definition")
	}
	if _, err := ProjDef(990201); err == nil {
		t.Error("invalid definition should not be registered")
	}
}

func TestBuildUnlistedEPSG(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	const epsg = 990301
	g, err := Build(&GridConfig{DX: 1, DY: 1, NMax: 2, MMax: 2, EPSG: epsg})
	if err != nil {
		t.Fatal(err)
	}
	if g.EPSG != epsg {
		t.Errorf("want EPSG %d but have %d", epsg, g.EPSG)
	}
	if _, err = g.SR(); err == nil {
		t.Error("resolving an unlisted coordinate system should fail")
	}
	filename := filepath.Join(dir, "cells.shp")
	if err = g.WriteCellsShapefile(filename); err == nil {
		t.Error("writing a projection file without a definition should fail")
	}

	if err = RegisterProjDef(epsg, "+proj=longlat +datum=WGS84 +no_defs"); err != nil {
		t.Fatal(err)
	}
	if _, err = g.SR(); err != nil {
		t.Error(err)
	}
	if err = g.WriteCellsShapefile(filename); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(filepath.Join(dir, "cells.prj"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "+proj=longlat +datum=WGS84 +no_defs" {
		t.Errorf("unexpected projection file %q", b)
	}
}
