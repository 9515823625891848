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
	"sync"

	"github.com/ctessum/geom/proj"
)

// webMapProj is the spatial reference definition for web mapping.
const webMapProj = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

// epsgMu guards epsgDefs.
var epsgMu sync.RWMutex

var epsgDefs = map[int]string{
	4326:   "+proj=longlat +datum=WGS84 +no_defs",
	4269:   "+proj=longlat +datum=NAD83 +no_defs",
	4258:   "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs",
	3857:   webMapProj,
	900913: webMapProj,
	2193:   "+proj=tmerc +lat_0=0 +lon_0=173 +k=0.9996 +x_0=1600000 +y_0=10000000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
	27700:  "+proj=tmerc +lat_0=49 +lon_0=-2 +k=0.9996012717 +x_0=400000 +y_0=-100000 +ellps=airy +towgs84=446.448,-125.157,542.06,0.15,0.247,0.842,-20.489 +units=m +no_defs",
	5070:   "+proj=aea +lat_1=29.5 +lat_2=45.5 +lat_0=23 +lon_0=-96 +x_0=0 +y_0=0 +datum=NAD83 +units=m +no_defs",
}

// RegisterProjDef makes the proj4 definition def available for the
// coordinate system with the given EPSG code, replacing any existing
// definition.
func RegisterProjDef(epsg int, def string) error {
	if epsg <= 0 {
		return fmt.Errorf("quadtree: registering projection: epsg=%d but should be >0", epsg)
	}
	sr, err := proj.Parse(def)
	if err == nil {
		_, _, err = sr.Transformers()
	}
	if err != nil {
		return fmt.Errorf("quadtree: registering projection for EPSG:%d: %v", epsg, err)
	}
	epsgMu.Lock()
	epsgDefs[epsg] = def
	epsgMu.Unlock()
	return nil
}

// ProjDef returns the proj4 definition of the coordinate system with the
// given EPSG code. Besides the codes added with RegisterProjDef,
// geographic WGS84, NAD83 and ETRS89, web mercator, a few national grids
// and the WGS84, ETRS89 and NAD83 UTM zones are known.
func ProjDef(epsg int) (string, error) {
	epsgMu.RLock()
	def, ok := epsgDefs[epsg]
	epsgMu.RUnlock()
	if ok {
		return def, nil
	}
	switch {
	case epsg > 32600 && epsg <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", epsg-32600), nil
	case epsg > 32700 && epsg <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", epsg-32700), nil
	case epsg >= 25828 && epsg <= 25838:
		return fmt.Sprintf("+proj=utm +zone=%d +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", epsg-25800), nil
	case epsg >= 26901 && epsg <= 26923:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=NAD83 +units=m +no_defs", epsg-26900), nil
	}
	return "", &UnknownCRSWarning{EPSG: epsg}
}

// SpatialReference returns the spatial reference with the given EPSG
// code. It fails when the code has no known definition.
func SpatialReference(epsg int) (*proj.SR, error) {
	if epsg == 0 {
		return nil, fmt.Errorf("quadtree: no coordinate system specified")
	}
	def, err := ProjDef(epsg)
	if err != nil {
		return nil, err
	}
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("quadtree: parsing projection for EPSG:%d: %v", epsg, err)
	}
	return sr, nil
}
