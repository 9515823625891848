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

import "fmt"

// InvalidGridError is returned when a grid configuration or a grid read
// from a file is internally inconsistent.
type InvalidGridError struct {
	Msg string
}

func (e *InvalidGridError) Error() string {
	return "quadtree: invalid grid: " + e.Msg
}

func invalidf(format string, args ...interface{}) error {
	return &InvalidGridError{Msg: fmt.Sprintf(format, args...)}
}

// EmptyMaskWarning is returned along with a mask in which every cell is
// inactive. The mask is still valid.
type EmptyMaskWarning struct {
	Reason string
}

func (w *EmptyMaskWarning) Error() string {
	return "quadtree: entire mask set to zeros: " + w.Reason
}

func (w *EmptyMaskWarning) warning() {}

// UnknownCRSWarning is returned when an EPSG code has no known proj4
// definition. Load returns it along with a complete grid, which keeps the
// code; operations that need the projection itself fail until a
// definition is added with RegisterProjDef.
type UnknownCRSWarning struct {
	EPSG int
}

func (w *UnknownCRSWarning) Error() string {
	return fmt.Sprintf("quadtree: EPSG code is %d; no matching CRS found", w.EPSG)
}

func (w *UnknownCRSWarning) warning() {}

// IsWarning reports whether err is a recoverable warning, in which case
// the value returned alongside it can be used.
func IsWarning(err error) bool {
	_, ok := err.(interface {
		warning()
	})
	return ok
}
