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

// Command quadtree is a command-line interface for building quadtree
// meshes for coastal models.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/quadtree/qtutil"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
}

func main() {
	if err := qtutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
