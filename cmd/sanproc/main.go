/*
Copyright © 2021 the SanProc authors.
This file is part of SanProc.

SanProc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SanProc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SanProc.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command sanproc is a command-line interface for the SanProc
// sanitation process simulation framework.
package main

import (
	"fmt"
	"os"

	"github.com/sanmodel/sanproc/sanprocutil"
)

func main() {
	if err := sanprocutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
