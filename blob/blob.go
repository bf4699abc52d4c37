// blob-detector - find, classify and watch foreground blobs in segmentation masks
//  Copyright (C) 2020, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package blob finds the connected foreground regions of a mask, drops
// the small ones and labels the rest by shape.
package blob

import "fmt"

type Label int

const (
	Unknown Label = iota
	Person
	Car
	Object
	Group
)

func (l Label) String() string {
	switch l {
	case Person:
		return "PERSON"
	case Car:
		return "CAR"
	case Object:
		return "OBJECT"
	case Group:
		return "GROUP"
	default:
		return "UNKNOWN"
	}
}

// Blob is one connected foreground region. X, Y is the top left pixel of
// the bounding box and W, H are the distance to the bottom right pixel, so
// a single pixel blob has W == H == 0.
//
// IDs are only meaningful within the frame the blob was found in.
type Blob struct {
	ID    int
	X     int
	Y     int
	W     int
	H     int
	Label Label
}

func (b Blob) String() string {
	return fmt.Sprintf("#%d %s (%d, %d) %dx%d", b.ID, b.Label, b.X, b.Y, b.W, b.H)
}
