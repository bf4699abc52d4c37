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

package blob

// RemoveSmall returns the blobs that are at least minWidth wide and
// minHeight high, in their original order. The input is left untouched.
func RemoveSmall(blobs []Blob, minWidth, minHeight int) []Blob {
	out := make([]Blob, 0, len(blobs))
	for _, b := range blobs {
		if b.W >= minWidth && b.H >= minHeight {
			out = append(out, b)
		}
	}
	return out
}
