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

package mask

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Load reads a mask from an image file. Any format imaging can decode is
// accepted; colour images are reduced to their luminance.
func Load(filename string) (*Mask, error) {
	img, err := imaging.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "loading mask %s", filename)
	}
	return FromImage(img), nil
}

// Save writes the mask as a greyscale image, format chosen by extension.
func (m *Mask) Save(filename string) error {
	return imaging.Save(m.Gray(), filename)
}

// FromImage converts any image to a mask using its luminance. The image
// origin is moved to (0, 0).
func FromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < m.Height; y++ {
			row := g.Pix[y*g.Stride : y*g.Stride+m.Width]
			copy(m.Pix[y*m.Width:], row)
		}
		return m
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			m.Pix[y*m.Width+x] = c.Y
		}
	}
	return m
}

// Gray returns a copy of the mask as a greyscale image.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(g.Pix, m.Pix)
	return g
}
