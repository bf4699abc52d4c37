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

// Package render draws blob boxes over frames for debugging and tuning.
package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/TheCacophonyProject/blob-detector/blob"
)

var (
	Red   = color.NRGBA{R: 255, A: 255}
	Green = color.NRGBA{G: 255, A: 255}
	Blue  = color.NRGBA{B: 255, A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// LabelColour is the box colour used for a label.
func LabelColour(l blob.Label) color.NRGBA {
	switch l {
	case blob.Person:
		return Red
	case blob.Car:
		return Green
	case blob.Object:
		return Blue
	default:
		return White
	}
}

// Paint returns a copy of frame with a one pixel box drawn around each
// blob, from (X, Y) to (X+W, Y+H) inclusive. When labelled is set the box
// takes the colour of the blob's label and the label name is written
// inside its top left corner, otherwise all boxes are white. The copy
// always has its origin at (0, 0).
func Paint(frame image.Image, blobs []blob.Blob, labelled bool) *image.NRGBA {
	if frame == nil {
		return nil
	}
	dst := imaging.Clone(frame)
	for _, b := range blobs {
		c := White
		if labelled {
			c = LabelColour(b.Label)
		}
		drawBox(dst, b, c)
		if labelled {
			drawLabel(dst, b, c)
		}
	}
	return dst
}

func drawBox(dst *image.NRGBA, b blob.Blob, c color.NRGBA) {
	x0, y0 := b.X, b.Y
	x1, y1 := b.X+b.W, b.Y+b.H
	for x := x0; x <= x1; x++ {
		dst.SetNRGBA(x, y0, c)
		dst.SetNRGBA(x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		dst.SetNRGBA(x0, y, c)
		dst.SetNRGBA(x1, y, c)
	}
}

func drawLabel(dst *image.NRGBA, b blob.Blob, c color.NRGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(b.X+2, b.Y+1+face.Ascent),
	}
	d.DrawString(b.Label.String())
}

// SavePNG writes img to filename. The encoding follows the file extension
// so other formats imaging knows about work too.
func SavePNG(img image.Image, filename string) error {
	return imaging.Save(img, filename)
}
