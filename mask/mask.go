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

// Package mask holds the single channel foreground masks produced by the
// background segmenter, one byte per pixel.
package mask

import (
	"github.com/pkg/errors"
)

// Pixel values written by the segmenter.
const (
	Background uint8 = 0
	Shadow     uint8 = 127
	Foreground uint8 = 255
)

var (
	// ErrInvalidInput is returned for missing masks, mismatched buffers and
	// other arguments no work can be done with.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfBounds is returned when a pixel outside the mask is accessed.
	ErrOutOfBounds = errors.New("pixel out of bounds")
)

// Mask is a row major grid of pixels, Pix[y*Width+x].
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns an all background mask.
func New(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// FromPix wraps pix without copying it.
func FromPix(width, height int, pix []uint8) (*Mask, error) {
	m := &Mask{Width: width, Height: height, Pix: pix}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the mask is allocated and its buffer matches its
// dimensions.
func (m *Mask) Validate() error {
	if m == nil {
		return errors.Wrap(ErrInvalidInput, "mask is nil")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return errors.Wrapf(ErrInvalidInput, "mask has no pixels (%dx%d)", m.Width, m.Height)
	}
	if len(m.Pix) != m.Width*m.Height {
		return errors.Wrapf(ErrInvalidInput, "mask buffer holds %d pixels, expected %dx%d", len(m.Pix), m.Width, m.Height)
	}
	return nil
}

// In reports whether (x, y) lies inside the mask. Nothing is inside a
// nil mask.
func (m *Mask) In(x, y int) bool {
	if m == nil {
		return false
	}
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

func (m *Mask) At(x, y int) (uint8, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if !m.In(x, y) {
		return 0, errors.Wrapf(ErrOutOfBounds, "(%d, %d) outside %dx%d", x, y, m.Width, m.Height)
	}
	return m.Pix[y*m.Width+x], nil
}

func (m *Mask) Set(x, y int, v uint8) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !m.In(x, y) {
		return errors.Wrapf(ErrOutOfBounds, "(%d, %d) outside %dx%d", x, y, m.Width, m.Height)
	}
	m.Pix[y*m.Width+x] = v
	return nil
}

// Clone returns a deep copy, or nil for a nil mask.
func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	out := &Mask{
		Width:  m.Width,
		Height: m.Height,
		Pix:    make([]uint8, len(m.Pix)),
	}
	copy(out.Pix, m.Pix)
	return out
}

// WithBorder returns a copy of the mask padded by one pixel on every side.
// The border pixels are set to v. Pixel (x, y) of m is at (x+1, y+1) in
// the copy. A nil mask gives nil.
func (m *Mask) WithBorder(v uint8) *Mask {
	if m == nil {
		return nil
	}
	out := New(m.Width+2, m.Height+2)
	if v != 0 {
		for i := range out.Pix {
			out.Pix[i] = v
		}
	}
	for y := 0; y < m.Height; y++ {
		copy(out.Pix[(y+1)*out.Width+1:], m.Pix[y*m.Width:(y+1)*m.Width])
	}
	return out
}

// Count returns how many pixels hold exactly v.
func (m *Mask) Count(v uint8) int {
	if m == nil {
		return 0
	}
	n := 0
	for _, p := range m.Pix {
		if p == v {
			n++
		}
	}
	return n
}

// SameSize reports whether both masks have the same dimensions.
func (m *Mask) SameSize(o *Mask) bool {
	if m == nil || o == nil {
		return false
	}
	return m.Width == o.Width && m.Height == o.Height
}
