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

// Package stationary keeps a per pixel history of how long each pixel has
// been foreground and reports the pixels that have stayed that way long
// enough to be considered stationary.
package stationary

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/TheCacophonyProject/blob-detector/mask"
)

// foregroundLevel is the lowest mask value counted as foreground. Shadow
// (127) falls below it.
const foregroundLevel = 200

type Detector struct {
	conf    Config
	width   int
	height  int
	history []float64
	delta   []float64
	frames  int
}

func NewDetector(conf Config, width, height int) (*Detector, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(mask.ErrInvalidInput, "bad history size %dx%d", width, height)
	}
	return &Detector{
		conf:    conf,
		width:   width,
		height:  height,
		history: make([]float64, width*height),
		delta:   make([]float64, width*height),
	}, nil
}

// Update adds one frame to the history and returns the stationary mask for
// it: Foreground where the normalised history is above the threshold,
// Background elsewhere. The history is left untouched if m is unusable.
func (d *Detector) Update(m *mask.Mask) (*mask.Mask, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Width != d.width || m.Height != d.height {
		return nil, errors.Wrapf(mask.ErrInvalidInput,
			"mask is %dx%d but history is %dx%d", m.Width, m.Height, d.width, d.height)
	}

	for i, v := range m.Pix {
		if float64(v) >= foregroundLevel {
			d.delta[i] = d.conf.IncrementCost
		} else {
			d.delta[i] = -d.conf.DecrementCost
		}
	}
	floats.Add(d.history, d.delta)

	out := mask.New(d.width, d.height)
	saturation := d.conf.SaturationFrames()
	for i, h := range d.history {
		if h < 0 {
			h = 0
		} else if h > d.conf.HistoryCap {
			h = d.conf.HistoryCap
		}
		d.history[i] = h

		norm := h / saturation
		if norm > 1 {
			norm = 1
		}
		if norm > d.conf.Threshold {
			out.Pix[i] = mask.Foreground
		}
	}
	d.frames++
	return out, nil
}

// History returns a copy of the history grid, row major.
func (d *Detector) History() []float64 {
	h := make([]float64, len(d.history))
	copy(h, d.history)
	return h
}

// Reset clears the history.
func (d *Detector) Reset() {
	for i := range d.history {
		d.history[i] = 0
	}
	d.frames = 0
}

// Frames returns the number of frames seen since the detector was created
// or last reset.
func (d *Detector) Frames() int {
	return d.frames
}

func (d *Detector) Config() Config {
	return d.conf
}
