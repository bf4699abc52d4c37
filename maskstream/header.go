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

// Package maskstream reads segmentation masks from a stream: a YAML
// header terminated by a blank line, followed by fixed size frames with
// one byte per pixel.
package maskstream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v1"

	"github.com/TheCacophonyProject/blob-detector/mask"
)

// Header keys.
const (
	XResolution = "ResX"
	YResolution = "ResY"
	FPS         = "FPS"
	FrameSize   = "FrameSize"
	Brand       = "Brand"
	Model       = "Model"
)

// Header describes the masks which follow it. Frames may carry trailing
// bytes after the pixels, so FrameSize can exceed ResX*ResY.
type Header struct {
	ResX      int
	ResY      int
	FPS       int
	FrameSize int
	Brand     string
	Model     string
}

// PixelCount is the number of mask bytes at the start of every frame.
func (h *Header) PixelCount() int {
	return h.ResX * h.ResY
}

func (h *Header) Validate() error {
	if h.ResX <= 0 || h.ResY <= 0 {
		return errors.Wrapf(mask.ErrInvalidInput, "bad resolution %dx%d", h.ResX, h.ResY)
	}
	if h.FrameSize < h.PixelCount() {
		return errors.Wrapf(mask.ErrInvalidInput, "frame size %d too small for %dx%d", h.FrameSize, h.ResX, h.ResY)
	}
	return nil
}

// ReadHeader reads header lines up to the first blank line. A missing
// FrameSize means frames hold only the pixels.
func ReadHeader(reader *bufio.Reader) (*Header, error) {
	var buf bytes.Buffer
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		buf.WriteString(line)
	}
	fields := make(map[string]interface{})
	if err := yaml.Unmarshal(buf.Bytes(), &fields); err != nil {
		return nil, err
	}

	h := &Header{
		ResX:      toInt(fields[XResolution]),
		ResY:      toInt(fields[YResolution]),
		FPS:       toInt(fields[FPS]),
		FrameSize: toInt(fields[FrameSize]),
		Brand:     toStr(fields[Brand]),
		Model:     toStr(fields[Model]),
	}
	if h.FrameSize == 0 {
		h.FrameSize = h.PixelCount()
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// WriteHeader writes h in the form ReadHeader expects.
func WriteHeader(w io.Writer, h *Header) error {
	_, err := fmt.Fprintf(w, "%s: %d\n%s: %d\n%s: %d\n%s: %d\n%s: %q\n%s: %q\n\n",
		XResolution, h.ResX,
		YResolution, h.ResY,
		FPS, h.FPS,
		FrameSize, h.FrameSize,
		Brand, h.Brand,
		Model, h.Model,
	)
	return err
}

func toInt(v interface{}) int {
	out, ok := v.(int)
	if !ok {
		return 0
	}
	return out
}

func toStr(v interface{}) string {
	out, ok := v.(string)
	if !ok {
		return ""
	}
	return out
}
