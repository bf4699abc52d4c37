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

package maskstream

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/blob-detector/mask"
)

type Reader struct {
	r      *bufio.Reader
	header *Header
	frame  []byte
}

// NewReader reads the header from r. Frames are read with ReadMask.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading mask stream header")
	}
	return &Reader{
		r:      br,
		header: h,
		frame:  make([]byte, h.FrameSize),
	}, nil
}

func (r *Reader) Header() *Header {
	return r.header
}

// NewMask returns a mask sized for this stream.
func (r *Reader) NewMask() *mask.Mask {
	return mask.New(r.header.ResX, r.header.ResY)
}

// ReadMask reads the next frame into m, which must match the stream's
// resolution. io.EOF is returned at a clean end of stream.
func (r *Reader) ReadMask(m *mask.Mask) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Width != r.header.ResX || m.Height != r.header.ResY {
		return errors.Wrapf(mask.ErrInvalidInput, "mask is %dx%d, stream is %dx%d",
			m.Width, m.Height, r.header.ResX, r.header.ResY)
	}
	if _, err := io.ReadFull(r.r, r.frame); err != nil {
		return err
	}
	copy(m.Pix, r.frame[:r.header.PixelCount()])
	return nil
}

// WriteMask writes one frame for h, padding to the header frame size.
func WriteMask(w io.Writer, h *Header, m *mask.Mask) error {
	if m.Width != h.ResX || m.Height != h.ResY {
		return errors.Wrapf(mask.ErrInvalidInput, "mask is %dx%d, stream is %dx%d",
			m.Width, m.Height, h.ResX, h.ResY)
	}
	frame := make([]byte, h.FrameSize)
	copy(frame, m.Pix)
	_, err := w.Write(frame)
	return err
}
