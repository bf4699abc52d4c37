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

import (
	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/blob-detector/mask"
)

type point struct {
	x, y int
}

var (
	orthogonal = [4]point{{0, -1}, {0, 1}, {1, 0}, {-1, 0}}
	diagonal   = [4]point{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// Extract finds every connected region of Foreground pixels in m using a
// grass-fire fill with the given connectivity (4 or 8). Shadow pixels are
// treated as background.
//
// The mask is scanned row by row, top to bottom, so blob IDs (starting at
// 1) follow the position of each blob's first pixel in that order. m is
// not modified.
func Extract(m *mask.Mask, connectivity int) ([]Blob, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if connectivity != 4 && connectivity != 8 {
		return nil, errors.Wrapf(mask.ErrInvalidInput, "connectivity must be 4 or 8, got %d", connectivity)
	}

	g := &grower{
		work:      m.Clone(),
		diagonals: connectivity == 8,
	}
	blobs := []Blob{}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if g.work.Pix[y*m.Width+x] != mask.Foreground {
				continue
			}
			b := g.grow(x, y)
			b.ID = len(blobs) + 1
			blobs = append(blobs, b)
		}
	}
	return blobs, nil
}

// grower holds the state of one Extract call. Pixels are cleared in the
// working copy as soon as they are pushed so each one is visited once.
type grower struct {
	work      *mask.Mask
	diagonals bool
	stack     []point

	minX, minY int
	maxX, maxY int
}

func (g *grower) grow(x, y int) Blob {
	g.minX, g.maxX = x, x
	g.minY, g.maxY = y, y
	g.push(x, y)

	for len(g.stack) > 0 {
		p := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]

		g.track(p)
		g.burn(p, orthogonal)
		if g.diagonals {
			g.burn(p, diagonal)
		}
	}

	return Blob{
		X: g.minX,
		Y: g.minY,
		W: g.maxX - g.minX,
		H: g.maxY - g.minY,
	}
}

func (g *grower) burn(p point, dirs [4]point) {
	for _, d := range dirs {
		nx, ny := p.x+d.x, p.y+d.y
		if g.work.In(nx, ny) && g.work.Pix[ny*g.work.Width+nx] == mask.Foreground {
			g.push(nx, ny)
		}
	}
}

func (g *grower) push(x, y int) {
	g.work.Pix[y*g.work.Width+x] = mask.Background
	g.stack = append(g.stack, point{x, y})
}

func (g *grower) track(p point) {
	if p.x < g.minX {
		g.minX = p.x
	}
	if p.x > g.maxX {
		g.maxX = p.x
	}
	if p.y < g.minY {
		g.minY = p.y
	}
	if p.y > g.maxY {
		g.maxY = p.y
	}
}
