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
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/blob-detector/mask"
)

// makeMask builds a mask from rows of text: '#' is foreground, 's' is
// shadow and anything else is background.
func makeMask(rows ...string) *mask.Mask {
	m := mask.New(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			switch c {
			case '#':
				m.Pix[y*m.Width+x] = mask.Foreground
			case 's':
				m.Pix[y*m.Width+x] = mask.Shadow
			}
		}
	}
	return m
}

func fillRect(m *mask.Mask, x0, y0, w, h int) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			m.Pix[y*m.Width+x] = mask.Foreground
		}
	}
}

func TestEmptyMaskHasNoBlobs(t *testing.T) {
	m := mask.New(32, 24)
	for _, conn := range []int{4, 8} {
		blobs, err := Extract(m, conn)
		require.NoError(t, err)
		assert.NotNil(t, blobs)
		assert.Empty(t, blobs)
	}
}

func TestSinglePixelBlobIsDegenerate(t *testing.T) {
	m := makeMask(
		".....",
		"..#..",
		".....",
	)
	blobs, err := Extract(m, 4)
	require.NoError(t, err)
	assert.Equal(t, []Blob{{ID: 1, X: 2, Y: 1}}, blobs)

	assert.Empty(t, RemoveSmall(blobs, 1, 1))
}

func TestFilledRectangle(t *testing.T) {
	m := mask.New(20, 10)
	fillRect(m, 3, 2, 10, 4)

	for _, conn := range []int{4, 8} {
		blobs, err := Extract(m, conn)
		require.NoError(t, err)
		assert.Equal(t, []Blob{{ID: 1, X: 3, Y: 2, W: 9, H: 3}}, blobs)
	}
}

func TestShadowIsBackground(t *testing.T) {
	m := makeMask(
		"##s##",
		"sssss",
		"#s#s#",
	)
	blobs, err := Extract(m, 8)
	require.NoError(t, err)
	assert.Equal(t, []Blob{
		{ID: 1, X: 0, Y: 0, W: 1, H: 0},
		{ID: 2, X: 3, Y: 0, W: 1, H: 0},
		{ID: 3, X: 0, Y: 2},
		{ID: 4, X: 2, Y: 2},
		{ID: 5, X: 4, Y: 2},
	}, blobs)
}

func TestDiagonalsOnlyJoinWithEightConnectivity(t *testing.T) {
	m := makeMask(
		"#...",
		".#..",
		"..#.",
		"...#",
	)
	four, err := Extract(m, 4)
	require.NoError(t, err)
	assert.Len(t, four, 4)

	eight, err := Extract(m, 8)
	require.NoError(t, err)
	assert.Equal(t, []Blob{{ID: 1, X: 0, Y: 0, W: 3, H: 3}}, eight)
}

func TestAntiDiagonal(t *testing.T) {
	m := makeMask(
		"...#",
		"..#.",
		".#..",
		"#...",
	)
	eight, err := Extract(m, 8)
	require.NoError(t, err)
	assert.Equal(t, []Blob{{ID: 1, X: 0, Y: 0, W: 3, H: 3}}, eight)
}

func TestIDsFollowRowMajorScan(t *testing.T) {
	m := makeMask(
		"....##",
		".##...",
		".##...",
	)
	blobs, err := Extract(m, 4)
	require.NoError(t, err)
	assert.Equal(t, []Blob{
		{ID: 1, X: 4, Y: 0, W: 1, H: 0},
		{ID: 2, X: 1, Y: 1, W: 1, H: 1},
	}, blobs)
}

func TestBoxCoversWholeConcaveBlob(t *testing.T) {
	m := makeMask(
		"#...#",
		"#...#",
		"#####",
		"..#..",
	)
	blobs, err := Extract(m, 4)
	require.NoError(t, err)
	assert.Equal(t, []Blob{{ID: 1, X: 0, Y: 0, W: 4, H: 3}}, blobs)
}

func TestBlobsTouchingTheEdges(t *testing.T) {
	m := makeMask(
		"##..",
		"#...",
		"...#",
		"..##",
	)
	blobs, err := Extract(m, 4)
	require.NoError(t, err)
	assert.Equal(t, []Blob{
		{ID: 1, X: 0, Y: 0, W: 1, H: 1},
		{ID: 2, X: 2, Y: 2, W: 1, H: 1},
	}, blobs)
}

func TestExtractDoesNotModifyMask(t *testing.T) {
	m := makeMask(
		"##s.",
		"#..#",
	)
	before := m.Clone()
	_, err := Extract(m, 8)
	require.NoError(t, err)
	assert.Equal(t, before, m)
}

func TestInvalidInput(t *testing.T) {
	m := mask.New(4, 4)
	for _, conn := range []int{0, 1, 6, 9, -4} {
		blobs, err := Extract(m, conn)
		assert.Nil(t, blobs)
		assert.True(t, errors.Is(err, mask.ErrInvalidInput), "connectivity %d", conn)
	}

	blobs, err := Extract(nil, 4)
	assert.Nil(t, blobs)
	assert.Equal(t, mask.ErrInvalidInput, errors.Cause(err))

	blobs, err = Extract(&mask.Mask{Width: 3, Height: 3, Pix: make([]uint8, 4)}, 4)
	assert.Nil(t, blobs)
	assert.Equal(t, mask.ErrInvalidInput, errors.Cause(err))
}

func TestMatchesUnionFindLabelling(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	values := []uint8{mask.Background, mask.Background, mask.Shadow, mask.Foreground, mask.Foreground}

	for i := 0; i < 50; i++ {
		m := mask.New(5+rnd.Intn(30), 5+rnd.Intn(30))
		for p := range m.Pix {
			m.Pix[p] = values[rnd.Intn(len(values))]
		}

		four, err := Extract(m, 4)
		require.NoError(t, err)
		if diff := cmp.Diff(unionFindBlobs(m, false), four); diff != "" {
			t.Fatalf("4-connectivity mismatch (-want +got):\n%s", diff)
		}

		eight, err := Extract(m, 8)
		require.NoError(t, err)
		if diff := cmp.Diff(unionFindBlobs(m, true), eight); diff != "" {
			t.Fatalf("8-connectivity mismatch (-want +got):\n%s", diff)
		}

		assert.LessOrEqual(t, len(eight), len(four))
	}
}

// unionFindBlobs labels the mask independently of the grass-fire code and
// returns blobs in the order of their first pixel.
func unionFindBlobs(m *mask.Mask, diagonals bool) []Blob {
	parent := make([]int, len(m.Pix))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra < rb {
			parent[rb] = ra
		} else if rb < ra {
			parent[ra] = rb
		}
	}
	fg := func(x, y int) bool {
		return m.In(x, y) && m.Pix[y*m.Width+x] == mask.Foreground
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !fg(x, y) {
				continue
			}
			i := y*m.Width + x
			if fg(x-1, y) {
				union(i, i-1)
			}
			if fg(x, y-1) {
				union(i, i-m.Width)
			}
			if diagonals {
				if fg(x-1, y-1) {
					union(i, i-m.Width-1)
				}
				if fg(x+1, y-1) {
					union(i, i-m.Width+1)
				}
			}
		}
	}

	type box struct{ first, minX, minY, maxX, maxY int }
	boxes := map[int]*box{}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !fg(x, y) {
				continue
			}
			i := y*m.Width + x
			r := find(i)
			b, ok := boxes[r]
			if !ok {
				boxes[r] = &box{first: i, minX: x, minY: y, maxX: x, maxY: y}
				continue
			}
			if x < b.minX {
				b.minX = x
			}
			if x > b.maxX {
				b.maxX = x
			}
			if y > b.maxY {
				b.maxY = y
			}
		}
	}

	sorted := make([]*box, 0, len(boxes))
	for _, b := range boxes {
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].first < sorted[j].first })

	blobs := []Blob{}
	for i, b := range sorted {
		blobs = append(blobs, Blob{ID: i + 1, X: b.minX, Y: b.minY, W: b.maxX - b.minX, H: b.maxY - b.minY})
	}
	return blobs
}
