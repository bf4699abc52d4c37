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

package pipeline

import (
	"sync"

	"github.com/TheCacophonyProject/blob-detector/mask"
)

// MaskLoop remembers the last n masks in a ring that is overwritten when
// full. Masks are written into Current and committed by Move. Everything
// handed out by Recent and History is a copy so it can be used from other
// goroutines while the loop keeps turning.
type MaskLoop struct {
	mu        sync.Mutex
	size      int
	frames    []*mask.Mask
	committed int
	oldest    int
}

func NewMaskLoop(size, width, height int) *MaskLoop {
	if size < 1 {
		size = 1
	}
	// One extra slot for the mask currently being written.
	frames := make([]*mask.Mask, size+1)
	for i := range frames {
		frames[i] = mask.New(width, height)
	}
	return &MaskLoop{
		size:   size,
		frames: frames,
	}
}

func (ml *MaskLoop) slot(seq int) *mask.Mask {
	return ml.frames[seq%len(ml.frames)]
}

// Current returns the mask to write the next frame into. It is only valid
// until the next call to Move.
func (ml *MaskLoop) Current() *mask.Mask {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.slot(ml.committed)
}

// Move commits the current mask and returns the next one to write into.
func (ml *MaskLoop) Move() *mask.Mask {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.committed++
	return ml.slot(ml.committed)
}

// Recent returns a copy of the last committed mask, or nil if nothing has
// been committed yet.
func (ml *MaskLoop) Recent() *mask.Mask {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if ml.committed == 0 {
		return nil
	}
	return ml.slot(ml.committed - 1).Clone()
}

// History returns copies of the remembered masks from oldest to newest.
// Masks committed before the last SetAsOldest call are left out.
func (ml *MaskLoop) History() []*mask.Mask {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	first := ml.committed - ml.size
	if first < ml.oldest {
		first = ml.oldest
	}
	if first < 0 {
		first = 0
	}
	out := make([]*mask.Mask, 0, ml.committed-first)
	for seq := first; seq < ml.committed; seq++ {
		out = append(out, ml.slot(seq).Clone())
	}
	return out
}

// SetAsOldest forgets the masks committed so far as far as History is
// concerned, so the same masks are not handed out twice.
func (ml *MaskLoop) SetAsOldest() {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.oldest = ml.committed
}

// Committed returns how many masks have been committed in total.
func (ml *MaskLoop) Committed() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.committed
}
