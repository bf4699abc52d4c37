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
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// ErrDegenerateBlob is returned for blobs without a height, whose aspect
// ratio is undefined.
var ErrDegenerateBlob = errors.New("degenerate blob")

// Model is the aspect ratio distribution of one class.
type Model struct {
	Mean float32
	Std  float32
}

// Aspect ratio models, measured offline.
var (
	PersonModel = Model{Mean: 0.3950, Std: 0.1887}
	CarModel    = Model{Mean: 1.4736, Std: 0.2329}
	ObjectModel = Model{Mean: 1.2111, Std: 0.4470}
)

// Distance is the standard deviation weighted distance of ar from the
// model mean.
func (m Model) Distance(ar float32) float32 {
	return math32.Sqrt(math32.Pow(ar-m.Mean, 2) / math32.Pow(m.Std, 2))
}

// AspectRatio returns W/H.
func AspectRatio(b Blob) (float32, error) {
	if b.H == 0 {
		return 0, errors.Wrapf(ErrDegenerateBlob, "blob %d has no height", b.ID)
	}
	return float32(b.W) / float32(b.H), nil
}

// ClassifyAspectRatio picks the label whose model is nearest to ar.
func ClassifyAspectRatio(ar float32) Label {
	return nearest(
		PersonModel.Distance(ar),
		CarModel.Distance(ar),
		ObjectModel.Distance(ar),
	)
}

// nearest applies the class priority: PERSON and CAR win a tie against
// OBJECT, OBJECT has to be strictly closest, and anything else (a
// PERSON/CAR tie included) is a GROUP.
//
// The mix of < and <= is kept as calibrated; it is not symmetric.
func nearest(person, car, object float32) Label {
	switch {
	case person < car && person <= object:
		return Person
	case car < person && car <= object:
		return Car
	case object < person && object < car:
		return Object
	default:
		return Group
	}
}

// Classify sets the label of every blob from its aspect ratio. Blobs with
// no height are labelled Unknown; the rest of the list is still
// classified and the returned error says how many were skipped.
func Classify(blobs []Blob) error {
	degenerate := 0
	for i := range blobs {
		ar, err := AspectRatio(blobs[i])
		if err != nil {
			blobs[i].Label = Unknown
			degenerate++
			continue
		}
		blobs[i].Label = ClassifyAspectRatio(ar)
	}
	if degenerate > 0 {
		return errors.Wrapf(ErrDegenerateBlob, "%d of %d blobs left unclassified", degenerate, len(blobs))
	}
	return nil
}
