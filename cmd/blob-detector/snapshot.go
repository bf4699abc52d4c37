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

package main

import (
	"errors"
	"log"
	"os"
	"path"
	"sync"
	"time"

	"github.com/TheCacophonyProject/blob-detector/pipeline"
	"github.com/TheCacophonyProject/blob-detector/render"
)

const (
	snapshotName          = "still.png"
	allowedSnapshotPeriod = 500 * time.Millisecond
)

var (
	processor            *pipeline.Processor
	previousSnapshotTime time.Time
	mu                   sync.Mutex
)

func setProcessor(p *pipeline.Processor) {
	mu.Lock()
	defer mu.Unlock()
	processor = p
}

func newSnapshot(dir string) error {
	mu.Lock()
	defer mu.Unlock()

	if time.Since(previousSnapshotTime) < allowedSnapshotPeriod {
		return nil
	}

	if processor == nil {
		return errors.New("reading masks has not started yet")
	}
	m := processor.RecentMask()
	if m == nil {
		return errors.New("no masks yet")
	}
	blobs, err := processor.FindBlobs(m)
	if err != nil {
		return err
	}

	img := render.Paint(m.Gray(), blobs, true)
	if err := render.SavePNG(img, path.Join(dir, snapshotName)); err != nil {
		return err
	}

	// the time will be changed only if the attempt is successful
	previousSnapshotTime = time.Now()
	return nil
}

func deleteSnapshot(dir string) {
	if err := os.Remove(path.Join(dir, snapshotName)); err != nil && !os.IsNotExist(err) {
		log.Printf("error deleting snapshot image: %v", err)
	}
}
