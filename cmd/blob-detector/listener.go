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
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/TheCacophonyProject/blob-detector/pipeline"
)

// alertListener lights the alert LED while an alert runs and optionally
// saves the masks leading up to each alert.
type alertListener struct {
	led        *alertLED
	previewDir string
	processor  *pipeline.Processor
	verbose    bool
}

func (l *alertListener) StationaryDetected(r *pipeline.Result) {
	if l.verbose {
		log.Printf("frame %d: %d stationary pixels in %d blobs", r.Frame, r.StationaryPixels, len(r.StationaryBlobs))
	}
}

func (l *alertListener) AlertStarted(a *pipeline.Alert) {
	l.led.On()
	if l.previewDir == "" || l.processor == nil {
		return
	}
	if err := savePreview(l.previewDir, a, l.processor); err != nil {
		log.Printf("failed to save alert preview: %v", err)
	}
}

func (l *alertListener) AlertEnded(a *pipeline.Alert) {
	l.led.Off()
}

func savePreview(dir string, a *pipeline.Alert, p *pipeline.Processor) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i, m := range p.RecentMasks() {
		filename := filepath.Join(dir, fmt.Sprintf("alert-%s-%03d.png", a.ID, i))
		if err := m.Save(filename); err != nil {
			return err
		}
	}
	return nil
}
