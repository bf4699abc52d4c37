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
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/TheCacophonyProject/blob-detector/mask"
	"github.com/TheCacophonyProject/blob-detector/pipeline"
	"github.com/TheCacophonyProject/blob-detector/render"
)

// maskFiles returns the PNG masks in dir in name order.
func maskFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// processMaskDir runs every PNG mask in dir through a processor, in name
// order. All masks must have the same size as the first.
func processMaskDir(conf *Config, dir, renderDir string) (*playbackResults, error) {
	files, err := maskFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no masks found in %s", dir)
	}

	first, err := mask.Load(files[0])
	if err != nil {
		return nil, err
	}
	results := &playbackResults{verbose: conf.Detector.Verbose}
	processor, err := pipeline.NewProcessor(conf.Detector, first.Width, first.Height, nil, nil, results)
	if err != nil {
		return nil, err
	}

	for i, filename := range files {
		m := first
		if i > 0 {
			if m, err = mask.Load(filename); err != nil {
				return nil, err
			}
		}
		res, err := processor.Process(m)
		if err != nil {
			return nil, errors.Wrap(err, filename)
		}
		results.frameCount++
		results.blobCount += len(res.Blobs)
		if renderDir != "" {
			if err := renderResult(renderDir, m, res); err != nil {
				return nil, err
			}
		}
	}
	if err := processor.Stop(); err != nil {
		return nil, err
	}
	results.completed()
	return results, nil
}

// renderResult saves the mask with its blobs in label colours and the
// stationary blobs in white.
func renderResult(dir string, m *mask.Mask, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	img := render.Paint(m.Gray(), res.Blobs, true)
	img = render.Paint(img, res.StationaryBlobs, false)
	return render.SavePNG(img, filepath.Join(dir, fmt.Sprintf("frame-%06d.png", res.Frame)))
}
