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
	"io"
	"log"
	"os"
	"strings"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"

	"github.com/TheCacophonyProject/blob-detector/mask"
	"github.com/TheCacophonyProject/blob-detector/pipeline"
)

// playbackResults collects what happened while playing back a recording.
type playbackResults struct {
	verbose          bool
	frameCount       int
	stationaryFrames int
	blobCount        int
	alerts           string
}

func (r *playbackResults) StationaryDetected(res *pipeline.Result) {
	r.stationaryFrames++
}

func (r *playbackResults) AlertStarted(a *pipeline.Alert) {
	if r.verbose {
		log.Printf("%d: alert started", a.StartFrame)
	}
	r.alerts += fmt.Sprintf("(%d:", a.StartFrame)
}

func (r *playbackResults) AlertEnded(a *pipeline.Alert) {
	end := a.StartFrame + a.Frames
	if r.verbose {
		log.Printf("%d: alert ended", end)
	}
	r.alerts += fmt.Sprintf("%d)", end)
}

func (r *playbackResults) completed() {
	if strings.HasSuffix(r.alerts, ":") {
		r.alerts += "end)"
	}
	if r.alerts == "" {
		r.alerts = "None"
	}
}

func (r *playbackResults) String() string {
	return fmt.Sprintf("Alerts: %-16s Stationary frames: %d/%d Blobs: %d",
		r.alerts, r.stationaryFrames, r.frameCount, r.blobCount)
}

// CPTVPlaybackTester runs thermal recordings through the detector, using a
// plain temperature threshold as the segmenter. It is meant for tuning
// the detector settings against known footage.
type CPTVPlaybackTester struct {
	config    *Config
	renderDir string
}

func NewCPTVPlaybackTester(conf *Config, renderDir string) *CPTVPlaybackTester {
	return &CPTVPlaybackTester{
		config:    conf,
		renderDir: renderDir,
	}
}

func (cpt *CPTVPlaybackTester) Detect(filename string) (*playbackResults, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader, err := cptv.NewReader(file)
	if err != nil {
		return nil, err
	}

	results := &playbackResults{verbose: cpt.config.Detector.Verbose}
	detectorConf := cpt.config.Detector
	if fps := reader.FPS(); fps > 0 {
		detectorConf.Stationary.FPS = float64(fps)
	}
	processor, err := pipeline.NewProcessor(detectorConf, reader.ResX(), reader.ResY(), nil, nil, results)
	if err != nil {
		return nil, err
	}

	frame := cptvframe.NewFrame(reader)
	m := mask.New(reader.ResX(), reader.ResY())
	for {
		if err := reader.ReadFrame(frame); err != nil {
			if err != io.EOF {
				log.Printf("error reading file: %v", err)
			}
			break
		}
		thermalToMask(frame, cpt.config.Playback.TempThresh, m)
		res, err := processor.Process(m)
		if err != nil {
			return nil, err
		}
		results.frameCount++
		results.blobCount += len(res.Blobs)
		if cpt.renderDir != "" {
			if err := renderResult(cpt.renderDir, m, res); err != nil {
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

// thermalToMask marks every pixel at or above tempThresh as foreground.
func thermalToMask(frame *cptvframe.Frame, tempThresh uint16, m *mask.Mask) {
	for y, row := range frame.Pix {
		for x, val := range row {
			if val >= tempThresh {
				m.Pix[y*m.Width+x] = mask.Foreground
			} else {
				m.Pix[y*m.Width+x] = mask.Background
			}
		}
	}
}
