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

// Package pipeline runs every frame of a mask stream through blob
// extraction, classification and the stationary detector, and raises
// alerts when something stays put.
package pipeline

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/TheCacophonyProject/blob-detector/blob"
	"github.com/TheCacophonyProject/blob-detector/loglimiter"
	"github.com/TheCacophonyProject/blob-detector/mask"
	"github.com/TheCacophonyProject/blob-detector/stationary"
)

const minLogInterval = time.Minute

// Result is what one frame produced.
type Result struct {
	Frame            int
	Blobs            []blob.Blob
	Stationary       *mask.Mask
	StationaryBlobs  []blob.Blob
	StationaryPixels int
	Alerting         bool
}

type Processor struct {
	conf     Config
	width    int
	height   int
	detector *stationary.Detector
	loop     *MaskLoop
	window   Window
	alerter  Alerter
	listener Listener
	log      *loglimiter.LogLimiter

	frame     int
	triggered int
	alert     *Alert

	newID func() string
	now   func() time.Time
}

// NewProcessor builds a processor for masks of the given size. window and
// listener may be nil; a nil alerter drops alerts.
func NewProcessor(
	conf Config,
	width, height int,
	window Window,
	alerter Alerter,
	listener Listener,
) (*Processor, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	detector, err := stationary.NewDetector(conf.Stationary, width, height)
	if err != nil {
		return nil, err
	}
	if alerter == nil {
		alerter = new(NoAlerter)
	}
	return &Processor{
		conf:     conf,
		width:    width,
		height:   height,
		detector: detector,
		loop:     NewMaskLoop(conf.PreviewFrames, width, height),
		window:   window,
		alerter:  alerter,
		listener: listener,
		log:      loglimiter.New(minLogInterval),
		newID:    uuid.NewString,
		now:      time.Now,
	}, nil
}

// Process copies m into the frame loop and processes it. m is not kept.
func (p *Processor) Process(m *mask.Mask) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Width != p.width || m.Height != p.height {
		return nil, pkgerrors.Wrapf(mask.ErrInvalidInput,
			"mask is %dx%d, expected %dx%d", m.Width, m.Height, p.width, p.height)
	}
	current := p.loop.Current()
	copy(current.Pix, m.Pix)

	res, err := p.process(current)
	if err != nil {
		return nil, err
	}
	p.loop.Move()
	return res, nil
}

func (p *Processor) process(m *mask.Mask) (*Result, error) {
	blobs, err := p.findBlobs(m)
	if err != nil {
		return nil, err
	}
	if err := blob.Classify(blobs); err != nil {
		p.log.Printf("classification incomplete: %v", err)
	}

	stationaryMask, err := p.detector.Update(m)
	if err != nil {
		return nil, err
	}
	stationaryBlobs, err := p.findBlobs(stationaryMask)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Frame:            p.frame,
		Blobs:            blobs,
		Stationary:       stationaryMask,
		StationaryBlobs:  stationaryBlobs,
		StationaryPixels: stationaryMask.Count(mask.Foreground),
	}
	if p.conf.Verbose {
		log.Printf("frame %d: %d blobs %v, %d stationary pixels", res.Frame, len(blobs), blobs, res.StationaryPixels)
	}

	p.updateAlert(res)
	res.Alerting = p.alert != nil
	p.frame++
	return res, nil
}

func (p *Processor) findBlobs(m *mask.Mask) ([]blob.Blob, error) {
	blobs, err := blob.Extract(m, p.conf.Connectivity)
	if err != nil {
		return nil, err
	}
	return blob.RemoveSmall(blobs, p.conf.MinWidth, p.conf.MinHeight), nil
}

func (p *Processor) updateAlert(res *Result) {
	if res.StationaryPixels < p.conf.MinPixels {
		p.triggered = 0
		if p.alert != nil {
			if err := p.stopAlert(); err != nil {
				p.log.Printf("failed to stop alert: %v", err)
			}
		}
		return
	}

	if p.listener != nil {
		p.listener.StationaryDetected(res)
	}
	p.triggered++

	if p.alert != nil {
		p.alert.Frames++
		p.alert.Pixels = res.StationaryPixels
		p.alert.Blobs = res.StationaryBlobs
		if err := p.alerter.UpdateAlert(p.alert); err != nil {
			p.log.Printf("failed to update alert: %v", err)
		}
	} else if p.triggered < p.conf.TriggerFrames {
		// Only alert after TriggerFrames consecutive stationary frames.
	} else if err := p.canStartAlert(); err != nil {
		p.log.Printf("alert not started: %v", err)
	} else if err := p.startAlert(res); err != nil {
		p.log.Printf("can't start alert: %v", err)
	}
}

func (p *Processor) canStartAlert() error {
	if p.window != nil && !p.window.Active() {
		return errors.New("stationary object detected but outside of alert window")
	}
	return p.alerter.CheckCanAlert()
}

func (p *Processor) startAlert(res *Result) error {
	a := &Alert{
		ID:         p.newID(),
		Started:    p.now(),
		StartFrame: res.Frame,
		Frames:     1,
		Pixels:     res.StationaryPixels,
		Blobs:      res.StationaryBlobs,
	}
	if err := p.alerter.StartAlert(a); err != nil {
		return err
	}
	p.alert = a
	if p.listener != nil {
		p.listener.AlertStarted(a)
	}
	return nil
}

func (p *Processor) stopAlert() error {
	a := p.alert
	p.alert = nil
	p.triggered = 0
	// A quick restart shouldn't hand out the same preview masks again.
	p.loop.SetAsOldest()

	if p.listener != nil {
		p.listener.AlertEnded(a)
	}
	return p.alerter.StopAlert(a)
}

// Stop ends any running alert. The stationary history is kept.
func (p *Processor) Stop() error {
	if p.alert == nil {
		return nil
	}
	return p.stopAlert()
}

// Reset ends any running alert and forgets the stationary history, for
// when the mask source changes.
func (p *Processor) Reset() error {
	err := p.Stop()
	p.detector.Reset()
	p.triggered = 0
	return err
}

// RecentMask returns a copy of the last processed mask or nil.
func (p *Processor) RecentMask() *mask.Mask {
	return p.loop.Recent()
}

// RecentMasks returns copies of the masks processed before the current
// one, oldest first.
func (p *Processor) RecentMasks() []*mask.Mask {
	return p.loop.History()
}

// FindBlobs runs extraction, filtering and classification on m with the
// processor's settings without touching the stationary history.
func (p *Processor) FindBlobs(m *mask.Mask) ([]blob.Blob, error) {
	blobs, err := p.findBlobs(m)
	if err != nil {
		return nil, err
	}
	if err := blob.Classify(blobs); err != nil {
		p.log.Printf("classification incomplete: %v", err)
	}
	return blobs, nil
}

func (p *Processor) Frames() int {
	return p.frame
}

func (p *Processor) Alerting() bool {
	return p.alert != nil
}
