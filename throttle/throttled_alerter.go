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

// Package throttle stops alerts from firing continuously when something
// sits in the scene for hours.
package throttle

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/juju/ratelimit"

	"github.com/TheCacophonyProject/blob-detector/pipeline"
)

func NewThrottledAlerter(
	base pipeline.Alerter,
	conf *Config,
	fps float64,
	listener ThrottledEventListener,
) *ThrottledAlerter {
	return NewThrottledAlerterWithClock(base, conf, fps, listener, new(realClock))
}

func NewThrottledAlerterWithClock(
	base pipeline.Alerter,
	conf *Config,
	fps float64,
	listener ThrottledEventListener,
	clock ratelimit.Clock,
) *ThrottledAlerter {
	// The token bucket counts frames spent alerting.
	bucketFrames := int64(conf.BucketSize.Seconds() * fps)
	minFrames := int64(float64(conf.MinAlertSecs) * fps)
	refillRate := float64(minFrames) / conf.MinRefill.Seconds()

	if minFrames > bucketFrames {
		log.Printf("min-alert-secs (%d frames) is more than the throttle bucket (%d frames), no alerts will be raised",
			minFrames, bucketFrames)
	}

	if listener == nil {
		listener = new(nullListener)
	}

	return &ThrottledAlerter{
		alerter:   base,
		listener:  listener,
		bucket:    ratelimit.NewBucketWithRateAndClock(refillRate, bucketFrames, clock),
		clock:     clock,
		minFrames: minFrames,
		newID:     uuid.NewString,
	}
}

// ThrottledAlerter limits how many frames can be spent alerting. When the
// bucket runs dry the alert is ended on the wrapped alerter even though
// the object is still there. If it is still there once the bucket has
// refilled, a new alert is raised for it, with its own ID and start time,
// so the wrapped alerter never sees the same alert started twice.
type ThrottledAlerter struct {
	alerter   pipeline.Alerter
	listener  ThrottledEventListener
	bucket    *ratelimit.Bucket
	clock     ratelimit.Clock
	minFrames int64
	newID     func() string

	// current is the alert as the wrapped alerter knows it, nil when the
	// wrapped alerter has no alert running.
	current *pipeline.Alert
}

type ThrottledEventListener interface {
	WhenThrottled()
}

type nullListener struct{}

func (lis *nullListener) WhenThrottled() {}

func (throttler *ThrottledAlerter) CheckCanAlert() error {
	return throttler.alerter.CheckCanAlert()
}

func (throttler *ThrottledAlerter) StartAlert(a *pipeline.Alert) error {
	if !throttler.canStart() {
		log.Printf("alert %s not started due to throttling", a.ID)
		throttler.listener.WhenThrottled()
		return nil
	}
	current := *a
	return throttler.start(&current)
}

func (throttler *ThrottledAlerter) UpdateAlert(a *pipeline.Alert) error {
	if throttler.current == nil {
		if !throttler.canStart() {
			return nil
		}
		if err := throttler.start(throttler.resumed(a)); err != nil {
			return err
		}
	}

	if throttler.bucket.TakeAvailable(1) == 0 {
		log.Printf("alert %s throttled", throttler.current.ID)
		throttler.listener.WhenThrottled()
		return throttler.stop(a)
	}
	throttler.sync(a)
	return throttler.alerter.UpdateAlert(throttler.current)
}

func (throttler *ThrottledAlerter) StopAlert(a *pipeline.Alert) error {
	if throttler.current == nil {
		return nil
	}
	return throttler.stop(a)
}

// Alerting reports whether the wrapped alerter currently has an alert
// running.
func (throttler *ThrottledAlerter) Alerting() bool {
	return throttler.current != nil
}

func (throttler *ThrottledAlerter) canStart() bool {
	return throttler.bucket.Available() >= throttler.minFrames
}

func (throttler *ThrottledAlerter) start(a *pipeline.Alert) error {
	if err := throttler.alerter.StartAlert(a); err != nil {
		return err
	}
	throttler.current = a
	return nil
}

func (throttler *ThrottledAlerter) stop(a *pipeline.Alert) error {
	current := throttler.current
	throttler.current = nil
	throttler.sync(a)
	return throttler.alerter.StopAlert(current)
}

// resumed is a new alert for the object behind a, starting on a's latest
// frame.
func (throttler *ThrottledAlerter) resumed(a *pipeline.Alert) *pipeline.Alert {
	frame := a.StartFrame + a.Frames - 1
	if frame < a.StartFrame {
		frame = a.StartFrame
	}
	return &pipeline.Alert{
		ID:         throttler.newID(),
		Started:    throttler.clock.Now(),
		StartFrame: frame,
		Frames:     1,
		Pixels:     a.Pixels,
		Blobs:      a.Blobs,
	}
}

// sync copies the progress of a into the current alert.
func (throttler *ThrottledAlerter) sync(a *pipeline.Alert) {
	c := throttler.current
	if c == nil {
		return
	}
	if frames := a.StartFrame + a.Frames - c.StartFrame; frames > c.Frames {
		c.Frames = frames
	}
	c.Pixels = a.Pixels
	c.Blobs = a.Blobs
}

// realClock implements ratelimit.Clock in terms of standard time functions.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
