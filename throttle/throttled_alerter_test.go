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

package throttle

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/juju/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/blob-detector/pipeline"
)

const (
	fps           = 10
	throttleAfter = 30 * time.Second

	minAlertSecs   = 10
	minAlertFrames = minAlertSecs * fps

	minRefill = 20 * time.Second
)

var throttleFrames = int(throttleAfter.Seconds() * fps)

func newTestConfig() *Config {
	return &Config{
		ApplyThrottling: true,
		BucketSize:      throttleAfter,
		MinRefill:       minRefill,
		MinAlertSecs:    minAlertSecs,
	}
}

func newTestThrottledAlerter() (*countingAlerter, *throttleListener, *ThrottledAlerter, *testClock) {
	clock := new(testClock)
	alerter := new(countingAlerter)
	listener := new(throttleListener)
	return alerter, listener, NewThrottledAlerterWithClock(alerter, newTestConfig(), fps, listener, clock), clock
}

type countingAlerter struct {
	pipeline.NoAlerter
	starts  int
	updates int
	refuse  error

	started []pipeline.Alert
	stopped []pipeline.Alert
}

func (ca *countingAlerter) CheckCanAlert() error { return ca.refuse }

func (ca *countingAlerter) StartAlert(a *pipeline.Alert) error {
	ca.starts++
	ca.started = append(ca.started, *a)
	return nil
}

func (ca *countingAlerter) StopAlert(a *pipeline.Alert) error {
	ca.stopped = append(ca.stopped, *a)
	return nil
}

func (ca *countingAlerter) UpdateAlert(a *pipeline.Alert) error {
	ca.updates++
	return nil
}

func (ca *countingAlerter) Reset() {
	ca.updates = 0
}

type throttleListener struct {
	events int
}

func (tl *throttleListener) WhenThrottled() {
	tl.events++
}

func alertFrames(throttler *ThrottledAlerter, frames int) {
	a := &pipeline.Alert{ID: "test"}
	throttler.StartAlert(a)
	updateFrames(throttler, a, frames)
	throttler.StopAlert(a)
}

func updateFrames(throttler *ThrottledAlerter, a *pipeline.Alert, frames int) {
	for i := 0; i < frames; i++ {
		throttler.UpdateAlert(a)
	}
}

func TestOnlyUpdatesUntilBucketIsEmpty(t *testing.T) {
	alerter, listener, throttler, _ := newTestThrottledAlerter()

	alertFrames(throttler, throttleFrames+2)
	assert.Equal(t, throttleFrames, alerter.updates)
	assert.Equal(t, 1, listener.events)
	assert.False(t, throttler.Alerting())
}

func TestCanAlertTwiceWithoutThrottling(t *testing.T) {
	alerter, _, throttler, _ := newTestThrottledAlerter()

	alertFrames(throttler, 10)
	assert.Equal(t, 10, alerter.updates)

	alertFrames(throttler, 10)
	assert.Equal(t, 20, alerter.updates)
	assert.Equal(t, 2, alerter.starts)
}

func TestWillNotStartAlertIfLessThanMinFramesInBucket(t *testing.T) {
	alerter, _, throttler, _ := newTestThrottledAlerter()

	alertFrames(throttler, throttleFrames-5)

	// only a few frames in the bucket - not enough to start another alert
	alerter.Reset()
	alertFrames(throttler, 10)
	assert.Equal(t, 0, alerter.updates)
	assert.Equal(t, 1, alerter.starts)
}

func TestNotAlertingFillsBucket(t *testing.T) {
	alerter, _, throttler, clock := newTestThrottledAlerter()

	alertFrames(throttler, throttleFrames) // empty bucket
	clock.Sleep(minRefill)                 // allow bucket to fill

	// Observe that it only filled up to the minimum size
	alerter.Reset()
	alertFrames(throttler, throttleFrames)
	assert.Equal(t, minAlertFrames, alerter.updates)
}

func TestNotifiesWhenThrottling(t *testing.T) {
	_, listener, throttler, _ := newTestThrottledAlerter()

	alertFrames(throttler, throttleFrames-2)
	assert.Equal(t, 0, listener.events)

	alertFrames(throttler, 3)
	assert.Equal(t, 1, listener.events)
}

func TestNotifiesEvenWhenAlertDoesntStart(t *testing.T) {
	_, listener, throttler, clock := newTestThrottledAlerter()

	alertFrames(throttler, throttleFrames+1)
	assert.Equal(t, 1, listener.events)

	clock.Sleep(minRefill / time.Duration(2))

	alertFrames(throttler, throttleFrames)
	assert.Equal(t, 2, listener.events)
}

func TestRestartDuringLongAlert(t *testing.T) {
	alerter, listener, throttler, clock := newTestThrottledAlerter()

	a := &pipeline.Alert{ID: "long"}
	throttler.StartAlert(a)
	updateFrames(throttler, a, throttleFrames+1) // trigger throttling
	assert.Equal(t, 1, listener.events)

	// Still stationary, but not long enough for the minimum refill.
	alerter.Reset()
	clock.Sleep(minRefill / 2)
	updateFrames(throttler, a, 10)
	assert.Equal(t, 0, alerter.updates)

	// Long enough now that the alert picks up again.
	alerter.Reset()
	clock.Sleep(minRefill / 2)
	updateFrames(throttler, a, 10)
	assert.Equal(t, 10, alerter.updates)
	assert.Equal(t, 2, alerter.starts)

	// Throttling has only happened once (at the top).
	assert.Equal(t, 1, listener.events)
}

func TestAlertResumedAfterThrottlingIsANewAlert(t *testing.T) {
	alerter, _, throttler, clock := newTestThrottledAlerter()
	ids := 0
	throttler.newID = func() string {
		ids++
		return fmt.Sprintf("resumed-%d", ids)
	}

	t0 := clock.Now()
	frameTime := time.Second / fps
	a := &pipeline.Alert{ID: "one", Started: t0, StartFrame: 50, Frames: 1}
	assert.NoError(t, throttler.StartAlert(a))
	for i := 0; i < 2000; i++ {
		clock.Sleep(frameTime)
		a.Frames++
		assert.NoError(t, throttler.UpdateAlert(a))
	}
	assert.NoError(t, throttler.StopAlert(a))

	require.True(t, len(alerter.started) >= 3, "alert should have been throttled and resumed")
	require.Equal(t, len(alerter.started), len(alerter.stopped))

	assert.Equal(t, "one", alerter.started[0].ID)
	assert.Equal(t, t0, alerter.started[0].Started)
	assert.Equal(t, 50, alerter.started[0].StartFrame)

	seen := map[string]bool{}
	for i, started := range alerter.started {
		assert.False(t, seen[started.ID], "alert id %s reused", started.ID)
		seen[started.ID] = true

		stopped := alerter.stopped[i]
		assert.Equal(t, started.ID, stopped.ID)
		assert.Equal(t, started.StartFrame, stopped.StartFrame)
		assert.True(t, stopped.Frames > 1)

		if i == 0 {
			continue
		}
		assert.Equal(t, fmt.Sprintf("resumed-%d", i), started.ID)
		assert.Equal(t, 1, started.Frames)
		// Resumed on the frame the object was last seen, at that frame's time.
		prev := alerter.stopped[i-1]
		assert.True(t, started.StartFrame > prev.StartFrame+prev.Frames-1)
		assert.Equal(t, t0.Add(time.Duration(started.StartFrame-50)*frameTime), started.Started)
	}

	// The last alert ran until the processor stopped it.
	last := alerter.stopped[len(alerter.stopped)-1]
	assert.Equal(t, 50+2000, last.StartFrame+last.Frames-1)
	assert.False(t, throttler.Alerting())
}

func TestStopWhileThrottledDoesNotStopTwice(t *testing.T) {
	alerter, _, throttler, _ := newTestThrottledAlerter()

	alertFrames(throttler, throttleFrames+5)
	assert.Len(t, alerter.started, 1)
	assert.Len(t, alerter.stopped, 1)
	assert.Equal(t, "test", alerter.stopped[0].ID)
}

func TestUsingDifferentRefillRate(t *testing.T) {
	clock := new(testClock)

	conf := newTestConfig()
	conf.MinRefill = 60 * time.Second
	alerter := new(countingAlerter)
	throttler := NewThrottledAlerterWithClock(alerter, conf, fps, nil, clock)

	alertFrames(throttler, throttleFrames) // empty bucket
	clock.Sleep(conf.MinRefill)            // allow to fill

	alerter.Reset()
	alertFrames(throttler, throttleFrames)
	assert.Equal(t, minAlertFrames, alerter.updates)
}

func TestCheckCanAlertPassedThrough(t *testing.T) {
	alerter, _, throttler, _ := newTestThrottledAlerter()
	assert.NoError(t, throttler.CheckCanAlert())

	alerter.refuse = errors.New("no")
	assert.EqualError(t, throttler.CheckCanAlert(), "no")
}

func TestConfigValidation(t *testing.T) {
	conf := DefaultConfig()
	assert.NoError(t, conf.Validate())

	conf.MinRefill = 0
	assert.Error(t, conf.Validate())

	conf.ApplyThrottling = false
	assert.NoError(t, conf.Validate())
}

var _ ratelimit.Clock = new(realClock)
var _ ratelimit.Clock = new(testClock)
var _ pipeline.Alerter = new(ThrottledAlerter)

// testClock implements a fake ratelimit.Clock for testing.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}
