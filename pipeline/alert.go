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
	"time"

	"github.com/TheCacophonyProject/blob-detector/blob"
)

// Alert describes one period in which something has stayed put in the
// scene for long enough to be flagged.
type Alert struct {
	ID         string
	Started    time.Time
	StartFrame int
	// Frames is the number of frames the alert has been running for.
	Frames int
	// Pixels and Blobs describe the stationary mask of the latest frame.
	Pixels int
	Blobs  []blob.Blob
}

// Alerter is told when alerts start, continue and stop.
type Alerter interface {
	CheckCanAlert() error
	StartAlert(a *Alert) error
	UpdateAlert(a *Alert) error
	StopAlert(a *Alert) error
}

// NoAlerter drops every alert.
type NoAlerter struct{}

func (*NoAlerter) CheckCanAlert() error       { return nil }
func (*NoAlerter) StartAlert(a *Alert) error  { return nil }
func (*NoAlerter) UpdateAlert(a *Alert) error { return nil }
func (*NoAlerter) StopAlert(a *Alert) error   { return nil }

type Listener interface {
	StationaryDetected(r *Result)
	AlertStarted(a *Alert)
	AlertEnded(a *Alert)
}

// Window limits the times of day alerts may start.
type Window interface {
	Active() bool
}
