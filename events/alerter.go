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

// Package events reports alerts on the device event queue so they reach
// the server with the rest of the device's events.
package events

import (
	"log"
	"time"

	"github.com/TheCacophonyProject/event-reporter/eventclient"

	"github.com/TheCacophonyProject/blob-detector/blob"
	"github.com/TheCacophonyProject/blob-detector/pipeline"
)

const (
	AlertStartedType = "stationaryObject"
	AlertEndedType   = "stationaryObjectEnded"
)

// EventAlerter turns alerts into events. Updates are not reported, only
// the start and end of each alert.
type EventAlerter struct {
	fps      float64
	addEvent func(eventclient.Event) error
	now      func() time.Time
}

func NewEventAlerter(fps float64) *EventAlerter {
	return &EventAlerter{
		fps:      fps,
		addEvent: eventclient.AddEvent,
		now:      time.Now,
	}
}

func (ea *EventAlerter) CheckCanAlert() error {
	return nil
}

func (ea *EventAlerter) StartAlert(a *pipeline.Alert) error {
	log.Printf("stationary object alert %s started (%d pixels, %d blobs)", a.ID, a.Pixels, len(a.Blobs))
	return ea.addEvent(eventclient.Event{
		Timestamp: a.Started,
		Type:      AlertStartedType,
		Details: map[string]interface{}{
			"alertId": a.ID,
			"frame":   a.StartFrame,
			"pixels":  a.Pixels,
			"blobs":   blobDetails(a.Blobs),
		},
	})
}

func (ea *EventAlerter) UpdateAlert(a *pipeline.Alert) error {
	return nil
}

func (ea *EventAlerter) StopAlert(a *pipeline.Alert) error {
	secs := float64(a.Frames) / ea.fps
	log.Printf("stationary object alert %s ended after %.1fs", a.ID, secs)
	return ea.addEvent(eventclient.Event{
		Timestamp: ea.now(),
		Type:      AlertEndedType,
		Details: map[string]interface{}{
			"alertId": a.ID,
			"frames":  a.Frames,
			"seconds": secs,
		},
	})
}

func blobDetails(blobs []blob.Blob) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(blobs))
	for _, b := range blobs {
		out = append(out, map[string]interface{}{
			"x":      b.X,
			"y":      b.Y,
			"width":  b.W,
			"height": b.H,
		})
	}
	return out
}
