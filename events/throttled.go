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

package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/godbus/dbus"
)

// ThrottledEventRecorder uses the event api to record that alerts were
// throttled at a particular time.
type ThrottledEventRecorder struct {
	queue func(details []byte, nanos int64) error
	now   func() time.Time
}

func NewThrottledEventRecorder() *ThrottledEventRecorder {
	return &ThrottledEventRecorder{
		queue: queueOnBus,
		now:   time.Now,
	}
}

func (er *ThrottledEventRecorder) WhenThrottled() {
	eventDetails := map[string]interface{}{
		"description": map[string]interface{}{
			"type": "throttle",
		},
	}
	detailsJSON, err := json.Marshal(&eventDetails)
	if err != nil {
		log.Printf("Could not record throttle event: %s", err)
		return
	}
	if err := er.queue(detailsJSON, er.now().UnixNano()); err != nil {
		log.Printf("Could not record throttle event: %s", err)
	}
}

func queueOnBus(details []byte, nanos int64) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	obj := conn.Object("org.cacophony.Events", "/org/cacophony/Events")
	return obj.Call("org.cacophony.Events.Queue", 0, details, nanos).Err
}
