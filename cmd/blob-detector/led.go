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

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

// alertLED is lit while an alert is running. With no pin configured it
// does nothing.
type alertLED struct {
	pin gpio.PinIO
}

func newAlertLED(pinName string) (*alertLED, error) {
	if pinName == "" {
		return &alertLED{}, nil
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("unknown alert LED pin %q", pinName)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to set alert LED pin low: %v", err)
	}
	return &alertLED{pin: pin}, nil
}

func (led *alertLED) On() {
	led.set(gpio.High)
}

func (led *alertLED) Off() {
	led.set(gpio.Low)
}

func (led *alertLED) set(level gpio.Level) {
	if led == nil || led.pin == nil {
		return
	}
	if err := led.pin.Out(level); err != nil {
		log.Printf("failed to set alert LED: %v", err)
	}
}
