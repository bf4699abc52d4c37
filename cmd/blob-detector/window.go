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
	goconfig "github.com/TheCacophonyProject/go-config"
	"github.com/TheCacophonyProject/window"
)

// loadAlertWindow builds the time of day window alerts are raised in from
// the device wide location and recording window settings.
func loadAlertWindow(configDir string) (*window.Window, error) {
	configRW, err := goconfig.New(configDir)
	if err != nil {
		return nil, err
	}
	windowLocation := goconfig.DefaultWindowLocation()
	if err := configRW.Unmarshal(goconfig.LocationKey, &windowLocation); err != nil {
		return nil, err
	}
	windows := goconfig.DefaultWindows()
	if err := configRW.Unmarshal(goconfig.WindowsKey, &windows); err != nil {
		return nil, err
	}

	return window.New(
		windows.StartRecording,
		windows.StopRecording,
		float64(windowLocation.Latitude),
		float64(windowLocation.Longitude))
}
