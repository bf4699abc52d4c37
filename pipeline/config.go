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
	"errors"

	"github.com/TheCacophonyProject/blob-detector/stationary"
)

type Config struct {
	Connectivity  int               `yaml:"connectivity"`
	MinWidth      int               `yaml:"min-width"`
	MinHeight     int               `yaml:"min-height"`
	MinPixels     int               `yaml:"min-pixels"`
	TriggerFrames int               `yaml:"trigger-frames"`
	PreviewFrames int               `yaml:"preview-frames"`
	Verbose       bool              `yaml:"verbose"`
	Stationary    stationary.Config `yaml:"stationary"`
}

func DefaultConfig() Config {
	return Config{
		Connectivity:  8,
		MinWidth:      10,
		MinHeight:     10,
		MinPixels:     50,
		TriggerFrames: 30,
		PreviewFrames: 30,
		Stationary:    stationary.DefaultConfig(),
	}
}

func (conf *Config) Validate() error {
	if conf.Connectivity != 4 && conf.Connectivity != 8 {
		return errors.New("connectivity should be 4 or 8")
	}
	if conf.MinPixels < 1 {
		return errors.New("min-pixels should be at least 1")
	}
	if conf.TriggerFrames < 1 {
		return errors.New("trigger-frames should be at least 1")
	}
	if conf.PreviewFrames < 1 {
		return errors.New("preview-frames should be at least 1")
	}
	return conf.Stationary.Validate()
}
