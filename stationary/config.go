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

package stationary

import "errors"

type Config struct {
	FPS            float64 `yaml:"fps"`
	SecsStationary float64 `yaml:"secs-stationary"`
	IncrementCost  float64 `yaml:"increment-cost"`
	DecrementCost  float64 `yaml:"decrement-cost"`
	Threshold      float64 `yaml:"threshold"`
	HistoryCap     float64 `yaml:"history-cap"`
}

func DefaultConfig() Config {
	return Config{
		FPS:            30,
		SecsStationary: 10,
		IncrementCost:  5,
		DecrementCost:  5,
		Threshold:      0.5,
		HistoryCap:     1024,
	}
}

func (conf *Config) Validate() error {
	if conf.FPS <= 0 {
		return errors.New("fps should be greater than 0")
	}
	if conf.SecsStationary <= 0 {
		return errors.New("secs-stationary should be greater than 0")
	}
	if conf.IncrementCost < 0 || conf.DecrementCost < 0 {
		return errors.New("increment-cost and decrement-cost should not be negative")
	}
	if conf.Threshold <= 0 || conf.Threshold >= 1 {
		return errors.New("threshold should be between 0 and 1")
	}
	if conf.HistoryCap <= 0 {
		return errors.New("history-cap should be greater than 0")
	}
	return nil
}

// SaturationFrames is the history value at which a pixel counts as fully
// stationary.
func (conf *Config) SaturationFrames() float64 {
	return conf.FPS * conf.SecsStationary
}
