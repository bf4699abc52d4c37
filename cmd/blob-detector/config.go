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
	"errors"
	"io/ioutil"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/blob-detector/pipeline"
	"github.com/TheCacophonyProject/blob-detector/throttle"
)

type Config struct {
	FrameInput        string          `yaml:"frame-input"`
	OutputDir         string          `yaml:"output-dir"`
	SaveAlertPreviews bool            `yaml:"save-alert-previews"`
	Detector          pipeline.Config `yaml:"detector"`
	Throttler         throttle.Config `yaml:"throttler"`
	LEDs              LEDsConfig      `yaml:"leds"`
	Playback          PlaybackConfig  `yaml:"playback"`
}

type LEDsConfig struct {
	Alert string `yaml:"alert"`
}

// PlaybackConfig controls how thermal recordings are turned into masks
// when testing with a CPTV file.
type PlaybackConfig struct {
	TempThresh uint16 `yaml:"temp-thresh"`
}

func (conf *Config) Validate() error {
	if conf.FrameInput == "" {
		return errors.New("frame-input should be set")
	}
	if err := conf.Detector.Validate(); err != nil {
		return err
	}
	if err := conf.Throttler.Validate(); err != nil {
		return err
	}
	return nil
}

var defaultConfig = Config{
	FrameInput:        "/var/run/mask-frames",
	OutputDir:         "/var/spool/blob-detector",
	SaveAlertPreviews: false,
	Detector:          pipeline.DefaultConfig(),
	Throttler:         throttle.DefaultConfig(),
	LEDs: LEDsConfig{
		Alert: "",
	},
	Playback: PlaybackConfig{
		TempThresh: 3000,
	},
}

// ParseConfigFile reads the config file, falling back to the defaults
// when it doesn't exist.
func ParseConfigFile(filename string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
