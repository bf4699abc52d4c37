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
	"log"
	"net"
	"os"
	"time"

	goconfig "github.com/TheCacophonyProject/go-config"
	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"
	"periph.io/x/periph/host"

	"github.com/TheCacophonyProject/blob-detector/events"
	"github.com/TheCacophonyProject/blob-detector/loglimiter"
	"github.com/TheCacophonyProject/blob-detector/maskstream"
	"github.com/TheCacophonyProject/blob-detector/pipeline"
	"github.com/TheCacophonyProject/blob-detector/throttle"
)

const (
	frameLogIntervalFirstMin = 15
	frameLogInterval         = 60 * 5
	secsPerSdNotify          = 5
)

var version = "<not set>"

type Args struct {
	ConfigFile   string `arg:"-c,--config" help:"path to configuration file"`
	ConfigDir    string `arg:"--config-dir" help:"path to the device configuration directory"`
	Timestamps   bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
	MaskDir      string `arg:"-m,--mask-dir" help:"process a directory of PNG masks and exit"`
	TestCptvFile string `arg:"-f,--testfile" help:"run a CPTV file through to see what the results are"`
	RenderDir    string `arg:"-r,--render-dir" help:"save every processed frame with its blobs drawn on"`
	Verbose      bool   `arg:"-v,--verbose" help:"make logging more verbose"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/blob-detector.yaml"
	args.ConfigDir = goconfig.DefaultConfigDir
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()

	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	conf.Detector.Verbose = conf.Detector.Verbose || args.Verbose
	logConfig(conf)

	if args.MaskDir != "" {
		results, err := processMaskDir(conf, args.MaskDir, args.RenderDir)
		if err != nil {
			return err
		}
		log.Print(results)
		return nil
	}

	if args.TestCptvFile != "" {
		results, err := NewCPTVPlaybackTester(conf, args.RenderDir).Detect(args.TestCptvFile)
		if err != nil {
			return err
		}
		log.Print(results)
		return nil
	}

	alertWindow, err := loadAlertWindow(args.ConfigDir)
	if err != nil {
		return err
	}

	log.Println("starting d-bus service")
	if err := os.MkdirAll(conf.OutputDir, 0755); err != nil {
		return err
	}
	deleteSnapshot(conf.OutputDir)
	if err := startService(conf.OutputDir); err != nil {
		return err
	}

	log.Println("host initialisation")
	if _, err := host.Init(); err != nil {
		return err
	}
	led, err := newAlertLED(conf.LEDs.Alert)
	if err != nil {
		return err
	}

	for {
		// Set up listener for masks sent by the segmenter.
		os.Remove(conf.FrameInput)
		listener, err := net.Listen("unix", conf.FrameInput)
		if err != nil {
			return err
		}
		log.Print("waiting for segmenter connection")

		conn, err := listener.Accept()
		if err != nil {
			log.Printf("socket accept failed: %v", err)
			continue
		}

		// Prevent concurrent connections.
		listener.Close()

		err = handleConn(conn, conf, alertWindow, led, args.RenderDir)
		log.Printf("segmenter connection ended with: %v", err)
	}
}

func handleConn(conn net.Conn, conf *Config, w pipeline.Window, led *alertLED, renderDir string) error {
	defer conn.Close()

	reader, err := maskstream.NewReader(conn)
	if err != nil {
		return err
	}
	header := reader.Header()
	log.Printf("connection from %s %s (%dx%d@%dfps)", header.Brand, header.Model, header.ResX, header.ResY, header.FPS)

	detectorConf := conf.Detector
	if header.FPS > 0 {
		detectorConf.Stationary.FPS = float64(header.FPS)
	}
	fps := detectorConf.Stationary.FPS

	var alerter pipeline.Alerter = events.NewEventAlerter(fps)
	if conf.Throttler.ApplyThrottling {
		alerter = throttle.NewThrottledAlerter(alerter, &conf.Throttler, fps, events.NewThrottledEventRecorder())
	}

	lis := &alertListener{led: led, verbose: detectorConf.Verbose}
	if conf.SaveAlertPreviews {
		lis.previewDir = conf.OutputDir
	}
	p, err := pipeline.NewProcessor(detectorConf, header.ResX, header.ResY, w, alerter, lis)
	if err != nil {
		return err
	}
	lis.processor = p
	setProcessor(p)
	defer func() {
		if err := p.Stop(); err != nil {
			log.Printf("failed to stop alert: %v", err)
		}
	}()

	framesPerSec := int(fps)
	if framesPerSec < 1 {
		framesPerSec = 1
	}
	framesPerSdNotify := secsPerSdNotify * framesPerSec
	firstMinFrames := frameLogIntervalFirstMin * framesPerSec
	logFrames := frameLogInterval * framesPerSec
	errLog := loglimiter.New(time.Minute)

	log.Print("reading masks")
	totalFrames := 0
	notifyCount := 0
	m := reader.NewMask()
	for {
		if err := reader.ReadMask(m); err != nil {
			return err
		}
		totalFrames++

		if notifyCount++; notifyCount >= framesPerSdNotify {
			daemon.SdNotify(false, "WATCHDOG=1")
			notifyCount = 0
		}

		if totalFrames%firstMinFrames == 0 &&
			totalFrames <= 60*framesPerSec || totalFrames%logFrames == 0 {
			log.Printf("%d frames for this connection", totalFrames)
		}

		res, err := p.Process(m)
		if err != nil {
			errLog.Printf("failed to process mask: %v", err)
			continue
		}
		if renderDir != "" {
			if err := renderResult(renderDir, m, res); err != nil {
				errLog.Printf("failed to render frame: %v", err)
			}
		}
	}
}

func logConfig(conf *Config) {
	log.Printf("frame input: %s", conf.FrameInput)
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("detector: %+v", conf.Detector)
	log.Printf("throttler: %+v", conf.Throttler)
	if conf.LEDs.Alert != "" {
		log.Printf("alert LED pin: %s", conf.LEDs.Alert)
	}
}
