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
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"path/filepath"
	"sort"
	"time"

	arg "github.com/alexflint/go-arg"

	"github.com/TheCacophonyProject/blob-detector/mask"
	"github.com/TheCacophonyProject/blob-detector/maskstream"
)

var (
	version          = "<not set>"
	frameLogInterval = 1000
)

type Args struct {
	MaskDir    string `arg:"positional,required" help:"directory of PNG masks to send"`
	Socket     string `arg:"-s,--socket" help:"socket the blob detector reads masks from"`
	FPS        int    `arg:"-f,--fps" help:"frames sent per second"`
	Loop       bool   `arg:"-l,--loop" help:"keep sending the masks until interrupted"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	args := Args{
		Socket: "/var/run/mask-frames",
		FPS:    30,
	}
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
	if args.FPS < 1 {
		return errors.New("fps should be at least 1")
	}
	masks, err := loadMasks(args.MaskDir)
	if err != nil {
		return err
	}
	log.Printf("loaded %d masks from %s", len(masks), args.MaskDir)

	conn, err := net.Dial("unix", args.Socket)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Second / time.Duration(args.FPS))
	defer ticker.Stop()
	wait := func() { <-ticker.C }

	w := bufio.NewWriter(conn)
	header := newHeader(masks[0], args.FPS)
	if err := maskstream.WriteHeader(w, header); err != nil {
		return err
	}
	totalFrames := 0
	for {
		sent, err := sendMasks(w, header, masks, wait)
		totalFrames += sent
		if err != nil {
			return err
		}
		log.Printf("%d frames sent", totalFrames)
		if !args.Loop {
			return nil
		}
	}
}

// loadMasks reads every PNG in dir, in name order. They must all be the
// same size.
func loadMasks(dir string) ([]*mask.Mask, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no masks found in %s", dir)
	}
	sort.Strings(files)

	masks := make([]*mask.Mask, 0, len(files))
	for _, filename := range files {
		m, err := mask.Load(filename)
		if err != nil {
			return nil, err
		}
		if len(masks) > 0 && !m.SameSize(masks[0]) {
			return nil, fmt.Errorf("%s is %dx%d, expected %dx%d",
				filename, m.Width, m.Height, masks[0].Width, masks[0].Height)
		}
		masks = append(masks, m)
	}
	return masks, nil
}

func newHeader(m *mask.Mask, fps int) *maskstream.Header {
	return &maskstream.Header{
		ResX:      m.Width,
		ResY:      m.Height,
		FPS:       fps,
		FrameSize: m.Width * m.Height,
		Brand:     "mask-sender",
		Model:     version,
	}
}

// sendMasks writes each mask as a frame, calling wait before each one,
// and flushes w if it buffers. It returns how many frames were sent.
func sendMasks(w io.Writer, h *maskstream.Header, masks []*mask.Mask, wait func()) (int, error) {
	flusher, _ := w.(interface{ Flush() error })
	for i, m := range masks {
		if wait != nil {
			wait()
		}
		if err := maskstream.WriteMask(w, h, m); err != nil {
			return i, err
		}
		if flusher != nil {
			if err := flusher.Flush(); err != nil {
				return i, err
			}
		}
		if (i+1)%frameLogInterval == 0 {
			log.Printf("%d of %d masks sent", i+1, len(masks))
		}
	}
	return len(masks), nil
}
