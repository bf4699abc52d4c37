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
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/blob-detector/mask"
)

const (
	testWidth  = 40
	testHeight = 30
)

// quickConfig makes a pixel stationary after one foreground frame and
// clears it after one background frame.
func quickConfig() *Config {
	conf := defaultConfig
	conf.Detector.TriggerFrames = 2
	conf.Detector.Stationary.FPS = 1
	conf.Detector.Stationary.SecsStationary = 2
	conf.Detector.Stationary.DecrementCost = 20
	return &conf
}

func objectMask() *mask.Mask {
	m := mask.New(testWidth, testHeight)
	for y := 5; y < 25; y++ {
		for x := 10; x < 30; x++ {
			m.Pix[y*m.Width+x] = mask.Foreground
		}
	}
	return m
}

// writeMasks saves one PNG per entry, true meaning the object is present.
func writeMasks(t *testing.T, dir string, object []bool) {
	for i, present := range object {
		m := mask.New(testWidth, testHeight)
		if present {
			m = objectMask()
		}
		require.NoError(t, m.Save(filepath.Join(dir, fmt.Sprintf("mask-%03d.png", i))))
	}
}

func TestProcessMaskDir(t *testing.T) {
	dir := t.TempDir()
	writeMasks(t, dir, []bool{false, true, true, true, true, false, false})
	// Not a mask.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	results, err := processMaskDir(quickConfig(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, 7, results.frameCount)
	assert.Equal(t, 4, results.blobCount)
	assert.Equal(t, 4, results.stationaryFrames)
	assert.Equal(t, "(2:5)", results.alerts)
}

func TestProcessMaskDirAlertStillRunning(t *testing.T) {
	dir := t.TempDir()
	writeMasks(t, dir, []bool{true, true, true})

	results, err := processMaskDir(quickConfig(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, "(1:3)", results.alerts)
}

func TestProcessMaskDirWithoutAlerts(t *testing.T) {
	dir := t.TempDir()
	writeMasks(t, dir, []bool{false, true, false, true, false})

	results, err := processMaskDir(quickConfig(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, "None", results.alerts)
	assert.Equal(t, 2, results.stationaryFrames)
}

func TestProcessMaskDirRenders(t *testing.T) {
	dir := t.TempDir()
	renderDir := filepath.Join(t.TempDir(), "render")
	writeMasks(t, dir, []bool{false, true})

	_, err := processMaskDir(quickConfig(), dir, renderDir)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(renderDir, "*.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(renderDir, "frame-000000.png"),
		filepath.Join(renderDir, "frame-000001.png"),
	}, files)

	img, err := imaging.Open(files[1])
	require.NoError(t, err)
	assert.Equal(t, testWidth, img.Bounds().Dx())
	assert.Equal(t, testHeight, img.Bounds().Dy())
}

func TestProcessMaskDirErrors(t *testing.T) {
	_, err := processMaskDir(quickConfig(), t.TempDir(), "")
	assert.Error(t, err)

	dir := t.TempDir()
	writeMasks(t, dir, []bool{false})
	require.NoError(t, mask.New(testWidth+1, testHeight).Save(filepath.Join(dir, "mask-999.png")))
	_, err = processMaskDir(quickConfig(), dir, "")
	assert.Error(t, err)
}
