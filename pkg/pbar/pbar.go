// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package pbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ostafen/pnglet/pkg/util/format"
)

const (
	MinRefreshRate = time.Millisecond * 500
	barLength      = 20
)

// ProgressBarState tracks a scan over a blob of TotalBytes.
type ProgressBarState struct {
	TotalBytes         int64
	ProcessedBytes     int64
	ImagesFound        int
	StartTime          time.Time
	LastUpdateTime     time.Time
	LastProcessedBytes int64

	w io.Writer
}

// NewProgressBarState returns a bar rendering to w.
func NewProgressBarState(w io.Writer, totalBytes int64) *ProgressBarState {
	now := time.Now()
	return &ProgressBarState{
		TotalBytes:     totalBytes,
		StartTime:      now,
		LastUpdateTime: now,
		w:              w,
	}
}

// Update records progress and redraws the bar when the refresh interval has
// elapsed.
func (pbs *ProgressBarState) Update(processed int64, found int) {
	pbs.ProcessedBytes = processed
	pbs.ImagesFound = found
	pbs.Render(false)
}

// Render prints the progress line, throttled to MinRefreshRate unless force
// is set.
func (pbs *ProgressBarState) Render(force bool) {
	if !force && time.Since(pbs.LastUpdateTime) < MinRefreshRate {
		return
	}

	percentage := 100.0
	if pbs.TotalBytes > 0 {
		percentage = float64(pbs.ProcessedBytes) / float64(pbs.TotalBytes) * 100
	}

	filledLen := int(float64(barLength) * percentage / 100)
	var bar string
	if filledLen >= barLength {
		bar = strings.Repeat("=", barLength)
	} else {
		bar = strings.Repeat("=", filledLen) + ">" + strings.Repeat(" ", barLength-filledLen-1)
	}

	var speed float64
	if elapsed := time.Since(pbs.LastUpdateTime).Seconds(); elapsed > 0 {
		speed = float64(pbs.ProcessedBytes-pbs.LastProcessedBytes) / elapsed
	}

	etaStr := "calculating..."
	if pbs.ProcessedBytes > 0 && speed > 0 {
		remaining := time.Duration(float64(pbs.TotalBytes-pbs.ProcessedBytes) / speed * float64(time.Second))
		etaStr = format.FormatDurationHMS(remaining) + " remaining"
	}

	pbs.LastUpdateTime = time.Now()
	pbs.LastProcessedBytes = pbs.ProcessedBytes

	// trailing spaces clear leftovers of a previous longer line
	fmt.Fprintf(pbs.w, "\r[INFO] Progress: [%s] %3.0f%% (%s/%s) | Images Found: %d | @ %.2fMB/s [%s]    ",
		bar,
		percentage,
		format.FormatBytes(pbs.ProcessedBytes),
		format.FormatBytes(pbs.TotalBytes),
		pbs.ImagesFound,
		speed/format.MB,
		etaStr)
}

// Finish draws the final state and moves to the next line.
func (pbs *ProgressBarState) Finish() {
	pbs.ProcessedBytes = pbs.TotalBytes
	pbs.Render(true)
	fmt.Fprintln(pbs.w)
}
