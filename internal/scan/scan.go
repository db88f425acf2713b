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
package scan

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/k1LoW/errors"
	"github.com/ostafen/pnglet/internal/env"
	"github.com/ostafen/pnglet/internal/logger"
	"github.com/ostafen/pnglet/internal/mmap"
	"github.com/ostafen/pnglet/pkg/dfxml"
	"github.com/ostafen/pnglet/pkg/pbar"
	fmtutil "github.com/ostafen/pnglet/pkg/util/format"
	osutil "github.com/ostafen/pnglet/pkg/util/os"
)

type Options struct {
	// DumpDir receives a copy of every carved image when set.
	DumpDir string
	// ReportFile defaults to report_<session>.xml in the working directory.
	ReportFile  string
	MaxFileSize uint64
	Decode      bool
	NoProgress  bool

	Logger *slog.Logger
	// Out receives the human readable summary; os.Stdout when nil.
	Out io.Writer
}

// Summary is the outcome of a scan.
type Summary struct {
	Images     int
	ImageBytes uint64
	Scanned    uint64
	ReportFile string
	Duration   time.Duration
}

// Scan carves every PNG stream out of the file at filePath, writes a DFXML
// report describing them and optionally dumps them to opts.DumpDir.
func Scan(filePath string, opts Options) (_ *Summary, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	m, err := mmap.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	reportFile := opts.ReportFile
	if reportFile == "" {
		reportFile = fmt.Sprintf("report_%s.xml", GenSessionID())
	}

	if opts.DumpDir != "" {
		if _, err := osutil.EnsureDir(opts.DumpDir, false); err != nil {
			return nil, err
		}
	}

	reportOut, err := os.Create(reportFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := reportOut.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	report := dfxml.NewDFXMLWriter(reportOut)
	err = report.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: absPath(filePath),
			ImageSize:     uint64(m.Len()),
		},
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "[INFO] Starting scanning operation...")
	fmt.Fprintf(out, "[INFO] Source: \t%s (%s)\n", absPath(filePath), fmtutil.FormatBytes(int64(m.Len())))
	if opts.DumpDir != "" {
		fmt.Fprintf(out, "[INFO] Destination: \t%s\n", absPath(opts.DumpDir))
	}

	carver := &Carver{
		Logger:      log,
		MaxFileSize: opts.MaxFileSize,
		Decode:      opts.Decode,
	}

	var bar *pbar.ProgressBarState
	if !opts.NoProgress {
		bar = pbar.NewProgressBarState(out, int64(m.Len()))
		carver.Progress = bar.Update
	}

	start := time.Now()
	summary := &Summary{
		Scanned:    uint64(m.Len()),
		ReportFile: absPath(reportFile),
	}

	for finfo := range carver.Carve(m.Data) {
		summary.Images++
		summary.ImageBytes += finfo.Size

		if opts.DumpDir != "" {
			content := m.Data[finfo.Offset : finfo.Offset+finfo.Size]
			if err := DumpFile(opts.DumpDir, finfo.Name, content); err != nil {
				return nil, err
			}
		}

		if err := report.WriteFileObject(FileObject(finfo)); err != nil {
			log.Error("unable to write report entry", "name", finfo.Name, "err", err)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if err := report.Close(); err != nil {
		return nil, err
	}
	summary.Duration = time.Since(start)

	fmt.Fprintf(out, "[INFO] Scan completed!\n")
	fmt.Fprintf(out, "[INFO] Images found: \t%d (%s)\n", summary.Images, fmtutil.FormatBytes(int64(summary.ImageBytes)))
	fmt.Fprintf(out, "[INFO] Duration: \t%s\n", fmtutil.FormatDurationHMS(summary.Duration))
	fmt.Fprintf(out, "[INFO] Report saved to: \t%s\n", summary.ReportFile)

	return summary, nil
}

// FileObject converts a carved stream into its report entry.
func FileObject(finfo FileInfo) dfxml.FileObject {
	return dfxml.FileObject{
		Filename: finfo.Name,
		FileSize: finfo.Size,
		Image: &dfxml.Image{
			Width:     finfo.Header.Width,
			Height:    finfo.Header.Height,
			BitDepth:  finfo.Header.BitDepth,
			ColorType: finfo.Header.ColorType.String(),
			Chunks:    finfo.Chunks,
			Decoded:   finfo.Decoded,
		},
		ByteRuns: dfxml.ByteRuns{
			Runs: []dfxml.ByteRun{{
				Offset:    0,
				ImgOffset: finfo.Offset,
				Length:    finfo.Size,
			}},
		},
	}
}

// DumpFile writes data to dumpDir/fileName.
func DumpFile(dumpDir string, fileName string, data []byte) error {
	f, err := os.Create(filepath.Join(dumpDir, fileName))
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", fileName, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1024*1024)
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func absPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// GenSessionID names a scan session after its start time, as YYYYMMDD_HHMMSS.
func GenSessionID() string {
	return time.Now().Format("20060102_150405")
}
