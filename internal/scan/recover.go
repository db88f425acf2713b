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
	"fmt"
	"log/slog"

	"github.com/k1LoW/errors"
	"github.com/ostafen/pnglet/internal/logger"
	"github.com/ostafen/pnglet/pkg/dfxml"
	"github.com/ostafen/pnglet/pkg/png"
)

// FileInfos converts report entries back into carved stream descriptions.
// Entries must describe a single contiguous byte run.
func FileInfos(objects []dfxml.FileObject) ([]FileInfo, error) {
	finfos := make([]FileInfo, 0, len(objects))
	for _, obj := range objects {
		if len(obj.ByteRuns.Runs) != 1 {
			return nil, fmt.Errorf("%s: expected one byte run, found %d", obj.Filename, len(obj.ByteRuns.Runs))
		}
		run := obj.ByteRuns.Runs[0]
		if run.Length != obj.FileSize {
			return nil, fmt.Errorf("%s: byte run length %d does not match file size %d", obj.Filename, run.Length, obj.FileSize)
		}

		finfo := FileInfo{
			Name:   obj.Filename,
			Offset: run.ImgOffset,
			Size:   obj.FileSize,
		}
		if img := obj.Image; img != nil {
			finfo.Header.Width = img.Width
			finfo.Header.Height = img.Height
			finfo.Header.BitDepth = img.BitDepth
			if ct, err := png.ParseColorType(img.ColorType); err == nil {
				finfo.Header.ColorType = ct
			}
			finfo.Chunks = img.Chunks
			finfo.Decoded = img.Decoded
		}
		finfos = append(finfos, finfo)
	}
	return finfos, nil
}

// Slice returns the bytes of finfo within blob after checking that they
// still start with a PNG signature.
func Slice(blob []byte, finfo FileInfo) ([]byte, error) {
	end := finfo.Offset + finfo.Size
	if end < finfo.Offset || end > uint64(len(blob)) {
		return nil, fmt.Errorf("%s: range [%d, %d) is outside the %d byte source", finfo.Name, finfo.Offset, end, len(blob))
	}
	data := blob[finfo.Offset:end]
	if !png.HasSignature(data) {
		return nil, fmt.Errorf("%s: %w", finfo.Name, png.ErrBadSignature)
	}
	return data, nil
}

// Recover writes every entry of finfos found in blob to outDir. Entries that
// cannot be extracted are logged and skipped; the number of written files is
// returned along with the joined per-entry errors.
func Recover(blob []byte, finfos []FileInfo, outDir string, log *slog.Logger) (int, error) {
	if log == nil {
		log = logger.Discard()
	}

	var (
		n    int
		errs error
	)
	for _, finfo := range finfos {
		data, err := Slice(blob, finfo)
		if err == nil {
			err = DumpFile(outDir, finfo.Name, data)
		}
		if err != nil {
			log.Error("unable to recover file", "name", finfo.Name, "err", err)
			errs = errors.Join(errs, err)
			continue
		}
		log.Info("recovered file", "name", finfo.Name, "size", finfo.Size)
		n++
	}
	return n, errs
}
