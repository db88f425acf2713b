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
	"bytes"
	"fmt"
	"iter"
	"log/slog"

	"github.com/ostafen/pnglet/internal/logger"
	"github.com/ostafen/pnglet/pkg/png"
)

// FileInfo describes a PNG stream found inside a blob.
type FileInfo struct {
	Name    string
	Offset  uint64 // offset of the signature within the blob
	Size    uint64 // signature through the IEND CRC
	Header  png.Header
	Chunks  int
	Decoded bool
}

// ProgressFunc receives the number of bytes scanned so far and the number of
// images found.
type ProgressFunc func(processed int64, found int)

// Carver locates PNG streams inside arbitrary bytes. A candidate is accepted
// when it starts with the signature, its first chunk is a valid IHDR and
// every chunk up to IEND has a good CRC.
type Carver struct {
	Logger *slog.Logger
	// Streams larger than MaxFileSize are skipped; zero means unlimited.
	MaxFileSize uint64
	// Decode additionally inflates and defilters every candidate.
	Decode  bool
	Decoder png.Decoder

	Progress ProgressFunc
}

// FileName names a carved image after its offset in the blob.
func FileName(offset uint64) string {
	return fmt.Sprintf("f%08d.png", offset)
}

// Carve yields every PNG stream in data in offset order. Streams never
// overlap: scanning resumes right after the IEND of an accepted stream.
func (c *Carver) Carve(data []byte) iter.Seq[FileInfo] {
	log := c.Logger
	if log == nil {
		log = logger.Discard()
	}

	return func(yield func(FileInfo) bool) {
		found := 0
		for pos := 0; pos < len(data); {
			idx := bytes.Index(data[pos:], []byte(png.Signature))
			if idx < 0 {
				break
			}
			hit := pos + idx

			finfo, err := c.inspect(data[hit:], uint64(hit))
			if err != nil {
				log.Debug("rejected candidate", "offset", hit, "err", err)
				pos = hit + 1
				c.progress(int64(pos), found)
				continue
			}

			if c.Decode {
				_, err := c.Decoder.Decode(data[hit : hit+int(finfo.Size)])
				if err != nil {
					log.Warn("image structure is valid but pixel data is not", "offset", hit, "err", err)
				}
				finfo.Decoded = err == nil
			}

			found++
			log.Info("found image",
				"name", finfo.Name,
				"offset", finfo.Offset,
				"size", finfo.Size,
				"header", finfo.Header.String(),
			)
			if !yield(finfo) {
				return
			}

			pos = hit + int(finfo.Size)
			c.progress(int64(pos), found)
		}
		c.progress(int64(len(data)), found)
	}
}

func (c *Carver) progress(processed int64, found int) {
	if c.Progress != nil {
		c.Progress(processed, found)
	}
}

// inspect walks the chunks of the stream starting at b up to IEND.
func (c *Carver) inspect(b []byte, offset uint64) (FileInfo, error) {
	h, err := png.DecodeHeader(b)
	if err != nil {
		return FileInfo{}, err
	}

	n := 0
	for ci, err := range png.Chunks(b[len(png.Signature):]) {
		if err != nil {
			return FileInfo{}, err
		}
		if !ci.Type.Valid() {
			return FileInfo{}, fmt.Errorf("invalid chunk type %q at %d", ci.Type.String(), ci.Offset)
		}
		n++

		end := uint64(len(png.Signature) + ci.Offset + ci.Len())
		if c.MaxFileSize > 0 && end > c.MaxFileSize {
			return FileInfo{}, fmt.Errorf("stream exceeds %d bytes", c.MaxFileSize)
		}
		if ci.Type == png.TypeIEND {
			return FileInfo{
				Name:   FileName(offset),
				Offset: offset,
				Size:   end,
				Header: h,
				Chunks: n,
			}, nil
		}
	}
	return FileInfo{}, fmt.Errorf("no IEND chunk: %w", png.ErrTruncatedChunk)
}
