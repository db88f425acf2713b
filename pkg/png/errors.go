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
package png

import (
	"errors"
	"fmt"
)

var (
	ErrBadSignature         = errors.New("not a PNG file")
	ErrInvalidHeader        = errors.New("invalid IHDR")
	ErrTruncatedChunk       = errors.New("truncated chunk")
	ErrChecksumMismatch     = errors.New("invalid checksum")
	ErrChunksOutOfOrder     = errors.New("invalid PNG chunk order")
	ErrMissingHeader        = errors.New("missing IHDR")
	ErrMissingPalette       = errors.New("missing PLTE")
	ErrDecompression        = errors.New("decompression failure")
	ErrScanlineLength       = errors.New("scanline length mismatch")
	ErrUnknownFilter        = errors.New("unknown filter type")
	ErrUnknownCriticalChunk = errors.New("unknown critical chunk")
	ErrChunkTooLarge        = errors.New("chunk too large")
	ErrUnsupported          = errors.New("unsupported feature")
)

// FormatError reports a decoding or encoding failure together with the
// chunk and stream offset it was detected at.
type FormatError struct {
	Err    error
	Chunk  ChunkType
	Offset int
	Msg    string
}

func (e *FormatError) Error() string {
	s := "png: " + e.Err.Error()
	if e.Chunk != (ChunkType{}) {
		s += fmt.Sprintf(" (%s chunk at offset %d)", e.Chunk, e.Offset)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(err error, t ChunkType, off int, format string, args ...any) error {
	return &FormatError{
		Err:    err,
		Chunk:  t,
		Offset: off,
		Msg:    fmt.Sprintf(format, args...),
	}
}
