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
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// ColorType is the IHDR colour type field.
type ColorType uint8

const (
	Greyscale      ColorType = 0
	RGB            ColorType = 2
	Palette        ColorType = 3
	GreyscaleAlpha ColorType = 4
	RGBA           ColorType = 6
)

var colorTypeNames = map[ColorType]string{
	Greyscale:      "greyscale",
	RGB:            "rgb",
	Palette:        "palette",
	GreyscaleAlpha: "greyscale-alpha",
	RGBA:           "rgba",
}

func (ct ColorType) String() string {
	if name, ok := colorTypeNames[ct]; ok {
		return name
	}
	return fmt.Sprintf("ColorType(%d)", uint8(ct))
}

// ParseColorType accepts the names returned by ColorType.String.
func ParseColorType(s string) (ColorType, error) {
	s = strings.ToLower(s)
	for ct, name := range colorTypeNames {
		if name == s {
			return ct, nil
		}
	}
	return 0, fmt.Errorf("unknown color type %q", s)
}

// Channels returns the number of samples per pixel, or 0 for an unknown
// colour type.
func (ct ColorType) Channels() int {
	switch ct {
	case Greyscale, Palette:
		return 1
	case GreyscaleAlpha:
		return 2
	case RGB:
		return 3
	case RGBA:
		return 4
	}
	return 0
}

// legalDepths lists the bit depths allowed for each colour type.
var legalDepths = map[ColorType][]uint8{
	Greyscale:      {1, 2, 4, 8, 16},
	RGB:            {8, 16},
	Palette:        {1, 2, 4, 8},
	GreyscaleAlpha: {8, 16},
	RGBA:           {8, 16},
}

const (
	InterlaceNone  uint8 = 0
	InterlaceAdam7 uint8 = 1
)

const ihdrLength = 13

// Header holds the fields of the IHDR chunk.
type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8
	ColorType   ColorType
	Compression uint8
	Filter      uint8
	Interlace   uint8
}

// Validate checks the header against the PNG rules for dimensions, bit
// depth/colour type combinations and method fields.
func (h Header) Validate() error {
	if h.Width == 0 || h.Height == 0 {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "zero dimension %dx%d", h.Width, h.Height)
	}
	if h.Width > MaxChunkLength || h.Height > MaxChunkLength {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "dimension %dx%d out of range", h.Width, h.Height)
	}

	depths, ok := legalDepths[h.ColorType]
	if !ok {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "bad color type: %d", h.ColorType)
	}

	legal := false
	for _, d := range depths {
		legal = legal || d == h.BitDepth
	}
	if !legal {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "bit depth %d not allowed for color type %s", h.BitDepth, h.ColorType)
	}

	if h.Compression != 0 {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "bad compression method: %d", h.Compression)
	}
	if h.Filter != 0 {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "bad filter method: %d", h.Filter)
	}
	if h.Interlace != InterlaceNone && h.Interlace != InterlaceAdam7 {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "bad interlace method: %d", h.Interlace)
	}
	if _, ok := h.dataLen(); !ok {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "image %dx%d at %d bits per pixel is too large", h.Width, h.Height, h.BitsPerPixel())
	}
	return nil
}

func (h Header) BitsPerPixel() int {
	return int(h.BitDepth) * h.ColorType.Channels()
}

// BytesPerPixel is the filter lookback distance: the number of bytes in a
// complete pixel, rounded up to one for sub-byte depths.
func (h Header) BytesPerPixel() int {
	return max(1, (h.BitsPerPixel()+7)/8)
}

// RowBytes returns the length of an unfiltered scanline. Only meaningful
// for headers that pass Validate.
func (h Header) RowBytes() int {
	return int(h.rowBytes())
}

// DataLen returns the size of the decompressed IDAT stream: every scanline
// plus its filter byte. Only meaningful for headers that pass Validate.
func (h Header) DataLen() int {
	n, _ := h.dataLen()
	return n
}

func (h Header) rowBytes() uint64 {
	return (uint64(h.Width)*uint64(h.BitsPerPixel()) + 7) / 8
}

// dataLen reports false when the stream length does not fit an int.
func (h Header) dataLen() (int, bool) {
	hi, lo := bits.Mul64(uint64(h.Height), 1+h.rowBytes())
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// MarshalBinary encodes the IHDR payload.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.appendIHDR(make([]byte, 0, ihdrLength)), nil
}

func (h Header) appendIHDR(b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, h.Width)
	b = binary.BigEndian.AppendUint32(b, h.Height)
	return append(b, h.BitDepth, uint8(h.ColorType), h.Compression, h.Filter, h.Interlace)
}

// UnmarshalBinary decodes and validates an IHDR payload.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) != ihdrLength {
		return formatErr(ErrInvalidHeader, TypeIHDR, 0, "bad IHDR length: %d", len(data))
	}

	*h = Header{
		Width:       binary.BigEndian.Uint32(data[0:4]),
		Height:      binary.BigEndian.Uint32(data[4:8]),
		BitDepth:    data[8],
		ColorType:   ColorType(data[9]),
		Compression: data[10],
		Filter:      data[11],
		Interlace:   data[12],
	}
	return h.Validate()
}

func (h Header) String() string {
	interlace := "none"
	if h.Interlace == InterlaceAdam7 {
		interlace = "adam7"
	}
	return fmt.Sprintf("%dx%d %d-bit %s, interlace %s", h.Width, h.Height, h.BitDepth, h.ColorType, interlace)
}
