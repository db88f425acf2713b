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
package hexdump

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ostafen/pnglet/pkg/png"
)

const bytesPerLine = 16

type class uint8

const (
	classData class = iota
	classSignature
	classLength
	classType
	classCRC
)

// Options controls the dump output.
type Options struct {
	// Color highlights the signature and the chunk framing fields when the
	// input is a PNG stream.
	Color bool
}

type palette map[class]*color.Color

func newPalette() palette {
	p := palette{
		classSignature: color.New(color.FgMagenta, color.Bold),
		classLength:    color.New(color.FgYellow),
		classType:      color.New(color.FgCyan, color.Bold),
		classCRC:       color.New(color.FgGreen),
	}
	for _, c := range p {
		c.EnableColor()
	}
	return p
}

// Dump writes data in the layout
//
//	00000000 | 89 50 4E 47 0D 0A 1A 0A 00 00 00 0D 49 48 44 52 | .PNG........IHDR
//
// followed by a "File size: N bytes" trailer.
func Dump(w io.Writer, data []byte, opts Options) error {
	bw := bufio.NewWriter(w)

	var (
		classes []class
		pal     palette
	)
	if opts.Color {
		classes = classify(data)
		pal = newPalette()
	}

	for off := 0; off < len(data); off += bytesPerLine {
		line := data[off:min(off+bytesPerLine, len(data))]

		fmt.Fprintf(bw, "%08X | ", off)

		var hex strings.Builder
		for i, b := range line {
			if i > 0 {
				hex.WriteByte(' ')
			}
			hex.WriteString(pal.paint(classes, off+i, fmt.Sprintf("%02X", b)))
		}
		bw.WriteString(hex.String())

		// pad on the visible width, escape sequences do not count
		visible := 3*len(line) - 1
		bw.WriteString(strings.Repeat(" ", 3*bytesPerLine-1-visible))
		bw.WriteString(" | ")

		for i, b := range line {
			c := byte('.')
			if b >= 32 && b <= 126 {
				c = b
			}
			bw.WriteString(pal.paint(classes, off+i, string(c)))
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "File size: %d bytes\n", len(data))
	return bw.Flush()
}

func (p palette) paint(classes []class, i int, s string) string {
	if i >= len(classes) || classes[i] == classData {
		return s
	}
	return p[classes[i]].Sprint(s)
}

// classify marks the framing bytes of a PNG stream. Chunk payloads and any
// bytes after the first malformed chunk stay plain data.
func classify(data []byte) []class {
	classes := make([]class, len(data))
	if !png.HasSignature(data) {
		return classes
	}

	off := len(png.Signature)
	for i := range off {
		classes[i] = classSignature
	}

	for off+12 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[off:]))
		end := off + 12 + length
		if length > png.MaxChunkLength || end > len(data) || end < off {
			break
		}

		for i := off; i < off+4; i++ {
			classes[i] = classLength
		}
		for i := off + 4; i < off+8; i++ {
			classes[i] = classType
		}
		for i := end - 4; i < end; i++ {
			classes[i] = classCRC
		}
		off = end
	}
	return classes
}
