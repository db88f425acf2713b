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
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Compressor deflates the filtered scanline stream into IDAT data.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor inflates concatenated IDAT payloads. limit is the exact
// number of bytes expected; implementations must not return more than
// limit+1 bytes so oversized streams can be detected without inflating
// them completely.
// maxPrealloc bounds the buffer reserved before inflating.
const maxPrealloc = 1 << 20

type Decompressor interface {
	Decompress(data []byte, limit int) ([]byte, error)
}

// Strategy tunes the DEFLATE encoder. It affects the size of the output,
// never its correctness.
type Strategy int

const (
	StrategyDefault Strategy = iota
	StrategyHuffmanOnly
	StrategyFixed
	StrategyStore
)

var strategyNames = []string{"default", "huffman", "fixed", "store"}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func ParseStrategy(s string) (Strategy, error) {
	s = strings.ToLower(s)
	for i, name := range strategyNames {
		if name == s {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compression strategy %q", s)
}

// ZlibCodec wraps the IDAT stream in a zlib container.
type ZlibCodec struct {
	Level    int
	Strategy Strategy
}

// DefaultCodec is used when an Encoder or decode call has no codec set.
var DefaultCodec = ZlibCodec{Level: zlib.DefaultCompression}

func (c ZlibCodec) level() (int, error) {
	switch c.Strategy {
	case StrategyHuffmanOnly:
		return zlib.HuffmanOnly, nil
	case StrategyStore:
		return zlib.NoCompression, nil
	case StrategyDefault, StrategyFixed:
		// fixed Huffman codes are not exposed by the encoder, the level
		// alone drives the output.
	default:
		return 0, fmt.Errorf("unknown compression strategy %d", c.Strategy)
	}

	if c.Level < zlib.DefaultCompression || c.Level > zlib.BestCompression {
		return 0, fmt.Errorf("invalid compression level %d", c.Level)
	}
	return c.Level, nil
}

func (c ZlibCodec) Compress(data []byte) ([]byte, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (ZlibCodec) Decompress(data []byte, limit int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if limit < 0 {
		return nil, fmt.Errorf("negative limit %d", limit)
	}

	// the declared size comes from untrusted input, let the buffer grow
	// with the data actually inflated
	var buf bytes.Buffer
	buf.Grow(min(limit, maxPrealloc))

	n := int64(limit)
	if n < math.MaxInt64 {
		n++
	}
	if _, err := io.Copy(&buf, io.LimitReader(r, n)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
