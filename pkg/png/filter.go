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
	"fmt"
	"strings"
)

// FilterType is the per-scanline filter byte.
type FilterType uint8

const (
	FilterNone    FilterType = 0
	FilterSub     FilterType = 1
	FilterUp      FilterType = 2
	FilterAverage FilterType = 3
	FilterPaeth   FilterType = 4

	nFilter = 5
)

var filterNames = [nFilter]string{"none", "sub", "up", "average", "paeth"}

func (ft FilterType) String() string {
	if ft < nFilter {
		return filterNames[ft]
	}
	return fmt.Sprintf("FilterType(%d)", uint8(ft))
}

func ParseFilterType(s string) (FilterType, error) {
	s = strings.ToLower(s)
	for i, name := range filterNames {
		if name == s {
			return FilterType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

// Paeth returns whichever of a (left), b (up) and c (upper left) is closest
// to a+b-c, preferring a, then b, then c on ties.
func Paeth(a, b, c byte) byte {
	pc := int(c)
	pa := int(b) - pc
	pb := int(a) - pc
	pc = abs(pa + pb)
	pa = abs(pa)
	pb = abs(pb)

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func checkRow(row, prior []byte, bpp int) error {
	if bpp < 1 {
		return fmt.Errorf("invalid bytes per pixel %d", bpp)
	}
	if prior != nil && len(prior) < len(row) {
		return fmt.Errorf("%w: prior row holds %d bytes, row has %d", ErrScanlineLength, len(prior), len(row))
	}
	return nil
}

// Filter writes raw filtered with ft into dst, which must be at least as
// long as raw. prior holds the previous scanline's unfiltered bytes; nil
// stands for the all-zero row preceding the first scanline. All arithmetic
// wraps modulo 256.
func Filter(dst, raw, prior []byte, bpp int, ft FilterType) error {
	if len(dst) < len(raw) {
		return fmt.Errorf("%w: destination holds %d bytes, row has %d", ErrScanlineLength, len(dst), len(raw))
	}
	if err := checkRow(raw, prior, bpp); err != nil {
		return err
	}
	dst = dst[:len(raw)]
	if prior == nil {
		prior = make([]byte, len(raw))
	}

	switch ft {
	case FilterNone:
		copy(dst, raw)
	case FilterSub:
		for i := 0; i < bpp && i < len(raw); i++ {
			dst[i] = raw[i]
		}
		for i := bpp; i < len(raw); i++ {
			dst[i] = raw[i] - raw[i-bpp]
		}
	case FilterUp:
		for i := range raw {
			dst[i] = raw[i] - prior[i]
		}
	case FilterAverage:
		for i := 0; i < bpp && i < len(raw); i++ {
			dst[i] = raw[i] - prior[i]/2
		}
		for i := bpp; i < len(raw); i++ {
			dst[i] = raw[i] - uint8((int(raw[i-bpp])+int(prior[i]))/2)
		}
	case FilterPaeth:
		for i := 0; i < bpp && i < len(raw); i++ {
			dst[i] = raw[i] - Paeth(0, prior[i], 0)
		}
		for i := bpp; i < len(raw); i++ {
			dst[i] = raw[i] - Paeth(raw[i-bpp], prior[i], prior[i-bpp])
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFilter, ft)
	}
	return nil
}

// Defilter reverses Filter in place. prior must already be unfiltered.
func Defilter(row, prior []byte, bpp int, ft FilterType) error {
	if err := checkRow(row, prior, bpp); err != nil {
		return err
	}
	if prior == nil {
		prior = make([]byte, len(row))
	}

	switch ft {
	case FilterNone:
	case FilterSub:
		for i := bpp; i < len(row); i++ {
			row[i] += row[i-bpp]
		}
	case FilterUp:
		for i, p := range prior[:len(row)] {
			row[i] += p
		}
	case FilterAverage:
		for i := 0; i < bpp && i < len(row); i++ {
			row[i] += prior[i] / 2
		}
		for i := bpp; i < len(row); i++ {
			row[i] += uint8((int(row[i-bpp]) + int(prior[i])) / 2)
		}
	case FilterPaeth:
		for i := 0; i < bpp && i < len(row); i++ {
			row[i] += Paeth(0, prior[i], 0)
		}
		for i := bpp; i < len(row); i++ {
			row[i] += Paeth(row[i-bpp], prior[i], prior[i-bpp])
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFilter, ft)
	}
	return nil
}

// FilterPolicy chooses the filter applied to each scanline when encoding.
type FilterPolicy interface {
	Select(raw, prior []byte, bpp int, scratch *FilterScratch) FilterType
}

// FilterScratch holds one reusable output buffer per filter type. It is
// owned by a single encode call.
type FilterScratch struct {
	rows [nFilter][]byte
}

func NewFilterScratch(rowBytes int) *FilterScratch {
	s := &FilterScratch{}
	for i := range s.rows {
		s.rows[i] = make([]byte, rowBytes)
	}
	return s
}

// Row returns the scratch buffer of ft.
func (s *FilterScratch) Row(ft FilterType) []byte { return s.rows[ft] }

// FixedFilter applies the same filter to every scanline.
type FixedFilter FilterType

func (f FixedFilter) Select([]byte, []byte, int, *FilterScratch) FilterType {
	return FilterType(f)
}

// MinSumAbs tries every filter and keeps the one whose output has the
// smallest sum of absolute values, reading each byte as a signed delta.
// Ties go to the lower filter type.
type MinSumAbs struct{}

func (MinSumAbs) Select(raw, prior []byte, bpp int, scratch *FilterScratch) FilterType {
	best, bestSum := FilterNone, -1
	for ft := FilterNone; ft < nFilter; ft++ {
		row := scratch.Row(ft)
		_ = Filter(row, raw, prior, bpp, ft)

		sum := 0
		for _, b := range row[:len(raw)] {
			sum += abs(int(int8(b)))
			if bestSum >= 0 && sum >= bestSum {
				break
			}
		}
		if bestSum < 0 || sum < bestSum {
			best, bestSum = ft, sum
		}
	}
	return best
}

// ParseFilterPolicy maps a filter name, or "adaptive", to a policy.
func ParseFilterPolicy(s string) (FilterPolicy, error) {
	if strings.EqualFold(s, "adaptive") {
		return MinSumAbs{}, nil
	}
	ft, err := ParseFilterType(s)
	if err != nil {
		return nil, err
	}
	return FixedFilter(ft), nil
}

// defilterRows splits the inflated IDAT stream into scanlines and defilters
// them in order, threading each reconstructed row into the next as prior.
func defilterRows(h Header, data []byte) ([][]byte, error) {
	rowBytes := h.RowBytes()
	stride := 1 + rowBytes
	bpp := h.BytesPerPixel()

	pix := make([]byte, int(h.Height)*rowBytes)
	rows := make([][]byte, h.Height)

	var prior []byte
	for y := range rows {
		line := data[y*stride : (y+1)*stride]
		row := pix[y*rowBytes : (y+1)*rowBytes : (y+1)*rowBytes]
		copy(row, line[1:])

		if err := Defilter(row, prior, bpp, FilterType(line[0])); err != nil {
			return nil, formatErr(err, TypeIDAT, 0, "scanline %d", y)
		}
		rows[y] = row
		prior = row
	}
	return rows, nil
}
