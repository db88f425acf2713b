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
package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/ostafen/pnglet/internal/mmap"
	"github.com/ostafen/pnglet/pkg/png"
	"github.com/spf13/cobra"
)

type imageInfo struct {
	File          string   `json:"file"`
	Size          int      `json:"size"`
	Width         uint32   `json:"width"`
	Height        uint32   `json:"height"`
	BitDepth      uint8    `json:"bitDepth"`
	ColorType     string   `json:"colorType"`
	Interlace     uint8    `json:"interlace"`
	BitsPerPixel  int      `json:"bitsPerPixel"`
	RowBytes      int      `json:"rowBytes"`
	PaletteSize   int      `json:"paletteSize,omitempty"`
	AncillaryList []string `json:"ancillary,omitempty"`
}

func DefineInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "info <png_file>",
		Short:        "Print the header of a PNG file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInfo,
	}

	cmd.Flags().Bool("json", false, "print the result as JSON")
	return cmd
}

func RunInfo(cmd *cobra.Command, args []string) error {
	f, err := mmap.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := png.DecodeHeader(f.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	info := imageInfo{
		File:         args[0],
		Size:         f.Len(),
		Width:        h.Width,
		Height:       h.Height,
		BitDepth:     h.BitDepth,
		ColorType:    h.ColorType.String(),
		Interlace:    h.Interlace,
		BitsPerPixel: h.BitsPerPixel(),
		RowBytes:     h.RowBytes(),
	}
	for ci, err := range png.Chunks(f.Data[len(png.Signature):]) {
		if err != nil {
			appFrom(cmd).log.Warn("chunk walk stopped early", "file", args[0], "err", err)
			break
		}
		switch {
		case ci.Type == png.TypePLTE:
			info.PaletteSize = len(ci.Data) / 3
		case !ci.Type.Critical():
			info.AncillaryList = append(info.AncillaryList, ci.Type.String())
		}
		if ci.Type == png.TypeIEND {
			break
		}
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(out, "File:       %s (%d bytes)\n", info.File, info.Size)
	fmt.Fprintf(out, "Header:     %s\n", h.String())
	fmt.Fprintf(out, "Row bytes:  %d (%d bits per pixel)\n", info.RowBytes, info.BitsPerPixel)
	if info.PaletteSize > 0 {
		fmt.Fprintf(out, "Palette:    %d entries\n", info.PaletteSize)
	}
	if len(info.AncillaryList) > 0 {
		fmt.Fprintf(out, "Ancillary:  %v\n", info.AncillaryList)
	}
	return nil
}
