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
	"os"

	"github.com/ostafen/pnglet/pkg/hexdump"
	"github.com/ostafen/pnglet/pkg/png"
	"github.com/spf13/cobra"
)

func DefineEncodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [raw_file]",
		Short: "Encode raw scanlines into a PNG file",
		Long: `The 'encode' command reads unfiltered scanlines (height rows of the header's row size, no filter byte)
from a raw file and writes them as a PNG stream.
With --red-pixel no input is read: a 1x1 red RGB image is written and its hex dump printed.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         RunEncode,
	}

	cmd.Flags().StringP("output", "o", "", "path of the PNG file to write")
	cmd.Flags().Uint32("width", 0, "image width in pixels")
	cmd.Flags().Uint32("height", 0, "image height in pixels")
	cmd.Flags().Uint8("depth", 8, "bit depth")
	cmd.Flags().String("color", "rgb", "color type: greyscale, rgb, palette, greyscale-alpha or rgba")
	cmd.Flags().String("palette", "", "file holding the PLTE payload (RGB triples)")
	cmd.Flags().String("filter", "", "filter policy: none, sub, up, average, paeth or adaptive")
	cmd.Flags().Int("level", 0, "zlib compression level (-1 to 9)")
	cmd.Flags().String("strategy", "", "compression strategy: default, huffman, fixed or store")
	cmd.Flags().String("max-idat-size", "", "split the compressed stream into IDAT chunks of at most this size")
	cmd.Flags().Bool("red-pixel", false, "write a single red pixel and print its hex dump")
	return cmd
}

func RunEncode(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	redPixel, _ := cmd.Flags().GetBool("red-pixel")
	if redPixel {
		return runRedPixel(cmd)
	}
	if len(args) != 1 {
		return fmt.Errorf("a raw input file is required")
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return fmt.Errorf("--output is required")
	}

	h, err := headerFromFlags(cmd)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	m, err := png.NewImage(h)
	if err != nil {
		return err
	}
	if err := m.SetPix(raw); err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("palette"); path != "" {
		if m.Palette, err = os.ReadFile(path); err != nil {
			return err
		}
	}

	enc, err := encoderFromFlags(cmd)
	if err != nil {
		return err
	}

	b, err := enc.Encode(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, b, 0644); err != nil {
		return err
	}

	a.log.Info("encoded image", "file", output, "header", h.String(), "size", len(b))
	return nil
}

// runRedPixel writes a 1x1 red RGB image compressed with zlib level 1 and
// fixed Huffman codes, then prints its hex dump.
func runRedPixel(cmd *cobra.Command) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "red_pixel.png"
	}

	enc := &png.Encoder{
		Compressor: png.ZlibCodec{Level: 1, Strategy: png.StrategyFixed},
		Policy:     png.FixedFilter(png.FilterNone),
	}
	b, err := enc.Encode(&png.Image{
		Header: png.Header{Width: 1, Height: 1, BitDepth: 8, ColorType: png.RGB},
		Rows:   [][]byte{{0xFF, 0x00, 0x00}},
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, b, 0644); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created PNG file '%s' with a single red pixel\n", output)
	fmt.Fprintln(out, "Hex dump of the created PNG file:")
	return hexdump.Dump(out, b, hexdump.Options{})
}

func headerFromFlags(cmd *cobra.Command) (png.Header, error) {
	width, _ := cmd.Flags().GetUint32("width")
	height, _ := cmd.Flags().GetUint32("height")
	depth, _ := cmd.Flags().GetUint8("depth")
	colorName, _ := cmd.Flags().GetString("color")

	ct, err := png.ParseColorType(colorName)
	if err != nil {
		return png.Header{}, err
	}

	h := png.Header{
		Width:     width,
		Height:    height,
		BitDepth:  depth,
		ColorType: ct,
	}
	return h, h.Validate()
}

// encoderFromFlags starts from the configuration file and applies the
// encoding flags set on the command line.
func encoderFromFlags(cmd *cobra.Command) (*png.Encoder, error) {
	cfg := *appFrom(cmd).cfg

	if cmd.Flags().Changed("filter") {
		cfg.Filter, _ = cmd.Flags().GetString("filter")
	}
	if cmd.Flags().Changed("level") {
		level, _ := cmd.Flags().GetInt("level")
		cfg.Compression.Level = &level
	}
	if cmd.Flags().Changed("strategy") {
		cfg.Compression.Strategy, _ = cmd.Flags().GetString("strategy")
	}
	if cmd.Flags().Changed("max-idat-size") {
		cfg.MaxIDATSize, _ = cmd.Flags().GetString("max-idat-size")
	}
	return cfg.Encoder()
}
