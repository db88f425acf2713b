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

	"github.com/ostafen/pnglet/internal/mmap"
	"github.com/ostafen/pnglet/pkg/png"
	"github.com/spf13/cobra"
)

func DefineDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <png_file>",
		Short: "Decode a PNG file into raw scanlines",
		Long: `The 'decode' command validates every chunk of a PNG file, inflates and defilters its pixel data
and writes the unfiltered scanlines, without filter bytes, to the output file.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunDecode,
	}

	cmd.Flags().StringP("output", "o", "", "path of the raw file to write")
	return cmd
}

func RunDecode(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	m, err := decodeFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), m.Header.String())

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return nil
	}
	if err := os.WriteFile(output, m.Pix(), 0644); err != nil {
		return err
	}

	a.log.Info("decoded image", "file", args[0], "output", output, "rows", len(m.Rows))
	return nil
}

func decodeFile(path string) (*png.Image, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := png.Decode(f.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
