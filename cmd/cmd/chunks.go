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
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/ostafen/pnglet/internal/mmap"
	"github.com/ostafen/pnglet/pkg/png"
	"github.com/spf13/cobra"
)

type chunkRow struct {
	Offset   int    `json:"offset"`
	Type     string `json:"type"`
	Length   int    `json:"length"`
	CRC      string `json:"crc"`
	Critical bool   `json:"critical"`
}

type chunkListing struct {
	File   string     `json:"file"`
	Chunks []chunkRow `json:"chunks"`
	Error  string     `json:"error,omitempty"`
}

func DefineChunksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunks <png_file>",
		Short: "List the chunks of a PNG file",
		Long: `The 'chunks' command walks a PNG file chunk by chunk, verifying each CRC, and prints a table
with the offset, type, payload length and checksum of every chunk.
The walk stops at IEND or at the first damaged chunk, which is reported.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunChunks,
	}

	cmd.Flags().Bool("json", false, "print the result as JSON")
	return cmd
}

// listChunks walks data up to IEND. The listing holds every chunk read
// before the returned error, if any.
func listChunks(path string, data []byte) (chunkListing, error) {
	listing := chunkListing{File: path, Chunks: []chunkRow{}}
	if !png.HasSignature(data) {
		listing.Error = png.ErrBadSignature.Error()
		return listing, png.ErrBadSignature
	}

	for ci, err := range png.Chunks(data[len(png.Signature):]) {
		if err != nil {
			listing.Error = err.Error()
			return listing, err
		}
		listing.Chunks = append(listing.Chunks, chunkRow{
			Offset:   ci.Offset + len(png.Signature),
			Type:     ci.Type.String(),
			Length:   len(ci.Data),
			CRC:      fmt.Sprintf("%08X", ci.CRC),
			Critical: ci.Type.Critical(),
		})
		if ci.Type == png.TypeIEND {
			break
		}
	}
	return listing, nil
}

func RunChunks(cmd *cobra.Command, args []string) error {
	f, err := mmap.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	listing, walkErr := listChunks(args[0], f.Data)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(listing); err != nil {
			return err
		}
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "OFFSET\tTYPE\tLENGTH\tCRC\tKIND")
		for _, c := range listing.Chunks {
			kind := "ancillary"
			if c.Critical {
				kind = "critical"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", c.Offset, c.Type, c.Length, c.CRC, kind)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if walkErr != nil {
		return fmt.Errorf("%s: %w", args[0], walkErr)
	}
	return nil
}
