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

	"github.com/ostafen/pnglet/internal/scan"
	"github.com/ostafen/pnglet/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <blob>",
		Short: "Carve PNG images out of an arbitrary file",
		Long: `The 'scan' command searches a file (a disk image, a memory dump, an archive) for PNG signatures
and keeps every candidate whose chunks all carry a valid CRC up to IEND.
Found images are listed in a DFXML report and optionally copied to a directory.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunScan,
	}

	cmd.Flags().StringP("dump", "d", "", "dump the found images to the specified directory")
	cmd.Flags().StringP("output", "o", "", "the path of the scan report file")
	cmd.Flags().String("max-file-size", "", "skip images larger than this size, e.g. 64MB")
	cmd.Flags().Bool("decode", false, "also inflate and defilter every found image")
	cmd.Flags().Bool("no-progress", false, "do not render the progress bar")
	return cmd
}

func RunScan(cmd *cobra.Command, args []string) error {
	opts, err := parseScanOptions(cmd)
	if err != nil {
		return err
	}

	summary, err := scan.Scan(args[0], opts)
	if err != nil {
		return err
	}

	appFrom(cmd).log.Info("scan completed",
		"source", args[0],
		"images", summary.Images,
		"report", summary.ReportFile,
	)
	return nil
}

func parseScanOptions(cmd *cobra.Command) (scan.Options, error) {
	dumpDir, _ := cmd.Flags().GetString("dump")
	reportFile, _ := cmd.Flags().GetString("output")
	decode, _ := cmd.Flags().GetBool("decode")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	var maxFileSize uint64
	if s, _ := cmd.Flags().GetString("max-file-size"); s != "" {
		v, err := format.ParseBytes(s)
		if err != nil {
			return scan.Options{}, fmt.Errorf("invalid --max-file-size: %w", err)
		}
		maxFileSize = v
	}

	return scan.Options{
		DumpDir:     dumpDir,
		ReportFile:  reportFile,
		MaxFileSize: maxFileSize,
		Decode:      decode,
		NoProgress:  noProgress,
		Logger:      appFrom(cmd).log,
		Out:         cmd.OutOrStdout(),
	}, nil
}
