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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/k1LoW/errors"
	"github.com/ostafen/pnglet/internal/mmap"
	"github.com/ostafen/pnglet/internal/scan"
	"github.com/ostafen/pnglet/pkg/dfxml"
	osutil "github.com/ostafen/pnglet/pkg/util/os"
	"github.com/spf13/cobra"
)

func DefineRecoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover <blob> <report_file>",
		Short: "Extract the images listed in a scan report",
		Long: `The 'recover' command copies out of a blob every image described in a report produced by 'scan'.
Recovered images are saved to the output directory, which must be empty or missing.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunRecover,
	}
	cmd.Flags().StringP("output-dir", "d", "", "directory where recovered images will be placed (default <report>-dump)")
	return cmd
}

func RunRecover(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	blob, err := mmap.Open(args[0])
	if err != nil {
		return err
	}
	defer blob.Close()

	finfos, err := readReport(args[1])
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output-dir")
	if outDir == "" {
		base := filepath.Base(args[1])
		outDir = strings.TrimSuffix(base, filepath.Ext(base)) + "-dump"
	}
	if _, err := osutil.EnsureDir(outDir, true); err != nil {
		return err
	}

	n, err := scan.Recover(blob.Data, finfos, outDir, a.log)
	fmt.Fprintf(cmd.OutOrStdout(), "[INFO] Recovered %d of %d images to %s\n", n, len(finfos), outDir)
	return err
}

func readReport(path string) (_ []scan.FileInfo, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	objects, err := dfxml.ReadFileObjects(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("invalid report file %s: %w", path, err)
	}
	return scan.FileInfos(objects)
}
