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
	"path/filepath"
	"slices"
	"strings"

	"github.com/ostafen/pnglet/internal/fuse"
	"github.com/ostafen/pnglet/internal/mmap"
	"github.com/ostafen/pnglet/internal/scan"
	"github.com/spf13/cobra"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <blob> [report_file]",
		Short: "Expose the images found in a blob as a read-only filesystem",
		Long: `The 'mount' command serves every PNG image found in a blob through FUSE. Each image appears as
<name>.png next to a <name>.chunks directory holding the payload of each of its chunks.
Images are taken from the report file when given, otherwise the blob is scanned first.`,
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "directory where the filesystem will be mounted (default <blob>_mnt)")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	blob, err := mmap.Open(args[0])
	if err != nil {
		return err
	}
	defer blob.Close()

	var finfos []scan.FileInfo
	if len(args) == 2 {
		if finfos, err = readReport(args[1]); err != nil {
			return err
		}
	} else {
		carver := &scan.Carver{Logger: a.log}
		finfos = slices.Collect(carver.Carve(blob.Data))
	}

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = getMountpoint(args[0])
	}
	return fuse.Mount(mountpoint, blob.Data, finfos, a.log)
}

func getMountpoint(blobPath string) string {
	base := filepath.Base(blobPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_mnt"
}
