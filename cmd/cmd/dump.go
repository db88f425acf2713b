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
	"os"

	"github.com/mattn/go-colorable"
	"github.com/ostafen/pnglet/internal/mmap"
	"github.com/ostafen/pnglet/pkg/hexdump"
	"github.com/spf13/cobra"
)

func DefineDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dump <file>",
		Short:        "Print a hex dump of a file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunDump,
	}

	cmd.Flags().Bool("color", false, "highlight the PNG signature and chunk framing")
	return cmd
}

func RunDump(cmd *cobra.Command, args []string) error {
	f, err := mmap.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	useColor, _ := cmd.Flags().GetBool("color")

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok && useColor {
		// translates escape sequences on Windows consoles
		out = colorable.NewColorable(f)
	}
	return hexdump.Dump(out, f.Data, hexdump.Options{Color: useColor})
}
