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
	"context"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type verifyResult struct {
	path   string
	header string
	err    error
}

func DefineVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <png_file>...",
		Short: "Fully decode PNG files and report the damaged ones",
		Long: `The 'verify' command decodes every given file, checking signature, chunk CRCs, chunk order,
compressed data and scanline filters. Files are processed in parallel.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         RunVerify,
	}

	cmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "number of files decoded concurrently")
	return cmd
}

func RunVerify(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	jobs, _ := cmd.Flags().GetInt("jobs")

	results, err := verifyFiles(cmd.Context(), args, jobs)
	if err != nil {
		return err
	}

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			a.log.Debug("verification failed", "file", r.path, "err", r.err)
			fmt.Fprintf(out, "%s\t%s\t%v\n", bad("FAIL"), r.path, r.err)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", ok("OK"), r.path, r.header)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, len(results))
	}
	return nil
}

// verifyFiles decodes paths with at most jobs concurrent decoders. Results
// keep the order of paths; per-file failures are reported in the results.
func verifyFiles(ctx context.Context, paths []string, jobs int) ([]verifyResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]verifyResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, jobs))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i].path = path

			m, err := decodeFile(path)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].header = m.Header.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
