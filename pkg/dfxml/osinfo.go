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
package dfxml

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"
)

const unknown = "unknown"

// osRelease returns the distribution name and kernel version. Unsupported
// platforms report "unknown" for both.
func osRelease() (string, string) {
	switch runtime.GOOS {
	case "linux":
		name := unknown
		if f, err := os.Open("/etc/os-release"); err == nil {
			defer f.Close()
			name = parseOSRelease(f)
		}
		return name, kernelVersion()
	case "darwin", "freebsd", "openbsd", "netbsd":
		return runtime.GOOS, kernelVersion()
	}
	return unknown, unknown
}

// parseOSRelease extracts PRETTY_NAME (or NAME) from an os-release file.
func parseOSRelease(r io.Reader) string {
	var name, pretty string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "NAME":
			name = value
		case "PRETTY_NAME":
			pretty = value
		}
	}

	switch {
	case pretty != "":
		return pretty
	case name != "":
		return name
	}
	return unknown
}
