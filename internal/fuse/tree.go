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
package fuse

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ostafen/pnglet/internal/logger"
	"github.com/ostafen/pnglet/internal/scan"
	"github.com/ostafen/pnglet/pkg/png"
)

const chunksDirSuffix = ".chunks"

// node is an entry of the read-only tree served by the mount. Directories
// have children; files have data aliasing the scanned blob.
type node struct {
	name     string
	inode    uint64
	dir      bool
	data     []byte
	children []*node
	index    map[string]*node
}

func newDir(name string) *node {
	return &node{name: name, dir: true, index: map[string]*node{}}
}

func (n *node) add(child *node) {
	n.children = append(n.children, child)
	n.index[child.name] = child
}

func (n *node) lookup(name string) (*node, bool) {
	child, ok := n.index[name]
	return child, ok
}

// ChunkFileName names the file holding the payload of the i-th chunk.
func ChunkFileName(i int, t png.ChunkType) string {
	return fmt.Sprintf("%03d_%s", i, t)
}

// buildTree lays out one file per carved image plus a sibling
// <stem>.chunks directory holding one file per chunk payload. Entries whose
// bytes no longer look like a PNG stream are skipped.
func buildTree(blob []byte, finfos []scan.FileInfo, log *slog.Logger) *node {
	if log == nil {
		log = logger.Discard()
	}

	root := newDir("")
	for _, finfo := range finfos {
		if _, dup := root.lookup(finfo.Name); dup {
			log.Warn("duplicate entry", "name", finfo.Name)
			continue
		}

		data, err := scan.Slice(blob, finfo)
		if err != nil {
			log.Warn("skipping entry", "name", finfo.Name, "err", err)
			continue
		}
		root.add(&node{name: finfo.Name, data: data})

		chunks := newDir(strings.TrimSuffix(finfo.Name, ".png") + chunksDirSuffix)
		i := 0
		for ci, err := range png.Chunks(data[len(png.Signature):]) {
			if err != nil {
				log.Warn("stopped listing chunks", "name", finfo.Name, "err", err)
				break
			}
			chunks.add(&node{name: ChunkFileName(i, ci.Type), data: ci.Data})
			i++
			if ci.Type == png.TypeIEND {
				break
			}
		}
		root.add(chunks)
	}

	var next uint64 = 1
	assignInodes(root, &next)
	return root
}

func assignInodes(n *node, next *uint64) {
	n.inode = *next
	*next++

	sort.Slice(n.children, func(i, j int) bool {
		return n.children[i].name < n.children[j].name
	})
	for _, c := range n.children {
		assignInodes(c, next)
	}
}
