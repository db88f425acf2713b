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
	"context"
	"os"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
)

// ImageFS exposes carved images and their chunks as a read-only filesystem.
type ImageFS struct {
	root  *node
	mtime time.Time
}

func (ifs *ImageFS) Root() (fs.Node, error) {
	return &Dir{fs: ifs, n: ifs.root}, nil
}

type Dir struct {
	fs *ImageFS
	n  *node
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = d.n.inode
	a.Mode = os.ModeDir | 0555
	a.Mtime = d.fs.mtime
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	child, ok := d.n.lookup(name)
	if !ok {
		return nil, fuse.ENOENT
	}
	if child.dir {
		return &Dir{fs: d.fs, n: child}, nil
	}
	return &File{fs: d.fs, n: child}, nil
}

func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	dirEntries := make([]fuse.Dirent, len(d.n.children))
	for i, c := range d.n.children {
		typ := fuse.DT_File
		if c.dir {
			typ = fuse.DT_Dir
		}
		dirEntries[i] = fuse.Dirent{
			Inode: c.inode,
			Name:  c.name,
			Type:  typ,
		}
	}
	return dirEntries, nil
}

type File struct {
	fs *ImageFS
	n  *node
}

func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = f.n.inode
	a.Mode = 0444
	a.Size = uint64(len(f.n.data))
	a.Mtime = f.fs.mtime
	return nil
}

func (f *File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data := f.n.data
	if req.Offset >= int64(len(data)) {
		resp.Data = []byte{}
		return nil
	}

	end := req.Offset + int64(req.Size)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	resp.Data = data[req.Offset:end]
	return nil
}
