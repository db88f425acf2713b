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
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/ostafen/pnglet/internal/logger"
	"github.com/ostafen/pnglet/internal/scan"
	osutil "github.com/ostafen/pnglet/pkg/util/os"
)

const maxUnmountRetries = 3

// Mount serves the carved images of blob at mountpoint until a termination
// signal unmounts it.
func Mount(mountpoint string, blob []byte, finfos []scan.FileInfo, log *slog.Logger) error {
	if log == nil {
		log = logger.Discard()
	}

	created, err := osutil.EnsureDir(mountpoint, true)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("pnglet"), fuse.Subtype("pnglet"))
	if err != nil {
		return err
	}
	defer c.Close()

	ifs := &ImageFS{
		root:  buildTree(blob, finfos, log),
		mtime: time.Now(),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- fusefs.New(c, nil).Serve(ifs)
	}()

	log.Info("mounted", "mountpoint", mountpoint, "images", len(ifs.root.children)/2)
	return waitForUmount(mountpoint, serveErr, log)
}

func waitForUmount(mountpoint string, serveErr <-chan error, log *slog.Logger) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("waiting for termination signal")

	attempts := 0
	for {
		select {
		case err := <-serveErr:
			// unmounted from outside, e.g. with fusermount -u
			return err
		case sig := <-sigc:
			log.Info("signal received", "signal", sig.String())

			if attempts >= maxUnmountRetries {
				return fmt.Errorf("unable to unmount %s after %d attempts", mountpoint, attempts)
			}
			attempts++

			if err := fuse.Unmount(mountpoint); err != nil {
				log.Warn("unmount failed", "attempt", attempts, "err", err)
				continue
			}
			log.Info("unmounted successfully")
			return <-serveErr
		}
	}
}
