//go:build !linux

package fuse

import (
	"fmt"
	"log/slog"

	"github.com/ostafen/pnglet/internal/scan"
)

func Mount(mountpoint string, blob []byte, finfos []scan.FileInfo, log *slog.Logger) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
