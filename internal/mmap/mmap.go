package mmap

import (
	"fmt"
	"os"
)

// File is a read-only view of a whole file, memory mapped where the platform
// supports it.
type File struct {
	Data []byte
	Path string

	f      *os.File
	mapped bool
}

// Open maps filePath into memory. Empty files yield an empty, unmapped view.
func Open(filePath string) (*File, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to get file info for %q: %w", filePath, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%q is a directory", filePath)
	}

	size := fi.Size()
	if size == 0 {
		f.Close()
		return &File{Data: []byte{}, Path: filePath}, nil
	}
	if int64(int(size)) != size {
		f.Close()
		return nil, fmt.Errorf("file %q is too large to map (%d bytes)", filePath, size)
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file %q with length %d: %w", filePath, size, err)
	}
	if !mapped {
		f.Close()
		f = nil
	}

	return &File{
		Data:   data,
		Path:   filePath,
		f:      f,
		mapped: mapped,
	}, nil
}

// Len returns the number of mapped bytes.
func (m *File) Len() int { return len(m.Data) }

// Close unmaps the memory region and closes the underlying file. The Data
// slice must not be used afterwards.
func (m *File) Close() error {
	var err error
	if m.mapped && m.Data != nil {
		if err = unmap(m.Data); err != nil {
			err = fmt.Errorf("failed to munmap: %w", err)
		}
	}
	m.Data = nil
	m.mapped = false

	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", closeErr)
		}
		m.f = nil
	}
	return err
}
