// Package mmap provides read-only memory-mapped files, so large logs can be
// parsed without copying them onto the heap.
package mmap

import (
	"os"

	"github.com/ajitpratap0/perfbible/pkg/errors"
)

// File is a read-only view of a whole file. The bytes returned by Bytes and
// ReadRange are valid until Close.
type File struct {
	f      *os.File
	data   []byte
	mapped bool
}

// Open maps the file at path. An empty file yields a File with no data.
func Open(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // G304: caller supplies the path
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").WithDetail("path", path)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").WithDetail("path", path)
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, errors.New(errors.ErrorTypeFile, "cannot map a directory").WithDetail("path", path)
	}

	size := stat.Size()
	if size == 0 {
		return &File{f: f}, nil
	}
	if int64(int(size)) != size {
		_ = f.Close()
		return nil, errors.Newf(errors.ErrorTypeFile, "file too large to map: %d bytes", size).WithDetail("path", path)
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to map file").WithDetail("path", path)
	}
	return &File{f: f, data: data, mapped: mapped}, nil
}

// Bytes returns the whole file. The slice must not be written to.
func (m *File) Bytes() []byte {
	return m.data
}

// Len returns the file size in bytes.
func (m *File) Len() int {
	return len(m.data)
}

// Mapped reports whether the data is backed by a mapping rather than a
// heap copy.
func (m *File) Mapped() bool {
	return m.mapped
}

// ReadRange returns length bytes starting at offset.
func (m *File) ReadRange(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > int64(len(m.data)) {
		return nil, errors.Newf(errors.ErrorTypeValidation,
			"range [%d, %d) outside file of %d bytes", offset, offset+length, len(m.data))
	}
	return m.data[offset : offset+length], nil
}

// Close unmaps and closes the file. It is safe to call more than once.
func (m *File) Close() error {
	var err error
	if m.data != nil && m.mapped {
		err = unmap(m.data)
	}
	m.data = nil

	if m.f != nil {
		if cerr := m.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		m.f = nil
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close mapped file")
	}
	return nil
}
