//go:build !windows
// +build !windows

package archive

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mapping is a read-only memory mapping of an archive file.
type mapping struct {
	// data is the mapped region. It is nil for empty files or after unmapping.
	data []byte
}

// ReadAt implements io.ReaderAt.ReadAt.
func (m *mapping) ReadAt(buffer []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, errors.New("negative offset")
	} else if offset >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(buffer, m.data[offset:])
	if n < len(buffer) {
		return n, io.EOF
	}
	return n, nil
}

// Close implements io.Closer.Close.
func (m *mapping) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// openBacking maps the file at the specified path. The file descriptor is
// closed once the mapping is established.
func openBacking(path string) (backing, int64, error) {
	// Open the file and defer its closure.
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	// Determine the file size.
	metadata, err := file.Stat()
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to query file metadata")
	}
	size := metadata.Size()
	if size == 0 {
		return &mapping{}, 0, nil
	} else if int64(int(size)) != size {
		return nil, 0, errors.New("file too large to map")
	}

	// Map the file.
	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to map file")
	}

	// Success.
	return &mapping{data: data}, size, nil
}
