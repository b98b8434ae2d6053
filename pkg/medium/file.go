package medium

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileConfig describes a file backed medium: either an EEPROM exposed by the
// kernel (for example /sys/bus/i2c/devices/0-0050/eeprom) or an image file.
type FileConfig struct {
	Path string
	// Size overrides the size reported by the file. Zero uses the file size.
	Size int64
	// Create makes an erased image of Size bytes when Path does not exist.
	Create bool
	// ReadOnly opens the file without write access.
	ReadOnly bool
}

// File is a Medium backed by an *os.File.
type File struct {
	f    *os.File
	path string
	size int64
}

// OpenFile opens the medium described by cfg.
func OpenFile(cfg FileConfig) (*File, error) {
	if cfg.Path == "" {
		return nil, errors.New("medium: file path required")
	}

	if cfg.Create {
		if err := createErased(cfg.Path, cfg.Size); err != nil {
			return nil, err
		}
	}

	flag := os.O_RDWR
	if cfg.ReadOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(cfg.Path, flag, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open medium %s", cfg.Path)
	}

	size := cfg.Size
	if size == 0 {
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "stat medium %s", cfg.Path)
		}
		size = st.Size()
	}
	if size <= 0 {
		f.Close()
		return nil, errors.Errorf("medium %s: unknown size, set it explicitly", cfg.Path)
	}

	return &File{f: f, path: cfg.Path, size: size}, nil
}

func createErased(path string, size int64) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat medium %s", path)
	}
	if size <= 0 {
		return errors.Errorf("medium %s: size required to create an image", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrapf(err, "create medium directory for %s", path)
	}
	image := bytes.Repeat([]byte{ErasedByte}, int(size))
	if err := os.WriteFile(path, image, 0600); err != nil {
		return errors.Wrapf(err, "create medium %s", path)
	}
	return nil
}

// ReadAt implements Medium.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if !checkRange(m, len(p), off) {
		return 0, &Error{Op: "read", Offset: off, Length: len(p), Err: ErrOutOfRange}
	}
	n, err := m.f.ReadAt(p, off)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	if err != nil {
		return n, &Error{Op: "read", Offset: off, Length: len(p), Err: errors.Wrap(err, m.path)}
	}
	return n, nil
}

// WriteAt implements Medium.
func (m *File) WriteAt(p []byte, off int64) (int, error) {
	if !checkRange(m, len(p), off) {
		return 0, &Error{Op: "write", Offset: off, Length: len(p), Err: ErrOutOfRange}
	}
	n, err := m.f.WriteAt(p, off)
	if err != nil {
		return n, &Error{Op: "write", Offset: off, Length: len(p), Err: errors.Wrap(err, m.path)}
	}
	return n, nil
}

// Size implements Medium.
func (m *File) Size() int64 {
	return m.size
}

// Path returns the file the medium was opened from.
func (m *File) Path() string {
	return m.path
}

// Sync flushes written data to the device.
func (m *File) Sync() error {
	return errors.Wrapf(m.f.Sync(), "sync medium %s", m.path)
}

// Close closes the underlying file.
func (m *File) Close() error {
	return errors.Wrapf(m.f.Close(), "close medium %s", m.path)
}
