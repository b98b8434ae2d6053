// Package medium provides byte-addressed access to the persistent store that
// holds the factory configuration, normally a small serial EEPROM.
package medium

import (
	stderrors "errors"
)

// ErasedByte is the value of an unprogrammed EEPROM cell.
const ErasedByte = 0xFF

// ErrOutOfRange is returned for accesses that do not fit inside the medium.
var ErrOutOfRange = stderrors.New("medium: access out of range")

// Medium is a fixed-size, synchronous, byte-addressable store. ReadAt and
// WriteAt either transfer the whole buffer or return an error.
type Medium interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Size() int64
}

// Closer is implemented by media that hold an OS resource.
type Closer interface {
	Close() error
}

func checkRange(m Medium, n int, off int64) bool {
	return off >= 0 && off+int64(n) <= m.Size()
}

// Region restricts a medium to [base, base+size) so callers can address the
// configuration with offsets starting at zero.
type Region struct {
	m    Medium
	base int64
	size int64
}

// NewRegion returns the part of m starting at base and running to its end.
func NewRegion(m Medium, base int64) (*Region, error) {
	if base < 0 || base >= m.Size() {
		return nil, ErrOutOfRange
	}
	return &Region{m: m, base: base, size: m.Size() - base}, nil
}

// ReadAt implements Medium.
func (r *Region) ReadAt(p []byte, off int64) (int, error) {
	if !checkRange(r, len(p), off) {
		return 0, &Error{Op: "read", Offset: off, Length: len(p), Err: ErrOutOfRange}
	}
	return r.m.ReadAt(p, r.base+off)
}

// WriteAt implements Medium.
func (r *Region) WriteAt(p []byte, off int64) (int, error) {
	if !checkRange(r, len(p), off) {
		return 0, &Error{Op: "write", Offset: off, Length: len(p), Err: ErrOutOfRange}
	}
	return r.m.WriteAt(p, r.base+off)
}

// Size implements Medium.
func (r *Region) Size() int64 {
	return r.size
}

// Base returns the offset of the region inside the underlying medium.
func (r *Region) Base() int64 {
	return r.base
}

// ReadAll copies the whole medium into a new buffer.
func ReadAll(m Medium) ([]byte, error) {
	buf := make([]byte, m.Size())
	if _, err := m.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteAll overwrites the medium from offset zero with image. The image may
// be shorter than the medium.
func WriteAll(m Medium, image []byte) error {
	if int64(len(image)) > m.Size() {
		return &Error{Op: "write", Offset: 0, Length: len(image), Err: ErrOutOfRange}
	}
	_, err := m.WriteAt(image, 0)
	return err
}
