package medium

// Memory is an in-process medium, used for tests and dry runs.
type Memory struct {
	data []byte

	// FailReads and FailWrites make the next matching accesses fail, counting
	// down to zero. Tests use them to simulate a flaky bus.
	FailReads  int
	FailWrites int

	Reads  int
	Writes int
}

// NewMemory returns an erased medium of size bytes.
func NewMemory(size int) *Memory {
	data := make([]byte, size)
	for i := range data {
		data[i] = ErasedByte
	}
	return &Memory{data: data}
}

// NewMemoryFrom wraps a copy of image.
func NewMemoryFrom(image []byte) *Memory {
	data := make([]byte, len(image))
	copy(data, image)
	return &Memory{data: data}
}

// ReadAt implements Medium.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.Reads++
	if m.FailReads > 0 {
		m.FailReads--
		return 0, &Error{Op: "read", Offset: off, Length: len(p), Err: errInjected}
	}
	if !checkRange(m, len(p), off) {
		return 0, &Error{Op: "read", Offset: off, Length: len(p), Err: ErrOutOfRange}
	}
	return copy(p, m.data[off:]), nil
}

// WriteAt implements Medium.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.Writes++
	if m.FailWrites > 0 {
		m.FailWrites--
		return 0, &Error{Op: "write", Offset: off, Length: len(p), Err: errInjected}
	}
	if !checkRange(m, len(p), off) {
		return 0, &Error{Op: "write", Offset: off, Length: len(p), Err: ErrOutOfRange}
	}
	return copy(m.data[off:], p), nil
}

// Size implements Medium.
func (m *Memory) Size() int64 {
	return int64(len(m.data))
}

// Bytes returns the backing buffer.
func (m *Memory) Bytes() []byte {
	return m.data
}
