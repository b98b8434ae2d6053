package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrShortBuffer is returned when a buffer is smaller than the layout it
	// is decoded as.
	ErrShortBuffer = errors.New("codec: buffer too short")

	// ErrBadMagic is returned when a record or block does not start with MagicWord.
	ErrBadMagic = errors.New("codec: magic word mismatch")

	// ErrUnsupportedVersion is returned for version words outside the known layouts.
	ErrUnsupportedVersion = errors.New("codec: unsupported config version")

	// ErrPayloadTooLarge is returned when a block payload does not fit the
	// 16-bit size field.
	ErrPayloadTooLarge = errors.New("codec: block payload too large")
)

// ChecksumError reports a stored checksum that does not match the one
// computed over the bytes read.
type ChecksumError struct {
	Width    int
	Expected uint32 // stored on the medium
	Actual   uint32 // computed
}

func (e *ChecksumError) Error() string {
	if e.Width == 16 {
		return fmt.Sprintf("checksum mismatch: expected 0x%04X, got 0x%04X", e.Expected, e.Actual)
	}
	return fmt.Sprintf("checksum mismatch: expected 0x%08X, got 0x%08X", e.Expected, e.Actual)
}

// VersionError wraps ErrUnsupportedVersion with the offending value.
type VersionError struct {
	Version uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%v: 0x%08X", ErrUnsupportedVersion, e.Version)
}

func (e *VersionError) Unwrap() error {
	return ErrUnsupportedVersion
}
