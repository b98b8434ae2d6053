package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ssargent/factoryconfig/pkg/codec"
	"github.com/ssargent/factoryconfig/pkg/medium"
)

// Outcome classifies a load attempt.
type Outcome int

const (
	Success Outcome = iota
	NoMagicWord
	UnsupportedVersion
	MediumError
	ChecksumMismatch
	AllocationError
	MalformedBlock
)

var outcomeNames = [...]string{
	Success:            "success",
	NoMagicWord:        "no_magic_word",
	UnsupportedVersion: "unsupported_version",
	MediumError:        "medium_error",
	ChecksumMismatch:   "checksum_mismatch",
	AllocationError:    "allocation_error",
	MalformedBlock:     "malformed_block",
}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Describe returns the operator facing explanation printed before falling
// back to defaults.
func (o Outcome) Describe() string {
	switch o {
	case Success:
		return "Factory Configuration OK"
	case NoMagicWord, UnsupportedVersion, ChecksumMismatch:
		return "Factory Configuration Invalid"
	case MediumError:
		return "Medium error while reading Factory Configuration"
	case AllocationError:
		return "Allocation failed while reading Factory Configuration"
	case MalformedBlock:
		return "Generic Configuration Block Invalid"
	}
	return "Unknown Factory Configuration state"
}

// ResetsBase reports whether the outcome replaces the base record with
// defaults under policy p.
func (o Outcome) ResetsBase(p MalformedBlockPolicy) bool {
	switch o {
	case Success:
		return false
	case MalformedBlock:
		return p == ResetToDefaults
	}
	return true
}

// Status is the coarse result handed to board code and process exit codes.
type Status int

const (
	StatusOK        Status = 0
	StatusBadConfig Status = 1
	StatusMedium    Status = -1
)

// Status maps an outcome to the value the boot code reports: transport
// faults are distinguished from content faults.
func (o Outcome) Status() Status {
	switch o {
	case Success:
		return StatusOK
	case MediumError:
		return StatusMedium
	}
	return StatusBadConfig
}

// MalformedBlockPolicy decides what happens to already decoded state when a
// generic block turns out to be malformed.
type MalformedBlockPolicy int

const (
	// RetainDecoded keeps the base record and every block decoded before the
	// bad one.
	RetainDecoded MalformedBlockPolicy = iota
	// ResetToDefaults treats a malformed block like any other content fault.
	ResetToDefaults
)

// DefaultMalformedBlockPolicy is applied by Open unless overridden.
// TODO: decide whether a malformed generic block should also reset the base
// record; boards in the field currently keep it.
const DefaultMalformedBlockPolicy = RetainDecoded

// ErrBlockTooLarge is returned when a block would exceed the medium capacity.
var ErrBlockTooLarge = errors.New("store: block larger than medium capacity")

// ErrBlockTooShort is returned when a known block type carries less payload
// than its fields need.
var ErrBlockTooShort = errors.New("store: block payload shorter than its type requires")

// ErrImageTooLarge is returned by the writer when the encoded configuration
// does not fit on the medium. Nothing is written in that case.
var ErrImageTooLarge = errors.New("store: encoded configuration exceeds medium size")

// LoadError is returned by a failed load. Outcome is never Success.
type LoadError struct {
	Outcome Outcome
	Offset  int64
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load factory config: %s at offset 0x%04X: %v", e.Outcome, e.Offset, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// OutcomeOf classifies err. A nil error is Success; errors that did not come
// from the loader are classified by what they wrap.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Success
	}
	var lerr *LoadError
	if errors.As(err, &lerr) {
		return lerr.Outcome
	}
	var cerr *codec.ChecksumError
	switch {
	case medium.IsMediumError(err):
		return MediumError
	case errors.Is(err, codec.ErrBadMagic):
		return NoMagicWord
	case errors.Is(err, codec.ErrUnsupportedVersion):
		return UnsupportedVersion
	case errors.As(err, &cerr) && cerr.Width == 16:
		return ChecksumMismatch
	case errors.Is(err, codec.ErrPayloadTooLarge):
		return AllocationError
	}
	return MalformedBlock
}

// LoadResult summarizes a load attempt.
type LoadResult struct {
	Outcome       Outcome
	Version       uint32 // version word found on the medium, 0 if none
	Migrated      bool   // a 1.3 record was converted in memory
	BlocksDecoded int
	BlocksSkipped int   // unknown types
	EndOffset     int64 // first byte after the scanned data
	Attempts      int
	Defaulted     bool // base record replaced by defaults
	Duration      time.Duration
}

// WriteError lists every segment that failed during a write. Segments
// before and after a failure are still attempted.
type WriteError struct {
	Failed []error
}

func (e *WriteError) Error() string {
	msgs := make([]string, len(e.Failed))
	for i, err := range e.Failed {
		msgs[i] = err.Error()
	}
	return "write factory config: " + strings.Join(msgs, " | ")
}

func (e *WriteError) Unwrap() []error {
	return e.Failed
}

// WriteResult summarizes a write.
type WriteResult struct {
	Segments  int
	Failed    int
	BytesSent int
	EndOffset int64
}
