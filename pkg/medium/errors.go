package medium

import (
	stderrors "errors"
	"fmt"
)

var errInjected = stderrors.New("injected fault")

// Error describes a failed transfer. Every error returned by the media in
// this package is an *Error, so callers can tell transport faults from
// content faults.
type Error struct {
	Op     string
	Offset int64
	Length int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("medium %s of %d bytes at 0x%04X: %v", e.Op, e.Length, e.Offset, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsMediumError reports whether err came from a medium transfer.
func IsMediumError(err error) bool {
	var merr *Error
	return stderrors.As(err, &merr)
}
