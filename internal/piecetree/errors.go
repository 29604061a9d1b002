package piecetree

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned when an offset or byte range argument falls
// outside [0, Len()] or has start > end.
var ErrInvalidRange = errors.New("piecetree: invalid range")

func invalidRangeErr(start, end, length int64) error {
	return fmt.Errorf("%w: [%d, %d), length %d", ErrInvalidRange, start, end, length)
}
