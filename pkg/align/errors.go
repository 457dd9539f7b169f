package align

import "errors"

var (
	// ErrInvalidMethod indicates an unrecognized offset-search method.
	ErrInvalidMethod = errors.New("align: unknown search method")
	// ErrInvalidAlignMode indicates an unrecognized alignment mode.
	ErrInvalidAlignMode = errors.New("align: unknown align mode")
	// ErrInvalidFixMode indicates an unrecognized length-fixing mode.
	ErrInvalidFixMode = errors.New("align: unknown fix-length mode")
	// ErrDegenerateRange indicates a non-positive maximum offset or an
	// otherwise empty search range.
	ErrDegenerateRange = errors.New("align: the search range is empty")
	// ErrInvalidLookahead indicates a negative lookahead bound.
	ErrInvalidLookahead = errors.New("align: lookahead must be positive when set")
	// ErrEmptySignal indicates an empty input signal.
	ErrEmptySignal = errors.New("align: input signals must be non-empty")
)
