package trace

import "errors"

// Errors returned by trace construction and queries.
//
// A query that finds no samples is not an error: it reports ok == false.
var (
	ErrCorruptTraceFile = errors.New("corrupt trace file")
	ErrOutOfRange       = errors.New("record index out of range")
	ErrIO               = errors.New("trace i/o failure")
	ErrInvalidNodeID    = errors.New("invalid node id")
)
