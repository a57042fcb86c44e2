package logfile

import (
	"errors"
	"fmt"
)

var (
	ErrEndOfStream         = errors.New("logfile: end of stream")
	ErrTruncated           = errors.New("logfile: record truncated")
	ErrUnknownRecordType   = errors.New("logfile: unknown record type")
	ErrUnsupportedSchema   = errors.New("logfile: unsupported schema")
	ErrDuplicateRecordType = errors.New("logfile: duplicate record type")
	ErrMalformedString     = errors.New("logfile: malformed string")
)

// DecodeError carries the position and the schema element that failed
type DecodeError struct {
	Offset int64
	Tag    uint8
	Schema string // empty when the tag could not be resolved
	Field  string // empty outside field decoding
	Err    error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Schema == "":
		return fmt.Sprintf("offset %d: tag %d: %v", e.Offset, e.Tag, e.Err)
	case e.Field == "":
		return fmt.Sprintf("offset %d: %s (tag %d): %v", e.Offset, e.Schema, e.Tag, e.Err)
	default:
		return fmt.Sprintf("offset %d: %s.%s (tag %d): %v", e.Offset, e.Schema, e.Field, e.Tag, e.Err)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// truncated marks a short read inside a record. It matches both
// ErrTruncated and ErrEndOfStream.
type truncated struct {
	err error
}

func (t truncated) Error() string {
	return ErrTruncated.Error() + ": " + t.err.Error()
}

func (t truncated) Is(target error) bool {
	return target == ErrTruncated
}

func (t truncated) Unwrap() error {
	return t.err
}
