package common

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidOpcode   = errors.New("invalid opcode")
	ErrNoZeroByte      = errors.New("couldn't find zero byte")
	ErrTruncated       = errors.New("truncated packet")
	ErrInvalidText     = errors.New("invalid text")
	ErrUnsupportedMode = errors.New("unsupported transfer mode")
)

// Encoding errors.
var (
	ErrEmbeddedZeroByte = errors.New("string contains zero byte")
	ErrPayloadTooLarge  = errors.New("payload larger than block size")
	ErrNoPreviousBlock  = errors.New("no previous data packet")
)

// ParseError reports where in a datagram parsing stopped.
type ParseError struct {
	Op     OpCode
	Field  string
	Offset int
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse %v packet at offset %d: %v", e.Op, e.Offset, e.Cause)
	}
	return fmt.Sprintf("parse %v packet, field %s at offset %d: %v", e.Op, e.Field, e.Offset, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func newParseError(op OpCode, field string, offset int, cause error) error {
	return &ParseError{
		Op:     op,
		Field:  field,
		Offset: offset,
		Cause:  cause,
	}
}
