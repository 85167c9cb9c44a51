package bittranspose

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStrandCount indicates a strand count outside [MinStrands, MaxStrands]
	ErrInvalidStrandCount = errors.New("invalid strand count")
	// ErrShapeMismatch indicates the input does not divide into whole frames
	ErrShapeMismatch = errors.New("input length does not match frame shape")
	// ErrInsufficientOutputCapacity indicates the output buffer is too small
	ErrInsufficientOutputCapacity = errors.New("insufficient output capacity")
)

// StrandCountError reports the rejected strand count.
type StrandCountError struct {
	Strands int
}

func (e *StrandCountError) Error() string {
	return fmt.Sprintf("num_strands must be from %d to %d (inclusive), got %d", MinStrands, MaxStrands, e.Strands)
}

func (e *StrandCountError) Unwrap() error { return ErrInvalidStrandCount }

// ShapeError reports an input length that is not a whole number of frames.
type ShapeError struct {
	InputLen int
	Strands  int
	// Planar is set when the rejected input was already transposed, in
	// which case frames are BitsPerByte long regardless of Strands.
	Planar bool
}

func (e *ShapeError) Error() string {
	if e.Planar {
		return fmt.Sprintf("transposed buffer length (%d) must be a multiple of %d", e.InputLen, BitsPerByte)
	}
	return fmt.Sprintf("input buffer length (%d) must be a multiple of the strand count (%d)", e.InputLen, e.Strands)
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// CapacityError reports the minimum output size a call needed.
type CapacityError struct {
	Required  int
	Available int
	// Overflow is set when the output size of InputLen bytes does not fit
	// in an int; Required and Available are then zero.
	InputLen int
	Overflow bool
}

func (e *CapacityError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("input buffer length (%d) is too large to transpose", e.InputLen)
	}
	return fmt.Sprintf("output buffer must be at least %d bytes (got %d)", e.Required, e.Available)
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientOutputCapacity }
