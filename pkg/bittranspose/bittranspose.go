// Package bittranspose re-packs pixel bytes for parallel LED-strip output.
//
// Input is read as consecutive frames of n bytes, one byte per strand. Each
// frame becomes 8 output bytes, one per bit position (MSB first). Output
// byte b of a frame carries bit b of strand s at bit position 7-s, so only
// the top n bits of every output byte are used and the rest are zero. The
// result is the stream a shift-register or PIO based parallel driver clocks
// out: one byte per bit-time, one bit per strand.
//
// All functions are pure and hold no state. They may run concurrently as
// long as each call has its own output buffer.
package bittranspose

import "math"

const (
	// MinStrands is the smallest supported strand count
	MinStrands = 2
	// MaxStrands is the largest supported strand count
	MaxStrands = 8
	// DefaultStrands is the strand count used when a caller has no preference
	DefaultStrands = 8
	// BitsPerByte is the number of output bytes produced per input frame
	BitsPerByte = 8
)

// OutputLen returns the transposed size of an inputLen-byte buffer.
// It never depends on buffer contents.
func OutputLen(inputLen, strands int) (int, error) {
	if err := checkStrands(strands); err != nil {
		return 0, err
	}
	if inputLen < 0 || inputLen%strands != 0 {
		return 0, &ShapeError{InputLen: inputLen, Strands: strands}
	}
	if inputLen/strands > math.MaxInt/BitsPerByte {
		return 0, &CapacityError{InputLen: inputLen, Overflow: true}
	}
	return BitsPerByte * (inputLen / strands), nil
}

// Validate checks every precondition of a transpose of inputLen bytes into
// an output buffer of outputCap bytes and returns the number of bytes that
// will be written. Checks run in order: strand count, shape, capacity.
func Validate(inputLen, strands, outputCap int) (int, error) {
	outLen, err := OutputLen(inputLen, strands)
	if err != nil {
		return 0, err
	}
	if outputCap < outLen {
		return 0, &CapacityError{Required: outLen, Available: outputCap}
	}
	return outLen, nil
}

// Transpose returns a freshly allocated buffer holding the transposed input.
func Transpose(input []byte, strands int) ([]byte, error) {
	outLen, err := OutputLen(len(input), strands)
	if err != nil {
		return nil, err
	}
	out := make([]byte, outLen)
	transposeFrames(out, input, strands)
	return out, nil
}

// TransposeInto writes the transposed input to the start of dst and returns
// dst unchanged in length. Bytes of dst past the transposed size are left
// alone. On error nothing is written.
func TransposeInto(dst, input []byte, strands int) ([]byte, error) {
	outLen, err := Validate(len(input), strands, len(dst))
	if err != nil {
		return nil, err
	}
	transposeFrames(dst[:outLen], input, strands)
	return dst, nil
}

// InputLen returns the untransposed size of a transposedLen-byte buffer.
func InputLen(transposedLen, strands int) (int, error) {
	if err := checkStrands(strands); err != nil {
		return 0, err
	}
	if transposedLen < 0 || transposedLen%BitsPerByte != 0 {
		return 0, &ShapeError{InputLen: transposedLen, Strands: strands, Planar: true}
	}
	// strands <= BitsPerByte, so the result never exceeds transposedLen.
	return strands * (transposedLen / BitsPerByte), nil
}

// Untranspose reverses Transpose. Bits below the top strands bits of each
// transposed byte are ignored.
func Untranspose(transposed []byte, strands int) ([]byte, error) {
	n, err := InputLen(len(transposed), strands)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	untransposeFrames(out, transposed, strands)
	return out, nil
}

// UntransposeInto is the in-place variant of Untranspose with the same
// buffer rules as TransposeInto.
func UntransposeInto(dst, transposed []byte, strands int) ([]byte, error) {
	n, err := InputLen(len(transposed), strands)
	if err != nil {
		return nil, err
	}
	if len(dst) < n {
		return nil, &CapacityError{Required: n, Available: len(dst)}
	}
	untransposeFrames(dst[:n], transposed, strands)
	return dst, nil
}

func checkStrands(strands int) error {
	if strands < MinStrands || strands > MaxStrands {
		return &StrandCountError{Strands: strands}
	}
	return nil
}
