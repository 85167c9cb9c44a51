package bittranspose

import "github.com/tuomass/bittranspose-go/internal/bitstream"

// Reference computes the same result as Transpose by building each frame's
// bit matrix and transposing it. It allocates per frame and is meant for
// cross-checking, not for driving strips.
func Reference(input []byte, strands int) ([]byte, error) {
	outLen, err := OutputLen(len(input), strands)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, outLen)
	for f := 0; f < len(input); f += strands {
		// strands x 8 becomes 8 x strands; Pack zero-fills the unused bits.
		planes := bitstream.Unpack(input[f : f+strands]).Transpose().Pack()
		out = append(out, planes...)
	}
	return out, nil
}

// ReferenceInverse is the matrix form of Untranspose.
func ReferenceInverse(transposed []byte, strands int) ([]byte, error) {
	n, err := InputLen(len(transposed), strands)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	for o := 0; o < len(transposed); o += BitsPerByte {
		m := bitstream.Unpack(transposed[o : o+BitsPerByte]).Columns(strands)
		out = append(out, m.Transpose().Pack()...)
	}
	return out, nil
}
