package bittranspose

import "io"

// writerChunkFrames bounds the scratch buffer a Writer hands to the
// underlying writer in one call.
const writerChunkFrames = 512

// Writer transposes a byte stream frame by frame. Bytes that do not yet
// complete a frame are held until the next Write.
type Writer struct {
	w       io.Writer
	strands int
	pending []byte
	scratch []byte
	written int64
	err     error
}

// NewWriter returns a Writer that writes the transposed stream to w.
func NewWriter(w io.Writer, strands int) (*Writer, error) {
	if err := checkStrands(strands); err != nil {
		return nil, err
	}
	return &Writer{
		w:       w,
		strands: strands,
		pending: make([]byte, 0, strands),
		scratch: make([]byte, writerChunkFrames*BitsPerByte),
	}, nil
}

// Write consumes p. It reports len(p) unless the underlying writer fails.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	consumed := 0

	if len(w.pending) > 0 {
		k := copy(w.pending[len(w.pending):w.strands], p)
		w.pending = w.pending[:len(w.pending)+k]
		consumed += k
		if len(w.pending) < w.strands {
			return consumed, nil
		}
		if err := w.flushFrames(w.pending); err != nil {
			return consumed, err
		}
		w.pending = w.pending[:0]
	}

	rest := p[consumed:]
	whole := len(rest) - len(rest)%w.strands
	chunk := writerChunkFrames * w.strands
	for off := 0; off < whole; off += chunk {
		end := min(off+chunk, whole)
		if err := w.flushFrames(rest[off:end]); err != nil {
			return consumed + off, err
		}
	}
	w.pending = append(w.pending, rest[whole:]...)
	return len(p), nil
}

// Written returns the number of input bytes transposed so far.
func (w *Writer) Written() int64 { return w.written }

// Close reports a *ShapeError if the stream ended inside a frame. It does
// not close the underlying writer.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if len(w.pending) > 0 {
		w.err = &ShapeError{InputLen: int(w.written) + len(w.pending), Strands: w.strands}
		return w.err
	}
	return nil
}

func (w *Writer) flushFrames(src []byte) error {
	outLen := BitsPerByte * (len(src) / w.strands)
	out := w.scratch[:outLen]
	transposeFrames(out, src, w.strands)
	if _, err := w.w.Write(out); err != nil {
		w.err = err
		return err
	}
	w.written += int64(len(src))
	return nil
}
