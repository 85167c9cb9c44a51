package bittranspose

// transposeFrames is the engine. Callers must have validated strands and
// sizes: len(src)%strands == 0 and len(dst) >= 8*len(src)/strands.
func transposeFrames(dst, src []byte, strands int) {
	o := 0
	for f := 0; f+strands <= len(src); f += strands {
		frame := src[f : f+strands]
		out := dst[o : o+BitsPerByte]
		for b := range out {
			mask := byte(0x80) >> b
			var v byte
			for s, in := range frame {
				if in&mask != 0 {
					v |= 0x80 >> s
				}
			}
			out[b] = v
		}
		o += BitsPerByte
	}
}

// untransposeFrames inverts transposeFrames under the same preconditions
// with the roles of src and dst swapped.
func untransposeFrames(dst, src []byte, strands int) {
	f := 0
	for o := 0; o+BitsPerByte <= len(src); o += BitsPerByte {
		planes := src[o : o+BitsPerByte]
		out := dst[f : f+strands]
		for s := range out {
			mask := byte(0x80) >> s
			var v byte
			for b, p := range planes {
				if p&mask != 0 {
					v |= 0x80 >> b
				}
			}
			out[s] = v
		}
		f += strands
	}
}
