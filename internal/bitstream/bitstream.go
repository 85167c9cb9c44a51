// Package bitstream holds bit-level helpers that favour clarity over speed.
// Bits are always ordered MSB first.
package bitstream

// Matrix is a row-major bit matrix.
type Matrix [][]bool

// Unpack expands each byte of data into one row of 8 bits, MSB first.
func Unpack(data []byte) Matrix {
	if len(data) == 0 {
		return nil
	}
	m := make(Matrix, len(data))
	for i, b := range data {
		row := make([]bool, 8)
		for j := range row {
			row[j] = (b>>(7-j))&1 == 1
		}
		m[i] = row
	}
	return m
}

// Columns returns a copy of m keeping only the first n columns of each row.
func (m Matrix) Columns(n int) Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		k := min(n, len(row))
		out[i] = append([]bool(nil), row[:k]...)
	}
	return out
}

// Transpose returns the transpose of m. All rows must have the same length.
func (m Matrix) Transpose() Matrix {
	if len(m) == 0 {
		return nil
	}
	cols := len(m[0])
	t := make(Matrix, cols)
	for c := range t {
		t[c] = make([]bool, len(m))
		for r := range m {
			t[c][r] = m[r][c]
		}
	}
	return t
}

// Pack packs each row into one byte, MSB first. Rows shorter than 8 bits
// leave the low-order bits zero; bits past the eighth are dropped.
func (m Matrix) Pack() []byte {
	if len(m) == 0 {
		return nil
	}
	out := make([]byte, len(m))
	for i, row := range m {
		for j, bit := range row {
			if j == 8 {
				break
			}
			if bit {
				out[i] |= 1 << (7 - j)
			}
		}
	}
	return out
}
