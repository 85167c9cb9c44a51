package bitstream

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnpack(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected Matrix
	}{
		{
			name:     "empty",
			input:    []byte{},
			expected: nil,
		},
		{
			name:     "single byte 0x80",
			input:    []byte{0x80},
			expected: Matrix{{true, false, false, false, false, false, false, false}},
		},
		{
			name:  "two bytes",
			input: []byte{0xFF, 0x01},
			expected: Matrix{
				{true, true, true, true, true, true, true, true},
				{false, false, false, false, false, false, false, true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, Unpack(tt.input)); diff != "" {
				t.Errorf("Unpack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPack(t *testing.T) {
	tests := []struct {
		name     string
		input    Matrix
		expected []byte
	}{
		{
			name:     "empty",
			input:    nil,
			expected: nil,
		},
		{
			name:     "full row",
			input:    Matrix{{true, false, true, false, true, false, true, false}},
			expected: []byte{0xAA},
		},
		{
			name:     "short row is zero padded",
			input:    Matrix{{true, true}, {false, true, true}},
			expected: []byte{0xC0, 0x60},
		},
		{
			name:     "long row is cut at eight bits",
			input:    Matrix{{true, true, true, true, true, true, true, true, true}},
			expected: []byte{0xFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, tt.input.Pack()); diff != "" {
				t.Errorf("Pack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranspose(t *testing.T) {
	m := Matrix{
		{true, false, true},
		{false, false, true},
	}
	want := Matrix{
		{true, false},
		{false, false},
		{true, true},
	}
	if diff := cmp.Diff(want, m.Transpose()); diff != "" {
		t.Errorf("Transpose mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m, m.Transpose().Transpose()); diff != "" {
		t.Errorf("double transpose mismatch (-want +got):\n%s", diff)
	}
}

func TestColumns(t *testing.T) {
	m := Unpack([]byte{0xF0, 0x0F})
	got := m.Columns(3)
	want := Matrix{{true, true, true}, {false, false, false}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	// The source must not be aliased.
	got[0][0] = false
	if !m[0][0] {
		t.Errorf("Columns aliased the source matrix")
	}
}

func TestRoundTrip(t *testing.T) {
	original := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	if diff := cmp.Diff(original, Unpack(original).Pack()); diff != "" {
		t.Errorf("round trip failed (-want +got):\n%s", diff)
	}
}
