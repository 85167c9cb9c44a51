package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tuomass/bittranspose-go/internal/framing"
	"github.com/tuomass/bittranspose-go/pkg/bittranspose"
)

func executeCommand(stdin []byte, args ...string) ([]byte, error) {
	buf := new(bytes.Buffer)
	root := NewRootCmd()
	root.SetIn(bytes.NewReader(stdin))
	root.SetOut(buf)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return buf.Bytes(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(nil, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(string(out), "bittranspose version") {
		t.Errorf("expected output to contain 'bittranspose version', got: %s", out)
	}
}

func TestTransposeCommand_Stdio(t *testing.T) {
	out, err := executeCommand([]byte{0xFF, 0x00}, "transpose", "-s", "2")
	if err != nil {
		t.Fatalf("transpose failed: %v", err)
	}
	if diff := cmp.Diff(bytes.Repeat([]byte{0x80}, 8), out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTransposeCommand_Verify(t *testing.T) {
	input := bytes.Repeat([]byte{0xAA}, 8)
	out, err := executeCommand(input, "transpose", "--verify")
	if err != nil {
		t.Fatalf("transpose --verify failed: %v", err)
	}
	want := []byte{0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTransposeCommand_Errors(t *testing.T) {
	out, err := executeCommand([]byte{1, 2, 3}, "transpose", "-s", "2")
	if !errors.Is(err, bittranspose.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
	// The whole first frame is valid, but nothing may reach stdout.
	if len(out) != 0 {
		t.Errorf("expected no output on error, got % x", out)
	}
	_, err = executeCommand([]byte{1, 2}, "transpose", "-s", "9")
	if !errors.Is(err, bittranspose.ErrInvalidStrandCount) {
		t.Errorf("expected ErrInvalidStrandCount, got %v", err)
	}
}

func TestFramedFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "pixels.bin")
	planesPath := filepath.Join(dir, "planes.btp")
	backPath := filepath.Join(dir, "back.bin")

	input := []byte("RGBRGBRGBRGBrgbrgb")
	if err := os.WriteFile(inPath, input, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	if _, err := executeCommand(nil, "transpose", "-s", "6", "--framed", "-i", inPath, "--out", planesPath); err != nil {
		t.Fatalf("transpose failed: %v", err)
	}
	framed, err := os.ReadFile(planesPath)
	if err != nil {
		t.Fatalf("read planes: %v", err)
	}
	header, _, err := framing.ParseFrame(framed)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if header.Strands != 6 {
		t.Errorf("expected header strands 6, got %d", header.Strands)
	}
	if _, err := os.Stat(planesPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file was left behind")
	}

	// No --strands: the header decides.
	if _, err := executeCommand(nil, "untranspose", "--framed", "-i", planesPath, "--out", backPath); err != nil {
		t.Fatalf("untranspose failed: %v", err)
	}
	back, err := os.ReadFile(backPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if diff := cmp.Diff(input, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := executeCommand(nil, "untranspose", "--framed", "-s", "3", "-i", planesPath); err == nil {
		t.Errorf("expected an error for conflicting --strands")
	}
}

func TestTransposeCommand_FailedRunLeavesNoFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.bin")
	if _, err := executeCommand([]byte{1, 2, 3}, "transpose", "-s", "2", "--out", out); err == nil {
		t.Fatalf("expected an error")
	}
	for _, p := range []string{out, out + ".tmp"} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s not to exist", p)
		}
	}
}

func TestUntransposeCommand_Raw(t *testing.T) {
	input := []byte{0x01, 0x23, 0x45, 0x67}
	planes, err := bittranspose.Transpose(input, 4)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}
	out, err := executeCommand(planes, "untranspose", "-s", "4")
	if err != nil {
		t.Fatalf("untranspose failed: %v", err)
	}
	if diff := cmp.Diff(input, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigSuppliesStrands(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(cfgPath, []byte("transpose:\n  strands: 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := executeCommand([]byte{0xFF, 0x00}, "--config", cfgPath, "transpose")
	if err != nil {
		t.Fatalf("transpose failed: %v", err)
	}
	if len(out) != 8 {
		t.Errorf("expected 8 bytes with strands from config, got %d", len(out))
	}
}

func TestInfoCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "table",
			args: []string{"info", "-s", "3", "-n", "300"},
			want: []string{"Strands:", "Frames:", "100", "OutputLen:", "800", "0x1f"},
		},
		{
			name: "yaml",
			args: []string{"info", "-s", "8", "-n", "16", "-o", "yaml"},
			want: []string{"strands: 8", "output_len: 16", "unused_mask:", "0x00"},
		},
		{
			name: "json",
			args: []string{"-o", "json", "info", "-s", "2", "-n", "0"},
			want: []string{`"output_len": 0`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(nil, tt.args...)
			if err != nil {
				t.Fatalf("info failed: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(out), w) {
					t.Errorf("expected output to contain %q, got:\n%s", w, out)
				}
			}
		})
	}
}

func TestInfoCommand_ShapeMismatch(t *testing.T) {
	_, err := executeCommand(nil, "info", "-s", "3", "-n", "10")
	if !errors.Is(err, bittranspose.ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}
