package cli

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const stdio = "-"

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == stdio {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	return f, nil
}

// sink is a destination that only becomes visible on Commit.
type sink interface {
	io.Writer
	Commit() error
	Abort()
}

func openOutput(cmd *cobra.Command, path string) (sink, error) {
	if path == "" || path == stdio {
		return &stdoutSink{out: cmd.OutOrStdout()}, nil
	}
	return createAtomic(path)
}

// stdoutSink holds everything until Commit, so a failed run prints nothing.
type stdoutSink struct {
	out io.Writer
	buf bytes.Buffer
}

func (s *stdoutSink) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (s *stdoutSink) Commit() error {
	_, err := s.buf.WriteTo(s.out)
	return errors.Wrap(err, "write output")
}

func (s *stdoutSink) Abort() { s.buf.Reset() }

// atomicFile writes to path + ".tmp" and renames on Commit, so the target
// is either fully written or untouched.
type atomicFile struct {
	*os.File
	path string
}

func createAtomic(path string) (*atomicFile, error) {
	f, err := os.OpenFile(path+".tmp", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "create output")
	}
	return &atomicFile{File: f, path: path}, nil
}

func (f *atomicFile) Commit() error {
	if err := f.File.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(err, "close output")
	}
	return errors.Wrap(os.Rename(f.Name(), f.path), "rename output")
}

func (f *atomicFile) Abort() {
	f.File.Close()
	os.Remove(f.Name())
}
