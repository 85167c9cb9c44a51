package cli

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tuomass/bittranspose-go/internal/framing"
	"github.com/tuomass/bittranspose-go/pkg/bittranspose"
)

type transposeFlags struct {
	strands int
	framed  bool
	verify  bool
	in      string
	out     string
}

func newTransposeCmd(a *app) *cobra.Command {
	f := &transposeFlags{}
	cmd := &cobra.Command{
		Use:   "transpose",
		Short: "Convert per-strand bytes into bit planes",
		Long: `Reads frames of N bytes (one per strand) and writes 8 bytes per frame,
one per bit position, MSB first. Input length must be a multiple of N.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strands") {
				f.strands = a.cfg.Transpose.Strands
			}
			if !cmd.Flags().Changed("framed") {
				f.framed = a.cfg.Transpose.Framed
			}
			return a.runTranspose(cmd, f)
		},
	}
	cmd.Flags().IntVarP(&f.strands, "strands", "s", bittranspose.DefaultStrands, "number of strands (2-8)")
	cmd.Flags().BoolVar(&f.framed, "framed", false, "prefix the output with a BTP0 header")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "cross-check the result against the bit-matrix reference")
	cmd.Flags().StringVarP(&f.in, "in", "i", stdio, "input file, - for stdin")
	cmd.Flags().StringVar(&f.out, "out", stdio, "output file, - for stdout")
	return cmd
}

func (a *app) runTranspose(cmd *cobra.Command, f *transposeFlags) error {
	in, err := openInput(cmd, f.in)
	if err != nil {
		return err
	}
	defer in.Close()

	dst, err := openOutput(cmd, f.out)
	if err != nil {
		return err
	}

	var n int64
	if f.framed || f.verify {
		n, err = transposeBuffered(in, dst, f)
	} else {
		n, err = transposeStream(in, dst, f.strands)
	}
	if err != nil {
		dst.Abort()
		return err
	}
	if err := dst.Commit(); err != nil {
		return err
	}

	a.log.Debug("transposed",
		zap.Int("strands", f.strands),
		zap.Int64("input_bytes", n),
		zap.Bool("framed", f.framed),
		zap.Bool("verified", f.verify),
	)
	return nil
}

func transposeStream(in io.Reader, out io.Writer, strands int) (int64, error) {
	w, err := bittranspose.NewWriter(out, strands)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(w, in); err != nil {
		return w.Written(), errors.Wrap(err, "transpose stream")
	}
	if err := w.Close(); err != nil {
		return w.Written(), err
	}
	return w.Written(), nil
}

func transposeBuffered(in io.Reader, out io.Writer, f *transposeFlags) (int64, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return 0, errors.Wrap(err, "read input")
	}
	planes, err := bittranspose.Transpose(data, f.strands)
	if err != nil {
		return 0, err
	}
	if f.verify {
		ref, err := bittranspose.Reference(data, f.strands)
		if err != nil {
			return 0, err
		}
		if !bytes.Equal(planes, ref) {
			return 0, errors.New("verification failed: transposed output differs from reference")
		}
	}
	if f.framed {
		if planes, err = framing.BuildFrame(planes, f.strands); err != nil {
			return 0, err
		}
	}
	if _, err := out.Write(planes); err != nil {
		return 0, errors.Wrap(err, "write output")
	}
	return int64(len(data)), nil
}

type untransposeFlags struct {
	strands int
	framed  bool
	in      string
	out     string
}

func newUntransposeCmd(a *app) *cobra.Command {
	f := &untransposeFlags{}
	cmd := &cobra.Command{
		Use:   "untranspose",
		Short: "Convert bit planes back into per-strand bytes",
		Long: `Reverses transpose. With --framed the strand count is taken from the BTP0
header; an explicit --strands must then match it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("framed") {
				f.framed = a.cfg.Transpose.Framed
			}
			explicit := cmd.Flags().Changed("strands")
			if !explicit {
				f.strands = a.cfg.Transpose.Strands
			}
			return a.runUntranspose(cmd, f, explicit)
		},
	}
	cmd.Flags().IntVarP(&f.strands, "strands", "s", bittranspose.DefaultStrands, "number of strands (2-8)")
	cmd.Flags().BoolVar(&f.framed, "framed", false, "input carries a BTP0 header")
	cmd.Flags().StringVarP(&f.in, "in", "i", stdio, "input file, - for stdin")
	cmd.Flags().StringVar(&f.out, "out", stdio, "output file, - for stdout")
	return cmd
}

func (a *app) runUntranspose(cmd *cobra.Command, f *untransposeFlags, explicitStrands bool) error {
	in, err := openInput(cmd, f.in)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "read input")
	}

	if f.framed {
		header, payload, err := framing.ParseFrame(data)
		if err != nil {
			return errors.Wrap(err, "parse frame")
		}
		if explicitStrands && f.strands != int(header.Strands) {
			return errors.Errorf("--strands=%d but frame header says %d", f.strands, header.Strands)
		}
		f.strands = int(header.Strands)
		data = payload
	}

	raw, err := bittranspose.Untranspose(data, f.strands)
	if err != nil {
		return err
	}

	dst, err := openOutput(cmd, f.out)
	if err != nil {
		return err
	}
	if _, err := dst.Write(raw); err != nil {
		dst.Abort()
		return errors.Wrap(err, "write output")
	}
	if err := dst.Commit(); err != nil {
		return err
	}

	a.log.Debug("untransposed", zap.Int("strands", f.strands), zap.Int("output_bytes", len(raw)))
	return nil
}
