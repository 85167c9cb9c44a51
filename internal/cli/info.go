package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuomass/bittranspose-go/pkg/bittranspose"
)

// sizeReport describes the buffers a transpose of a given input would use.
type sizeReport struct {
	Strands    int    `json:"strands" yaml:"strands"`
	InputLen   int    `json:"input_len" yaml:"input_len"`
	Frames     int    `json:"frames" yaml:"frames"`
	OutputLen  int    `json:"output_len" yaml:"output_len"`
	UsedBits   int    `json:"used_bits" yaml:"used_bits"`
	UnusedMask string `json:"unused_mask" yaml:"unused_mask"`
}

func newInfoCmd(a *app) *cobra.Command {
	var strands, length int
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show output sizing for an input length and strand count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strands") {
				strands = a.cfg.Transpose.Strands
			}
			outLen, err := bittranspose.OutputLen(length, strands)
			if err != nil {
				return err
			}
			r := sizeReport{
				Strands:    strands,
				InputLen:   length,
				Frames:     length / strands,
				OutputLen:  outLen,
				UsedBits:   strands,
				UnusedMask: fmt.Sprintf("%#02x", byte(0xFF)>>strands),
			}
			fmt.Fprint(cmd.OutOrStdout(), a.formatter.Format(&r))
			return nil
		},
	}
	cmd.Flags().IntVarP(&strands, "strands", "s", bittranspose.DefaultStrands, "number of strands (2-8)")
	cmd.Flags().IntVarP(&length, "length", "n", 0, "input length in bytes")
	cmd.MarkFlagRequired("length")
	return cmd
}
