package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yumyai/sangercheck/internal/util"
	"github.com/yumyai/sangercheck/pkg/handler"
	"github.com/yumyai/sangercheck/pkg/render"
	"github.com/yumyai/sangercheck/pkg/seqio"
)

var alignFormat string

// alignCmd represents the align command
var alignCmd = &cobra.Command{
	Use:   "align QUERY REFERENCE",
	Short: "Locally align two sequences",
	Long: `Locally align two sequences and print the alignment.

Each argument is a FASTA or .ab1 file when such a file exists, otherwise it is
taken as the sequence itself.`,
	Args: cobra.ExactArgs(2),
	RunE: runAlign,
}

func init() {
	rootCmd.AddCommand(alignCmd)
	alignCmd.Flags().StringVarP(&alignFormat, "format", "f", render.FormatText, "output format: text or json")
}

// sequenceArg loads a file argument or wraps a literal sequence.
func sequenceArg(arg, name string, opts seqio.LoadOptions) (seqio.Sequence, error) {
	if util.FileExists(arg) {
		return seqio.Load(arg, opts)
	}
	return seqio.NewSequence(name, "", arg), nil
}

func runAlign(cmd *cobra.Command, args []string) error {
	c, aligner, err := loadSettings()
	if err != nil {
		return err
	}
	opts := seqio.LoadOptions{TrimTrace: c.Trace.Trim}

	query, err := sequenceArg(args[0], "query", opts)
	if err != nil {
		return err
	}
	ref, err := sequenceArg(args[1], "reference", opts)
	if err != nil {
		return err
	}

	res, err := aligner.Align(query.Residues(), ref.Residues())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch alignFormat {
	case render.FormatText:
		fmt.Fprintf(out, "%s vs %s\n", query.ID, ref.ID)
		fmt.Fprint(out, res.Format())
		fmt.Fprintf(out, "  Identity=%.2f%%\n", res.PercentIdentity())
		return nil
	case render.FormatJSON:
		scheme := aligner.Scheme()
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(handler.AlignResponse{
			QueryLength:     query.Len(),
			ReferenceLength: ref.Len(),
			Score:           res.Score,
			PercentIdentity: res.PercentIdentity(),
			CIGAR:           res.CIGAR(),
			Alignment:       res,
			Scheme:          scheme,
			NPolicy:         scheme.NPolicy.String(),
		})
	default:
		return fmt.Errorf("unknown output format %q", alignFormat)
	}
}
