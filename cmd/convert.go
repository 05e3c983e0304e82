package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yumyai/sangercheck/pkg/seqio"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert .ab1 trace files into FASTA",
	Long: `Convert every .ab1 trace in --raw-dir into <name>.fasta under --out-dir.

The record ID is the file name without extension and the called bases are
wrapped at --line-width columns.`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	f := convertCmd.Flags()
	f.String("raw-dir", "data/raw_ab1", "directory holding .ab1 traces")
	f.String("out-dir", "data/processed", "directory the FASTA files are written to")
	f.Int("line-width", seqio.DefaultLineWidth, "FASTA line width")
	f.Bool("trim", false, "quality-trim the called bases (Mott, cutoff 0.05)")

	// Bind the parameters to viper
	settings.BindPFlag("data.raw_dir", f.Lookup("raw-dir"))
	settings.BindPFlag("fasta.line_width", f.Lookup("line-width"))
}

func runConvert(cmd *cobra.Command, args []string) error {
	c, _, err := loadSettings()
	if err != nil {
		return err
	}

	outDir := c.Data.ProcessedDir
	if f := cmd.Flags().Lookup("out-dir"); f.Changed {
		outDir = f.Value.String()
	}
	trim := c.Trace.Trim
	if f := cmd.Flags().Lookup("trim"); f.Changed {
		trim, _ = cmd.Flags().GetBool("trim")
	}

	conversions, err := seqio.BatchConvert(c.Data.RawDir, outDir, seqio.ConvertOptions{
		LineWidth: c.FASTA.LineWidth,
		Trim:      trim,
	})
	out := cmd.OutOrStdout()
	for _, conv := range conversions {
		fmt.Fprintf(out, "%s -> %s\n", filepath.Base(conv.Trace), conv.FASTA)
	}
	if err != nil {
		return err
	}
	if len(conversions) == 0 {
		fmt.Fprintf(out, "No .ab1 files found in %s\n", c.Data.RawDir)
	}
	return nil
}
