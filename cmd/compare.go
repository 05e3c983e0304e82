package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/sangercheck/internal/config"
	"github.com/yumyai/sangercheck/logger"
	"github.com/yumyai/sangercheck/pkg/db"
	"github.com/yumyai/sangercheck/pkg/model"
	"github.com/yumyai/sangercheck/pkg/render"
	"github.com/yumyai/sangercheck/pkg/seqio"
)

var (
	pairFlags     []string
	reportFormat  string
	showAlignment bool
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Align each read to its reference and report score and identity",
	Long: `Align each read to its reference and report score and identity.

Pairs come from --pair (repeatable, "read:reference"), else from the sample
sheet given by --samples-db, else the built-in BZN6R2 set. Relative paths are
resolved against --data-dir. Pairs with a missing file are reported and
skipped; a pair that fails to load makes the command exit non-zero after the
report is printed.`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	f := compareCmd.Flags()
	f.StringSliceVarP(&pairFlags, "pair", "p", nil, `read and reference as "read:reference"`)
	f.StringVarP(&reportFormat, "format", "f", render.FormatText, "report format: text or json")
	f.BoolVar(&showAlignment, "show-alignment", false, "print the aligned strings under each sample")
	f.String("samples-db", "", "sqlite sample sheet to take pairs from")
	f.IntP("workers", "w", 1, "pairs aligned in parallel")
	f.Int("max-length", 0, "reject sequences longer than this (0 is unlimited)")
	f.Bool("trim", false, "quality-trim .ab1 reads before aligning")

	// Bind the parameters to viper
	settings.BindPFlag("data.samples_db", f.Lookup("samples-db"))
	settings.BindPFlag("compare.workers", f.Lookup("workers"))
	settings.BindPFlag("compare.max_sequence_length", f.Lookup("max-length"))
	settings.BindPFlag("trace.trim", f.Lookup("trim"))
}

func runCompare(cmd *cobra.Command, args []string) error {
	c, aligner, err := loadSettings()
	if err != nil {
		return err
	}

	pairs, err := selectPairs(cmd, c)
	if err != nil {
		return err
	}

	runner := &model.Runner{
		Aligner:   aligner,
		Workers:   c.Compare.Workers,
		MaxLength: c.Compare.MaxSequenceLength,
		Load:      seqio.LoadOptions{TrimTrace: c.Trace.Trim},
	}
	outcomes, err := runner.Run(cmd.Context(), pairs)
	if err != nil {
		return err
	}

	data := render.ReportData{Outcomes: outcomes, Scheme: aligner.Scheme(), ShowAlignment: showAlignment}
	if err := render.Render(cmd.OutOrStdout(), reportFormat, data); err != nil {
		return err
	}

	summary := model.Summarize(outcomes)
	logger.Info("Comparison finished",
		zap.Int("aligned", summary.Aligned),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d pairs failed", summary.Failed, len(outcomes))
	}
	return nil
}

// selectPairs resolves the pairs to compare against the data directory.
func selectPairs(cmd *cobra.Command, c config.Config) ([]model.Pair, error) {
	var pairs []model.Pair
	for _, raw := range pairFlags {
		p, err := parsePair(raw)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}

	if len(pairs) == 0 && c.Data.SamplesDB != "" {
		sheet, err := db.OpenSampleDB(cmd.Context(), c.Data.SamplesDB)
		if err != nil {
			return nil, err
		}
		defer sheet.Close()
		if pairs, err = sheet.Pairs(cmd.Context()); err != nil {
			return nil, err
		}
		logger.Debug("Pairs from sample sheet", zap.String("db", c.Data.SamplesDB), zap.Int("count", len(pairs)))
	}

	if len(pairs) == 0 {
		pairs = model.DefaultPairs
	}
	return model.ResolvePairs(c.Data.ProcessedDir, pairs), nil
}

// parsePair splits "read:reference".
func parsePair(raw string) (model.Pair, error) {
	read, ref, ok := strings.Cut(raw, ":")
	read, ref = strings.TrimSpace(read), strings.TrimSpace(ref)
	if !ok || read == "" || ref == "" {
		return model.Pair{}, fmt.Errorf("bad pair %q, want read:reference", raw)
	}
	return model.Pair{Read: read, Reference: ref}, nil
}
