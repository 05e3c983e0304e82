// Package cmd is for command line interactions with the sangercheck application
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yumyai/sangercheck/internal/config"
	"github.com/yumyai/sangercheck/logger"
	"github.com/yumyai/sangercheck/pkg/align"
)

const version = "0.1.0"

var (
	cfgFile  string
	envFile  string
	settings = config.New()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sangercheck",
	Short: "Check Sanger reads against their expected reference sequences",
	Long: `Check Sanger reads against their expected reference sequences.

Reads (FASTA, or .ab1 traces directly) are aligned to their reference with a
Smith-Waterman local alignment under affine gap costs, and the score and percent
identity of the aligned region are reported per sample.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "settings file (yaml, toml or json)")
	pf.StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	pf.String("log-level", "info", "debug, info, warn or error")
	pf.String("data-dir", "data/processed", "directory holding reads and reference FASTA files")

	def := align.DefaultScheme()
	pf.Float64("match", def.Match, "score for identical bases")
	pf.Float64("mismatch", def.Mismatch, "score for differing bases")
	pf.Float64("gap-open", def.GapOpen, "score of the first gap position")
	pf.Float64("gap-extend", def.GapExtend, "score of each further gap position")
	pf.String("n-policy", align.NSymbol.String(), `how N scores: "symbol" or "wildcard"`)

	// Bind the parameters to viper
	settings.BindPFlag("log.level", pf.Lookup("log-level"))
	settings.BindPFlag("data.processed_dir", pf.Lookup("data-dir"))
	settings.BindPFlag("scoring.match", pf.Lookup("match"))
	settings.BindPFlag("scoring.mismatch", pf.Lookup("mismatch"))
	settings.BindPFlag("scoring.gap_open", pf.Lookup("gap-open"))
	settings.BindPFlag("scoring.gap_extend", pf.Lookup("gap-extend"))
	settings.BindPFlag("scoring.n_policy", pf.Lookup("n-policy"))
}

// setup reads .env and the settings file, then starts the logger. A
// provisional warn-level logger is up while those load so that problems
// with them are reported.
func setup(cmd *cobra.Command, args []string) error {
	if err := logger.InitLogger(zapcore.WarnLevel); err != nil {
		return err
	}

	if envFile != "" {
		config.LoadDotEnv(envFile)
	} else {
		config.LoadDotEnv()
	}
	if cfgFile != "" {
		if err := config.ReadFile(settings, cfgFile); err != nil {
			return err
		}
	}

	level, err := logger.ParseLevel(settings.GetString("log.level"))
	if err != nil {
		return err
	}
	if err := logger.InitLogger(level); err != nil {
		return err
	}
	logger.Debug("Start", zap.String("version", version), zap.String("command", cmd.Name()))
	return nil
}

// loadSettings decodes the settings and the scoring scheme. A malformed
// scheme is fatal for every command.
func loadSettings() (config.Config, *align.Aligner, error) {
	c, err := config.Load(settings)
	if err != nil {
		return config.Config{}, nil, err
	}
	scheme, err := c.Scheme()
	if err != nil {
		return config.Config{}, nil, err
	}
	aligner, err := align.NewAligner(scheme)
	if err != nil {
		return config.Config{}, nil, err
	}
	return c, aligner, nil
}
