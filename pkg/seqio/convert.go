package seqio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yumyai/sangercheck/internal/util"
	"github.com/yumyai/sangercheck/logger"
)

// ConvertOptions controls trace to FASTA conversion.
type ConvertOptions struct {
	LineWidth int
	Trim      bool
}

// ConvertTrace writes <outDir>/<stem>.fasta holding the called bases of the
// trace at path, and returns the output path.
func ConvertTrace(path, outDir string, opts ConvertOptions) (string, error) {
	s, err := Load(path, LoadOptions{TrimTrace: opts.Trim})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(outDir, util.Stem(path)+".fasta")

	fh, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(fh)
	if err := WriteFASTA(w, opts.LineWidth, s); err != nil {
		fh.Close()
		return "", err
	}
	if err := w.Flush(); err != nil {
		fh.Close()
		return "", err
	}
	if err := fh.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}

// Conversion records one converted trace.
type Conversion struct {
	Trace string
	FASTA string
}

// BatchConvert converts every *.ab1 in rawDir (sorted by name) into outDir.
// A missing rawDir is an error; an empty one yields no conversions.
func BatchConvert(rawDir, outDir string, opts ConvertOptions) ([]Conversion, error) {
	if !util.DirExists(rawDir) {
		return nil, fmt.Errorf("raw directory not found: %s: %w", rawDir, os.ErrNotExist)
	}

	traces, err := filepath.Glob(filepath.Join(rawDir, "*.ab1"))
	if err != nil {
		return nil, err
	}
	sort.Strings(traces)

	if len(traces) == 0 {
		logger.Warn("No .ab1 files found", zap.String("dir", rawDir))
		return nil, nil
	}
	logger.Info("Found trace files", zap.Int("count", len(traces)), zap.String("dir", rawDir))

	out := make([]Conversion, 0, len(traces))
	for _, tr := range traces {
		fasta, err := ConvertTrace(tr, outDir, opts)
		if err != nil {
			return out, err
		}
		size := ""
		if info, err := os.Stat(tr); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		logger.Debug("Converted trace",
			zap.String("trace", filepath.Base(tr)),
			zap.String("size", size),
			zap.String("fasta", filepath.Base(fasta)))
		out = append(out, Conversion{Trace: tr, FASTA: fasta})
	}
	return out, nil
}
