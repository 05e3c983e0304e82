// Model for running read/reference comparisons

package model

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/yumyai/sangercheck/internal/util"
	"github.com/yumyai/sangercheck/logger"
	"github.com/yumyai/sangercheck/pkg/align"
	"github.com/yumyai/sangercheck/pkg/seqio"
)

// Runner aligns pairs of files. Pairs are independent, so Run spreads them
// over Workers goroutines; outcomes keep the input order.
type Runner struct {
	Aligner   *align.Aligner
	Workers   int
	MaxLength int // 0 disables the per-sequence length limit
	Load      seqio.LoadOptions
}

// Run processes every pair. Missing inputs and unreadable sequences are
// recorded on the pair's Outcome; the returned error is only set when ctx
// is cancelled before all pairs ran.
func (r *Runner) Run(ctx context.Context, pairs []Pair) ([]Outcome, error) {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}

	outcomes := make([]Outcome, len(pairs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.RunPair(pairs[i])
			}
		}()
	}

	var err error
feed:
	for i := range pairs {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// RunPair loads, aligns and scores a single pair.
func (r *Runner) RunPair(pair Pair) Outcome {
	out := Outcome{Pair: pair}

	// Read first, then reference: the skip notice names the first missing file.
	if !util.FileExists(pair.Read) {
		out.Skipped = &MissingInputError{Path: pair.Read, Role: RoleRead}
		logger.Warn("Missing input, skipping pair", zap.String("read", pair.Read))
		return out
	}
	if !util.FileExists(pair.Reference) {
		out.Skipped = &MissingInputError{Path: pair.Reference, Role: RoleReference}
		logger.Warn("Missing input, skipping pair", zap.String("reference", pair.Reference))
		return out
	}

	read, err := seqio.Load(pair.Read, r.Load)
	if err != nil {
		out.Err = err
		return out
	}
	ref, err := seqio.Load(pair.Reference, r.Load)
	if err != nil {
		out.Err = err
		return out
	}

	out.ReadID, out.RefID = read.ID, ref.ID
	out.ReadLen, out.RefLen = read.Len(), ref.Len()

	if err := r.checkLength(pair.Read, read); err != nil {
		out.Err = err
		return out
	}
	if err := r.checkLength(pair.Reference, ref); err != nil {
		out.Err = err
		return out
	}

	res, err := r.Aligner.Align(read.Residues(), ref.Residues())
	if err != nil {
		out.Err = fmt.Errorf("align %s: %w", pair, err)
		return out
	}
	out.Result = res
	out.Identity = res.PercentIdentity()

	logger.Debug("Aligned pair",
		zap.String("read", filepath.Base(pair.Read)),
		zap.String("reference", filepath.Base(pair.Reference)),
		zap.Float64("score", res.Score),
		zap.Float64("identity", out.Identity))
	return out
}

func (r *Runner) checkLength(path string, s seqio.Sequence) error {
	if r.MaxLength > 0 && s.Len() > r.MaxLength {
		return fmt.Errorf("%s: %d bases > %d: %w", path, s.Len(), r.MaxLength, ErrSequenceTooLong)
	}
	return nil
}

// Summary counts outcomes by kind.
type Summary struct {
	Aligned int `json:"aligned"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for i := range outcomes {
		switch {
		case outcomes[i].OK():
			s.Aligned++
		case outcomes[i].Skipped != nil:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}
