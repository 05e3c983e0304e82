package model

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/yumyai/sangercheck/pkg/align"
)

var ErrSequenceTooLong = errors.New("sequence exceeds configured length limit")

// Pair is one read checked against its expected reference.
type Pair struct {
	Label     string `json:"label,omitempty"`
	Read      string `json:"read"`
	Reference string `json:"reference"`
}

func (p Pair) String() string {
	if p.Label != "" {
		return p.Label
	}
	return fmt.Sprintf("%s vs %s", p.Read, p.Reference)
}

// Input roles named in MissingInputError.
const (
	RoleRead      = "read"
	RoleReference = "reference"
)

// MissingInputError marks a pair skipped because one of its files is absent.
type MissingInputError struct {
	Path string
	Role string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing %s input: %s", e.Role, e.Path)
}

func (e *MissingInputError) Unwrap() error { return fs.ErrNotExist }

// Outcome is the per-pair record handed to the reporting layer. Exactly one
// of Result, Skipped or Err is set.
type Outcome struct {
	Pair     Pair               `json:"pair"`
	ReadID   string             `json:"read_id,omitempty"`
	RefID    string             `json:"reference_id,omitempty"`
	ReadLen  int                `json:"read_length"`
	RefLen   int                `json:"reference_length"`
	Result   *align.Result      `json:"alignment,omitempty"`
	Identity float64            `json:"percent_identity"`
	Skipped  *MissingInputError `json:"-"`
	Err      error              `json:"-"`
}

func (o *Outcome) OK() bool { return o.Result != nil }
