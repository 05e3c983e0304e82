package request

import (
	"github.com/yumyai/sangercheck/pkg/align"
	"github.com/yumyai/sangercheck/pkg/model"
)

// Align two sequences given inline
type AlignRequest struct {
	Query         string          `json:"query"`
	Reference     string          `json:"reference"`
	Scheme        *SchemeOverride `json:"scheme,omitempty"`
	ShowAlignment bool            `json:"show_alignment"`
}

// Any field left out keeps the server's value.
type SchemeOverride struct {
	Match     *float64 `json:"match"`
	Mismatch  *float64 `json:"mismatch"`
	GapOpen   *float64 `json:"gap_open"`
	GapExtend *float64 `json:"gap_extend"`
	NPolicy   *string  `json:"n_policy"`
}

// Apply overlays the override on base and validates the result.
func (o *SchemeOverride) Apply(base align.Scheme) (align.Scheme, error) {
	s := base
	if o == nil {
		return s, s.Validate()
	}
	if o.Match != nil {
		s.Match = *o.Match
	}
	if o.Mismatch != nil {
		s.Mismatch = *o.Mismatch
	}
	if o.GapOpen != nil {
		s.GapOpen = *o.GapOpen
	}
	if o.GapExtend != nil {
		s.GapExtend = *o.GapExtend
	}
	if o.NPolicy != nil {
		p, err := align.ParseNPolicy(*o.NPolicy)
		if err != nil {
			return align.Scheme{}, err
		}
		s.NPolicy = p
	}
	return s, s.Validate()
}

// Batch comparison job. With no pairs the sample sheet (or the built-in
// pairs) is used.
type JobRequest struct {
	Pairs []model.Pair `json:"pairs"`
}
