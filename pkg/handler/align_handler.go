package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/sangercheck/logger"
	"github.com/yumyai/sangercheck/pkg/align"
	"github.com/yumyai/sangercheck/pkg/handler/request"
	"github.com/yumyai/sangercheck/pkg/seqio"
)

const maxRequestBytes = 8 << 20

type AlignResponse struct {
	QueryLength     int           `json:"query_length"`
	ReferenceLength int           `json:"reference_length"`
	Score           float64       `json:"score"`
	PercentIdentity float64       `json:"percent_identity"`
	CIGAR           string        `json:"cigar"`
	Alignment       *align.Result `json:"alignment"`
	Formatted       string        `json:"formatted,omitempty"`
	Scheme          align.Scheme  `json:"scheme"`
	NPolicy         string        `json:"n_policy"`
}

// AlignHandler aligns a query against a reference given in the request body.
func (app *AppContext) AlignHandler(w http.ResponseWriter, r *http.Request) {

	var req request.AlignRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Debug("Bad align request", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	scheme, err := req.Scheme.Apply(app.Runner.Aligner.Scheme())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	aligner := app.Runner.Aligner
	if req.Scheme != nil {
		aligner, err = align.NewAligner(scheme)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	query := seqio.NewSequence("query", "", req.Query)
	ref := seqio.NewSequence("reference", "", req.Reference)

	if limit := app.Runner.MaxLength; limit > 0 && (query.Len() > limit || ref.Len() > limit) {
		http.Error(w, "Sequence exceeds the configured length limit", http.StatusRequestEntityTooLarge)
		return
	}

	res, err := aligner.Align(query.Residues(), ref.Residues())
	if errors.Is(err, align.ErrMatrixTooLarge) {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	if errors.Is(err, align.ErrGapInSequence) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.Error("Alignment failed", zap.Error(err))
		http.Error(w, "Alignment failed", http.StatusInternalServerError)
		return
	}

	response := AlignResponse{
		QueryLength:     query.Len(),
		ReferenceLength: ref.Len(),
		Score:           res.Score,
		PercentIdentity: res.PercentIdentity(),
		CIGAR:           res.CIGAR(),
		Alignment:       res,
		Scheme:          scheme,
		NPolicy:         scheme.NPolicy.String(),
	}
	if req.ShowAlignment {
		response.Formatted = res.Format()
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Encode response", zap.Error(err))
	}
}
