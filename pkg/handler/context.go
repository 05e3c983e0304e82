package handler

// DI for all handlers and models alike.

import (
	"github.com/yumyai/sangercheck/pkg/db"
	"github.com/yumyai/sangercheck/pkg/model"
)

type AppContext struct {
	Runner *model.Runner
	// relative pair paths are resolved here and may not leave it
	DataDir string
	// nil when no sample sheet is configured
	Samples *db.SampleDB
	Jobs    *JobManager
}
