package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/sangercheck/logger"
	"github.com/yumyai/sangercheck/pkg/db"
	"github.com/yumyai/sangercheck/pkg/handler"
	"github.com/yumyai/sangercheck/pkg/middle"
	"github.com/yumyai/sangercheck/pkg/model"
	"github.com/yumyai/sangercheck/pkg/seqio"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve alignments and batch comparisons over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "0.0.0.0:8080", "listen address")
	serveCmd.Flags().Duration("job-ttl", time.Hour, "drop finished jobs after this long (0 keeps them)")

	// Bind the parameters to viper
	settings.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	settings.BindPFlag("server.job_ttl", serveCmd.Flags().Lookup("job-ttl"))
}

func runServe(cmd *cobra.Command, args []string) error {
	c, aligner, err := loadSettings()
	if err != nil {
		return err
	}

	app := &handler.AppContext{
		Runner: &model.Runner{
			Aligner:   aligner,
			Workers:   c.Compare.Workers,
			MaxLength: c.Compare.MaxSequenceLength,
			Load:      seqio.LoadOptions{TrimTrace: c.Trace.Trim},
		},
		DataDir: c.Data.ProcessedDir,
		Jobs:    handler.NewJobManager(),
	}

	if c.Data.SamplesDB != "" {
		sheet, err := db.OpenSampleDB(cmd.Context(), c.Data.SamplesDB)
		if err != nil {
			return err
		}
		defer sheet.Close()
		app.Samples = sheet
		logger.Info("Open sample sheet on", zap.String("DB_LOC", c.Data.SamplesDB))
	}

	sweepCtx, stopSweep := context.WithCancel(cmd.Context())
	defer stopSweep()
	go app.Jobs.Sweep(sweepCtx, c.Server.JobTTL/4, c.Server.JobTTL)

	handler.Version = version
	l := logger.Logger()
	mux := handler.NewRouter(app)

	// Apply middleware
	srv := &http.Server{
		Addr:              c.Server.Addr,
		Handler:           middle.Chain(mux, middle.RequestIDMiddleware(l), middle.LoggingMiddleware(l)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr), zap.String("data", app.DataDir))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Error starting server:", zap.Error(err))
			return err
		}
		return nil
	case <-cmd.Context().Done():
	}

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
