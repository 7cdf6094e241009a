package cmd

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"pricelens/internal/ai"
	"pricelens/internal/dataset"
	"pricelens/internal/logging"
	"pricelens/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the dataset and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(debug)

		snap := newLoader(logger).Load(cfg.DataPath)
		if snap.Empty() {
			logger.Warn("[serve] starting with an empty dataset; widget and chat will have no data")
		}

		var asker server.Asker
		if cfg.APIKey != "" {
			asker = ai.New(cfg.APIKey, cfg.BaseURL, cfg.Model,
				time.Duration(cfg.HTTPTimeoutSec)*time.Second,
				cfg.RetryMaxAttempts,
				time.Duration(cfg.RetryBaseDelayMs)*time.Millisecond,
				time.Duration(cfg.RetryMaxDelayMs)*time.Millisecond)
		} else {
			logger.Warn("[serve] PRICELENS_API_KEY not set; chat assistant disabled")
		}

		srv, err := server.New(snap, asker, logger, cfg.MaxPromptRecords)
		if err != nil {
			return err
		}

		addr := cfg.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		httpSrv := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("[serve] listening on http://%s", addr)
		return httpSrv.ListenAndServe()
	},
}

func newLoader(logger *logging.Logger) *dataset.Loader {
	cols := dataset.Columns{
		ItemName: cfg.ColItemName,
		Price:    cfg.ColPrice,
		Location: cfg.ColLocation,
		Unit:     cfg.ColUnit,
	}
	return dataset.NewLoader(cols, cfg.DataTable, logger)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
