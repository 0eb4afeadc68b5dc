package cmd

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"fund-adjudicator/internal/api"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for file processing and configuration",
	Long: `Serve exposes the adjudication engine over HTTP: upload a requests file
to /api/v1/process, inspect or replace the run configuration under
/api/v1/config, and read run statistics from /api/v1/statistics. Prometheus
metrics are exported on /metrics. Posting a new configuration starts a new
run with fresh ledgers.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}

		handler := api.NewHandler(cfg)

		log.Printf("Server starting on :%s", servePort)
		if err := http.ListenAndServe(":"+servePort, handler.Router()); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "listen port")
	rootCmd.AddCommand(serveCmd)
}
