package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"fund-adjudicator/internal/domain"
	"fund-adjudicator/internal/engine"
	"fund-adjudicator/internal/gateway"
)

var (
	auditFile string
	showStats bool
	verbose   bool
)

var processCmd = &cobra.Command{
	Use:   "process <input> [output]",
	Short: "Adjudicate a file of fund-load requests",
	Long: `Process reads fund-load requests from a JSONL or CSV file (format is
detected from the content), adjudicates them in order against one fresh run,
and writes one decision per line. Output goes to stdout unless an output
file is given; the full audit stream is written when --audit is set.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}

		src, err := gateway.OpenFileSource(args[0])
		if err != nil {
			log.Fatalf("Input error: %v", err)
		}
		defer src.Close()

		out := os.Stdout
		if len(args) == 2 {
			f, err := os.Create(args[1])
			if err != nil {
				log.Fatalf("Output error: %v", err)
			}
			defer f.Close()
			out = f
		}

		var audits engine.AuditSink = discardAudit{}
		if auditFile != "" {
			f, err := os.Create(auditFile)
			if err != nil {
				log.Fatalf("Audit output error: %v", err)
			}
			defer f.Close()
			audits = gateway.NewJSONLAuditSink(f)
		}

		adj := engine.New(cfg)
		summary, err := adj.Run(context.Background(), src, gateway.NewJSONLDecisionSink(out), audits)
		if err != nil {
			log.Fatalf("Processing failed: %v", err)
		}

		if verbose {
			printSummary(summary)
		}
		if showStats {
			printStatistics(adj)
		}
	},
}

func init() {
	processCmd.Flags().StringVar(&auditFile, "audit", "", "write full audit records (JSONL) to this file")
	processCmd.Flags().BoolVar(&showStats, "stats", false, "print run statistics after processing")
	processCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print a processing summary to stderr")
	rootCmd.AddCommand(processCmd)
}

func printSummary(s engine.Summary) {
	fmt.Fprintf(os.Stderr, "\n=== PROCESSING SUMMARY ===\n")
	fmt.Fprintf(os.Stderr, "Total requests: %d\n", s.Processed)
	fmt.Fprintf(os.Stderr, "Accepted: %d\n", s.Accepted)
	fmt.Fprintf(os.Stderr, "Declined: %d\n", s.Declined)

	if len(s.DeclineReasons) > 0 {
		fmt.Fprintf(os.Stderr, "\nDecline reasons:\n")
		reasons := make([]string, 0, len(s.DeclineReasons))
		for reason := range s.DeclineReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(os.Stderr, "  %s: %d\n", reason, s.DeclineReasons[reason])
		}
	}
}

func printStatistics(adj *engine.Adjudicator) {
	stats := adj.Statistics()
	fmt.Fprintf(os.Stderr, "\n=== RUN STATISTICS ===\n")
	fmt.Fprintf(os.Stderr, "Run ID: %v\n", stats["run_id"])
	fmt.Fprintf(os.Stderr, "Customers tracked: %v\n", stats["customers_tracked"])
	fmt.Fprintf(os.Stderr, "Configuration:\n")
	cfg := stats["configuration"].(map[string]any)
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", k, cfg[k])
	}
}

// discardAudit drops audit records when no audit output was requested.
type discardAudit struct{}

func (discardAudit) WriteAudit(a domain.AuditRecord) error { return nil }
