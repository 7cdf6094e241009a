package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pricelens/internal/logging"
)

var inspectHead int

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Load and aggregate a dataset, then print a summary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.DataPath
		if len(args) == 1 {
			path = args[0]
		}
		logger := logging.New(debug)
		snap := newLoader(logger).Load(path)

		fmt.Printf("Aggregated records: %d\n", len(snap.Records))
		fmt.Printf("Locations (%d): %s\n", len(snap.Locations), strings.Join(snap.Locations, ", "))
		fmt.Printf("Units (%d): %s\n", len(snap.Units), strings.Join(snap.Units, ", "))

		if len(snap.Records) == 0 {
			return nil
		}
		head := inspectHead
		if head > len(snap.Records) {
			head = len(snap.Records)
		}
		fmt.Printf("\n%-30s %-16s %-10s %10s\n", "ITEM", "LOCATION", "UNIT", "PRICE (RM)")
		for _, r := range snap.Records[:head] {
			fmt.Printf("%-30s %-16s %-10s %10.2f\n", truncate(r.Name, 30), truncate(r.Location, 16), truncate(r.Unit, 10), r.Price)
		}
		if head < len(snap.Records) {
			fmt.Printf("... and %d more\n", len(snap.Records)-head)
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	inspectCmd.Flags().IntVar(&inspectHead, "head", 20, "number of records to print")
	rootCmd.AddCommand(inspectCmd)
}
