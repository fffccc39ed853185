package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store and index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, _, closeFn, err := newService()
	if err != nil {
		return err
	}
	defer closeFn()

	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Sentences:        %d\n", stats.Store.Records)
	fmt.Printf("Dimension:        %d\n", stats.Store.Dim)
	fmt.Printf("Distinct sources: %d\n", stats.Store.DistinctSources)
	fmt.Printf("Database size:    %d bytes\n", stats.Store.SizeBytes)
	if stats.IndexKind == "" {
		fmt.Println("Index:            none in this session")
		return nil
	}
	fmt.Printf("Index:            %s, %d sentences", stats.IndexKind, stats.IndexRecords)
	if stats.IndexTrained {
		fmt.Print(", trained")
	}
	if stats.IndexStale {
		fmt.Print(" (stale, rebuild required)")
	}
	fmt.Println()
	return nil
}
