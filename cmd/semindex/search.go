package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	flagSearchTopK     int
	flagSearchMinScore float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find stored sentences most similar to the query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&flagSearchTopK, "top-k", "k", 5, "Number of results to show")
	searchCmd.Flags().Float64Var(&flagSearchMinScore, "min-score", 0,
		"Minimum cosine similarity to include")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, _, closeFn, err := newService()
	if err != nil {
		return err
	}
	defer closeFn()

	query := strings.Join(args, " ")
	matches, err := svc.Search(cmd.Context(), query, flagSearchTopK, flagSearchMinScore)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tSOURCE\tSENTENCE")
	for _, m := range matches {
		fmt.Fprintf(w, "%.4f\t%s\t%s\n", m.Score, m.SourceRef, m.Text)
	}
	return w.Flush()
}
