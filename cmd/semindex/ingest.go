package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/semindex/ingest"
)

var flagIngestPatterns []string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-directory>...",
	Short: "Extract sentences from documents and store their embeddings",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringSliceVarP(&flagIngestPatterns, "pattern", "p", nil,
		"Glob patterns for directory ingestion (default *.md,*.txt)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	svc, _, closeFn, err := newService()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	total := &ingest.Result{}
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		var res *ingest.Result
		if info.IsDir() {
			res, err = svc.IngestDir(ctx, path, flagIngestPatterns)
		} else {
			res, err = svc.IngestFile(ctx, path)
		}
		if err != nil {
			return err
		}
		total.Sentences += res.Sentences
		total.Inserted += res.Inserted
		total.Duplicates += res.Duplicates
		total.Failed += res.Failed
	}

	fmt.Printf("Processed %d sentences: %d inserted, %d duplicates, %d failed\n",
		total.Sentences, total.Inserted, total.Duplicates, total.Failed)
	if total.Inserted > 0 {
		fmt.Println("Run 'semindex build' to refresh the index.")
	}
	return nil
}
