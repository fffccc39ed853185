package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/semindex/index"
)

var (
	flagBuildKind     string
	flagBuildFallback bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the vector index over all stored sentences",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&flagBuildKind, "kind", "k", "",
		"Index kind, flat or ivf (default from config)")
	buildCmd.Flags().BoolVar(&flagBuildFallback, "flat-fallback", false,
		"Fall back to a flat index when too few records for ivf training")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	svc, cfg, closeFn, err := newService()
	if err != nil {
		return err
	}
	defer closeFn()

	name := cfg.Index.Kind
	if flagBuildKind != "" {
		name = flagBuildKind
	}
	kind, err := index.ParseKind(name)
	if err != nil {
		return err
	}

	snap, err := svc.BuildIndex(cmd.Context(), kind, flagBuildFallback)
	if err != nil {
		return err
	}
	fmt.Printf("Built %s index over %d sentences (dim %d) -> %s\n",
		snap.Kind(), snap.Len(), snap.Dim(), cfg.Index.Path)
	return nil
}
