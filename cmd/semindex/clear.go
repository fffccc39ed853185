package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagClearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored sentences and the index artifact",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "Confirm the deletion")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if !flagClearYes {
		return fmt.Errorf("refusing to delete all data; re-run with --yes to confirm")
	}
	svc, _, closeFn, err := newService()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := svc.Clear(cmd.Context(), true); err != nil {
		return err
	}
	fmt.Println("All sentences and the index artifact were removed.")
	return nil
}
