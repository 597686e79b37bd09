package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mentorhub/datastore/store"
)

// initCmd creates the data directory and an empty backing file for every
// collection, so a fresh checkout has a working store before the first
// write.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the data directory and collection files",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		// Touch every collection with a no-op read so missing files are
		// observed, then report what exists.
		counts := s.Counts()
		for _, col := range store.AllCollections() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d record(s)\n", col, counts[col])
		}

		cfgDir := GetConfig().Project.RootDir
		if err := os.MkdirAll(cfgDir, 0o755); err != nil {
			return fmt.Errorf("failed to create project directory %s: %w", cfgDir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Store initialized at %s\n", filepath.Clean(s.Dir()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
