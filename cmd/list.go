package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/mentorhub/datastore/store"
)

// listCmd prints a collection's records as JSON. With no argument it offers
// an interactive collection picker.
var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "Print the records of a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		var col store.Collection
		if len(args) == 1 {
			col, err = store.ParseCollection(args[0])
			if err != nil {
				return err
			}
		} else {
			col, err = selectCollectionInteractive()
			if err != nil {
				return err
			}
		}

		records, err := s.Records(col)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", col, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// selectCollectionInteractive presents a prompt to pick a collection.
func selectCollectionInteractive() (store.Collection, error) {
	names := store.AllCollections()
	prompt := promptui.Select{
		Label: "Select collection",
		Items: names,
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("collection selection cancelled: %w", err)
	}
	return names[i], nil
}

func init() {
	rootCmd.AddCommand(listCmd)
}
