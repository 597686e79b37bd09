package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mentorhub/datastore/store"
)

// statsCmd shows record counts for every collection, or the live aggregates
// of a single forum when given its id.
var statsCmd = &cobra.Command{
	Use:   "stats [forumId]",
	Short: "Show collection counts, or one forum's live aggregates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if len(args) == 1 {
			stats := s.GetForumWithStats(args[0])
			if stats == nil {
				return fmt.Errorf("forum '%s' not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forum:  %s\n", stats.Forum.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Topics: %d\n", stats.TopicCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Posts:  %d\n", stats.PostCount)
			for _, p := range stats.RecentPosts {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", p.CreatedAt.Format("2006-01-02 15:04"), truncate(p.Content, 60))
			}
			return nil
		}

		counts := s.Counts()
		for _, col := range store.AllCollections() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", col, counts[col])
		}
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
