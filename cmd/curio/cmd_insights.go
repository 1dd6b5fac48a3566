package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var insightLimit int

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "List recent learning insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		insights, err := st.ListRecentInsights(insightLimit)
		if err != nil {
			return err
		}
		if len(insights) == 0 {
			fmt.Println("No insights recorded yet.")
			return nil
		}

		for _, i := range insights {
			fmt.Printf("[%d] %s (%s confidence, %s)\n", i.ID, i.Topic, i.Confidence,
				i.CreatedAt.Format("2006-01-02"))
			if i.Summary != "" {
				fmt.Printf("    %s\n", i.Summary)
			}
			for _, insight := range i.Insights {
				fmt.Printf("    - %s\n", insight)
			}
		}
		return nil
	},
}

func init() {
	insightsCmd.Flags().IntVarP(&insightLimit, "limit", "l", 10, "maximum insights to list")
}
