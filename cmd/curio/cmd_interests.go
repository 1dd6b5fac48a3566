package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var (
	interestStatus string
	interestLimit  int

	addPriority int
	addTags     []string
)

var interestsCmd = &cobra.Command{
	Use:   "interests",
	Short: "List tracked learning interests",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		interests, err := st.ListInterests(interestStatus, interestLimit)
		if err != nil {
			return err
		}
		if len(interests) == 0 {
			fmt.Println("No learning interests recorded.")
			return nil
		}

		for _, i := range interests {
			fmt.Printf("[%d] [%s] (p%d) %s\n", i.ID, i.Status, i.Priority, i.Topic)
			why := i.WhyInterested
			if len(why) > 100 {
				why = truncate(why, 100) + "..."
			}
			fmt.Printf("    Why: %s\n", why)
			if len(i.InsightsGained) > 0 {
				fmt.Printf("    Insights so far: %d\n", len(i.InsightsGained))
			}
		}
		return nil
	},
}

var addInterestCmd = &cobra.Command{
	Use:   "add-interest [topic] [why]",
	Short: "Add a learning interest",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.AddInterest(args[0], args[1], "", addPriority, addTags)
		if err != nil {
			return err
		}
		fmt.Printf("Added learning interest #%d: %s\n", id, args[0])
		return nil
	},
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func init() {
	interestsCmd.Flags().StringVarP(&interestStatus, "status", "s", "", "filter by status (curious, exploring, deepening)")
	interestsCmd.Flags().IntVarP(&interestLimit, "limit", "l", 20, "maximum interests to list")

	addInterestCmd.Flags().IntVarP(&addPriority, "priority", "p", 5, "interest priority (1-10)")
	addInterestCmd.Flags().StringSliceVar(&addTags, "tag", nil, "tag the interest (repeatable)")
}
