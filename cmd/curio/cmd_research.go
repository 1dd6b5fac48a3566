package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var researchPriority string

var researchCmd = &cobra.Command{
	Use:   "research [topic] [query]...",
	Short: "Queue a research request for a later session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.CreateResearchRequest(args[0], args[1:], "", "", researchPriority, 0, 0)
		if err != nil {
			return err
		}
		fmt.Printf("Queued research #%d: %s\n", id, args[0])
		return nil
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List pending research requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		pending, err := st.ListPendingResearch(20)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("No pending research.")
			return nil
		}

		for _, r := range pending {
			fmt.Printf("[%d] [%s] %s\n", r.ID, r.Priority, r.Topic)
			fmt.Printf("    Queries: %s\n", strings.Join(r.Queries, ", "))
			if r.WhyResearching != "" {
				fmt.Printf("    Why: %s\n", r.WhyResearching)
			}
		}
		return nil
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results [request-id]",
	Short: "Show the collected results of a research request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requestID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		results, err := st.ListResearchResults(requestID)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Printf("No results for request #%d.\n", requestID)
			return nil
		}

		for _, r := range results {
			fmt.Printf("[%d] %s\n", r.ID, r.SourceTitle)
			fmt.Printf("    %s (query: %s)\n", r.SourceURL, r.QueryUsed)
			if r.FullContent != nil {
				fmt.Printf("    Content: %d chars\n", len(*r.FullContent))
			} else if r.Snippet != "" {
				fmt.Printf("    Snippet: %s\n", r.Snippet)
			}
		}
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVarP(&researchPriority, "priority", "p", "medium", "request priority (urgent, high, medium, low)")
}
