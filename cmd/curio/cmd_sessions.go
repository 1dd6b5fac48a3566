package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent learning sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.ListRecentSessions(sessionLimit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No learning sessions recorded yet.")
			return nil
		}

		for _, s := range sessions {
			topic := s.TopicChosen
			if topic == "" {
				topic = "(no topic)"
			}
			fmt.Printf("[%d] [%s] %s %s\n", s.ID, s.Status, s.StartedAt.Format("2006-01-02 15:04"), topic)
			fmt.Printf("    insights=%d questions=%d new-interests=%d duration=%ds\n",
				s.InsightsCount, s.NewQuestionsCount, s.NewInterestsSparked, s.DurationSeconds)
			if s.ErrorMessage != "" {
				fmt.Printf("    Error: %s\n", s.ErrorMessage)
			}
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().IntVarP(&sessionLimit, "limit", "l", 10, "maximum sessions to list")
}
