package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/datecalc"
	"github.com/Tiliavir/standup/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether today's standup is recorded",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	now := s.now()
	today := datecalc.Format(now)

	if err := check(s.orch.FetchAll(cmd.Context(), model.ListFilter{})); err != nil {
		return err
	}
	entries := s.store().State().Entries

	dates := make([]string, 0, len(entries))
	var open []string
	for _, e := range entries {
		dates = append(dates, e.Date)
		if e.HasBlocker() {
			open = append(open, e.Date)
		}
	}
	current, _ := datecalc.Streaks(dates, now)

	if e := s.store().State().Find(today); e != nil {
		fmt.Printf("Today (%s): recorded.\n", today)
		if e.Today != "" {
			fmt.Printf("  Plan: %s\n", firstLine(e.Today))
		}
	} else {
		fmt.Printf("Today (%s): not recorded yet. Run `standup new`.\n", today)
	}
	fmt.Printf("Streak: %s\n", days(current))
	if len(open) > 0 {
		fmt.Printf("%s Open blockers on: %v\n", blockerMark("!"), open)
	}
	return nil
}
