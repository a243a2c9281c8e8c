package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/datecalc"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight <date>",
	Short: "Toggle the highlight mark of an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runHighlight,
}

func runHighlight(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	date, err := datecalc.ParseDate(args[0], s.now())
	if err != nil {
		return err
	}

	// Focus first so the toggle refreshes the entry as well as the list.
	if err := check(s.orch.FetchOne(ctx, date)); err != nil {
		return err
	}
	done := s.orch.ToggleHighlight(ctx, date)
	if err := check(done); err != nil {
		return err
	}

	if e := s.store().State().Focused; e != nil && e.IsHighlight {
		fmt.Printf("%s %s is now highlighted.\n", highlightMark("★"), date)
	} else {
		fmt.Printf("%s is no longer highlighted.\n", date)
	}
	return nil
}
