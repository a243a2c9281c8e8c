package cmd

import (
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/datecalc"
)

var editFlags entryFlags

var editCmd = &cobra.Command{
	Use:   "edit [date]",
	Short: "Change fields of an existing entry",
	Long: heredoc.Doc(`
		Change an existing entry. Only the fields given as flags are sent;
		everything else keeps its stored value. Without a date the entry is
		picked interactively.
	`),
	Example: heredoc.Doc(`
		standup edit 2024-01-05 --resolved
		standup edit yesterday --pick-tags
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	editFlags.register(editCmd.Flags())
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if !editFlags.changed(cmd.Flags()) && !editFlags.pickTags {
		return errors.New("nothing to change: pass the fields to update as flags")
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	var date string
	if len(args) == 1 {
		date, err = datecalc.ParseDate(args[0], s.now())
	} else {
		date, err = pickEntry(ctx, s, "edit> ")
	}
	if err != nil {
		return err
	}

	p := editFlags.payload(cmd.Flags())
	if err := p.Validate(false); err != nil {
		return err
	}
	if editFlags.pickTags {
		if err := check(s.orch.FetchOne(ctx, date)); err != nil {
			return err
		}
		seed := p.Tags
		if seed == nil {
			seed = s.store().State().Focused.Tags
		}
		if p.Tags, err = pickTags(ctx, s, seed); err != nil {
			return err
		}
	}

	done := s.orch.Update(ctx, date, p)
	if err := check(done); err != nil {
		return err
	}
	fmt.Printf("Updated standup for %s.\n", done.Key)
	return nil
}
