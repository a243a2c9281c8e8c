package cmd

import (
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/datecalc"
	"github.com/Tiliavir/standup/internal/model"
)

var (
	newFlags entryFlags
	newForce bool
)

var newCmd = &cobra.Command{
	Use:   "new [date]",
	Short: "Record a standup (today unless a date is given)",
	Long: heredoc.Doc(`
		Record a standup entry. There is one entry per day; recording a day
		that already has an entry replaces it after confirmation.
	`),
	Example: heredoc.Doc(`
		standup new -y "reviewed PRs" -t "ship the importer" --tags api,backend --mood 4
		standup new yesterday -t "on-call" --pick-tags
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: runNew,
}

func init() {
	newFlags.register(newCmd.Flags())
	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "Replace an existing entry without asking")
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	dateArg := ""
	if len(args) == 1 {
		dateArg = args[0]
	}
	date, err := datecalc.ParseDate(dateArg, s.now())
	if err != nil {
		return err
	}

	if !newFlags.changed(cmd.Flags()) && !newFlags.pickTags {
		return errors.New("nothing to record: pass at least one of --yesterday, --today, --blockers, --tags")
	}

	p := newFlags.payload(cmd.Flags())
	p.Date = date
	if err := p.Validate(true); err != nil {
		return err
	}
	if newFlags.pickTags {
		if p.Tags, err = pickTags(ctx, s, p.Tags); err != nil {
			return err
		}
	}

	if !newForce {
		if err := check(s.orch.FetchAll(ctx, model.ListFilter{From: date, To: date})); err != nil {
			return err
		}
		if s.store().State().Find(date) != nil {
			ok, err := confirm(fmt.Sprintf("An entry for %s already exists. Replace it?", date))
			if err != nil {
				return err
			}
			if !ok {
				return errCancelled
			}
		}
	}

	if err := check(s.orch.Create(ctx, p)); err != nil {
		return err
	}
	if s.store().ConsumeSuccess() {
		fmt.Printf("Recorded standup for %s.\n", date)
	}
	return nil
}
