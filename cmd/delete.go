package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/datecalc"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete <date>",
	Aliases: []string{"rm"},
	Short:   "Delete the entry for a date",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	date, err := datecalc.ParseDate(args[0], s.now())
	if err != nil {
		return err
	}

	if !deleteYes {
		ok, err := confirm(fmt.Sprintf("Delete the standup for %s?", date))
		if err != nil {
			return err
		}
		if !ok {
			return errCancelled
		}
	}

	if err := check(s.orch.Delete(cmd.Context(), date)); err != nil {
		return err
	}
	fmt.Printf("Deleted standup for %s.\n", date)
	return nil
}
