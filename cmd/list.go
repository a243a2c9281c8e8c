package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/datecalc"
	"github.com/Tiliavir/standup/internal/model"
)

var (
	listFrom      string
	listTo        string
	listWeek      bool
	listTag       string
	listHighlight bool
	listOffline   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List standup entries",
	Example: heredoc.Doc(`
		standup list
		standup list --week
		standup list --from=-7 --tag api
		standup list --highlight --offline
	`),
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFrom, "from", "", "Earliest date (any date format, e.g. 2024-01-05 or -7)")
	listCmd.Flags().StringVar(&listTo, "to", "", "Latest date")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Only this week's entries")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only entries with this tag")
	listCmd.Flags().BoolVar(&listHighlight, "highlight", false, "Only highlighted entries")
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Read the local cache instead of the service")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	filter, err := buildFilter(s)
	if err != nil {
		return err
	}

	if listOffline {
		entries, err := s.cache.Load(cmd.Context(), filter)
		if err != nil {
			return err
		}
		printEntries(os.Stdout, entries)
		return nil
	}

	if err := check(s.orch.FetchAll(cmd.Context(), filter)); err != nil {
		return fmt.Errorf("%w (try --offline)", err)
	}
	printEntries(os.Stdout, s.store().State().Entries)
	return nil
}

func buildFilter(s *session) (model.ListFilter, error) {
	now := s.now()
	f := model.ListFilter{Tag: listTag, Highlight: listHighlight}
	if listWeek {
		from, to := datecalc.WeekRange(now)
		f.From, f.To = datecalc.Format(from), datecalc.Format(to)
	}
	var err error
	if listFrom != "" {
		if f.From, err = datecalc.ParseDate(listFrom, now); err != nil {
			return f, err
		}
	}
	if listTo != "" {
		if f.To, err = datecalc.ParseDate(listTo, now); err != nil {
			return f, err
		}
	}
	return f, nil
}
