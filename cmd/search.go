package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/storage"
)

var (
	searchRecent bool
	searchClear  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword...>",
	Short: "Find entries mentioning a keyword",
	Long:  "Search yesterday, today, blockers and tags of every entry. Queries are remembered for --recent.",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchRecent, "recent", false, "List recent queries")
	searchCmd.Flags().BoolVar(&searchClear, "clear-history", false, "Forget recent queries")
}

func runSearch(cmd *cobra.Command, args []string) error {
	history := storage.NewHistory(storage.HistoryPath(baseDir), cfg.Search.HistorySize)

	switch {
	case searchClear:
		return history.Clear()
	case searchRecent:
		recent, err := history.Load()
		if err != nil {
			return err
		}
		if len(recent) == 0 {
			fmt.Println("No recent searches.")
		}
		for _, q := range recent {
			fmt.Println(q)
		}
		return nil
	}

	keyword := strings.TrimSpace(strings.Join(args, " "))
	if keyword == "" {
		return errors.New("missing search keyword")
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	if err := check(s.orch.Search(cmd.Context(), keyword)); err != nil {
		return err
	}
	if _, err := history.Add(keyword); err != nil {
		logger.Warn("saving search history", "error", err)
	}
	printEntries(os.Stdout, s.store().State().SearchResults)
	return nil
}
