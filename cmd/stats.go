package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show streaks, averages and most used tags",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	if err := check(s.orch.FetchStats(cmd.Context())); err != nil {
		return err
	}
	printStats(os.Stdout, s.store().State().Stats)
	return nil
}

func printStats(w io.Writer, st *model.Stats) {
	if st == nil {
		fmt.Fprintln(w, "No statistics available.")
		return
	}
	tbl := uitable.New()
	tbl.AddRow("Entries:", st.TotalEntries)
	tbl.AddRow("Highlights:", st.HighlightCount)
	tbl.AddRow("Blockers:", fmt.Sprintf("%d (%d resolved)", st.BlockerCount, st.ResolvedBlockerCount))
	tbl.AddRow("Current streak:", days(st.CurrentStreak))
	tbl.AddRow("Longest streak:", days(st.LongestStreak))
	tbl.AddRow("Average mood:", fmt.Sprintf("%.2f", st.AverageMood))
	tbl.AddRow("Average productivity:", fmt.Sprintf("%.2f", st.AverageProductivity))
	top := make([]string, 0, len(st.TopTags))
	for _, tc := range st.TopTags {
		top = append(top, fmt.Sprintf("%s (%d)", tc.Tag, tc.Count))
	}
	if len(top) == 0 {
		top = append(top, "-")
	}
	tbl.AddRow("Top tags:", strings.Join(top, ", "))
	fmt.Fprintln(w, tbl)
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
