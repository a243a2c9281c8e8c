package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/model"
	"github.com/Tiliavir/standup/internal/tags"
)

var (
	tagsTop     int
	tagsOffline bool
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags by how often they are used",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

func init() {
	tagsCmd.Flags().IntVarP(&tagsTop, "top", "n", 0, "Only the n most used tags")
	tagsCmd.Flags().BoolVar(&tagsOffline, "offline", false, "Count tags in the local cache only")
}

func runTags(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	if !tagsOffline {
		if err := check(s.orch.FetchAll(cmd.Context(), model.ListFilter{})); err != nil {
			return err
		}
	}
	counts := tags.BuildIndex(s.store().State().Entries).Counts()
	if tagsTop > 0 && len(counts) > tagsTop {
		counts = counts[:tagsTop]
	}
	printTagCounts(os.Stdout, counts)
	return nil
}

func printTagCounts(w io.Writer, counts []model.TagCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No tags yet.")
		return
	}
	tbl := uitable.New()
	tbl.RightAlign(1)
	for _, tc := range counts {
		tbl.AddRow(tc.Tag, tc.Count)
	}
	fmt.Fprintln(w, tbl)
}
