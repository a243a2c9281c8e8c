package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/datecalc"
	"github.com/Tiliavir/standup/internal/model"
)

var (
	showCopy  bool
	showPlain bool
)

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show one entry (pick interactively when no date is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showCopy, "copy", false, "Copy the entry as markdown to the clipboard")
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Print raw markdown")
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	var date string
	if len(args) == 1 {
		if date, err = datecalc.ParseDate(args[0], s.now()); err != nil {
			return err
		}
	} else {
		if date, err = pickEntry(cmd.Context(), s, "show> "); err != nil {
			return err
		}
	}

	if err := check(s.orch.FetchOne(cmd.Context(), date)); err != nil {
		return err
	}
	md := entryMarkdown(s.store().State().Focused)
	if showPlain {
		fmt.Print(md)
	} else {
		fmt.Print(renderMarkdown(md))
	}
	if showCopy {
		if err := clipboard.WriteAll(md); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Copied to clipboard.")
	}
	return nil
}

// pickEntry lets the user fuzzy-find an entry from the current collection
// and returns its date.
func pickEntry(ctx context.Context, s *session, prompt string) (string, error) {
	if done := s.orch.FetchAll(ctx, model.ListFilter{}); !done.OK() {
		// The cached collection is still usable.
		logger.Warn("listing entries for picker", "error", done.Err)
	}
	entries := s.store().State().Entries
	if len(entries) == 0 {
		return "", errors.New("no entries to pick from")
	}
	idx, err := fuzzyfinder.Find(entries,
		func(i int) string {
			e := entries[i]
			return fmt.Sprintf("%s  %s  %s", e.Date, firstLine(e.Today), strings.Join(e.Tags, " "))
		},
		fuzzyfinder.WithPromptString(prompt),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return entryMarkdown(entries[i])
		}),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return "", errors.New("no entry selected")
	}
	if err != nil {
		return "", err
	}
	return entries[idx].Date, nil
}
