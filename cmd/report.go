package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/standup/internal/datecalc"
	"github.com/Tiliavir/standup/internal/model"
	"github.com/Tiliavir/standup/internal/tags"
)

var (
	reportWeekOf string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a week of standups",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportWeekOf, "week-of", "", "Any day of the week to report (default this week)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, json")
}

// weekReport is the digest of one ISO week.
type weekReport struct {
	Week       string           `json:"week"`
	From       string           `json:"from"`
	To         string           `json:"to"`
	Recorded   []string         `json:"recorded"`
	Missing    []string         `json:"missingWorkdays"`
	Highlights []string         `json:"highlights"`
	Blockers   []weekBlocker    `json:"blockers"`
	Tags       []model.TagCount `json:"tags"`
	AvgMood    float64          `json:"averageMood"`
}

type weekBlocker struct {
	Date     string `json:"date"`
	Text     string `json:"text"`
	Resolved bool   `json:"resolved"`
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	day := s.now()
	if reportWeekOf != "" {
		date, err := datecalc.ParseDate(reportWeekOf, day)
		if err != nil {
			return err
		}
		if day, err = time.ParseInLocation(model.DateLayout, date, s.loc); err != nil {
			return err
		}
	}

	from, to := datecalc.WeekRange(day)
	filter := model.ListFilter{From: datecalc.Format(from), To: datecalc.Format(to)}
	if err := check(s.orch.FetchAll(cmd.Context(), filter)); err != nil {
		return err
	}
	r := buildWeekReport(s.store().State().Entries, day)

	switch reportFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "md":
		var b strings.Builder
		writeWeekReport(&b, r)
		fmt.Print(renderMarkdown(b.String()))
		return nil
	}
	return fmt.Errorf("unknown format %q (want md or json)", reportFormat)
}

// buildWeekReport digests the entries of the week containing day. Entries
// outside that week are ignored.
func buildWeekReport(entries []*model.Entry, day time.Time) weekReport {
	from, to := datecalc.WeekRange(day)
	r := weekReport{
		Week:       datecalc.ISOWeekLabel(day),
		From:       datecalc.Format(from),
		To:         datecalc.Format(to),
		Recorded:   []string{},
		Missing:    []string{},
		Highlights: []string{},
		Blockers:   []weekBlocker{},
	}

	var inWeek []*model.Entry
	for _, e := range entries {
		if e.Date >= r.From && e.Date <= r.To {
			inWeek = append(inWeek, e)
		}
	}
	slices.SortFunc(inWeek, func(a, b *model.Entry) int { return strings.Compare(a.Date, b.Date) })

	var moodSum, moodN int
	seen := make(map[string]bool, len(inWeek))
	for _, e := range inWeek {
		seen[e.Date] = true
		r.Recorded = append(r.Recorded, e.Date)
		if e.IsHighlight {
			r.Highlights = append(r.Highlights, e.Date)
		}
		if strings.TrimSpace(e.Blockers) != "" {
			r.Blockers = append(r.Blockers, weekBlocker{Date: e.Date, Text: firstLine(e.Blockers), Resolved: e.IsBlockerResolved})
		}
		if e.Mood > 0 {
			moodSum += e.Mood
			moodN++
		}
	}
	if moodN > 0 {
		r.AvgMood = float64(moodSum) / float64(moodN)
	}
	for d := from; d.Weekday() != time.Saturday; d = d.AddDate(0, 0, 1) {
		if date := datecalc.Format(d); !seen[date] {
			r.Missing = append(r.Missing, date)
		}
	}
	r.Tags = tags.BuildIndex(inWeek).Counts()
	return r
}

func writeWeekReport(w io.Writer, r weekReport) {
	fmt.Fprintf(w, "# Week %s\n\n", r.Week)
	fmt.Fprintf(w, "%s to %s: %d standups recorded", r.From, r.To, len(r.Recorded))
	if r.AvgMood > 0 {
		fmt.Fprintf(w, ", average mood %.1f", r.AvgMood)
	}
	fmt.Fprint(w, ".\n\n")

	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "**Missing workdays:** %s\n\n", strings.Join(r.Missing, ", "))
	}
	if len(r.Highlights) > 0 {
		fmt.Fprintf(w, "**Highlights:** %s\n\n", strings.Join(r.Highlights, ", "))
	}
	if len(r.Blockers) > 0 {
		fmt.Fprint(w, "## Blockers\n\n")
		for _, b := range r.Blockers {
			box := "[ ]"
			if b.Resolved {
				box = "[x]"
			}
			fmt.Fprintf(w, "- %s %s: %s\n", box, b.Date, b.Text)
		}
		fmt.Fprintln(w)
	}
	if len(r.Tags) > 0 {
		fmt.Fprint(w, "## Tags\n\n")
		for _, tc := range r.Tags {
			fmt.Fprintf(w, "- %s (%d)\n", tc.Tag, tc.Count)
		}
	}
}
