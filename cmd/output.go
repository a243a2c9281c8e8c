package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/Tiliavir/standup/internal/model"
)

var (
	highlightMark = color.New(color.FgYellow, color.Bold).SprintFunc()
	blockerMark   = color.New(color.FgRed).SprintFunc()
	dimmed        = color.New(color.Faint).SprintFunc()
)

// printEntries writes one row per entry.
func printEntries(w io.Writer, entries []*model.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(dimmed("DATE"), "", dimmed("TODAY"), dimmed("TAGS"), dimmed("MOOD"))
	for _, e := range entries {
		tbl.AddRow(e.Date, marks(e), firstLine(e.Today), strings.Join(e.Tags, ", "), rating(e.Mood))
	}
	fmt.Fprintln(w, tbl)
}

func marks(e *model.Entry) string {
	var m string
	if e.IsHighlight {
		m += highlightMark("★")
	}
	if e.HasBlocker() {
		m += blockerMark("!")
	}
	return m
}

func rating(v int) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", v, model.MaxRating)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// entryMarkdown renders an entry as a markdown document.
func entryMarkdown(e *model.Entry) string {
	var b strings.Builder
	title := "Standup " + e.Date
	if e.IsHighlight {
		title += " ★"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	section(&b, "Yesterday", e.Yesterday)
	section(&b, "Today", e.Today)
	if strings.TrimSpace(e.Blockers) != "" {
		heading := "Blockers"
		if e.IsBlockerResolved {
			heading += " (resolved)"
		}
		section(&b, heading, e.Blockers)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", "`"+strings.Join(e.Tags, "` `")+"`")
	}
	if e.Mood > 0 || e.Productivity > 0 {
		fmt.Fprintf(&b, "**Mood:** %s · **Productivity:** %s\n", rating(e.Mood), rating(e.Productivity))
	}
	return b.String()
}

func section(b *strings.Builder, heading, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		body = "_nothing noted_"
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", heading, body)
}

// renderMarkdown styles md for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
