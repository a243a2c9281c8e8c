package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/standup/internal/model"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries as csv, json, md, yaml or xlsx",
	Example: heredoc.Doc(`
		standup export --week --format md
		standup export --from 2024-01-01 --to 2024-03-31 --format xlsx --out q1.xlsx
	`),
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md, yaml, xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout (required for xlsx)")
	// The filter flags are shared with list.
	exportCmd.Flags().StringVar(&listFrom, "from", "", "Earliest date")
	exportCmd.Flags().StringVar(&listTo, "to", "", "Latest date")
	exportCmd.Flags().BoolVar(&listWeek, "week", false, "Only this week's entries")
	exportCmd.Flags().StringVar(&listTag, "tag", "", "Only entries with this tag")
	exportCmd.Flags().BoolVar(&listHighlight, "highlight", false, "Only highlighted entries")
	exportCmd.Flags().BoolVar(&listOffline, "offline", false, "Export the local cache instead of the service")
}

func runExport(cmd *cobra.Command, args []string) error {
	write, ok := exporters[exportFormat]
	if !ok {
		return fmt.Errorf("unknown format %q (want csv, json, md, yaml or xlsx)", exportFormat)
	}
	if exportFormat == "xlsx" && exportOut == "" {
		return errors.New("xlsx export needs --out")
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	filter, err := buildFilter(s)
	if err != nil {
		return err
	}
	var entries []*model.Entry
	if listOffline {
		if entries, err = s.cache.Load(cmd.Context(), filter); err != nil {
			return err
		}
	} else {
		if err := check(s.orch.FetchAll(cmd.Context(), filter)); err != nil {
			return err
		}
		entries = s.store().State().Entries
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := write(w, records(entries)); err != nil {
		return fmt.Errorf("writing %s: %w", exportFormat, err)
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(entries), exportOut)
	}
	return nil
}

// record is the flat export shape of an entry.
type record struct {
	Date            string   `json:"date" yaml:"date"`
	Yesterday       string   `json:"yesterday" yaml:"yesterday"`
	Today           string   `json:"today" yaml:"today"`
	Blockers        string   `json:"blockers" yaml:"blockers"`
	BlockerResolved bool     `json:"blockerResolved" yaml:"blocker_resolved"`
	Tags            []string `json:"tags" yaml:"tags"`
	Mood            int      `json:"mood" yaml:"mood"`
	Productivity    int      `json:"productivity" yaml:"productivity"`
	Highlight       bool     `json:"highlight" yaml:"highlight"`
}

var columns = []string{"date", "yesterday", "today", "blockers", "blocker_resolved", "tags", "mood", "productivity", "highlight"}

func (r record) fields() []string {
	return []string{
		r.Date,
		r.Yesterday,
		r.Today,
		r.Blockers,
		strconv.FormatBool(r.BlockerResolved),
		strings.Join(r.Tags, " "),
		strconv.Itoa(r.Mood),
		strconv.Itoa(r.Productivity),
		strconv.FormatBool(r.Highlight),
	}
}

func records(entries []*model.Entry) []record {
	out := make([]record, 0, len(entries))
	for _, e := range entries {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, record{
			Date:            e.Date,
			Yesterday:       e.Yesterday,
			Today:           e.Today,
			Blockers:        e.Blockers,
			BlockerResolved: e.IsBlockerResolved,
			Tags:            tags,
			Mood:            e.Mood,
			Productivity:    e.Productivity,
			Highlight:       e.IsHighlight,
		})
	}
	return out
}

var exporters = map[string]func(io.Writer, []record) error{
	"csv":  writeCSV,
	"json": writeJSON,
	"md":   writeMarkdown,
	"yaml": writeYAML,
	"xlsx": writeXLSX,
}

func writeCSV(w io.Writer, recs []record) error {
	if _, err := fmt.Fprintln(w, strings.Join(columns, ",")); err != nil {
		return err
	}
	for _, r := range recs {
		fields := r.fields()
		for i, f := range fields {
			fields[i] = csvEscape(f)
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeJSON(w io.Writer, recs []record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

func writeYAML(w io.Writer, recs []record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return err
	}
	return enc.Close()
}

// writeMarkdown renders one section per entry, newest first as listed.
func writeMarkdown(w io.Writer, recs []record) error {
	for i, r := range recs {
		if i > 0 {
			if _, err := fmt.Fprintln(w, "---"); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
		e := &model.Entry{
			Date:              r.Date,
			Yesterday:         r.Yesterday,
			Today:             r.Today,
			Blockers:          r.Blockers,
			IsBlockerResolved: r.BlockerResolved,
			Tags:              r.Tags,
			Mood:              r.Mood,
			Productivity:      r.Productivity,
			IsHighlight:       r.Highlight,
		}
		if _, err := io.WriteString(w, entryMarkdown(e)); err != nil {
			return err
		}
	}
	return nil
}

const xlsxSheet = "Standups"

func writeXLSX(w io.Writer, recs []record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last, bold); err != nil {
		return err
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.Date, r.Yesterday, r.Today, r.Blockers, r.BlockerResolved,
			strings.Join(r.Tags, " "), r.Mood, r.Productivity, r.Highlight,
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(xlsxSheet, "B", "D", 40); err != nil {
		return err
	}
	return f.Write(w)
}
