package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/standup/internal/model"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func sampleRecords() []record {
	return records([]*model.Entry{
		{Date: "2024-01-05", Today: "ship, then rest", Tags: []string{"api", "db"}, Mood: 4, IsHighlight: true},
		{Date: "2024-01-04", Yesterday: "review", Blockers: "ci", IsBlockerResolved: true},
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCSV(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"date,yesterday,today,blockers,blocker_resolved,tags,mood,productivity,highlight",
		`2024-01-05,,"ship, then rest",,false,api db,4,0,true`,
		"2024-01-04,review,,ci,true,,0,0,false",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteJSONKeepsEmptyTags(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if tags, ok := got[1]["tags"].([]any); !ok || len(tags) != 0 {
		t.Errorf("tags of second record = %#v, want empty list", got[1]["tags"])
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeYAML(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	var got []record
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got[1].BlockerResolved || got[0].Today != "ship, then rest" {
		t.Errorf("yaml round trip = %+v", got)
	}
	if !strings.Contains(buf.String(), "blocker_resolved: true") {
		t.Errorf("yaml keys:\n%s", buf.String())
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := writeMarkdown(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Standup 2024-01-05 ★",
		"## Today\n\nship, then rest",
		"**Tags:** `api` `db`",
		"---",
		"## Blockers (resolved)\n\nci",
		"## Yesterday\n\n_nothing noted_",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := writeXLSX(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "date" || rows[1][0] != "2024-01-05" || rows[1][5] != "api db" {
		t.Errorf("rows = %v", rows)
	}
}
