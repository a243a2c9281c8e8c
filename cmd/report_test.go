package cmd

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/standup/internal/model"
)

func weekEntries() []*model.Entry {
	return []*model.Entry{
		{Date: "2024-01-12"},
		{Date: "2024-01-09", Blockers: "ci\nmore", Mood: 2, Tags: []string{"api", "db"}},
		{Date: "2024-01-08", Mood: 4, Tags: []string{"api"}, IsHighlight: true},
		{Date: "2024-01-15", Tags: []string{"later"}},
		{Date: "2024-01-07", Tags: []string{"earlier"}},
	}
}

func TestBuildWeekReport(t *testing.T) {
	r := buildWeekReport(weekEntries(), time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))

	if r.Week != "2024-W02" || r.From != "2024-01-08" || r.To != "2024-01-14" {
		t.Errorf("week = %s %s..%s", r.Week, r.From, r.To)
	}
	if want := []string{"2024-01-08", "2024-01-09", "2024-01-12"}; !slices.Equal(r.Recorded, want) {
		t.Errorf("recorded = %v, want %v", r.Recorded, want)
	}
	if want := []string{"2024-01-10", "2024-01-11"}; !slices.Equal(r.Missing, want) {
		t.Errorf("missing = %v, want %v", r.Missing, want)
	}
	if !slices.Equal(r.Highlights, []string{"2024-01-08"}) {
		t.Errorf("highlights = %v", r.Highlights)
	}
	if len(r.Blockers) != 1 || r.Blockers[0] != (weekBlocker{Date: "2024-01-09", Text: "ci …"}) {
		t.Errorf("blockers = %+v", r.Blockers)
	}
	wantTags := []model.TagCount{{Tag: "api", Count: 2}, {Tag: "db", Count: 1}}
	if !slices.Equal(r.Tags, wantTags) {
		t.Errorf("tags = %v, want %v", r.Tags, wantTags)
	}
	if r.AvgMood != 3 {
		t.Errorf("average mood = %v, want 3", r.AvgMood)
	}
}

func TestWriteWeekReport(t *testing.T) {
	var b strings.Builder
	writeWeekReport(&b, buildWeekReport(weekEntries(), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	out := b.String()
	for _, want := range []string{
		"# Week 2024-W02",
		"3 standups recorded, average mood 3.0.",
		"**Missing workdays:** 2024-01-10, 2024-01-11",
		"- [ ] 2024-01-09: ci …",
		"- api (2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestEmptyWeekReport(t *testing.T) {
	var b strings.Builder
	r := buildWeekReport(nil, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	writeWeekReport(&b, r)
	if len(r.Missing) != 5 || strings.Contains(b.String(), "## Blockers") {
		t.Errorf("empty week:\n%s", b.String())
	}
}
