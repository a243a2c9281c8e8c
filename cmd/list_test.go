package cmd

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/standup/internal/datecalc"
)

var dateFlag = regexp.MustCompile(`--(?:from|to)[= ]("[^"]*"|\S+)`)

func TestListExampleDatesParse(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	matches := dateFlag.FindAllStringSubmatch(listCmd.Example, -1)
	if len(matches) == 0 {
		t.Fatal("no date flags in the list examples")
	}
	for _, m := range matches {
		value := strings.Trim(m[1], `"`)
		if _, err := datecalc.ParseDate(value, now); err != nil {
			t.Errorf("example %q: %v", m[0], err)
		}
	}
}
