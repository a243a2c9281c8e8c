package cmd

import (
	"github.com/spf13/pflag"

	"github.com/Tiliavir/standup/internal/model"
)

// entryFlags are the content flags shared by new and edit.
type entryFlags struct {
	yesterday    string
	today        string
	blockers     string
	resolved     bool
	tags         string
	mood         int
	productivity int
	pickTags     bool
}

func (f *entryFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.yesterday, "yesterday", "y", "", "What you did yesterday")
	fs.StringVarP(&f.today, "today", "t", "", "What you plan today")
	fs.StringVarP(&f.blockers, "blockers", "b", "", "What blocks you")
	fs.BoolVar(&f.resolved, "resolved", false, "Mark the blocker as resolved")
	fs.StringVar(&f.tags, "tags", "", "Comma-separated tags")
	fs.IntVar(&f.mood, "mood", 0, "Mood from 1 to 5")
	fs.IntVar(&f.productivity, "productivity", 0, "Productivity from 1 to 5")
	fs.BoolVar(&f.pickTags, "pick-tags", false, "Choose tags interactively with suggestions")
}

var contentFlags = []string{"yesterday", "today", "blockers", "resolved", "tags", "mood", "productivity"}

// changed reports whether any content flag was set.
func (f *entryFlags) changed(fs *pflag.FlagSet) bool {
	for _, name := range contentFlags {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// payload returns the fields whose flags were set on the command line, so
// an update only touches what the user asked for.
func (f *entryFlags) payload(fs *pflag.FlagSet) model.EntryPayload {
	var p model.EntryPayload
	if fs.Changed("yesterday") {
		p.Yesterday = &f.yesterday
	}
	if fs.Changed("today") {
		p.Today = &f.today
	}
	if fs.Changed("blockers") {
		p.Blockers = &f.blockers
	}
	if fs.Changed("resolved") {
		p.IsBlockerResolved = &f.resolved
	}
	if fs.Changed("tags") {
		p.Tags = model.SplitTags(f.tags)
	}
	if fs.Changed("mood") {
		p.Mood = &f.mood
	}
	if fs.Changed("productivity") {
		p.Productivity = &f.productivity
	}
	return p
}
