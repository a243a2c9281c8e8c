package devserver

import (
	"math"
	"time"

	"github.com/Tiliavir/standup/internal/datecalc"
	"github.com/Tiliavir/standup/internal/model"
	"github.com/Tiliavir/standup/internal/tags"
)

const topTagCount = 5

// summarize computes the stats document. Averages only count rated entries.
func summarize(list []model.Entry, now time.Time) model.Stats {
	st := model.Stats{TotalEntries: len(list), TopTags: []model.TagCount{}}

	dates := make([]string, 0, len(list))
	ptrs := make([]*model.Entry, 0, len(list))
	var moodSum, moodN, prodSum, prodN int
	for i := range list {
		e := &list[i]
		dates = append(dates, e.Date)
		ptrs = append(ptrs, e)
		if e.IsHighlight {
			st.HighlightCount++
		}
		if e.Blockers != "" {
			st.BlockerCount++
			if e.IsBlockerResolved {
				st.ResolvedBlockerCount++
			}
		}
		if e.Mood > 0 {
			moodSum += e.Mood
			moodN++
		}
		if e.Productivity > 0 {
			prodSum += e.Productivity
			prodN++
		}
	}
	st.AverageMood = average(moodSum, moodN)
	st.AverageProductivity = average(prodSum, prodN)
	st.CurrentStreak, st.LongestStreak = datecalc.Streaks(dates, now)

	counts := tags.BuildIndex(ptrs).Counts()
	if len(counts) > topTagCount {
		counts = counts[:topTagCount]
	}
	st.TopTags = append(st.TopTags, counts...)
	return st
}

// average rounds to two decimals.
func average(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*100) / 100
}
