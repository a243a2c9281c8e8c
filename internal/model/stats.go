package model

// TagCount is one row of the most used tags.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats is the aggregate summary returned by getStats.
type Stats struct {
	TotalEntries         int        `json:"totalEntries"`
	HighlightCount       int        `json:"highlightCount"`
	BlockerCount         int        `json:"blockerCount"`
	ResolvedBlockerCount int        `json:"resolvedBlockerCount"`
	CurrentStreak        int        `json:"currentStreak"`
	LongestStreak        int        `json:"longestStreak"`
	AverageMood          float64    `json:"averageMood"`
	AverageProductivity  float64    `json:"averageProductivity"`
	TopTags              []TagCount `json:"topTags"`
}
