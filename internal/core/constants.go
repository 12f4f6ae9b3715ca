package core

// Date layouts for imported lead timestamps
const (
	// ImportDateLayout matches the scraper's export format, e.g.
	// "2025-03-07T14:30:00.000-04:00".
	ImportDateLayout = "2006-01-02T15:04:05.000-07:00"
	// DisplayDateLayout is the human-readable rendering, e.g. "March 07, 2025".
	DisplayDateLayout = "January 02, 2006"
)

// Aggregation defaults
const (
	DefaultActivityWindowDays = 30
	MaxSubredditBuckets       = 10
)

// Report formatting
const (
	ReportTimestampLayout = "2006-01-02 15:04:05"
)
