package core

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/seckatie/leadtrackd/internal/core/store"
)

// Distribution pairs chart labels with their counts.
type Distribution struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// DailyActivity is the per-day lead count over the activity window,
// oldest day first, zero-filled for days with no leads.
type DailyActivity struct {
	Dates  []string `json:"dates"`
	Counts []int    `json:"counts"`
}

// FunnelStage is one pipeline stage. Count is cumulative: how many leads
// reached this stage or a later one.
type FunnelStage struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ConversionRates are stage-to-stage percentages computed from the current
// status buckets. A rate is 0 when its source bucket is empty.
type ConversionRates struct {
	NewToProgress       float64 `json:"new_to_progress"`
	ProgressToContacted float64 `json:"progress_to_contacted"`
	ContactedToClosed   float64 `json:"contacted_to_closed"`
}

// ResponseStats summarize note-taking across the table. AvgNotesLength is the
// mean rune count over leads that have notes.
type ResponseStats struct {
	LeadsWithNotes  int     `json:"leads_with_notes"`
	NotesPercentage float64 `json:"notes_percentage"`
	AvgNotesLength  float64 `json:"avg_notes_length"`
}

// Snapshot bundles every aggregation for the analytics surface. All parts are
// computed from the same copy of the table.
type Snapshot struct {
	StatusDistribution    Distribution    `json:"status_distribution"`
	SubredditDistribution Distribution    `json:"subreddit_distribution"`
	DailyActivity         DailyActivity   `json:"daily_activity"`
	ConversionRates       ConversionRates `json:"conversion_rates"`
	ResponseStats         ResponseStats   `json:"response_stats"`
	FunnelData            []FunnelStage   `json:"funnel_data"`
}

// Analytics computes aggregations over a repository. Each call takes its own
// snapshot of the table; results are plain values with no reference back into
// the repository.
type Analytics struct {
	repo       *store.Repository
	windowDays int
}

// NewAnalytics wraps a repository. windowDays bounds the daily-activity
// window; values <= 0 fall back to the default.
func NewAnalytics(repo *store.Repository, windowDays int) *Analytics {
	if windowDays <= 0 {
		windowDays = DefaultActivityWindowDays
	}
	return &Analytics{repo: repo, windowDays: windowDays}
}

// StatusDistribution counts leads per pipeline status, always reporting all
// four statuses in pipeline order with zero-filled counts.
func (a *Analytics) StatusDistribution() Distribution {
	return statusDistribution(a.repo.Leads())
}

// SubredditDistribution counts leads per subreddit, descending, capped at the
// top ten. First appearance in the table breaks count ties.
func (a *Analytics) SubredditDistribution() Distribution {
	return subredditDistribution(a.repo.Leads())
}

// DailyActivity counts leads per calendar day over the activity window.
func (a *Analytics) DailyActivity() DailyActivity {
	return dailyActivity(a.repo.Leads(), a.windowDays, time.Now())
}

// Funnel reports cumulative reach per pipeline stage.
func (a *Analytics) Funnel() []FunnelStage {
	return funnel(a.repo.Leads())
}

// ConversionRates reports stage-to-stage conversion percentages.
func (a *Analytics) ConversionRates() ConversionRates {
	return conversionRates(statusCounts(a.repo.Leads()))
}

// ResponseStats reports note-taking coverage.
func (a *Analytics) ResponseStats() ResponseStats {
	return responseStats(a.repo.Leads())
}

// Snapshot computes every aggregation from one copy of the table.
func (a *Analytics) Snapshot() Snapshot {
	leads := a.repo.Leads()
	return Snapshot{
		StatusDistribution:    statusDistribution(leads),
		SubredditDistribution: subredditDistribution(leads),
		DailyActivity:         dailyActivity(leads, a.windowDays, time.Now()),
		ConversionRates:       conversionRates(statusCounts(leads)),
		ResponseStats:         responseStats(leads),
		FunnelData:            funnel(leads),
	}
}

func statusCounts(leads []store.Lead) map[store.Status]int {
	counts := make(map[store.Status]int, len(store.StatusOrder))
	for _, l := range leads {
		counts[l.Status]++
	}
	return counts
}

func statusDistribution(leads []store.Lead) Distribution {
	counts := statusCounts(leads)
	d := Distribution{
		Labels: make([]string, 0, len(store.StatusOrder)),
		Values: make([]int, 0, len(store.StatusOrder)),
	}
	for _, s := range store.StatusOrder {
		d.Labels = append(d.Labels, string(s))
		d.Values = append(d.Values, counts[s])
	}
	return d
}

func subredditDistribution(leads []store.Lead) Distribution {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, l := range leads {
		if _, seen := counts[l.Subreddit]; !seen {
			order = append(order, l.Subreddit)
		}
		counts[l.Subreddit]++
	}

	// Descending by count; encounter order breaks ties.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > MaxSubredditBuckets {
		order = order[:MaxSubredditBuckets]
	}

	d := Distribution{
		Labels: make([]string, 0, len(order)),
		Values: make([]int, 0, len(order)),
	}
	for _, s := range order {
		d.Labels = append(d.Labels, s)
		d.Values = append(d.Values, counts[s])
	}
	return d
}

// leadDateLayouts are tried in order when bucketing daily activity. The
// import layout comes first; RFC3339 and bare dates cover hand-edited files.
var leadDateLayouts = []string{ImportDateLayout, time.RFC3339, "2006-01-02"}

// parseLeadDate parses a lead timestamp for aggregation. Unparseable values
// report ok=false and are skipped rather than failing the whole aggregation.
func parseLeadDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range leadDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dailyActivity(leads []store.Lead, windowDays int, now time.Time) DailyActivity {
	activity := DailyActivity{Dates: []string{}, Counts: []int{}}
	if len(leads) == 0 {
		return activity
	}

	// Leads are bucketed on the calendar day written in their timestamp;
	// the offset is kept, not converted.
	perDay := make(map[string]int)
	for _, l := range leads {
		t, ok := parseLeadDate(l.PostedDate)
		if !ok {
			continue
		}
		perDay[t.Format("2006-01-02")]++
	}

	start := now.AddDate(0, 0, -windowDays)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	for !day.After(end) {
		key := day.Format("2006-01-02")
		activity.Dates = append(activity.Dates, key)
		activity.Counts = append(activity.Counts, perDay[key])
		day = day.AddDate(0, 0, 1)
	}
	return activity
}

func funnel(leads []store.Lead) []FunnelStage {
	counts := statusCounts(leads)
	total := len(leads)

	stages := make([]FunnelStage, 0, len(store.StatusOrder))
	remaining := total
	for _, s := range store.StatusOrder {
		percentage := 0.0
		if total > 0 {
			percentage = float64(remaining) / float64(total) * 100
		}
		stages = append(stages, FunnelStage{
			Status:     string(s),
			Count:      remaining,
			Percentage: percentage,
		})
		remaining -= counts[s]
	}
	return stages
}

func conversionRates(counts map[store.Status]int) ConversionRates {
	rate := func(from, to store.Status) float64 {
		if counts[from] == 0 {
			return 0
		}
		return float64(counts[to]) / float64(counts[from]) * 100
	}
	return ConversionRates{
		NewToProgress:       rate(store.StatusNew, store.StatusInProgress),
		ProgressToContacted: rate(store.StatusInProgress, store.StatusContacted),
		ContactedToClosed:   rate(store.StatusContacted, store.StatusClosed),
	}
}

func responseStats(leads []store.Lead) ResponseStats {
	var withNotes, totalLen int
	for _, l := range leads {
		if l.Notes == "" {
			continue
		}
		withNotes++
		totalLen += utf8.RuneCountInString(l.Notes)
	}

	stats := ResponseStats{LeadsWithNotes: withNotes}
	if len(leads) > 0 {
		stats.NotesPercentage = float64(withNotes) / float64(len(leads)) * 100
	}
	if withNotes > 0 {
		stats.AvgNotesLength = float64(totalLen) / float64(withNotes)
	}
	return stats
}
