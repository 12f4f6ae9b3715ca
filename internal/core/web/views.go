package web

import (
	"github.com/seckatie/leadtrackd/internal/core"
	"github.com/seckatie/leadtrackd/internal/core/store"
)

type leadView struct {
	Summary         string `json:"summary"`
	LowHangingFruit string `json:"lowHangingFruit"`
	OriginalPost    string `json:"originalPost"`
	Solution        string `json:"solution"`
	Date            string `json:"date"`
	DateDisplay     string `json:"dateDisplay"`
	URL             string `json:"url"`
	Subreddit       string `json:"subreddit"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
}

func newLeadView(l store.Lead) leadView {
	return leadView{
		Summary:         l.Summary,
		LowHangingFruit: l.LowHangingFruit,
		OriginalPost:    l.OriginalPost,
		Solution:        l.Solution,
		Date:            l.PostedDate,
		DateDisplay:     core.FormatDate(l.PostedDate),
		URL:             l.URL,
		Subreddit:       l.Subreddit,
		Status:          string(l.Status),
		Notes:           l.Notes,
	}
}

func newLeadViews(leads []store.Lead) []leadView {
	views := make([]leadView, 0, len(leads))
	for _, l := range leads {
		views = append(views, newLeadView(l))
	}
	return views
}

type syncResultView struct {
	Total     int `json:"total"`
	Preserved int `json:"preserved"`
	Added     int `json:"added"`
}

type bulkResultView struct {
	Updated int `json:"updated"`
}

type missingFieldsResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields"`
}
