package store

// Status is a lead's position in the outreach pipeline.
type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusContacted  Status = "Contacted"
	StatusClosed     Status = "Closed"
)

// StatusOrder is the pipeline order. Distributions, funnels and conversion
// rates all report statuses in this order.
var StatusOrder = []Status{StatusNew, StatusInProgress, StatusContacted, StatusClosed}

// ValidStatus reports whether s is one of the recognized pipeline statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusContacted, StatusClosed:
		return true
	}
	return false
}

type Lead struct {
	Summary         string
	LowHangingFruit string
	OriginalPost    string
	Solution        string
	// PostedDate is kept as the raw timestamp text from the import.
	// Parsing happens at display and aggregation time.
	PostedDate string
	// URL identifies the lead. It is unique across the table.
	URL       string
	Subreddit string
	Status    Status
	Notes     string
}
