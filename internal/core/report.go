package core

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/seckatie/leadtrackd/internal/core/store"
)

// SummaryRow is one Metric/Value line of the status report.
type SummaryRow struct {
	Metric string
	Value  string
}

// SummaryReport builds the downloadable status report: totals per status,
// conversion rates, note coverage, and a generation timestamp. Counts are
// plain integers and rates render as "12.5%".
func (a *Analytics) SummaryReport() []SummaryRow {
	leads := a.repo.Leads()
	counts := statusCounts(leads)
	conv := conversionRates(counts)
	resp := responseStats(leads)

	return []SummaryRow{
		{"Total Leads", strconv.Itoa(len(leads))},
		{"New Leads", strconv.Itoa(counts[store.StatusNew])},
		{"In Progress", strconv.Itoa(counts[store.StatusInProgress])},
		{"Contacted", strconv.Itoa(counts[store.StatusContacted])},
		{"Closed", strconv.Itoa(counts[store.StatusClosed])},
		{"New to Progress Rate", fmt.Sprintf("%.1f%%", conv.NewToProgress)},
		{"Progress to Contacted Rate", fmt.Sprintf("%.1f%%", conv.ProgressToContacted)},
		{"Contacted to Closed Rate", fmt.Sprintf("%.1f%%", conv.ContactedToClosed)},
		{"Leads with Notes", strconv.Itoa(resp.LeadsWithNotes)},
		{"Notes Coverage", fmt.Sprintf("%.1f%%", resp.NotesPercentage)},
		{"Report Generated", time.Now().Format(ReportTimestampLayout)},
	}
}

// WriteSummaryCSV writes the status report as a two-column Metric/Value CSV.
func WriteSummaryCSV(w io.Writer, rows []SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Metric", "Value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Metric, row.Value}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAnalyticsJSON writes an indented analytics snapshot.
func WriteAnalyticsJSON(w io.Writer, snapshot Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
