// Package export writes analysis reports out of the client and builds share links.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spigell/skillsight/internal/backend"
)

// Report is the exported form of an analysis. Either Summary or Detail is
// set, depending on what the client had at hand.
type Report struct {
	ID         string                   `json:"id,omitempty"`
	JobTitle   string                   `json:"job_title"`
	Summary    *backend.AnalysisSummary `json:"summary,omitempty"`
	Detail     *backend.AnalysisDetail  `json:"detail,omitempty"`
	ExportedAt time.Time                `json:"exported_at"`
}

// Exporter stores a report and returns where it went.
type Exporter interface {
	Export(ctx context.Context, report Report) (string, error)
}

// SummaryReport builds a report of a dashboard entry.
func SummaryReport(summary backend.AnalysisSummary) Report {
	s := summary
	return Report{
		ID:         summary.ID,
		JobTitle:   summary.JobTitle,
		Summary:    &s,
		ExportedAt: time.Now().UTC(),
	}
}

// DetailReport builds a report of a full analysis. id may be empty for
// results that were never stored.
func DetailReport(id string, detail *backend.AnalysisDetail) Report {
	return Report{
		ID:         id,
		JobTitle:   detail.Role,
		Detail:     detail,
		ExportedAt: time.Now().UTC(),
	}
}

func (r Report) encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return append(data, '\n'), nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// name returns a file name stem like "skillsight_data-scientist_12".
func (r Report) name() string {
	parts := []string{"skillsight"}
	if slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(r.JobTitle), "-"), "-"); slug != "" {
		parts = append(parts, slug)
	}
	if id := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(r.ID), "-"), "-"); id != "" {
		parts = append(parts, id)
	}
	return strings.Join(parts, "_")
}
