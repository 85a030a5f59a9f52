package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DashboardStats is the aggregate view of a user's analysis history.
type DashboardStats struct {
	TotalAnalyses     int                `json:"total_analyses"`
	AvgMatchScore     string             `json:"avg_match_score"`
	SkillsAcquired    int                `json:"skills_acquired"`
	LearningHours     int                `json:"learning_hours"`
	RecentAnalyses    Summaries          `json:"recent_analyses"`
	RecommendedSkills []RecommendedSkill `json:"recommended_skills"`
}

// AnalysisSummary is one entry of the analysis history.
// MissingSkills is nil when the backend did not send the list at all.
type AnalysisSummary struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"`
	JobTitle        string   `json:"jobTitle"`
	MatchPercentage float64  `json:"matchPercentage"`
	MissingSkills   []string `json:"missingSkills,omitempty"`
}

type RecommendedSkill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// Summaries keeps the backend order, which is most recent first.
type Summaries []AnalysisSummary

func (c *Client) DashboardStats(ctx context.Context, uid string) (*DashboardStats, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errors.New("user id is required")
	}

	q := url.Values{}
	q.Set("uid", uid)

	var raw map[string]any
	if err := c.getJSON(ctx, c.url(dashboardStatsPath), q, &raw); err != nil {
		return nil, err
	}

	return decodeDashboardStats(raw)
}

// decodeDashboardStats goes through mapstructure so numeric ids become strings.
func decodeDashboardStats(raw map[string]any) (*DashboardStats, error) {
	stats := &DashboardStats{}
	if raw == nil {
		return stats, nil
	}

	cfg := &mapstructure.DecoderConfig{
		Result:           stats,
		TagName:          "json",
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode dashboard stats: %w", err)
	}

	return stats, nil
}

func (s Summaries) Len() int {
	return len(s)
}

func (s Summaries) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, summary := range s {
		ids = append(ids, summary.ID)
	}
	return ids
}

func (s Summaries) FindByID(id string) (AnalysisSummary, bool) {
	for _, summary := range s {
		if summary.ID == id {
			return summary, true
		}
	}
	return AnalysisSummary{}, false
}

func (s Summaries) Contains(id string) bool {
	_, ok := s.FindByID(id)
	return ok
}

// Without returns a copy of the list without id, preserving order.
// removed reports whether id was present.
func (s Summaries) Without(id string) (rest Summaries, removed bool) {
	rest = make(Summaries, 0, len(s))
	for _, summary := range s {
		if summary.ID == id {
			removed = true
			continue
		}
		rest = append(rest, summary)
	}
	return rest, removed
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (s Summaries) Clone() Summaries {
	if s == nil {
		return nil
	}

	out := make(Summaries, len(s))
	for i, summary := range s {
		out[i] = summary.Clone()
	}
	return out
}

// Clone returns a copy that does not share the missing skills slice.
func (a AnalysisSummary) Clone() AnalysisSummary {
	if a.MissingSkills != nil {
		a.MissingSkills = append(make([]string, 0, len(a.MissingSkills)), a.MissingSkills...)
	}
	return a
}
