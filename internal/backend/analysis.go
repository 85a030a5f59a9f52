package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// AnalyzeRequest is the payload of POST /api/analyze/.
type AnalyzeRequest struct {
	TargetRole  string   `json:"target_role"`
	Skills      []string `json:"skills"`
	ResumeText  string   `json:"resume_text"`
	FirebaseUID string   `json:"firebase_uid,omitempty"`
}

// AnalysisDetail is the full result of one analysis.
type AnalysisDetail struct {
	Role            string           `json:"role"`
	MatchPercentage float64          `json:"match_percentage"`
	MatchedSkills   []string         `json:"matched_skills"`
	MissingSkills   []string         `json:"missing_skills"`
	Recommendations []Recommendation `json:"recommendations"`
	TotalRequired   int              `json:"total_required,omitempty"`
	TotalMatched    int              `json:"total_matched,omitempty"`
}

// Recommendation is a learning resource for one missing skill.
type Recommendation struct {
	Skill      string `json:"skill"`
	Resource   string `json:"resource"`
	Link       string `json:"link"`
	Type       string `json:"type,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Analyze submits a new analysis. The backend stores it in the history when
// FirebaseUID is set.
func (c *Client) Analyze(ctx context.Context, payload AnalyzeRequest) (*AnalysisDetail, error) {
	if payload.Skills == nil {
		payload.Skills = []string{}
	}

	var detail *AnalysisDetail
	if err := c.postJSON(ctx, c.url(analyzePath), payload, &detail); err != nil {
		return nil, err
	}

	if detail == nil {
		return nil, errors.New("analyze: backend returned an empty result")
	}

	return detail, nil
}

func (c *Client) GetAnalysis(ctx context.Context, id string) (*AnalysisDetail, error) {
	path, err := analysisURL(id)
	if err != nil {
		return nil, err
	}

	var detail *AnalysisDetail
	if err := c.getJSON(ctx, c.url(path), nil, &detail); err != nil {
		return nil, err
	}

	if detail == nil {
		return nil, ErrNotFound
	}

	return detail, nil
}

func (c *Client) DeleteAnalysis(ctx context.Context, id string) error {
	path, err := analysisURL(id)
	if err != nil {
		return err
	}

	return c.delete(ctx, c.url(path))
}

func analysisURL(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("analysis id is required")
	}
	return analysisPath + url.PathEscape(id) + "/", nil
}
