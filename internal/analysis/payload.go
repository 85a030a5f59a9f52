package analysis

import (
	"strings"

	"github.com/spigell/skillsight/internal/backend"
)

// BuildPayload maps a draft to the analyze request for the given tab.
// Only the active tab's input is sent; the other one is blanked.
func BuildPayload(draft Draft, tab Tab, uid string) backend.AnalyzeRequest {
	req := backend.AnalyzeRequest{
		TargetRole:  draft.JobTitle,
		Skills:      []string{},
		FirebaseUID: uid,
	}

	if tab == TabResume {
		req.ResumeText = draft.ResumeText
		return req
	}

	req.Skills = SplitSkills(draft.YourSkills)
	return req
}

// SplitSkills splits a comma separated list, trimming entries and dropping empty ones.
func SplitSkills(s string) []string {
	skills := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}
