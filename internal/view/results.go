package view

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/viewstate"
)

const (
	matchedCategory   = "Matched"
	missingCategory   = "Missing"
	matchedLevel      = 100
	pathDuration      = "Self-paced"
	defaultDifficulty = "Beginner"

	noDataTitle  = "No Analysis Data"
	noDataDetail = "We couldn't find the analysis you're looking for. It might have been deleted or there was a connection error."
	fetchFailed  = "Failed to fetch analysis data"

	barWidth = 30
)

// Skill is a skill as shown on the results page.
type Skill struct {
	Name        string
	Category    string
	Proficiency int
}

// LearningPath is a recommended resource for one missing skill.
type LearningPath struct {
	ID          string
	Title       string
	Description string
	Duration    string
	Difficulty  string
	Skills      []string
	Platform    string
	Link        string
}

// ResultsModel is the display form of an analysis.
type ResultsModel struct {
	Role            string
	MatchPercentage float64
	Matched         []Skill
	Missing         []Skill
	Paths           []LearningPath
}

// NewResultsModel derives the results page content from an analysis.
func NewResultsModel(detail *backend.AnalysisDetail) ResultsModel {
	m := ResultsModel{
		Role:            detail.Role,
		MatchPercentage: detail.MatchPercentage,
		Matched:         make([]Skill, 0, len(detail.MatchedSkills)),
		Missing:         make([]Skill, 0, len(detail.MissingSkills)),
		Paths:           make([]LearningPath, 0, len(detail.Recommendations)),
	}

	for _, name := range detail.MatchedSkills {
		m.Matched = append(m.Matched, Skill{Name: name, Category: matchedCategory, Proficiency: matchedLevel})
	}

	for _, name := range detail.MissingSkills {
		m.Missing = append(m.Missing, Skill{Name: name, Category: missingCategory})
	}

	for i, rec := range detail.Recommendations {
		difficulty := rec.Difficulty
		if difficulty == "" {
			difficulty = defaultDifficulty
		}

		m.Paths = append(m.Paths, LearningPath{
			ID:          strconv.Itoa(i),
			Title:       "Learn " + rec.Skill,
			Description: "Recommended resource: " + rec.Resource,
			Duration:    pathDuration,
			Difficulty:  difficulty,
			Skills:      []string{rec.Skill},
			Platform:    rec.Resource,
			Link:        rec.Link,
		})
	}

	return m
}

// MatchColor grades a match percentage: 80 and above is good, 60 and above fair.
func MatchColor(percentage float64) color.Color {
	switch {
	case percentage >= 80:
		return green
	case percentage >= 60:
		return cyan
	default:
		return orange
	}
}

// FormatPercent prints a percentage without trailing zeros, e.g. 72% or 66.67%.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// Results renders the results view for the given state.
func Results(d viewstate.Detail) string {
	switch {
	case d.State == viewstate.DetailLoading:
		return subtitleStyle.Render("Loading analysis results...")
	case d.State == viewstate.DetailFailed:
		return notFound(backend.Message(d.Err, fetchFailed))
	case d.State != viewstate.DetailLoaded || d.Data == nil:
		return notFound(noDataTitle)
	}

	return RenderResults(NewResultsModel(d.Data))
}

func notFound(title string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render(title),
		subtitleStyle.Render(noDataDetail),
	)
}

// RenderResults renders a derived results model.
func RenderResults(m ResultsModel) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Skill Gap Analysis Results"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Target Position: " + m.Role))
	b.WriteString("\n\n")

	score := lipgloss.NewStyle().Bold(true).Foreground(MatchColor(m.MatchPercentage))
	b.WriteString("Match Score  " + score.Render(FormatPercent(m.MatchPercentage)) + "  " + bar(m.MatchPercentage))
	b.WriteString("\n")

	b.WriteString(headingStyle.Render(fmt.Sprintf("Matched Skills (%d)", len(m.Matched))))
	b.WriteString("\n")
	if len(m.Matched) == 0 {
		b.WriteString(hintStyle.Render("  none yet") + "\n")
	}
	for _, s := range m.Matched {
		b.WriteString(matchedStyle.Render("  ✓ "+s.Name) + subtitleStyle.Render(fmt.Sprintf("  %d%%", s.Proficiency)) + "\n")
	}

	b.WriteString(headingStyle.Render(fmt.Sprintf("Skills to Learn (%d)", len(m.Missing))))
	b.WriteString("\n")
	if len(m.Missing) == 0 {
		b.WriteString(hintStyle.Render("  nothing missing") + "\n")
	}
	for _, s := range m.Missing {
		b.WriteString(missingStyle.Render("  ✗ "+s.Name) + highStyle.Render("  Priority") + "\n")
	}

	b.WriteString(headingStyle.Render("Recommended Learning Paths"))
	b.WriteString("\n")
	if len(m.Paths) == 0 {
		b.WriteString(hintStyle.Render("  no recommendations") + "\n")
	}
	for _, p := range m.Paths {
		b.WriteString("  " + lipgloss.NewStyle().Bold(true).Render(p.Title) + "\n")
		b.WriteString("    " + p.Description + "\n")
		b.WriteString("    " + subtitleStyle.Render(p.Duration+" · "+p.Difficulty+" · "+strings.Join(p.Skills, ", ")) + "\n")
		if p.Link != "" {
			b.WriteString("    " + linkStyle.Render(p.Link) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func bar(percentage float64) string {
	filled := int(float64(barWidth) * percentage / 100)
	filled = max(0, min(filled, barWidth))

	return lipgloss.NewStyle().Foreground(MatchColor(percentage)).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(border).Render(strings.Repeat("░", barWidth-filled))
}
