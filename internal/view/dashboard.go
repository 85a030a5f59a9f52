package view

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/viewstate"
)

// MaxRecommendations is how many recommended skills the dashboard lists.
const MaxRecommendations = 6

const loadingValue = "..."

type statCard struct {
	title string
	value string
	note  string
}

// Dashboard renders the overview of a user's history.
func Dashboard(userName string, d viewstate.Dashboard) string {
	sections := []string{
		titleStyle.Render(fmt.Sprintf("Welcome back, %s!", userName)),
		subtitleStyle.Render("Here's your skill development overview"),
		"",
		statCards(d),
		headingStyle.Render("Recent Analyses"),
		recentAnalyses(d),
		headingStyle.Render("Recommended Skills"),
		recommendations(d.Recommendations),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func statCards(d viewstate.Dashboard) string {
	value := func(v, zero string) string {
		switch {
		case d.Loading:
			return loadingValue
		case v == "":
			return zero
		default:
			return v
		}
	}

	count := func(n int) string {
		if !d.Loaded {
			return ""
		}
		return strconv.Itoa(n)
	}

	cards := []statCard{
		{title: "Total Analyses", value: value(count(d.Total), "0"), note: "Lifetime total"},
		{title: "Avg Match Score", value: value(d.AvgMatchScore, "0%"), note: "Based on history"},
		{title: "Skills Acquired", value: value(count(d.SkillsAcquired), "0"), note: "Matched skills count"},
		{title: "Learning Hours", value: value(count(d.LearningHours), "0"), note: "Estimated effort"},
	}

	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, cardStyle.Render(
			subtitleStyle.Render(c.title)+"\n"+cardValueStyle.Render(c.value)+"\n"+hintStyle.Render(c.note),
		))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func recentAnalyses(d viewstate.Dashboard) string {
	switch {
	case d.Loading && len(d.Summaries) == 0:
		return subtitleStyle.Render("Loading analyses...")
	case d.Err != nil && !d.Loaded:
		return errorStyle.Render(backend.Message(d.Err, "Failed to load your analyses"))
	case len(d.Summaries) == 0:
		return hintStyle.Render("No analyses yet. Start your first analysis!")
	}

	var b strings.Builder
	if d.Err != nil {
		b.WriteString(errorStyle.Render(backend.Message(d.Err, "Failed to refresh your analyses")) + "\n")
	}

	for _, s := range d.Summaries {
		line := fmt.Sprintf("%-28s %-12s %s", s.JobTitle, s.Date, FormatPercent(s.MatchPercentage))
		if s.ID == d.ActiveID {
			b.WriteString(activeRowStyle.Render("› "+line) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func recommendations(recs []backend.RecommendedSkill) string {
	if len(recs) == 0 {
		return hintStyle.Render("Select an analysis to see recommendations")
	}

	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}

	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		priority := normalStyle
		if r.Priority == "High" {
			priority = highStyle
		}
		lines = append(lines, fmt.Sprintf("  %-24s ", r.Name)+subtitleStyle.Render(fmt.Sprintf("%-14s", r.Category))+" "+priority.Render(r.Priority))
	}

	return strings.Join(lines, "\n")
}

// Label is a menu label for a summary row.
func Label(s backend.AnalysisSummary, active bool) string {
	marker := "  "
	if active {
		marker = "› "
	}
	return fmt.Sprintf("%s%s (%s, %s)", marker, s.JobTitle, s.Date, FormatPercent(s.MatchPercentage))
}
