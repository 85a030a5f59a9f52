package viewstate

import "github.com/spigell/skillsight/internal/backend"

// Dashboard is a consistent copy of the dashboard state for rendering.
type Dashboard struct {
	Loading bool
	// Loaded is true once a dashboard load succeeded.
	Loaded bool
	Err    error

	Total          int
	AvgMatchScore  string
	SkillsAcquired int
	LearningHours  int

	Summaries  backend.Summaries
	SelectedID string
	// ActiveID is empty when the history is empty.
	ActiveID        string
	Recommendations []backend.RecommendedSkill
}

func (c *Controller) Dashboard() Dashboard {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := Dashboard{
		Loading:         c.list.loading,
		Loaded:          c.list.loaded,
		Err:             c.list.err,
		Total:           c.list.total,
		AvgMatchScore:   c.list.avgScore,
		SkillsAcquired:  c.list.skills,
		LearningHours:   c.list.hours,
		Summaries:       c.list.summaries.Clone(),
		SelectedID:      c.selectedID,
		Recommendations: c.recommendationsLocked(),
	}

	if active, ok := c.activeLocked(); ok {
		d.ActiveID = active.ID
	}

	return d
}
