// Package viewstate holds the analysis session state shared by the dashboard
// and results views: the history list, the selection and the loaded detail.
package viewstate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/export"
	"github.com/spigell/skillsight/internal/logger"
)

const (
	// DeleteConfirmation is the question asked before deleting an analysis.
	DeleteConfirmation = "Are you sure you want to delete this analysis?"

	recommendationCategory = "Technical"
	recommendationPriority = "High"
)

var (
	// ErrStale is returned when a newer load superseded the call's response.
	ErrStale = errors.New("response superseded by a newer request")
	// ErrNoSelection is returned by DeleteSelected without an explicit selection.
	ErrNoSelection = errors.New("no analysis selected")
	// ErrNotConfirmed is returned when the user declined a destructive action.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrNoUser is returned by loads that need a signed in user.
	ErrNoUser = errors.New("no signed in user")
	// ErrNothingActive is returned by export and share when there is nothing to act on.
	ErrNothingActive = errors.New("no analysis to act on")
)

// Backend is the part of the backend client the controller uses.
type Backend interface {
	DashboardStats(ctx context.Context, uid string) (*backend.DashboardStats, error)
	GetAnalysis(ctx context.Context, id string) (*backend.AnalysisDetail, error)
	DeleteAnalysis(ctx context.Context, id string) error
}

// Options configures a Controller.
type Options struct {
	Logger  *zap.Logger
	Backend Backend
	// Confirm gates destructive actions. A nil Confirm declines everything.
	Confirm  func(question string) bool
	Exporter export.Exporter
	Sharing  *export.Sharing
}

// Controller is safe for concurrent use. Network calls run without the lock
// held; their results are applied only if no newer call superseded them.
type Controller struct {
	logger   *zap.Logger
	backend  Backend
	confirm  func(string) bool
	exporter export.Exporter
	sharing  *export.Sharing

	mu         sync.Mutex
	uid        string
	list       listState
	selectedID string
	detail     Detail
	listSeq    uint64
	detailSeq  uint64
}

type listState struct {
	loading   bool
	loaded    bool
	err       error
	summaries backend.Summaries
	total     int
	avgScore  string
	skills    int
	hours     int
	global    []backend.RecommendedSkill
}

func New(opts Options) *Controller {
	return &Controller{
		logger:   logger.WithFields(opts.Logger),
		backend:  opts.Backend,
		confirm:  opts.Confirm,
		exporter: opts.Exporter,
		sharing:  opts.Sharing,
	}
}

// SetUser switches the user whose history is shown. Changing the user drops
// all state and invalidates in-flight loads.
func (c *Controller) SetUser(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if uid == c.uid {
		return
	}

	c.uid = uid
	c.list = listState{}
	c.selectedID = ""
	c.detail = Detail{}
	c.listSeq++
	c.detailSeq++
}

func (c *Controller) User() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid
}

// LoadSummaries fetches the dashboard of the current user. On success the
// list and the cached aggregates are replaced wholesale, on failure they are
// kept and the error is returned.
func (c *Controller) LoadSummaries(ctx context.Context) error {
	c.mu.Lock()
	c.listSeq++
	seq := c.listSeq
	uid := c.uid
	if uid != "" {
		c.list.loading = true
	}
	c.mu.Unlock()

	if uid == "" {
		return ErrNoUser
	}

	stats, err := c.backend.DashboardStats(ctx, uid)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.listSeq {
		c.logger.Debug("dropping superseded dashboard response")
		return ErrStale
	}

	c.list.loading = false

	if err != nil {
		c.list.err = err
		c.logger.Warn("loading dashboard failed", zap.Error(err))
		return fmt.Errorf("loading dashboard: %w", err)
	}

	c.list = listState{
		loaded:    true,
		summaries: stats.RecentAnalyses.Clone(),
		total:     stats.TotalAnalyses,
		avgScore:  stats.AvgMatchScore,
		skills:    stats.SkillsAcquired,
		hours:     stats.LearningHours,
		global:    append([]backend.RecommendedSkill(nil), stats.RecommendedSkills...),
	}

	if c.selectedID != "" && !c.list.summaries.Contains(c.selectedID) {
		c.selectedID = ""
	}

	c.logger.Debug("dashboard loaded", zap.Int("analyses", c.list.summaries.Len()))
	return nil
}

// Select marks id as selected. Unknown ids are accepted; Active falls back to
// the first entry for them.
func (c *Controller) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = id
}

// ClearSelection drops the explicit selection.
func (c *Controller) ClearSelection() {
	c.Select("")
}

func (c *Controller) SelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID
}

// Delete removes analysis id after the user confirmed it. Ids not in the
// list are ignored without contacting the backend.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	present := c.list.summaries.Contains(id)
	c.mu.Unlock()

	if !present {
		return nil
	}

	if c.confirm == nil || !c.confirm(DeleteConfirmation) {
		return ErrNotConfirmed
	}

	log := c.logger.With(logger.AnalysisFields(id, "")...)

	if err := c.backend.DeleteAnalysis(ctx, id); err != nil {
		log.Warn("deleting analysis failed", zap.Error(err))
		return fmt.Errorf("deleting analysis %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another delete of the same id may have finished while we waited.
	if rest, removed := c.list.summaries.Without(id); removed {
		c.list.summaries = rest
		if c.list.total > 0 {
			c.list.total--
		}
	}

	if c.selectedID == id {
		c.selectedID = ""
	}

	// A list requested before the delete still holds the entry.
	c.listSeq++
	c.list.loading = false

	log.Info("analysis deleted")
	return nil
}

// DeleteSelected deletes the explicitly selected analysis.
func (c *Controller) DeleteSelected(ctx context.Context) error {
	id := c.SelectedID()
	if id == "" {
		return ErrNoSelection
	}
	return c.Delete(ctx, id)
}

// Active returns the selected summary, else the first one.
func (c *Controller) Active() (backend.AnalysisSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

func (c *Controller) activeLocked() (backend.AnalysisSummary, bool) {
	if c.selectedID != "" {
		if summary, ok := c.list.summaries.FindByID(c.selectedID); ok {
			return summary.Clone(), true
		}
	}
	if len(c.list.summaries) > 0 {
		return c.list.summaries[0].Clone(), true
	}
	return backend.AnalysisSummary{}, false
}

// Recommendations returns the missing skills of the active analysis when it
// carries a list, otherwise the global recommendations of the dashboard.
func (c *Controller) Recommendations() []backend.RecommendedSkill {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recommendationsLocked()
}

func (c *Controller) recommendationsLocked() []backend.RecommendedSkill {
	if active, ok := c.activeLocked(); ok && active.MissingSkills != nil {
		recs := make([]backend.RecommendedSkill, 0, len(active.MissingSkills))
		for _, skill := range active.MissingSkills {
			recs = append(recs, backend.RecommendedSkill{
				Name:     skill,
				Category: recommendationCategory,
				Priority: recommendationPriority,
			})
		}
		return recs
	}

	return append([]backend.RecommendedSkill{}, c.list.global...)
}

// CanViewResults reports whether the history has anything to open.
func (c *Controller) CanViewResults() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list.summaries) > 0
}

// CanDeleteSelected reports whether there is an explicit selection to delete.
func (c *Controller) CanDeleteSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID != ""
}

// Total is the cached number of analyses of the user.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.total
}
