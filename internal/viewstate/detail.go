package viewstate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/logger"
)

// DetailState is the loading state of the results view.
type DetailState int

const (
	DetailIdle DetailState = iota
	DetailLoading
	DetailLoaded
	DetailFailed
)

func (s DetailState) String() string {
	switch s {
	case DetailLoading:
		return "loading"
	case DetailLoaded:
		return "loaded"
	case DetailFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Detail is the analysis shown by the results view. ID is empty for results
// adopted right after a submission.
type Detail struct {
	State DetailState
	ID    string
	Data  *backend.AnalysisDetail
	Err   error
}

// Detail returns the current results state.
func (c *Controller) Detail() Detail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail
}

// AdoptDetail shows an already resolved analysis, as returned by a
// submission, without a network call. Pending loads are superseded.
func (c *Controller) AdoptDetail(id string, detail *backend.AnalysisDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detailSeq++
	c.detail = Detail{State: DetailLoaded, ID: id, Data: detail}
}

// LoadDetail fetches analysis id. Every call fetches again. A response that
// arrives after a newer LoadDetail or AdoptDetail is dropped and ErrStale is
// returned.
func (c *Controller) LoadDetail(ctx context.Context, id string) (*backend.AnalysisDetail, error) {
	c.mu.Lock()
	c.detailSeq++
	seq := c.detailSeq
	c.detail = Detail{State: DetailLoading, ID: id}
	c.mu.Unlock()

	log := c.logger.With(logger.AnalysisFields(id, "")...)
	log.Debug("loading analysis")

	detail, err := c.backend.GetAnalysis(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.detailSeq {
		log.Debug("dropping superseded analysis response")
		return nil, ErrStale
	}

	if err != nil {
		c.detail = Detail{State: DetailFailed, ID: id, Err: err}
		log.Warn("loading analysis failed", zap.Error(err))
		return nil, fmt.Errorf("loading analysis %s: %w", id, err)
	}

	c.detail = Detail{State: DetailLoaded, ID: id, Data: detail}
	return detail, nil
}

// ResetDetail returns the results view to idle.
func (c *Controller) ResetDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.detailSeq++
	c.detail = Detail{}
}
