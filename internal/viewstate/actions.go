package viewstate

import (
	"context"
	"errors"

	"github.com/spigell/skillsight/internal/export"
)

var (
	errNoExporter = errors.New("export is not configured")
	errNoSharing  = errors.New("sharing is not configured")
)

// ExportActive exports the active dashboard entry.
func (c *Controller) ExportActive(ctx context.Context) (string, error) {
	active, ok := c.Active()
	if !ok {
		return "", ErrNothingActive
	}
	if c.exporter == nil {
		return "", errNoExporter
	}
	return c.exporter.Export(ctx, export.SummaryReport(active))
}

// ShareActive shares the active dashboard entry. It returns the confirmation
// to show to the user.
func (c *Controller) ShareActive(ctx context.Context) (string, error) {
	active, ok := c.Active()
	if !ok {
		return "", ErrNothingActive
	}
	if c.sharing == nil {
		return "", errNoSharing
	}
	return c.sharing.Share(ctx, active.ID, active.JobTitle)
}

// ExportDetail exports the loaded results.
func (c *Controller) ExportDetail(ctx context.Context) (string, error) {
	detail := c.Detail()
	if detail.State != DetailLoaded || detail.Data == nil {
		return "", ErrNothingActive
	}
	if c.exporter == nil {
		return "", errNoExporter
	}
	return c.exporter.Export(ctx, export.DetailReport(detail.ID, detail.Data))
}

// ShareDetail shares the loaded results.
func (c *Controller) ShareDetail(ctx context.Context) (string, error) {
	detail := c.Detail()
	if detail.State != DetailLoaded || detail.Data == nil {
		return "", ErrNothingActive
	}
	if c.sharing == nil {
		return "", errNoSharing
	}
	return c.sharing.Share(ctx, detail.ID, detail.Data.Role)
}
