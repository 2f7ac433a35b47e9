package service

import (
	"fmt"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/pkg/metrics"
	"portfolio_scraper/internal/pkg/utils"

	"github.com/samber/lo"
)

// ProjectExtractor reads the protocol project blocks of the active chain.
type ProjectExtractor struct {
	layout Layout
	panels *PanelExtractor
	logger port.Logger
}

// NewProjectExtractor creates a ProjectExtractor.
func NewProjectExtractor(layout Layout, panels *PanelExtractor, logger port.Logger) *ProjectExtractor {
	return &ProjectExtractor{layout: layout, panels: panels, logger: logger}
}

// ExtractAll returns every project that could be identified, in document order.
func (e *ProjectExtractor) ExtractAll(doc port.DocumentReader) []entity.Project {
	projects := make([]entity.Project, 0)

	blocks, err := e.layout.Projects.FindAll(doc)
	if err != nil {
		e.logger.Warn("Failed to locate projects", "error", err)
		return projects
	}
	for pidx, block := range blocks {
		project, err := e.Extract(block)
		if err != nil {
			metrics.UnitFailures.WithLabelValues(string(entity.UnitProject)).Inc()
			e.logger.Debug("Could not parse project", "error", entity.NewUnitError(entity.UnitProject, pidx, err))
			continue
		}
		projects = append(projects, project)
	}
	return projects
}

// Extract reads one project block. A block without name or total is an error.
func (e *ProjectExtractor) Extract(block port.Element) (entity.Project, error) {
	name, err := e.layout.ProjectName.Text(block)
	if err != nil {
		return entity.Project{}, fmt.Errorf("failed to read project name: %w", err)
	}
	total, err := e.layout.ProjectTotal.Text(block)
	if err != nil {
		return entity.Project{}, fmt.Errorf("failed to read usd value of project %s: %w", name, err)
	}

	panels, err := e.layout.Panels.FindAll(block)
	if err != nil {
		return entity.Project{}, fmt.Errorf("failed to locate panels of project %s: %w", name, err)
	}
	e.logger.Debug("Project located", "name", name, "panels", len(panels))
	if len(panels) == 0 {
		html, _ := block.HTML()
		e.logger.Debug("No tracking panels found for project", "name", name, "html", utils.Truncate(html, debugHTMLLimit))
	}

	project := entity.Project{
		Name:      name,
		USDValue:  utils.StripCurrency(total),
		Trackings: make([]entity.Tracking, 0, len(panels)),
	}
	for idx, panel := range panels {
		trackingType, tokens, err := e.panels.Extract(panel)
		if err != nil {
			metrics.UnitFailures.WithLabelValues(string(entity.UnitPanel)).Inc()
			e.logger.Debug("Skipping panel", "project", name, "error", entity.NewUnitError(entity.UnitPanel, idx, err))
			continue
		}
		project.Trackings = append(project.Trackings, BuildTracking(trackingType, tokens))
	}
	return project, nil
}

// BuildTracking groups a panel's tokens into sections. A Lending panel gets one
// section per variant header in fixed order; any other panel gets a single
// untitled section with every token.
func BuildTracking(trackingType *string, tokens []entity.TokenRecord) entity.Tracking {
	tracking := entity.Tracking{TrackingType: trackingType}
	if tokens == nil {
		tokens = []entity.TokenRecord{}
	}

	if !tracking.IsLending() {
		tracking.TokenSections = []entity.TokenSection{{Title: entity.UnusedSectionTitle, Tokens: tokens}}
		return tracking
	}

	tracking.TokenSections = lo.Map(entity.LendingVariants, func(variant entity.VariantHeader, _ int) entity.TokenSection {
		return entity.TokenSection{
			Title: string(variant),
			Tokens: lo.Filter(tokens, func(token entity.TokenRecord, _ int) bool {
				return token.HasVariant(variant)
			}),
		}
	})
	return tracking
}
