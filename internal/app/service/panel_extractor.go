package service

import (
	"errors"
	"fmt"
	"strings"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/pkg/metrics"
	"portfolio_scraper/internal/pkg/utils"
)

const debugHTMLLimit = 4000

// PanelExtractor reads one tracking panel: its label and the token rows of all its tables.
type PanelExtractor struct {
	layout Layout
	logger port.Logger
}

// NewPanelExtractor creates a PanelExtractor.
func NewPanelExtractor(layout Layout, logger port.Logger) *PanelExtractor {
	return &PanelExtractor{layout: layout, logger: logger}
}

// Extract returns the panel label (nil when absent) and the flat token list, in
// table order then row order. Failing tables and rows are skipped.
func (e *PanelExtractor) Extract(panel port.Element) (*string, []entity.TokenRecord, error) {
	trackingType := e.trackingType(panel)

	tables, err := e.layout.Tables.FindAll(panel)
	if err != nil {
		return trackingType, nil, fmt.Errorf("failed to locate panel tables: %w", err)
	}
	e.logger.Debug("Panel tables located", "tracking_type", derefOr(trackingType, "<none>"), "tables", len(tables))

	tokens := make([]entity.TokenRecord, 0)
	for tidx, table := range tables {
		tableTokens, err := e.extractTable(tidx, table)
		if err != nil {
			metrics.UnitFailures.WithLabelValues(string(entity.UnitTable)).Inc()
			e.logger.Debug("Skipping table", "error", entity.NewUnitError(entity.UnitTable, tidx, err))
			continue
		}
		tokens = append(tokens, tableTokens...)
	}
	return trackingType, tokens, nil
}

func (e *PanelExtractor) trackingType(panel port.Element) *string {
	label, err := e.layout.TrackingType.Text(panel)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			e.logger.Debug("Failed to read tracking type", "error", err)
		}
		return nil
	}
	return &label
}

func (e *PanelExtractor) extractTable(tidx int, table port.Element) ([]entity.TokenRecord, error) {
	headers, err := e.headers(table)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Table headers extracted", "table", tidx, "headers", headers)

	rows, err := e.rows(table)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Table rows located", "table", tidx, "rows", len(rows))
	if len(rows) == 0 {
		html, _ := table.HTML()
		e.logger.Debug("No token rows found in table", "table", tidx, "html", utils.Truncate(html, debugHTMLLimit))
		return nil, nil
	}

	tokens := make([]entity.TokenRecord, 0, len(rows))
	for ridx, row := range rows {
		cells, err := readRowCells(e.layout, row)
		if err != nil {
			metrics.UnitFailures.WithLabelValues(string(entity.UnitRow)).Inc()
			e.logger.Debug("Skipping row", "table", tidx, "error", entity.NewUnitError(entity.UnitRow, ridx, err))
			continue
		}
		record := ParseRow(headers, cells)
		e.logger.Debug("Token row parsed",
			"table", tidx,
			"row", ridx,
			"shape", ShapeOf(headers, cells).String(),
			"cells", len(cells),
			"token_name", derefOr(record.TokenName, ""))
		tokens = append(tokens, record)
	}
	return tokens, nil
}

// headers returns the header labels, or none when the table has no header row.
func (e *PanelExtractor) headers(table port.Element) ([]string, error) {
	headerRow, _, err := e.layout.HeaderRow.Find(table)
	if errors.Is(err, entity.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	labels, err := e.layout.HeaderLabels.FindAll(headerRow)
	if err != nil {
		return nil, err
	}
	return texts(labels)
}

// rows returns the token rows, or none when the table has no body.
func (e *PanelExtractor) rows(table port.Element) ([]port.Element, error) {
	body, _, err := e.layout.TableBody.Find(table)
	if errors.Is(err, entity.ErrNotFound) {
		return []port.Element{}, nil
	}
	if err != nil {
		return nil, err
	}
	return e.layout.TokenRows.FindAll(body)
}

func readRowCells(layout Layout, row port.Element) ([]RowCell, error) {
	cellEls, err := layout.TokenCells.FindAll(row)
	if err != nil {
		return nil, err
	}
	cells := make([]RowCell, 0, len(cellEls))
	for _, cellEl := range cellEls {
		text, err := cellEl.Text()
		if err != nil {
			return nil, err
		}
		anchorEls, err := layout.Anchors.FindAll(cellEl)
		if err != nil {
			return nil, err
		}
		anchors, err := texts(anchorEls)
		if err != nil {
			return nil, err
		}
		cells = append(cells, RowCell{Text: text, Anchors: anchors})
	}
	return cells, nil
}

func texts(els []port.Element) ([]string, error) {
	out := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(text))
	}
	return out, nil
}

func derefOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
