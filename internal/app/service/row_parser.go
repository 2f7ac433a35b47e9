package service

import (
	"strings"

	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/pkg/utils"
)

// Header labels the row parser understands.
const (
	HeaderPool     = "Pool"
	HeaderBalance  = "Balance"
	HeaderUSDValue = "USD Value"
	HeaderUSD      = "USD"
)

// RowCell is the extracted content of one table cell: its trimmed text and the
// texts of the anchors inside it.
type RowCell struct {
	Text    string
	Anchors []string
}

// RowShape tells whether a row lines up with its table's headers.
type RowShape int

const (
	// ShapeHeaders: one cell per header, fields are mapped by header label.
	ShapeHeaders RowShape = iota
	// ShapeHeuristic: cells and headers disagree, fields are guessed from cell content.
	ShapeHeuristic
)

func (s RowShape) String() string {
	if s == ShapeHeuristic {
		return "heuristic"
	}
	return "headers"
}

// ShapeOf classifies a row. Equal counts (including zero and zero) select the header path.
func ShapeOf(headers []string, cells []RowCell) RowShape {
	if len(headers) == len(cells) {
		return ShapeHeaders
	}
	return ShapeHeuristic
}

// ParseRow turns one position table row into a token record. It is a pure
// function of its inputs.
func ParseRow(headers []string, cells []RowCell) entity.TokenRecord {
	headers = trimAll(headers)
	cells = trimCells(cells)

	switch ShapeOf(headers, cells) {
	case ShapeHeaders:
		return parseByHeaders(headers, cells)
	default:
		return parseHeuristically(cells)
	}
}

func parseByHeaders(headers []string, cells []RowCell) entity.TokenRecord {
	// При повторяющихся заголовках по значению побеждает последняя колонка.
	byHeader := make(map[string]string, len(headers))
	for i, header := range headers {
		byHeader[header] = cells[i].Text
	}

	var record entity.TokenRecord

	if idx := indexOf(headers, HeaderPool); idx >= 0 {
		record.Pool = entity.StringPtr(poolText(cells[idx]))
	}
	if balance, ok := byHeader[HeaderBalance]; ok {
		record.Balance = entity.StringPtr(balance)
	}
	if usd, ok := byHeader[HeaderUSDValue]; ok && usd != "" {
		record.USDValue = entity.StringPtr(usd)
	} else if usd, ok := byHeader[HeaderUSD]; ok {
		record.USDValue = entity.StringPtr(usd)
	}

	for _, variant := range entity.LendingVariants {
		idx := indexOf(headers, string(variant))
		if idx < 0 {
			continue
		}
		value := cells[idx].Text
		v := variant
		record.VariantHeader = &v
		if isUnset(record.TokenName) {
			record.TokenName = entity.StringPtr(value)
		}
		if variant == entity.VariantRewards {
			record.Rewards = entity.StringPtr(utils.StripUSDAnnotations(value))
		}
		break
	}

	if isUnset(record.TokenName) {
		record.TokenName = copyPtr(record.Pool)
	}
	return record
}

func parseHeuristically(cells []RowCell) entity.TokenRecord {
	var record entity.TokenRecord

	for i := len(cells) - 1; i >= 0; i-- {
		if strings.HasPrefix(cells[i].Text, "$") {
			record.USDValue = entity.StringPtr(cells[i].Text)
			break
		}
	}
	if len(cells) > 0 {
		record.Pool = entity.StringPtr(poolText(cells[0]))
	}
	for _, cell := range cells {
		if utils.IsPlainAmount(cell.Text) {
			record.Balance = entity.StringPtr(cell.Text)
			break
		}
	}
	record.TokenName = copyPtr(record.Pool)
	return record
}

// poolText joins the non-empty anchor texts with "+", falling back to the cell text.
func poolText(cell RowCell) string {
	parts := make([]string, 0, len(cell.Anchors))
	for _, anchor := range cell.Anchors {
		if anchor != "" {
			parts = append(parts, anchor)
		}
	}
	if len(parts) == 0 {
		return cell.Text
	}
	return strings.Join(parts, "+")
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}

func isUnset(p *string) bool {
	return p == nil || *p == ""
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	return entity.StringPtr(*p)
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func trimCells(cells []RowCell) []RowCell {
	out := make([]RowCell, len(cells))
	for i, cell := range cells {
		out[i] = RowCell{Text: strings.TrimSpace(cell.Text), Anchors: trimAll(cell.Anchors)}
	}
	return out
}
