package service

import (
	"fmt"
	"sort"

	"portfolio_scraper/internal/app/lookup"
	"portfolio_scraper/internal/app/port"
)

// Layout field names, as used in configuration overrides.
const (
	FieldReadyTotal      = "readyTotal"
	FieldReadyStatus     = "readyStatus"
	FieldExpandButton    = "expandButton"
	FieldChainArea       = "chainArea"
	FieldChainRows       = "chainRows"
	FieldChainName       = "chainName"
	FieldWalletContainer = "walletContainer"
	FieldWalletTotal     = "walletTotal"
	FieldWalletRows      = "walletRows"
	FieldWalletCells     = "walletCells"
	FieldProjects        = "projects"
	FieldProjectName     = "projectName"
	FieldProjectTotal    = "projectTotal"
	FieldPanels          = "panels"
	FieldTrackingType    = "trackingType"
	FieldTables          = "tables"
	FieldHeaderRow       = "headerRow"
	FieldHeaderLabels    = "headerLabels"
	FieldTableBody       = "tableBody"
	FieldTokenRows       = "tokenRows"
	FieldTokenCells      = "tokenCells"
	FieldAnchors         = "anchors"
)

// ReadyStatusText is the text the readiness status element shows once the
// profile data is fresh.
const ReadyStatusText = "Data updated"

// Layout is the table of lookup strategies for every field of the profile page.
type Layout struct {
	ReadyTotal      lookup.Chain
	ReadyStatus     lookup.Chain
	ExpandButton    lookup.Chain
	ChainArea       lookup.Chain
	ChainRows       lookup.Chain
	ChainName       lookup.Chain
	WalletContainer lookup.Chain
	WalletTotal     lookup.Chain
	WalletRows      lookup.Chain
	WalletCells     lookup.Chain
	Projects        lookup.Chain
	ProjectName     lookup.Chain
	ProjectTotal    lookup.Chain
	Panels          lookup.Chain
	TrackingType    lookup.Chain
	Tables          lookup.Chain
	HeaderRow       lookup.Chain
	HeaderLabels    lookup.Chain
	TableBody       lookup.Chain
	TokenRows       lookup.Chain
	TokenCells      lookup.Chain
	Anchors         lookup.Chain
}

// DefaultLayout returns the layout of the DeBank profile page.
func DefaultLayout() Layout {
	return Layout{
		ReadyTotal:   lookup.Of(port.CSS("div.HeaderInfo_totalAssetInner__HyrdC")),
		ReadyStatus:  lookup.Of(port.Path("/html/body/div[1]/div[1]/div[1]/div/div/div/div[2]/div/div[2]/div[2]/span")),
		ExpandButton: lookup.Of(port.CSS(`[class*="TotalAssetInfo_expandBtn__"]`)),
		ChainArea:    lookup.Of(port.CSS(`div[class*="ChainList_chainList"]`)),
		ChainRows:    lookup.Of(port.CSS("div.AssetsOnChain_chainInfo__fKA2k")),
		ChainName: lookup.Chain{
			{Name: "first-child", Selector: port.Path("div[1]")},
			{Name: "class-pattern", Selector: port.CSS(`[class*="ChainList_chainName__"], [class*="ChainList_chainName"]`)},
			{Name: "descendant", Selector: port.CSS(`div[class*="ChainList_chainName"]`)},
		},
		WalletContainer: lookup.Of(port.CSS("div.TokenWallet_container__FUGTE")),
		WalletTotal:     lookup.Of(port.CSS(".projectTitle-number")),
		WalletRows:      lookup.Of(port.CSS(".db-table-wrappedRow")),
		WalletCells:     lookup.Of(port.CSS(".db-table-cell")),
		Projects:        lookup.Of(port.CSS("div.Project_project__GCrhx")),
		ProjectName:     lookup.Of(port.CSS(".ProjectTitle_protocolLink__4Yqn3")),
		ProjectTotal:    lookup.Of(port.CSS(".projectTitle-number")),
		Panels:          lookup.Of(port.CSS("div.Panel_container__Vltd1")),
		TrackingType:    lookup.Of(port.Path("div[1]/div[1]/div[1]")),
		Tables:          lookup.Of(port.Path("div[2]/div")),
		HeaderRow:       lookup.Of(port.Path("div[1]")),
		HeaderLabels:    lookup.Of(port.CSS("span")),
		TableBody:       lookup.Of(port.Path("div[2]")),
		TokenRows:       lookup.Of(port.CSS("div.table_contentRow__Mi3k5.flex_flexRow__y0UR2")),
		TokenCells:      lookup.Of(port.CSS("div")),
		Anchors:         lookup.Of(port.CSS("a")),
	}
}

func (l *Layout) fields() map[string]*lookup.Chain {
	return map[string]*lookup.Chain{
		FieldReadyTotal:      &l.ReadyTotal,
		FieldReadyStatus:     &l.ReadyStatus,
		FieldExpandButton:    &l.ExpandButton,
		FieldChainArea:       &l.ChainArea,
		FieldChainRows:       &l.ChainRows,
		FieldChainName:       &l.ChainName,
		FieldWalletContainer: &l.WalletContainer,
		FieldWalletTotal:     &l.WalletTotal,
		FieldWalletRows:      &l.WalletRows,
		FieldWalletCells:     &l.WalletCells,
		FieldProjects:        &l.Projects,
		FieldProjectName:     &l.ProjectName,
		FieldProjectTotal:    &l.ProjectTotal,
		FieldPanels:          &l.Panels,
		FieldTrackingType:    &l.TrackingType,
		FieldTables:          &l.Tables,
		FieldHeaderRow:       &l.HeaderRow,
		FieldHeaderLabels:    &l.HeaderLabels,
		FieldTableBody:       &l.TableBody,
		FieldTokenRows:       &l.TokenRows,
		FieldTokenCells:      &l.TokenCells,
		FieldAnchors:         &l.Anchors,
	}
}

// WithOverrides returns a copy of the layout in which every overridden field
// has its whole strategy chain replaced.
func (l Layout) WithOverrides(overrides map[string][]string) (Layout, error) {
	out := l
	fields := out.fields()

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target, ok := fields[name]
		if !ok {
			return Layout{}, fmt.Errorf("unknown layout field %q", name)
		}
		chain, err := lookup.ParseChain(overrides[name])
		if err != nil {
			return Layout{}, fmt.Errorf("layout field %s: %w", name, err)
		}
		*target = chain
	}
	return out, nil
}
