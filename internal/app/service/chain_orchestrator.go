package service

import (
	"context"
	"errors"
	"fmt"

	"portfolio_scraper/internal/app/lookup"
	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/infrastructure/configloader"
	"portfolio_scraper/internal/pkg/metrics"
	"portfolio_scraper/internal/pkg/utils"
)

// ChainOrchestratorImpl drives one page session through a whole profile:
// load, expand the chain list, then activate and extract every chain in turn.
// It is the only component that navigates or clicks.
type ChainOrchestratorImpl struct {
	session  port.Session
	layout   Layout
	cfg      configloader.ScraperConfig
	wallet   *WalletExtractor
	projects *ProjectExtractor
	logger   port.Logger
}

// NewChainOrchestrator creates a scraper bound to session.
func NewChainOrchestrator(session port.Session, layout Layout, cfg configloader.ScraperConfig, logger port.Logger) port.ProfileScraper {
	return &ChainOrchestratorImpl{
		session:  session,
		layout:   layout,
		cfg:      cfg,
		wallet:   NewWalletExtractor(layout, logger),
		projects: NewProjectExtractor(layout, NewPanelExtractor(layout, logger), logger),
		logger:   logger,
	}
}

// Scrape returns the snapshot of the wallet's profile. Only a failed navigation
// is an error; everything after it is best effort and yields a possibly partial
// snapshot. A cancelled ctx stops the chain loop and returns what was gathered.
func (o *ChainOrchestratorImpl) Scrape(ctx context.Context, wallet entity.Wallet) (*entity.ProfileSnapshot, error) {
	url := fmt.Sprintf(o.cfg.ProfileURLTemplate, wallet.Address)
	o.logger.Info("Navigating to profile", "url", url)
	if err := o.session.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("%w: failed to navigate to %s: %w", entity.ErrSessionUnavailable, url, err)
	}

	o.waitReady(ctx)
	o.expandChains(ctx)
	o.logChainArea()

	snapshot := entity.NewProfileSnapshot()
	rows, err := o.layout.ChainRows.FindAll(o.session)
	if err != nil {
		o.logger.Warn("Failed to locate chain rows", "error", err)
		return snapshot, nil
	}
	o.logger.Info("Chain rows located", "address", wallet.Address, "chains", len(rows))

	for idx, row := range rows {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("Scrape deadline reached, returning partial snapshot",
				"address", wallet.Address, "processed", idx, "total", len(rows), "error", err)
			break
		}
		chain, err := o.scrapeChain(ctx, idx, row)
		if err != nil {
			metrics.UnitFailures.WithLabelValues(string(entity.UnitChain)).Inc()
			o.logger.Warn("Error processing chain", "index", idx, "error", err)
			continue
		}
		if snapshot.Put(chain) {
			o.logger.Warn("Duplicate chain name, keeping the latest data", "index", idx, "chain", chain.Name)
		}
		metrics.ChainsExtracted.Inc()
	}

	o.logger.Info("Profile scraped", "address", wallet.Address, "chains", snapshot.Len())
	return snapshot, nil
}

func (o *ChainOrchestratorImpl) scrapeChain(ctx context.Context, idx int, row port.Element) (chain entity.ChainData, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = entity.NewUnitError(entity.UnitChain, idx, fmt.Errorf("panic: %v", r))
		}
	}()

	nameEl, strategy, err := o.layout.ChainName.Find(row)
	if err != nil {
		return chain, entity.NewUnitError(entity.UnitChain, idx, fmt.Errorf("failed to locate chain name: %w", err))
	}
	name, err := nameEl.Text()
	if err != nil {
		return chain, entity.NewUnitError(entity.UnitChain, idx, fmt.Errorf("failed to read chain name: %w", err))
	}
	name = utils.CollapseWhitespace(name)
	o.logger.Info("Activating chain", "index", idx, "chain", name, "strategy", strategy)

	if err := o.session.Click(ctx, row); err != nil {
		return chain, entity.NewUnitError(entity.UnitChain, idx, fmt.Errorf("failed to click chain %s: %w", name, err))
	}
	if err := o.session.Settle(ctx, o.cfg.ChainSettle()); err != nil {
		return chain, entity.NewUnitError(entity.UnitChain, idx, fmt.Errorf("interrupted while chain %s settled: %w", name, err))
	}

	return entity.ChainData{
		Name:        name,
		WalletInfo:  o.wallet.Extract(o.session),
		ProjectInfo: o.projects.ExtractAll(o.session),
	}, nil
}

// waitReady waits for the header total and the "Data updated" status. A timeout
// is logged and extraction carries on with whatever is rendered.
func (o *ChainOrchestratorImpl) waitReady(ctx context.Context) {
	timeout := o.cfg.ReadyTimeout()
	err := o.session.WaitVisible(ctx, primary(o.layout.ReadyTotal), timeout)
	if err == nil {
		err = o.session.WaitText(ctx, primary(o.layout.ReadyStatus), ReadyStatusText, timeout)
	}
	if err == nil {
		o.logger.Debug("Profile data updated")
		return
	}
	if errors.Is(err, entity.ErrTimeout) {
		metrics.ReadinessTimeouts.Inc()
	}
	o.logger.Warn("Timeout waiting for 'Data updated'", "timeout", timeout.String(), "error", err)
}

// expandChains clicks the "show all chains" control when the list is collapsed.
func (o *ChainOrchestratorImpl) expandChains(ctx context.Context) {
	o.logger.Debug("Looking for the expand chains button")
	button, _, err := o.layout.ExpandButton.Find(o.session)
	if err != nil {
		o.logger.Debug("Expand button not found or already expanded", "error", err)
		return
	}
	if err := o.session.Click(ctx, button); err != nil {
		o.logger.Debug("Failed to click expand button", "error", err)
		return
	}
	settle := o.cfg.ExpandSettle()
	o.logger.Debug("Expand button clicked, waiting", "settle", settle.String())
	if err := o.session.Settle(ctx, settle); err != nil {
		o.logger.Debug("Interrupted while chain list expanded", "error", err)
	}
}

func (o *ChainOrchestratorImpl) logChainArea() {
	area, _, err := o.layout.ChainArea.Find(o.session)
	if err != nil {
		o.logger.Debug("Could not extract chain area html", "error", err)
		return
	}
	html, err := area.HTML()
	if err != nil {
		o.logger.Debug("Could not extract chain area html", "error", err)
		return
	}
	o.logger.Debug("Chain area html", "html", utils.Truncate(html, debugHTMLLimit))
}

// primary is the selector used for readiness waits: the first strategy of the chain.
func primary(chain lookup.Chain) port.Selector {
	if len(chain) == 0 {
		return port.CSS("html")
	}
	return chain[0].Selector
}
