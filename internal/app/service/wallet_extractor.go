package service

import (
	"errors"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/pkg/utils"
)

// walletColumns is the fixed column count of the holdings table: name, price, amount, usd value.
const walletColumns = 4

// WalletExtractor reads the wallet holdings table of the active chain.
type WalletExtractor struct {
	layout Layout
	logger port.Logger
}

// NewWalletExtractor creates a WalletExtractor.
func NewWalletExtractor(layout Layout, logger port.Logger) *WalletExtractor {
	return &WalletExtractor{layout: layout, logger: logger}
}

// Extract never fails: a chain without a holdings table has an empty wallet.
func (e *WalletExtractor) Extract(doc port.DocumentReader) entity.WalletInfo {
	container, _, err := e.layout.WalletContainer.Find(doc)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			e.logger.Debug("No wallet container on chain")
		} else {
			e.logger.Warn("Could not parse wallet info", "error", err)
		}
		return entity.EmptyWalletInfo()
	}

	wallet := entity.EmptyWalletInfo()
	if total, err := e.layout.WalletTotal.Text(container); err == nil {
		wallet.USDValue = entity.StringPtr(utils.StripCurrency(total))
	}

	rows, err := e.layout.WalletRows.FindAll(container)
	if err != nil {
		e.logger.Debug("Failed to locate wallet rows", "error", err)
		return wallet
	}
	for idx, row := range rows {
		holding, ok, err := e.extractRow(row)
		if err != nil {
			e.logger.Debug("Skipping wallet row", "error", entity.NewUnitError(entity.UnitRow, idx, err))
			continue
		}
		if !ok {
			continue
		}
		wallet.Tokens = append(wallet.Tokens, holding)
	}
	e.logger.Debug("Wallet extracted", "usd_value", derefOr(wallet.USDValue, ""), "tokens", len(wallet.Tokens))
	return wallet
}

func (e *WalletExtractor) extractRow(row port.Element) (entity.TokenHolding, bool, error) {
	cells, err := e.layout.WalletCells.FindAll(row)
	if err != nil {
		return entity.TokenHolding{}, false, err
	}
	if len(cells) < walletColumns {
		return entity.TokenHolding{}, false, nil
	}
	values, err := texts(cells[:walletColumns])
	if err != nil {
		return entity.TokenHolding{}, false, err
	}
	return entity.TokenHolding{
		Name:     values[0],
		Price:    values[1],
		Amount:   values[2],
		USDValue: values[3],
	}, true, nil
}
