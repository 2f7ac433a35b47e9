package port

import "portfolio_scraper/internal/domain/entity"

// WalletProvider defines the interface for fetching wallet addresses.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}
