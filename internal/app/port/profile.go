package port

import (
	"context"

	"portfolio_scraper/internal/domain/entity"
)

// ProfileService defines the interface for fetching wallet profile snapshots.
type ProfileService interface {
	// FetchProfile scrapes (or serves from cache, unless refresh is set) the snapshot of one wallet.
	FetchProfile(ctx context.Context, address string, refresh bool) (*entity.ProfileSnapshot, error)

	// FetchProfiles scrapes several wallets. Failures are reported per wallet, never as a whole.
	FetchProfiles(ctx context.Context, addresses []string) (map[string]*entity.ProfileSnapshot, []entity.ScrapeError)

	// GetFailedAddresses returns wallet addresses whose last scrape failed.
	GetFailedAddresses() []string
}

// ProfileScraper produces a snapshot from an already opened session.
type ProfileScraper interface {
	Scrape(ctx context.Context, wallet entity.Wallet) (*entity.ProfileSnapshot, error)
}
