package port

import "portfolio_scraper/internal/domain/entity"

// SnapshotCache keeps recently scraped snapshots keyed by wallet.
type SnapshotCache interface {
	Get(key string) (*entity.ProfileSnapshot, bool)
	Set(key string, snapshot *entity.ProfileSnapshot)
}
