package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/infrastructure/configloader"
	"portfolio_scraper/internal/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Stages reported in entity.ScrapeError.
const (
	StageValidate = "validate"
	StageSession  = "session"
	StageScrape   = "scrape"
)

// ProfileServiceImpl implements port.ProfileService.
type ProfileServiceImpl struct {
	sessions        port.SessionFactory
	cache           port.SnapshotCache
	layout          Layout
	cfg             configloader.ScraperConfig
	logger          port.Logger
	maxConcurrent   int
	sessionSlots    *semaphore.Weighted
	limiter         *rate.Limiter
	inflight        singleflight.Group
	failedAddresses map[string]bool
	mu              sync.Mutex
}

// NewProfileService creates a new instance of ProfileServiceImpl.
func NewProfileService(
	sessions port.SessionFactory,
	cache port.SnapshotCache,
	layout Layout,
	cfg *configloader.Config,
	logger port.Logger,
) port.ProfileService {
	maxConcurrent := cfg.Performance.MaxConcurrentSessions
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	limit := rate.Inf
	if cfg.Performance.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.Performance.RequestsPerMinute / 60)
	}
	burst := cfg.Performance.Burst
	if burst <= 0 {
		burst = 1
	}
	return &ProfileServiceImpl{
		sessions:        sessions,
		cache:           cache,
		layout:          layout,
		cfg:             cfg.Scraper,
		logger:          logger,
		maxConcurrent:   maxConcurrent,
		sessionSlots:    semaphore.NewWeighted(int64(maxConcurrent)),
		limiter:         rate.NewLimiter(limit, burst),
		failedAddresses: make(map[string]bool),
	}
}

// FetchProfile implements port.ProfileService. Concurrent calls for the same
// wallet share one scrape.
func (s *ProfileServiceImpl) FetchProfile(ctx context.Context, address string, refresh bool) (*entity.ProfileSnapshot, error) {
	wallet, err := entity.ParseWalletAddress(address)
	if err != nil {
		return nil, err
	}
	key := wallet.CacheKey()

	if !refresh {
		if snapshot, ok := s.cache.Get(key); ok {
			s.logger.Debug("Serving profile from cache", "address", wallet.Address, "chains", snapshot.Len())
			metrics.ScrapesTotal.WithLabelValues("cached").Inc()
			return snapshot, nil
		}
	}

	v, err, shared := s.inflight.Do(key, func() (any, error) {
		return s.scrape(ctx, wallet)
	})
	if shared {
		s.logger.Debug("Joined in-flight scrape", "address", wallet.Address)
	}
	if err != nil {
		return nil, err
	}
	return v.(*entity.ProfileSnapshot), nil
}

func (s *ProfileServiceImpl) scrape(ctx context.Context, wallet entity.Wallet) (*entity.ProfileSnapshot, error) {
	scrapeID := uuid.NewString()

	if err := s.sessionSlots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire session slot for %s: %w", wallet.Address, err)
	}
	defer s.sessionSlots.Release(1)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for %s: %w", wallet.Address, err)
	}

	s.logger.Info("Starting profile scrape", "scrape_id", scrapeID, "address", wallet.Address)
	start := time.Now()

	session, err := s.sessions.Open(ctx)
	if err != nil {
		s.markFailed(wallet.Address, true)
		metrics.ScrapesTotal.WithLabelValues("failed").Inc()
		s.logger.Error("Failed to open page session", "scrape_id", scrapeID, "address", wallet.Address, "error", err)
		if !errors.Is(err, entity.ErrSessionUnavailable) {
			err = fmt.Errorf("%w: %w", entity.ErrSessionUnavailable, err)
		}
		return nil, err
	}
	metrics.ActiveSessions.Inc()
	defer func() {
		metrics.ActiveSessions.Dec()
		if err := session.Close(); err != nil {
			s.logger.Warn("Failed to close page session", "scrape_id", scrapeID, "error", err)
		}
	}()

	scrapeCtx := ctx
	if timeout := s.cfg.ScrapeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		scrapeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	snapshot, err := NewChainOrchestrator(session, s.layout, s.cfg, s.logger).Scrape(scrapeCtx, wallet)
	metrics.ScrapeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.markFailed(wallet.Address, true)
		metrics.ScrapesTotal.WithLabelValues("failed").Inc()
		s.logger.Error("Profile scrape failed", "scrape_id", scrapeID, "address", wallet.Address, "error", err)
		return nil, err
	}

	if ctx.Err() != nil {
		// Вызывающий ушёл раньше времени: снимок неполный, в кэш его не кладём.
		metrics.ScrapesTotal.WithLabelValues("partial").Inc()
		s.logger.Warn("Profile scrape cancelled by caller, partial snapshot not cached",
			"scrape_id", scrapeID,
			"address", wallet.Address,
			"chains", snapshot.Len(),
			"error", ctx.Err())
		return snapshot, nil
	}

	outcome := "ok"
	if snapshot.Len() == 0 {
		outcome = "empty"
	}
	metrics.ScrapesTotal.WithLabelValues(outcome).Inc()
	s.markFailed(wallet.Address, false)
	s.cache.Set(wallet.CacheKey(), snapshot)

	s.logger.Info("Profile scrape finished",
		"scrape_id", scrapeID,
		"address", wallet.Address,
		"chains", snapshot.Len(),
		"duration", time.Since(start).String())
	return snapshot, nil
}

// FetchProfiles implements port.ProfileService.
func (s *ProfileServiceImpl) FetchProfiles(ctx context.Context, addresses []string) (map[string]*entity.ProfileSnapshot, []entity.ScrapeError) {
	s.logger.Info("Fetching profiles", "count", len(addresses))

	results := make(map[string]*entity.ProfileSnapshot, len(addresses))
	var scrapeErrors []entity.ScrapeError
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrent)
	for _, address := range addresses {
		address := address
		eg.Go(func() error {
			snapshot, err := s.FetchProfile(egCtx, address, false)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("Error fetching profile for address", "address", address, "error", err)
				scrapeErrors = append(scrapeErrors, entity.ScrapeError{
					WalletAddress: address,
					Stage:         stageOf(err),
					Message:       err.Error(),
				})
				return nil // Ошибка одного кошелька не отменяет остальные
			}
			results[address] = snapshot
			return nil
		})
	}
	_ = eg.Wait()

	sort.Slice(scrapeErrors, func(i, j int) bool { return scrapeErrors[i].WalletAddress < scrapeErrors[j].WalletAddress })
	s.logger.Info("Profile fetching complete", "profiles", len(results), "errors", len(scrapeErrors))
	return results, scrapeErrors
}

// GetFailedAddresses implements port.ProfileService.
func (s *ProfileServiceImpl) GetFailedAddresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	addresses := make([]string, 0, len(s.failedAddresses))
	for address := range s.failedAddresses {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}

func (s *ProfileServiceImpl) markFailed(address string, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if failed {
		s.failedAddresses[address] = true
	} else {
		delete(s.failedAddresses, address)
	}
}

func stageOf(err error) string {
	switch {
	case errors.Is(err, entity.ErrInvalidAddress):
		return StageValidate
	case errors.Is(err, entity.ErrSessionUnavailable):
		return StageSession
	default:
		return StageScrape
	}
}
