package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/infrastructure/configloader"
	"portfolio_scraper/internal/infrastructure/htmldoc"
	"portfolio_scraper/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

// faultySession wraps a replay and injects failures the live page produces:
// a click that errors after the page already reacted, and a DOM read that panics.
type faultySession struct {
	*htmldoc.ReplaySession
	clicks      int
	failClick   int // 1-based, 0 never fails
	panicFrame  int // frame index, 0 never panics
	panicSel    port.Selector
	afterSettle func()
	navigated   string
}

func (f *faultySession) Navigate(ctx context.Context, url string) error {
	f.navigated = url
	return f.ReplaySession.Navigate(ctx, url)
}

func (f *faultySession) Click(ctx context.Context, el port.Element) error {
	f.clicks++
	if err := f.ReplaySession.Click(ctx, el); err != nil {
		return err
	}
	if f.clicks == f.failClick {
		return errors.New("element click intercepted")
	}
	return nil
}

func (f *faultySession) Find(sel port.Selector) (port.Element, error) {
	if f.panicFrame > 0 && f.Frame() == f.panicFrame && sel == f.panicSel {
		panic("node is detached from document")
	}
	return f.ReplaySession.Find(sel)
}

func (f *faultySession) Settle(ctx context.Context, d time.Duration) error {
	err := f.ReplaySession.Settle(ctx, d)
	if f.afterSettle != nil {
		f.afterSettle()
	}
	return err
}

func readyHeader() string {
	return readyStatus("Data updated 2 minutes ago") + `<div class="HeaderInfo_totalAssetInner__HyrdC">$9,000</div>`
}

func chainContent(name string, total int) string {
	return walletTable(fmt.Sprintf("$%d", total), walletRow(name+"-ETH", "$3,000", "1", "$3,000")) +
		project(name+" Swap", "$1,080", farmingPanel())
}

// chainFrames renders the chain list followed by one frame per chain activation.
func chainFrames(t *testing.T, names ...string) []*htmldoc.Document {
	t.Helper()
	frames := []*htmldoc.Document{parse(t, profilePage(readyHeader(), chainList(names...)))}
	for i, name := range names {
		frames = append(frames, parse(t, profilePage(readyHeader(), chainList(names...), chainContent(name, i+1))))
	}
	return frames
}

func newFaultySession(frames []*htmldoc.Document) *faultySession {
	return &faultySession{ReplaySession: htmldoc.NewReplaySession(frames, testLogger())}
}

func scraperConfig() configloader.ScraperConfig {
	return configloader.Default().Scraper
}

func scrape(t *testing.T, ctx context.Context, session port.Session) *entity.ProfileSnapshot {
	t.Helper()
	wallet, err := entity.ParseWalletAddress(testWallet)
	require.NoError(t, err)
	snapshot, err := NewChainOrchestrator(session, DefaultLayout(), scraperConfig(), testLogger()).Scrape(ctx, wallet)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	return snapshot
}

func TestChainOrchestratorScrapesEveryChain(t *testing.T) {
	session := newFaultySession(chainFrames(t, "Ethereum", "Arbitrum", "Base"))
	timeoutsBefore := testutil.ToFloat64(metrics.ReadinessTimeouts)

	snapshot := scrape(t, context.Background(), session)

	assert.Equal(t, "https://debank.com/profile/"+testWallet, session.navigated)
	assert.Equal(t, []string{"Ethereum", "Arbitrum", "Base"}, snapshot.Names())
	assert.Equal(t, timeoutsBefore, testutil.ToFloat64(metrics.ReadinessTimeouts))

	for i, name := range snapshot.Names() {
		chain, ok := snapshot.Get(name)
		require.True(t, ok)
		assert.Equal(t, name, chain.Name)
		require.NotNil(t, chain.WalletInfo.USDValue)
		assert.Equal(t, fmt.Sprint(i+1), *chain.WalletInfo.USDValue, "chain %s must see its own frame", name)
		require.Len(t, chain.WalletInfo.Tokens, 1)
		assert.Equal(t, name+"-ETH", chain.WalletInfo.Tokens[0].Name)
		require.Len(t, chain.ProjectInfo, 1)
		assert.Equal(t, name+" Swap", chain.ProjectInfo[0].Name)
	}

	data, err := jsoniter.Marshal(snapshot)
	require.NoError(t, err)
	body := string(data)
	assert.True(t, strings.Index(body, `"Ethereum"`) < strings.Index(body, `"Arbitrum"`))
	assert.True(t, strings.Index(body, `"Arbitrum"`) < strings.Index(body, `"Base"`))
}

func TestChainOrchestratorDropsChainWhoseClickFails(t *testing.T) {
	session := newFaultySession(chainFrames(t, "Ethereum", "Arbitrum", "Base"))
	session.failClick = 2
	before := unitFailures(entity.UnitChain)

	snapshot := scrape(t, context.Background(), session)

	assert.Equal(t, []string{"Ethereum", "Base"}, snapshot.Names())
	base, _ := snapshot.Get("Base")
	assert.Equal(t, "3", *base.WalletInfo.USDValue)
	assert.Equal(t, before+1, unitFailures(entity.UnitChain))
}

func TestChainOrchestratorRecoversFromPanic(t *testing.T) {
	session := newFaultySession(chainFrames(t, "Ethereum", "Arbitrum", "Base"))
	session.panicFrame = 2
	session.panicSel = DefaultLayout().WalletContainer[0].Selector

	snapshot := scrape(t, context.Background(), session)

	assert.Equal(t, []string{"Ethereum", "Base"}, snapshot.Names())
}

func TestChainOrchestratorDuplicateChainNames(t *testing.T) {
	session := newFaultySession(chainFrames(t, "Ethereum", "Optimism", "Ethereum"))

	snapshot := scrape(t, context.Background(), session)

	assert.Equal(t, []string{"Ethereum", "Optimism"}, snapshot.Names())
	eth, _ := snapshot.Get("Ethereum")
	assert.Equal(t, "3", *eth.WalletInfo.USDValue, "latest data wins")
}

func TestChainOrchestratorReturnsPartialSnapshotOnDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := newFaultySession(chainFrames(t, "Ethereum", "Arbitrum", "Base"))
	session.afterSettle = cancel

	snapshot := scrape(t, ctx, session)

	assert.Equal(t, []string{"Ethereum"}, snapshot.Names())
	assert.Equal(t, 1, session.clicks)
}

func TestChainOrchestratorExpandsChainList(t *testing.T) {
	expand := `<button class="TotalAssetInfo_expandBtn__xYz">Show all</button>`
	frames := []*htmldoc.Document{
		parse(t, profilePage(readyHeader(), chainList("Ethereum"), expand)),
		parse(t, profilePage(readyHeader(), chainList("Ethereum", "BNB   Chain"))),
		parse(t, profilePage(readyHeader(), chainList("Ethereum", "BNB   Chain"), chainContent("Ethereum", 1))),
		parse(t, profilePage(readyHeader(), chainList("Ethereum", "BNB   Chain"), chainContent("BNB", 2))),
	}
	session := newFaultySession(frames)

	snapshot := scrape(t, context.Background(), session)

	assert.Equal(t, 3, session.clicks)
	assert.Equal(t, []string{"Ethereum", "BNB Chain"}, snapshot.Names())
	bnb, _ := snapshot.Get("BNB Chain")
	assert.Equal(t, "2", *bnb.WalletInfo.USDValue)
}

func TestChainOrchestratorCarriesOnWithoutReadiness(t *testing.T) {
	frames := []*htmldoc.Document{
		parse(t, profilePage(chainList("Ethereum"))),
		parse(t, profilePage(chainList("Ethereum"), chainContent("Ethereum", 1))),
	}
	before := testutil.ToFloat64(metrics.ReadinessTimeouts)

	snapshot := scrape(t, context.Background(), newFaultySession(frames))

	assert.Equal(t, []string{"Ethereum"}, snapshot.Names())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ReadinessTimeouts))
}

func TestChainOrchestratorWithoutChains(t *testing.T) {
	snapshot := scrape(t, context.Background(), newFaultySession([]*htmldoc.Document{parse(t, profilePage(readyHeader()))}))

	assert.Zero(t, snapshot.Len())
	data, err := jsoniter.Marshal(snapshot)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestChainOrchestratorNavigationFailure(t *testing.T) {
	wallet, err := entity.ParseWalletAddress(testWallet)
	require.NoError(t, err)

	snapshot, err := NewChainOrchestrator(newFaultySession(nil), DefaultLayout(), scraperConfig(), testLogger()).
		Scrape(context.Background(), wallet)

	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrSessionUnavailable)
	assert.Nil(t, snapshot)
}
