// Package browser implements the page accessor on a live Chrome driven by go-rod.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"portfolio_scraper/internal/app/port"
	"portfolio_scraper/internal/client"
	"portfolio_scraper/internal/domain/entity"
	"portfolio_scraper/internal/infrastructure/configloader"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// hideWebdriver runs before any page script so the automation flag is not visible.
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// Launcher owns one browser connection and opens an isolated page per session.
type Launcher struct {
	cfg      configloader.BrowserConfig
	devtools client.DevToolsClient
	logger   port.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
}

// NewLauncher creates a Launcher. devtools may be nil when cfg.DevToolsURL is empty.
func NewLauncher(cfg configloader.BrowserConfig, devtools client.DevToolsClient, logger port.Logger) *Launcher {
	return &Launcher{cfg: cfg, devtools: devtools, logger: logger}
}

// Open implements port.SessionFactory.
func (l *Launcher) Open(ctx context.Context) (port.Session, error) {
	browser, err := l.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSessionUnavailable, err)
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("%w: incognito context: %w", entity.ErrSessionUnavailable, err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("%w: create page: %w", entity.ErrSessionUnavailable, err)
	}

	if err := l.disguise(page); err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("%w: %w", entity.ErrSessionUnavailable, err)
	}

	l.logger.Debug("Browser page opened", "target", string(page.TargetID))
	return &rodSession{
		page:              page,
		incognito:         incognito,
		navigationTimeout: time.Duration(l.cfg.NavigationTimeoutSeconds) * time.Second,
		logger:            l.logger,
	}, nil
}

func (l *Launcher) disguise(page *rod.Page) error {
	if l.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: l.cfg.UserAgent}); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             l.cfg.ViewportWidth,
		Height:            l.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}); err != nil {
		l.logger.Warn("Failed to set viewport", "error", err)
	}
	if _, err := page.EvalOnNewDocument(hideWebdriver); err != nil {
		return fmt.Errorf("install webdriver shim: %w", err)
	}
	return nil
}

// connect returns the shared browser, attaching or launching it on first use.
func (l *Launcher) connect(ctx context.Context) (*rod.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.browser != nil {
		return l.browser, nil
	}

	controlURL, err := l.controlURL(ctx)
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.killLaunched()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	l.browser = browser
	l.logger.Info("Connected to browser", "control_url", controlURL, "launched", l.launched != nil)
	return browser, nil
}

func (l *Launcher) controlURL(ctx context.Context) (string, error) {
	if l.cfg.ControlURL != "" {
		return l.cfg.ControlURL, nil
	}
	if l.cfg.DevToolsURL != "" && l.devtools != nil {
		wsURL, err := l.devtools.WebSocketURL(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve devtools websocket: %w", err)
		}
		return wsURL, nil
	}

	launch := launcher.New().
		Headless(l.cfg.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled").
		Delete(flags.Flag("enable-automation"))
	if l.cfg.Bin != "" {
		launch = launch.Bin(l.cfg.Bin)
	}
	if l.cfg.UserAgent != "" {
		launch = launch.Set(flags.Flag("user-agent"), l.cfg.UserAgent)
	}
	launch = launch.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", l.cfg.ViewportWidth, l.cfg.ViewportHeight))
	for _, rawFlag := range l.cfg.Flags {
		flagStr := strings.TrimLeft(rawFlag, "-")
		name, val, hasVal := strings.Cut(flagStr, "=")
		if hasVal {
			launch = launch.Set(flags.Flag(name), val)
		} else {
			launch = launch.Set(flags.Flag(name))
		}
	}

	url, err := launch.Launch()
	if err != nil {
		return "", fmt.Errorf("launch chrome: %w", err)
	}
	l.launched = launch
	return url, nil
}

// Close disconnects from the browser and kills it when this Launcher started it.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.browser != nil {
		if l.launched != nil {
			err = l.browser.Close()
		}
		l.browser = nil
	}
	l.killLaunched()
	return err
}

func (l *Launcher) killLaunched() {
	if l.launched != nil {
		l.launched.Kill()
		l.launched.Cleanup()
		l.launched = nil
	}
}
