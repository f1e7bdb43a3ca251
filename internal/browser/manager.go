// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/config"
)

// Manager launches and owns the Chrome process via a chromedp exec
// allocator. Tabs created through NewPage share the one browser; the first
// context created from the allocator is the browser itself and subsequent
// contexts branch off it as tabs.
type Manager struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	allocCtx     context.Context
	allocCancel  context.CancelFunc
	browserCtx   context.Context
	browserClose context.CancelFunc

	mu     sync.Mutex
	closed bool
}

var _ Browser = (*Manager)(nil)

// NewManager starts Chrome with the configured flags and verifies the CDP
// connection by running an empty task.
func NewManager(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Manager, error) {
	log := logger.Named("browser")

	opts := append(chromedp.DefaultExecAllocatorOptions[:], execOptions(cfg)...)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	ctxOpts := []chromedp.ContextOption{}
	if cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(log.Sugar().Debugf))
	}
	browserCtx, browserClose := chromedp.NewContext(allocCtx, ctxOpts...)

	// Running an empty task forces the browser to actually start.
	if err := chromedp.Run(browserCtx); err != nil {
		browserClose()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Info("Browser launched.", zap.Bool("headless", cfg.Headless))
	return &Manager{
		cfg:          cfg,
		logger:       log,
		allocCtx:     allocCtx,
		allocCancel:  allocCancel,
		browserCtx:   browserCtx,
		browserClose: browserClose,
	}, nil
}

// NewPage opens a fresh tab. The returned page must be closed by the caller;
// the sync workflow does so on every exit path.
func (m *Manager) NewPage(ctx context.Context) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("browser manager is closed")
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx)
	// Attach the tab so chromedp materializes the target now rather than on
	// first use; this surfaces launch failures where the caller can act.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	return newChromePage(tabCtx, tabCancel, m.cfg, m.logger), nil
}

// FirstPage returns the browser's initial tab as a Page. The login and
// order-list navigation run on this surface.
func (m *Manager) FirstPage() Page {
	return newChromePage(m.browserCtx, func() {}, m.cfg, m.logger)
}

// Close shuts down the browser process.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.browserClose()
	m.allocCancel()
	m.logger.Info("Browser closed.")
	return nil
}

// execOptions translates BrowserConfig into chromedp allocator options.
func execOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	var opts []chromedp.ExecAllocatorOption
	for flag, value := range execFlags(cfg) {
		opts = append(opts, chromedp.Flag(flag, value))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	return opts
}

// execFlags is the pure flag mapping, split out for testability.
func execFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":        cfg.Headless,
		"disable-gpu":     cfg.Headless,
		"no-first-run":    true,
		"mute-audio":      true,
		"window-size":     "1440,900",
		"hide-scrollbars": false,
	}
	if cfg.DisableCache {
		flags["disable-application-cache"] = true
	}
	if cfg.IgnoreTLSErrors {
		flags["ignore-certificate-errors"] = true
	}
	return flags
}
