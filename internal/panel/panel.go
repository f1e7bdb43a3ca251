// File: internal/panel/panel.go

// Package panel holds the scripted glue against the order-management admin
// panel: logging in and opening the order list. It has no decision logic of
// its own; the per-order processing lives in internal/orders.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/browser"
	"github.com/avikamboj/ordersync-cli/internal/config"
)

// Panel element selectors. The admin backend renders a conventional
// login form and a paginated order table.
const (
	selUsername    = "#username"
	selPassword    = "#password"
	selLoginSubmit = "button[type=submit]"
	selDashboard   = "nav.sidebar"
	selOrderTable  = "table.order-table tbody tr"
)

// ErrLoginFailed reports that the panel rejected the credentials or never
// rendered the dashboard.
var ErrLoginFailed = errors.New("panel login failed")

// Client drives the panel's session surface.
type Client struct {
	cfg    config.PanelConfig
	page   browser.Page
	logger *zap.Logger
}

// NewClient wraps the given page, normally the browser's initial tab.
func NewClient(cfg config.PanelConfig, page browser.Page, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		page:   page,
		logger: logger.Named("panel"),
	}
}

// Page exposes the underlying surface for the batch runner.
func (c *Client) Page() browser.Page { return c.page }

// Login signs into the panel, retrying the configured number of times. The
// run cannot proceed without a session, so exhausting the retries is fatal to
// the caller.
func (c *Client) Login(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.LoginRetries; attempt++ {
		c.logger.Info("Attempting login.", zap.Int("attempt", attempt), zap.Int("max", c.cfg.LoginRetries))
		if lastErr = c.loginOnce(ctx); lastErr == nil {
			c.logger.Info("Login successful.")
			return nil
		}
		c.logger.Warn("Login attempt failed.", zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt < c.cfg.LoginRetries {
			if err := c.page.Sleep(ctx, c.cfg.LoginRetryGap); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrLoginFailed, c.cfg.LoginRetries, lastErr)
}

func (c *Client) loginOnce(ctx context.Context) error {
	if err := c.page.Navigate(ctx, c.cfg.BaseURL); err != nil {
		return fmt.Errorf("load login page: %w", err)
	}
	if err := c.page.WaitVisible(ctx, selUsername, 10*time.Second); err != nil {
		// No login form; we may already hold a session.
		if ok, _ := c.page.Exists(ctx, selDashboard); ok {
			c.logger.Debug("Already logged in; skipping credentials.")
			return nil
		}
		return fmt.Errorf("login form never appeared: %w", err)
	}

	if err := c.page.SetValue(ctx, selUsername, c.cfg.Username); err != nil {
		return err
	}
	if err := c.page.SetValue(ctx, selPassword, c.cfg.Password); err != nil {
		return err
	}
	if err := c.page.Click(ctx, selLoginSubmit); err != nil {
		return err
	}

	if err := c.page.WaitVisible(ctx, selDashboard, 10*time.Second); err != nil {
		return fmt.Errorf("dashboard never rendered: %w", err)
	}
	return nil
}

// OpenOrderList navigates to the order-list view and waits for rows to
// render. A list with zero rows is not an error; the batch just has nothing
// to do.
func (c *Client) OpenOrderList(ctx context.Context) error {
	url := c.orderListURL()
	c.logger.Info("Opening order list.", zap.String("url", url))
	if err := c.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("open order list: %w", err)
	}
	if err := c.page.WaitVisible(ctx, selOrderTable, 10*time.Second); err != nil {
		c.logger.Warn("Order table did not render any rows.", zap.Error(err))
	}
	return nil
}

// OrderURL builds the detail-page address for one order.
func (c *Client) OrderURL(orderID string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + fmt.Sprintf(c.cfg.OrderPath, orderID)
}

func (c *Client) orderListURL() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + c.cfg.OrderListPath
}
