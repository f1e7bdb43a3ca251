// File: internal/orders/syncflow_test.go
package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/browser"
	"github.com/avikamboj/ordersync-cli/internal/carrier"
	"github.com/avikamboj/ordersync-cli/internal/config"
	"github.com/avikamboj/ordersync-cli/internal/orders/ordertest"
)

// stubLoader serves canned workbook columns.
type stubLoader struct{ columns map[string][]string }

func (l stubLoader) LoadColumn(path string) ([]string, error) { return l.columns[path], nil }

func testResolver(override string) *carrier.Resolver {
	store := carrier.NewLookupStore(
		config.CarriersConfig{
			DTDCFile:       "dtdc.xlsx",
			DelhiveryFile:  "delhivery.xlsx",
			ReloadInterval: time.Minute,
		},
		stubLoader{columns: map[string][]string{
			"dtdc.xlsx":      {"686001"},
			"delhivery.xlsx": {"689672"},
		}},
		nil,
		zap.NewNop(),
	)
	return carrier.NewResolver(store, override, zap.NewNop())
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		StepTimeout:         time.Second,
		SettleWait:          2500 * time.Millisecond,
		DialogCloseWait:     time.Second,
		InvoicePollTimeout:  50 * time.Millisecond,
		InvoicePollInterval: 10 * time.Millisecond,
	}
}

// detailPage scripts an order detail page with the sync dialog present.
func detailPage(opts []browser.Option) *ordertest.Page {
	p := ordertest.NewPage()
	p.AddElement(selSyncButton, ordertest.Element{Visible: true})
	p.AddElement(selCarrierSelect, ordertest.Element{Visible: true, Options: opts})
	p.AddElement(selConfirmToggle, ordertest.Element{Visible: true})
	p.AddElement(selSyncSubmit, ordertest.Element{Visible: true})
	p.AddElement(selFetchButton, ordertest.Element{Visible: true})
	p.AddElement(selSaveButton, ordertest.Element{Visible: true})
	p.AddElement(selSyncDialogClose, ordertest.Element{Visible: true})
	// Submitting hides the carrier control, as the real dialog does.
	p.ClickHooks[selSyncSubmit] = func(p *ordertest.Page) {
		if el, ok := p.Elements[selCarrierSelect]; ok {
			el.Visible = false
		}
	}
	return p
}

func carrierOptions() []browser.Option {
	return []browser.Option{
		{Value: "1", Label: "DTDC Courier"},
		{Value: "2", Label: "Delhivery Surface"},
	}
}

func orderURL(id string) string { return "https://panel.example.com/admin/orders/" + id }

func TestSyncWorkflowHappyPathDTDC(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = detailPage(carrierOptions())
		return page
	}}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "101", "686001")

	require.True(t, res.Synced)
	assert.Equal(t, carrier.DTDC, res.Carrier)
	assert.Empty(t, res.Reason)

	// The pincode-resolved carrier was selected in the UI.
	assert.Equal(t, "1", page.Elements[selCarrierSelect].Value)
	// Confirmation toggle forced on.
	assert.True(t, page.Elements[selConfirmToggle].Checked)
	// Settle wait applied.
	assert.Contains(t, page.Sleeps, 2500*time.Millisecond)
	// Extended flow ran: submit, confirm dismissed or absent, fetch, save.
	assert.Contains(t, page.Clicks, selSyncSubmit)
	assert.Contains(t, page.Clicks, selFetchButton)
	assert.Contains(t, page.Clicks, selSaveButton)
	// DTDC needs no invoice.
	assert.NotContains(t, page.Clicks, selGenerateInvoice)
	// Dialogs auto-accepted and the tab closed.
	assert.True(t, page.DialogsAuto)
	assert.True(t, page.Closed)
	assert.Equal(t, []string{orderURL("101")}, page.NavigatedTo)
}

func TestSyncWorkflowDelhiveryGeneratesInvoice(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = detailPage(carrierOptions())
		page.AddElement(selGenerateInvoice, ordertest.Element{Visible: true})
		invoice := page.AddElement(selInvoiceNumber, ordertest.Element{Visible: true})
		page.ClickHooks[selGenerateInvoice] = func(*ordertest.Page) {
			invoice.Value = "INV-2041"
		}
		return page
	}}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "202", "689672")

	require.True(t, res.Synced)
	assert.Equal(t, carrier.Delhivery, res.Carrier)
	assert.Equal(t, "2", page.Elements[selCarrierSelect].Value)
	assert.Contains(t, page.Clicks, selGenerateInvoice)
	// Save still happens after the invoice populates.
	assert.Contains(t, page.Clicks, selSaveButton)
	assert.True(t, page.Closed)
}

func TestSyncWorkflowInvoiceNeverPopulates(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = detailPage(carrierOptions())
		page.AddElement(selGenerateInvoice, ordertest.Element{Visible: true})
		page.AddElement(selInvoiceNumber, ordertest.Element{Visible: true})
		return page
	}}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "202", "689672")

	// Non-population is logged, not fatal: the workflow still saves and
	// reports synced.
	require.True(t, res.Synced)
	assert.Contains(t, page.Clicks, selSaveButton)
}

func TestSyncWorkflowNavigationFailure(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = ordertest.NewPage()
		page.NavigateErr = errors.New("connection refused")
		return page
	}}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "101", "686001")

	assert.False(t, res.Synced)
	assert.Equal(t, ReasonNavFailed, res.Reason)
	assert.True(t, page.Closed, "tab must be closed on the failure path too")
}

func TestSyncWorkflowMissingSyncButton(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = ordertest.NewPage() // detail page without any sync trigger
		return page
	}}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "101", "686001")

	assert.False(t, res.Synced)
	assert.Equal(t, ReasonNoSyncButton, res.Reason)
	assert.True(t, page.Closed)
}

func TestSyncWorkflowSyncButtonFallbackSelector(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = detailPage(carrierOptions())
		page.Remove(selSyncButton)
		page.AddElement(selSyncButtonFallback, ordertest.Element{Visible: true})
		return page
	}}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "101", "686001")

	require.True(t, res.Synced)
	assert.Contains(t, page.Clicks, selSyncButtonFallback)
}

func TestSyncWorkflowTabOpenFailure(t *testing.T) {
	b := &ordertest.Browser{NewPageErr: errors.New("browser is gone")}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "101", "686001")

	assert.False(t, res.Synced)
	assert.Equal(t, ReasonTabFailed, res.Reason)
}

func TestSyncWorkflowLastOptionFallback(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = detailPage(carrierOptions())
		return page
	}}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	// Pincode in neither set: attempts (a)-(c) fail, the last option wins
	// and its label infers the carrier.
	res := w.Sync(context.Background(), "303", "690001")

	require.True(t, res.Synced)
	assert.Equal(t, carrier.Delhivery, res.Carrier)
	assert.Equal(t, "2", page.Elements[selCarrierSelect].Value)
}

func TestSyncWorkflowMissingCarrierControl(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = detailPage(nil)
		page.Remove(selCarrierSelect)
		return page
	}}
	w := NewSyncWorkflow(b, orderURL, testResolver(""), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "101", "686001")

	// The control never appearing is non-fatal; the workflow proceeds and
	// reports an unknown carrier.
	require.True(t, res.Synced)
	assert.Equal(t, carrier.Unknown, res.Carrier)
}

func TestSyncWorkflowOverridePreferred(t *testing.T) {
	var page *ordertest.Page
	b := &ordertest.Browser{PageFactory: func() *ordertest.Page {
		page = detailPage(carrierOptions())
		return page
	}}
	// 689672 is Delhivery territory and the override agrees.
	w := NewSyncWorkflow(b, orderURL, testResolver("delhivery"), testSyncConfig(), zap.NewNop())

	res := w.Sync(context.Background(), "404", "689672")

	require.True(t, res.Synced)
	assert.Equal(t, carrier.Delhivery, res.Carrier)
	assert.Equal(t, "2", page.Elements[selCarrierSelect].Value)
}
