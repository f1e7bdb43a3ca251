// File: internal/orders/syncflow.go
package orders

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/browser"
	"github.com/avikamboj/ordersync-cli/internal/carrier"
	"github.com/avikamboj/ordersync-cli/internal/config"
	"github.com/avikamboj/ordersync-cli/internal/pincode"
)

// Reason codes for unsynced results.
const (
	ReasonTabFailed    = "open-tab-failed"
	ReasonNavFailed    = "navigation-failed"
	ReasonNoSyncButton = "no-sync-button"
)

// SyncResult reports the outcome of one order's sync workflow.
type SyncResult struct {
	Synced bool
	// Carrier is the carrier actually selected in the UI, Unknown when the
	// selection control never appeared or no option could be chosen.
	Carrier carrier.Carrier
	// Reason carries a code when Synced is false.
	Reason string
}

// SyncWorkflow drives the multi-step carrier-sync dialog on an order's
// detail page. Each step runs under a bounded wait; a step whose element is
// absent is skipped, never fatal. Only two conditions end the workflow
// unsynced: the detail page failing to load, and the sync trigger being
// wholly absent.
type SyncWorkflow struct {
	browser  browser.Browser
	orderURL func(orderID string) string
	resolver *carrier.Resolver
	cfg      config.SyncConfig
	logger   *zap.Logger
}

// NewSyncWorkflow wires the workflow. orderURL builds the detail-page
// address for an order id.
func NewSyncWorkflow(b browser.Browser, orderURL func(string) string, resolver *carrier.Resolver, cfg config.SyncConfig, logger *zap.Logger) *SyncWorkflow {
	return &SyncWorkflow{
		browser:  b,
		orderURL: orderURL,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.Named("syncflow"),
	}
}

// Sync runs the workflow with the configured settle wait.
func (w *SyncWorkflow) Sync(ctx context.Context, orderID, pin string) SyncResult {
	return w.SyncWithSettle(ctx, orderID, pin, w.cfg.SettleWait)
}

// SyncWithSettle runs the workflow for one order on a fresh tab. The tab is
// closed on every exit path, success or failure. pin, when non-empty, is the
// resolution hint extracted from the row's address popup.
func (w *SyncWorkflow) SyncWithSettle(ctx context.Context, orderID, pin string, settle time.Duration) SyncResult {
	log := w.logger.With(zap.String("order_id", orderID), zap.String("pincode", pin))

	page, err := w.browser.NewPage(ctx)
	if err != nil {
		log.Error("Could not open a tab for the sync workflow.", zap.Error(err))
		return SyncResult{Carrier: carrier.Unknown, Reason: ReasonTabFailed}
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.Debug("Tab close failed.", zap.Error(cerr))
		}
	}()

	// Native confirm() prompts raised during submit/fetch/save must never
	// stall the run.
	page.AcceptDialogs()

	if err := page.Navigate(ctx, w.orderURL(orderID)); err != nil {
		log.Warn("Order detail page failed to load.", zap.Error(err))
		return SyncResult{Carrier: carrier.Unknown, Reason: ReasonNavFailed}
	}

	// The sync trigger is the one element nothing can proceed without.
	trigger, ok := w.findSyncTrigger(ctx, page)
	if !ok {
		log.Warn("Sync button absent on order detail page.")
		return SyncResult{Carrier: carrier.Unknown, Reason: ReasonNoSyncButton}
	}
	if err := page.Click(ctx, trigger); err != nil {
		log.Warn("Sync button present but could not be activated.", zap.Error(err))
		return SyncResult{Carrier: carrier.Unknown, Reason: ReasonNoSyncButton}
	}

	selected := w.selectCarrier(ctx, page, pin, log)

	// Confirmation toggle, when the dialog renders one, must end up checked.
	if ok, _ := page.Exists(ctx, selConfirmToggle); ok {
		if err := page.SetChecked(ctx, selConfirmToggle, true); err != nil {
			log.Debug("Could not force confirmation toggle.", zap.Error(err))
		}
	}

	// Give the dialog's async reaction room before driving the extended flow.
	if err := page.Sleep(ctx, settle); err != nil {
		return SyncResult{Synced: true, Carrier: selected}
	}

	w.runExtendedFlow(ctx, page, selected, log)

	// Dedicated close control first, generic dismiss as fallback.
	if err := page.Click(ctx, selSyncDialogClose); err != nil {
		if err := page.PressKey(ctx, "Escape"); err != nil {
			log.Debug("Could not dismiss sync dialog.", zap.Error(err))
		}
	}

	log.Info("Sync workflow completed.", zap.String("carrier", selected.String()))
	return SyncResult{Synced: true, Carrier: selected}
}

// findSyncTrigger probes the trigger's selector chain.
func (w *SyncWorkflow) findSyncTrigger(ctx context.Context, page browser.Page) (string, bool) {
	if err := page.WaitVisible(ctx, selSyncButton, w.cfg.StepTimeout); err == nil {
		return selSyncButton, true
	}
	return existingSelector(ctx, page, selSyncButtonFallback)
}

// selectCarrier opens the carrier control and attempts selection through the
// fallback chain: forced override, pincode resolution, pincode recovered
// from the control's own text, and finally the last available option. Each
// failed sub-attempt moves to the next.
func (w *SyncWorkflow) selectCarrier(ctx context.Context, page browser.Page, pin string, log *zap.Logger) carrier.Carrier {
	if err := page.WaitVisible(ctx, selCarrierSelect, w.cfg.StepTimeout); err != nil {
		log.Debug("Carrier selection control never appeared.")
		return carrier.Unknown
	}
	// Opening the control mirrors the operator flow; some panels lazy-load
	// the option list on first interaction.
	if err := page.Click(ctx, selCarrierSelect); err != nil {
		log.Debug("Could not open carrier control.", zap.Error(err))
	}

	// (a) Forced override, only when the pincode is eligible for it.
	if override := w.resolver.Override(); override.Known() {
		if d := w.resolver.Resolve(pin, ""); !d.OverrideMismatch && d.Carrier == override {
			if w.pickOption(ctx, page, override) {
				log.Info("Selected override carrier.", zap.String("carrier", override.String()))
				return override
			}
		}
	}

	// (b) Pincode-resolved carrier from the lookup sets.
	if d := w.resolver.Resolve(pin, ""); d.Carrier.Known() {
		if w.pickOption(ctx, page, d.Carrier) {
			log.Info("Selected pincode-resolved carrier.", zap.String("carrier", d.Carrier.String()))
			return d.Carrier
		}
	}

	// (c) Recover a pincode from the control's own text.
	if text, err := page.Text(ctx, selCarrierSelect); err == nil {
		if recovered := pincode.First(text); recovered != "" && recovered != pin {
			if d := w.resolver.Resolve(recovered, ""); d.Carrier.Known() {
				if w.pickOption(ctx, page, d.Carrier) {
					log.Info("Selected carrier via pincode recovered from the control.",
						zap.String("pincode", recovered),
						zap.String("carrier", d.Carrier.String()))
					return d.Carrier
				}
			}
		}
	}

	// (d) Last resort: take the control's final option and infer the carrier
	// from its visible text.
	opts, err := page.Options(ctx, selCarrierSelect)
	if err != nil || len(opts) == 0 {
		log.Warn("Carrier control has no selectable options.")
		return carrier.Unknown
	}
	last := opts[len(opts)-1]
	if err := page.SelectOption(ctx, selCarrierSelect, last.Value); err != nil {
		log.Warn("Failed to select fallback carrier option.", zap.Error(err))
		return carrier.Unknown
	}
	inferred := carrier.FromLabel(last.Label)
	log.Info("Selected last available carrier option.",
		zap.String("label", last.Label),
		zap.String("carrier", inferred.String()))
	return inferred
}

// pickOption selects the dropdown option whose label maps to the wanted
// carrier.
func (w *SyncWorkflow) pickOption(ctx context.Context, page browser.Page, want carrier.Carrier) bool {
	opts, err := page.Options(ctx, selCarrierSelect)
	if err != nil {
		return false
	}
	for _, opt := range opts {
		if carrier.FromLabel(opt.Label) == want {
			return page.SelectOption(ctx, selCarrierSelect, opt.Value) == nil
		}
	}
	return false
}

// runExtendedFlow performs the confirm, fetch, invoice, and save steps. Each
// is best-effort and independently fault-tolerant; a missing element means
// that enhancement does not apply on this panel revision.
func (w *SyncWorkflow) runExtendedFlow(ctx context.Context, page browser.Page, selected carrier.Carrier, log *zap.Logger) {
	if err := page.Click(ctx, selSyncSubmit); err != nil {
		log.Debug("Sync submit not available.", zap.Error(err))
	}

	// Wait for the carrier control to go away; fall back to a fixed delay
	// when it lingers.
	if err := page.WaitHidden(ctx, selCarrierSelect, w.cfg.DialogCloseWait); err != nil {
		log.Debug("Carrier control still visible; applying fallback delay.")
		if err := page.Sleep(ctx, time.Second); err != nil {
			return
		}
	}

	if err := page.Click(ctx, selSyncConfirmOK); err != nil {
		log.Debug("No confirmation surface to dismiss.")
	}

	if err := page.Click(ctx, selFetchButton); err != nil {
		log.Debug("Fetch action not available.", zap.Error(err))
	}

	// Delhivery needs an invoice before saving.
	if selected == carrier.Delhivery {
		w.generateInvoice(ctx, page, log)
	}

	if err := page.Click(ctx, selSaveButton); err != nil {
		log.Debug("Save action not available.", zap.Error(err))
	}
}

// generateInvoice triggers invoice generation and polls until the invoice
// number field is populated. Non-population after the timeout is logged but
// not fatal.
func (w *SyncWorkflow) generateInvoice(ctx context.Context, page browser.Page, log *zap.Logger) {
	if err := page.Click(ctx, selGenerateInvoice); err != nil {
		log.Debug("Invoice generation not available.", zap.Error(err))
		return
	}

	deadline := time.Now().Add(w.cfg.InvoicePollTimeout)
	for {
		if v, err := page.Value(ctx, selInvoiceNumber); err == nil && v != "" {
			log.Info("Invoice number populated.", zap.String("invoice", v))
			return
		}
		if time.Now().After(deadline) {
			log.Warn("Invoice number did not populate within the poll window.")
			return
		}
		if err := page.Sleep(ctx, w.cfg.InvoicePollInterval); err != nil {
			return
		}
	}
}
