// File: internal/orders/runner.go

// Package orders contains the per-order carrier-resolution and sync-workflow
// engine: popup reading, pincode-to-carrier resolution, the sync state
// machine, and the batch loop that ties them together over the order list.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/browser"
	"github.com/avikamboj/ordersync-cli/internal/carrier"
	"github.com/avikamboj/ordersync-cli/internal/config"
)

// Runner iterates the rendered order rows and processes each one
// independently: a row's failure is logged and never aborts the batch.
type Runner struct {
	page     browser.Page
	popups   *PopupHandler
	flow     *SyncWorkflow
	resolver *carrier.Resolver
	cfg      config.BatchConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewRunner wires the batch loop over the order-list page. A nil clock
// defaults to time.Now.
func NewRunner(page browser.Page, popups *PopupHandler, flow *SyncWorkflow, resolver *carrier.Resolver, cfg config.BatchConfig, logger *zap.Logger, now func() time.Time) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{
		page:     page,
		popups:   popups,
		flow:     flow,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.Named("batch"),
		now:      now,
	}
}

// Run processes the currently rendered order rows and returns the run
// summary. The table is assumed static for the duration of the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := NewSummary(uuid.New().String(), r.now())

	rows, err := r.page.Count(ctx, selOrderRows)
	if err != nil {
		return summary, fmt.Errorf("count order rows: %w", err)
	}
	summary.RowsSeen = rows
	r.logger.Info("Starting batch.", zap.String("run_id", summary.RunID), zap.Int("rows", rows))

	include := toSet(r.cfg.IncludeOrders)
	exclude := toSet(r.cfg.ExcludeOrders)

	processed := 0
	for idx := 0; idx < rows; idx++ {
		if ctx.Err() != nil {
			r.logger.Warn("Batch canceled.", zap.Int("row", idx))
			break
		}
		// The cap stops the batch before the next row is even evaluated.
		if r.cfg.ProcessCount > 0 && processed >= r.cfg.ProcessCount {
			r.logger.Info("Process cap reached; stopping batch.", zap.Int("cap", r.cfg.ProcessCount))
			break
		}

		orderID, ok := r.orderID(ctx, idx)
		if !ok {
			r.logger.Warn("Could not derive an order id for row; skipping.", zap.Int("row", idx))
			continue
		}
		log := r.logger.With(zap.Int("row", idx), zap.String("order_id", orderID))

		if len(include) > 0 {
			if _, listed := include[orderID]; !listed {
				log.Debug("Order not in include list; skipping.")
				continue
			}
		}
		if _, listed := exclude[orderID]; listed {
			log.Info("Order is excluded; skipping.")
			continue
		}

		if r.processRow(ctx, idx, orderID, summary, log) {
			processed++
		}
	}

	summary.FinishedAt = r.now()
	r.logger.Info("Batch finished.",
		zap.Int("rows_seen", rows),
		zap.Int("rows_processed", processed),
		zap.Int("orders_recorded", summary.Processed()))
	return summary, nil
}

// processRow handles one row end to end. It reports whether the row counted
// against the processing cap. All failures, including panics out of the
// browser layer, are contained at this boundary.
func (r *Runner) processRow(ctx context.Context, idx int, orderID string, summary *Summary, log *zap.Logger) (counted bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Row processing panicked; continuing with next row.", zap.Any("panic", rec))
			counted = true
		}
	}()

	trigger, ok := existingSelector(ctx, r.page, rowAddressButton(idx), rowAddressLink(idx))
	if !ok {
		log.Warn("Row has no address trigger; skipping.")
		return false
	}
	if err := r.page.Click(ctx, trigger); err != nil {
		log.Warn("Address trigger could not be activated.", zap.Error(err))
		return false
	}

	popup := r.popups.Handle(ctx, idx, orderID)
	if popup.Pincode == "" {
		log.Info("No pincode for row; order not recorded.",
			zap.Bool("found_address", popup.FoundAddress))
		return true
	}

	decision := r.resolver.Resolve(popup.Pincode, popup.RawText)
	if decision.OverrideMismatch {
		// Operator pinned the run to one carrier; this order is outside its
		// coverage and is skipped from carrier sync entirely.
		log.Info("Pincode outside override carrier coverage; skipping sync.",
			zap.String("pincode", decision.Pincode),
			zap.String("override", r.resolver.Override().String()))
		summary.Add(carrier.Unknown, Record{OrderID: orderID, Pincode: decision.Pincode})
		return true
	}

	result := r.flow.Sync(ctx, orderID, popup.Pincode)
	if !result.Synced {
		log.Warn("Order did not sync.", zap.String("reason", result.Reason))
	}

	// Prefer the carrier the workflow actually selected in the UI; fall back
	// to an independent re-resolution of the pincode.
	final := result.Carrier
	if !final.Known() {
		final = decision.Carrier
	}
	summary.Add(final, Record{OrderID: orderID, Pincode: popup.Pincode})
	log.Info("Row recorded.", zap.String("carrier", final.String()), zap.Bool("synced", result.Synced))
	return true
}

// orderID derives the row's order identifier through the fallback chain:
// row data attribute, then the view button's label, then the first cell.
func (r *Runner) orderID(ctx context.Context, idx int) (string, bool) {
	id, ok := firstHit(ctx, r.page,
		byAttribute(rowSel(idx), "data-order-id"),
		byText(rowOrderButton(idx)),
		byText(rowFirstCell(idx)),
	)
	if !ok {
		return "", false
	}
	// Button labels render as "#101" or "View #101"; keep the identifier.
	id = strings.TrimSpace(strings.TrimPrefix(id, "View"))
	id = strings.TrimSpace(strings.TrimPrefix(id, "#"))
	return id, id != ""
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}
