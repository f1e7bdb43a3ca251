// File: internal/orders/popup.go
package orders

import (
	"context"
	"unicode"

	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/browser"
	"github.com/avikamboj/ordersync-cli/internal/config"
	"github.com/avikamboj/ordersync-cli/internal/pincode"
)

// PopupResult is what one address-popup read produced.
type PopupResult struct {
	// FoundAddress is true when the popup appeared and carried at least one
	// alphanumeric character.
	FoundAddress bool
	// Pincode is the primary extracted pincode, empty when none was usable.
	Pincode string
	// Pincodes holds every distinct candidate in first-seen order.
	Pincodes []string
	// RawText is the popup's full text, empty when it never appeared.
	RawText string
}

// PopupHandler reads the address popup a row's trigger opens, extracts the
// pincode candidates, and closes the popup again. A popup that never shows
// up is an expected outcome, not an error.
type PopupHandler struct {
	page   browser.Page
	cfg    config.BatchConfig
	logger *zap.Logger
}

// NewPopupHandler builds a handler over the order-list page.
func NewPopupHandler(page browser.Page, cfg config.BatchConfig, logger *zap.Logger) *PopupHandler {
	return &PopupHandler{
		page:   page,
		cfg:    cfg,
		logger: logger.Named("popup"),
	}
}

// Handle waits for the popup, reads and classifies its text, and always
// tries to close it afterward. Close failures are swallowed; the batch must
// move on to the next row regardless.
func (h *PopupHandler) Handle(ctx context.Context, rowIndex int, orderID string) PopupResult {
	log := h.logger.With(zap.Int("row", rowIndex), zap.String("order_id", orderID))

	if err := h.page.WaitVisible(ctx, selAddressPopup, h.cfg.PopupWait); err != nil {
		log.Debug("Address popup never appeared.")
		return PopupResult{}
	}

	raw, err := h.page.Text(ctx, selAddressPopupBody)
	if err != nil {
		log.Warn("Failed to read popup text.", zap.Error(err))
		h.close(ctx, log)
		return PopupResult{}
	}

	res := PopupResult{
		FoundAddress: containsAlnum(raw),
		RawText:      raw,
	}

	if len(raw) < h.cfg.MinPopupLength {
		// Very short popups are placeholder or error states, not addresses;
		// extracting from them produces noise.
		log.Info("Popup text below minimum length; skipping extraction.",
			zap.Int("length", len(raw)),
			zap.Int("min", h.cfg.MinPopupLength))
		h.close(ctx, log)
		return res
	}

	res.Pincodes = pincode.Extract(raw)
	if len(res.Pincodes) > 0 {
		res.Pincode = res.Pincodes[0]
		log.Info("Extracted pincode from address popup.",
			zap.String("pincode", res.Pincode),
			zap.Int("candidates", len(res.Pincodes)))
	} else {
		log.Info("Popup carried an address but no pincode candidate.")
	}

	h.close(ctx, log)
	return res
}

// close dismisses the popup: dedicated close button first, Escape as the
// generic fallback.
func (h *PopupHandler) close(ctx context.Context, log *zap.Logger) {
	if err := h.page.Click(ctx, selAddressPopupClose); err == nil {
		return
	}
	if err := h.page.PressKey(ctx, "Escape"); err != nil {
		log.Debug("Could not dismiss address popup.", zap.Error(err))
	}
}

func containsAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
