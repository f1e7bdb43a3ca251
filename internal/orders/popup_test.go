// File: internal/orders/popup_test.go
package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/config"
	"github.com/avikamboj/ordersync-cli/internal/orders/ordertest"
)

func popupBatchConfig() config.BatchConfig {
	return config.BatchConfig{
		PopupWait:      2 * time.Second,
		MinPopupLength: 150,
	}
}

// pad grows text past the minimum popup length without adding digits.
func pad(text string, length int) string {
	for len(text) < length {
		text += " lorem address filler"
	}
	return text
}

func TestPopupHandlerExtractsPincode(t *testing.T) {
	page := ordertest.NewPage()
	page.AddElement(selAddressPopup, ordertest.Element{Visible: true})
	page.AddElement(selAddressPopupBody, ordertest.Element{
		Visible: true,
		Text:    pad("Ship to: Kottayam House, Kerala\nPincode: 689672\n", 200),
	})
	page.AddElement(selAddressPopupClose, ordertest.Element{Visible: true})

	h := NewPopupHandler(page, popupBatchConfig(), zap.NewNop())
	res := h.Handle(context.Background(), 0, "101")

	assert.True(t, res.FoundAddress)
	assert.Equal(t, "689672", res.Pincode)
	assert.Equal(t, []string{"689672"}, res.Pincodes)
	assert.Contains(t, page.Clicks, selAddressPopupClose, "popup must be closed afterward")
}

func TestPopupHandlerMissingPopupIsNotAnError(t *testing.T) {
	page := ordertest.NewPage()

	h := NewPopupHandler(page, popupBatchConfig(), zap.NewNop())
	res := h.Handle(context.Background(), 2, "102")

	assert.False(t, res.FoundAddress)
	assert.Empty(t, res.Pincode)
	assert.Empty(t, res.RawText)
	assert.Empty(t, page.Clicks)
}

func TestPopupHandlerShortTextSkipsExtraction(t *testing.T) {
	short := "Pincode: 686001" // valid pattern, but the popup is a stub
	page := ordertest.NewPage()
	page.AddElement(selAddressPopup, ordertest.Element{Visible: true})
	page.AddElement(selAddressPopupBody, ordertest.Element{Visible: true, Text: short})
	page.AddElement(selAddressPopupClose, ordertest.Element{Visible: true})

	h := NewPopupHandler(page, popupBatchConfig(), zap.NewNop())
	res := h.Handle(context.Background(), 0, "101")

	assert.True(t, res.FoundAddress, "short text still counts as an address sighting")
	assert.Empty(t, res.Pincode, "below-threshold popups must not be extracted from")
	assert.Empty(t, res.Pincodes)
	assert.Equal(t, short, res.RawText)
	assert.Contains(t, page.Clicks, selAddressPopupClose)
}

func TestPopupHandlerCloseFallsBackToEscape(t *testing.T) {
	page := ordertest.NewPage()
	page.AddElement(selAddressPopup, ordertest.Element{Visible: true})
	page.AddElement(selAddressPopupBody, ordertest.Element{
		Visible: true,
		Text:    pad("Address with Pincode: 686001 ", 180),
	})
	// No close button scripted.

	h := NewPopupHandler(page, popupBatchConfig(), zap.NewNop())
	res := h.Handle(context.Background(), 0, "101")

	assert.Equal(t, "686001", res.Pincode)
	assert.Contains(t, page.Keys, "Escape")
}

func TestPopupHandlerNoAlnumText(t *testing.T) {
	page := ordertest.NewPage()
	page.AddElement(selAddressPopup, ordertest.Element{Visible: true})
	page.AddElement(selAddressPopupBody, ordertest.Element{
		Visible: true,
		Text:    strings.Repeat("-- ", 60),
	})
	page.AddElement(selAddressPopupClose, ordertest.Element{Visible: true})

	h := NewPopupHandler(page, popupBatchConfig(), zap.NewNop())
	res := h.Handle(context.Background(), 0, "101")

	assert.False(t, res.FoundAddress)
	assert.Empty(t, res.Pincode)
}
