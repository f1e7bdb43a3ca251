// File: internal/orders/selectors.go
package orders

import "fmt"

// Selectors of the order-list view and the per-order surfaces. Fallback
// chains exist where the panel has rendered different markup across
// releases.
const (
	selOrderRows = "table.order-table tbody tr"

	// Address popup on the list view.
	selAddressPopup      = "div.modal.address-popup"
	selAddressPopupBody  = "div.modal.address-popup .modal-body"
	selAddressPopupClose = "div.modal.address-popup button.close"

	// Sync dialog on the order detail page.
	selSyncButton         = "button#sync-courier"
	selSyncButtonFallback = "button[data-action='courier-sync']"
	selCarrierSelect      = "select#courier-partner"
	selConfirmToggle      = "input#confirm-serviceable"
	selSyncSubmit         = "button#courier-sync-submit"
	selSyncConfirmOK      = "div.modal.sync-confirm button.ok"
	selSyncDialogClose    = "div.modal.courier-sync button.close"
	selFetchButton        = "button#fetch-shipping"
	selSaveButton         = "button#save-order"
	selGenerateInvoice    = "button#generate-invoice"
	selInvoiceNumber      = "input#invoice-number"
)

// rowSel addresses the order row at zero-based index idx.
func rowSel(idx int) string {
	return fmt.Sprintf("%s:nth-of-type(%d)", selOrderRows, idx+1)
}

// Per-row sub-selectors.
func rowAddressButton(idx int) string { return rowSel(idx) + " button.address-btn" }
func rowAddressLink(idx int) string { return rowSel(idx) + " a.address-link" }
func rowOrderButton(idx int) string { return rowSel(idx) + " button.order-view" }
func rowFirstCell(idx int) string { return rowSel(idx) + " td:first-child" }
