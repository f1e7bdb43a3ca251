// File: internal/browser/browser.go

// Package browser wraps chromedp behind the small capability set the rest of
// the tool consumes: bounded waits, element reads, clicks, and tab lifecycle.
// Nothing outside this package imports chromedp directly, which keeps the
// order-processing logic testable against a scripted fake.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that a selector matched no element. Callers treat this
// as expected absence, not a failure.
var ErrNotFound = errors.New("element not found")

// ErrTimeout reports that a bounded wait elapsed before the condition held.
var ErrTimeout = errors.New("wait timed out")

// Option describes one entry of a select control.
type Option struct {
	Value string
	Label string
}

// Page is a single browser surface (a tab). Every operation is bounded by
// the supplied context; none blocks indefinitely.
type Page interface {
	// Navigate loads the URL and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until the selector is visible or the timeout
	// elapses, returning ErrTimeout in the latter case.
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	// WaitHidden blocks until the selector is hidden or detached, or the
	// timeout elapses.
	WaitHidden(ctx context.Context, sel string, timeout time.Duration) error
	// Exists reports whether the selector currently matches an element.
	Exists(ctx context.Context, sel string) (bool, error)
	// Count returns how many elements the selector currently matches.
	Count(ctx context.Context, sel string) (int, error)
	// Click activates the first visible element matching the selector.
	Click(ctx context.Context, sel string) error
	// Text returns the rendered text of the first matching element, or
	// ErrNotFound when the selector matches nothing.
	Text(ctx context.Context, sel string) (string, error)
	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, sel, name string) (string, bool, error)
	// Value returns an input or select element's current value property.
	Value(ctx context.Context, sel string) (string, error)
	// SetValue assigns an input's value and fires its change event.
	SetValue(ctx context.Context, sel, value string) error
	// SetChecked forces a checkbox or toggle into the given state.
	SetChecked(ctx context.Context, sel string, checked bool) error
	// Options lists the entries of a select control.
	Options(ctx context.Context, sel string) ([]Option, error)
	// SelectOption picks the option with the given value on a select control.
	SelectOption(ctx context.Context, sel, value string) error
	// PressKey sends a key (e.g. "Escape", "Enter") to the focused element.
	PressKey(ctx context.Context, key string) error
	// AcceptDialogs auto-accepts any native JavaScript dialog the page raises
	// from now on (alert/confirm/prompt).
	AcceptDialogs()
	// Sleep waits the fixed duration, honoring context cancellation.
	Sleep(ctx context.Context, d time.Duration) error
	// Close tears the tab down. Safe to call more than once.
	Close() error
}

// Browser owns the Chrome process and hands out tabs.
type Browser interface {
	// NewPage opens an independent tab in the running browser.
	NewPage(ctx context.Context) (Page, error)
	// Close shuts the whole browser down after closing remaining tabs.
	Close() error
}
