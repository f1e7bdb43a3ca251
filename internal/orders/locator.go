// File: internal/orders/locator.go
package orders

import (
	"context"
	"strings"

	"github.com/avikamboj/ordersync-cli/internal/browser"
)

// Locator is one strategy for resolving a string out of the page: an
// attribute read, a text read, a selector probe. Strategies are evaluated in
// priority order with early return on first success.
type Locator func(ctx context.Context, p browser.Page) (string, bool)

// firstHit evaluates locators in order and returns the first non-empty
// result.
func firstHit(ctx context.Context, p browser.Page, locators ...Locator) (string, bool) {
	for _, loc := range locators {
		if v, ok := loc(ctx, p); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// byAttribute resolves via an element attribute.
func byAttribute(sel, name string) Locator {
	return func(ctx context.Context, p browser.Page) (string, bool) {
		v, ok, err := p.Attribute(ctx, sel, name)
		if err != nil || !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
}

// byText resolves via an element's rendered text.
func byText(sel string) Locator {
	return func(ctx context.Context, p browser.Page) (string, bool) {
		v, err := p.Text(ctx, sel)
		if err != nil {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
}

// existingSelector probes selectors in order and returns the first one that
// matches an element on the page.
func existingSelector(ctx context.Context, p browser.Page, selectors ...string) (string, bool) {
	for _, sel := range selectors {
		if ok, err := p.Exists(ctx, sel); err == nil && ok {
			return sel, true
		}
	}
	return "", false
}
