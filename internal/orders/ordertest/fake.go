// File: internal/orders/ordertest/fake.go

// Package ordertest provides a scripted in-memory implementation of the
// browser surface for order-processing tests. Elements are declared up
// front; waits resolve instantly against the scripted state and sleeps are
// recorded instead of slept.
package ordertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avikamboj/ordersync-cli/internal/browser"
)

// Element is one scripted DOM element.
type Element struct {
	Visible bool
	Text    string
	Value   string
	Checked bool
	Attrs   map[string]string
	Options []browser.Option
}

// Page is a scripted browser.Page. Zero value is usable; add elements with
// AddElement.
type Page struct {
	mu sync.Mutex

	Elements map[string]*Element
	// Counts maps a selector to the number of elements it matches, for
	// selectors that address collections (e.g. table rows).
	Counts map[string]int
	// ClickHooks run after a successful click on the keyed selector; tests
	// use them to make popups appear or options load.
	ClickHooks map[string]func(p *Page)

	// Recorded activity.
	Clicks      []string
	Keys        []string
	Sleeps      []time.Duration
	NavigatedTo []string
	DialogsAuto bool
	Closed      bool

	// NavigateErr, when set, fails every navigation.
	NavigateErr error
}

var _ browser.Page = (*Page)(nil)

// NewPage returns an empty scripted page.
func NewPage() *Page {
	return &Page{
		Elements:   make(map[string]*Element),
		Counts:     make(map[string]int),
		ClickHooks: make(map[string]func(p *Page)),
	}
}

// AddElement scripts an element and returns it for further tweaking.
func (p *Page) AddElement(sel string, el Element) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := el
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	p.Elements[sel] = &e
	return &e
}

// Remove deletes a scripted element.
func (p *Page) Remove(sel string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Elements, sel)
}

func (p *Page) get(sel string) (*Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.Elements[sel]
	return el, ok
}

func (p *Page) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.NavigatedTo = append(p.NavigatedTo, url)
	return p.NavigateErr
}

func (p *Page) WaitVisible(_ context.Context, sel string, _ time.Duration) error {
	if el, ok := p.get(sel); ok && el.Visible {
		return nil
	}
	return fmt.Errorf("%w: %s", browser.ErrTimeout, sel)
}

func (p *Page) WaitHidden(_ context.Context, sel string, _ time.Duration) error {
	if el, ok := p.get(sel); ok && el.Visible {
		return fmt.Errorf("%w: %s", browser.ErrTimeout, sel)
	}
	return nil
}

func (p *Page) Exists(_ context.Context, sel string) (bool, error) {
	_, ok := p.get(sel)
	return ok, nil
}

func (p *Page) Count(_ context.Context, sel string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := p.Counts[sel]; ok {
		return n, nil
	}
	if _, ok := p.Elements[sel]; ok {
		return 1, nil
	}
	return 0, nil
}

func (p *Page) Click(_ context.Context, sel string) error {
	if _, ok := p.get(sel); !ok {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	p.mu.Lock()
	p.Clicks = append(p.Clicks, sel)
	hook := p.ClickHooks[sel]
	p.mu.Unlock()
	if hook != nil {
		hook(p)
	}
	return nil
}

func (p *Page) Text(_ context.Context, sel string) (string, error) {
	el, ok := p.get(sel)
	if !ok {
		return "", fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	return el.Text, nil
}

func (p *Page) Attribute(_ context.Context, sel, name string) (string, bool, error) {
	el, ok := p.get(sel)
	if !ok {
		return "", false, nil
	}
	v, present := el.Attrs[name]
	return v, present, nil
}

func (p *Page) Value(_ context.Context, sel string) (string, error) {
	el, ok := p.get(sel)
	if !ok {
		return "", fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	return el.Value, nil
}

func (p *Page) SetValue(_ context.Context, sel, value string) error {
	el, ok := p.get(sel)
	if !ok {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	el.Value = value
	return nil
}

func (p *Page) SetChecked(_ context.Context, sel string, checked bool) error {
	el, ok := p.get(sel)
	if !ok {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	el.Checked = checked
	return nil
}

func (p *Page) Options(_ context.Context, sel string) ([]browser.Option, error) {
	el, ok := p.get(sel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	return el.Options, nil
}

func (p *Page) SelectOption(_ context.Context, sel, value string) error {
	el, ok := p.get(sel)
	if !ok {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	for _, opt := range el.Options {
		if opt.Value == value {
			el.Value = value
			return nil
		}
	}
	return fmt.Errorf("%w: option %s on %s", browser.ErrNotFound, value, sel)
}

func (p *Page) PressKey(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Keys = append(p.Keys, key)
	return nil
}

func (p *Page) AcceptDialogs() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DialogsAuto = true
}

func (p *Page) Sleep(_ context.Context, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Sleeps = append(p.Sleeps, d)
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Browser hands out scripted detail pages for the sync workflow.
type Browser struct {
	mu sync.Mutex
	// PageFactory builds the page returned by the next NewPage call. When
	// nil, an empty page is returned.
	PageFactory func() *Page
	// NewPageErr, when set, fails NewPage.
	NewPageErr error
	Opened     []*Page
}

var _ browser.Browser = (*Browser)(nil)

func (b *Browser) NewPage(context.Context) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.NewPageErr != nil {
		return nil, b.NewPageErr
	}
	var p *Page
	if b.PageFactory != nil {
		p = b.PageFactory()
	} else {
		p = NewPage()
	}
	b.Opened = append(b.Opened, p)
	return p, nil
}

func (b *Browser) Close() error { return nil }
