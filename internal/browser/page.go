// File: internal/browser/page.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/config"
)

// actionTimeout bounds single interactions (clicks, reads) that carry no
// explicit timeout of their own.
const actionTimeout = 5 * time.Second

// hiddenPollInterval paces the WaitHidden condition checks.
const hiddenPollInterval = 100 * time.Millisecond

// chromePage implements Page over a chromedp tab context.
type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.BrowserConfig
	logger *zap.Logger

	dialogOnce sync.Once
	closeOnce  sync.Once
}

var _ Page = (*chromePage)(nil)

func newChromePage(ctx context.Context, cancel context.CancelFunc, cfg config.BrowserConfig, logger *zap.Logger) *chromePage {
	return &chromePage{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger.Named("page"),
	}
}

// run executes chromedp actions on this tab under the given deadline.
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := mergeDeadline(p.ctx, ctx, timeout)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// mergeDeadline derives an operation context from the tab context that is
// also canceled when the caller's context is, bounded by timeout.
func mergeDeadline(tabCtx, callerCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(tabCtx, timeout)
	stop := context.AfterFunc(callerCtx, cancel)
	return opCtx, func() { stop(); cancel() }
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	timeout := p.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := p.run(ctx, timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	err := p.run(ctx, timeout, chromedp.WaitVisible(sel, chromedp.ByQuery))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s not visible after %s", ErrTimeout, sel, timeout)
		}
		return err
	}
	return nil
}

func (p *chromePage) WaitHidden(ctx context.Context, sel string, timeout time.Duration) error {
	// chromedp's WaitNotVisible blocks until the selector matches at least
	// one node, so an already-detached element would hang it. Poll a JS
	// visibility check instead: gone-or-hidden both count as hidden.
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return !el || el.offsetParent === null; })()`, sel)

	deadline := time.Now().Add(timeout)
	for {
		var hidden bool
		if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &hidden)); err != nil {
			return err
		}
		if hidden {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s still visible after %s", ErrTimeout, sel, timeout)
		}
		if err := p.Sleep(ctx, hiddenPollInterval); err != nil {
			return err
		}
	}
}

func (p *chromePage) Exists(ctx context.Context, sel string) (bool, error) {
	var found bool
	script := fmt.Sprintf(`document.querySelector(%q) !== null`, sel)
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (p *chromePage) Count(ctx context.Context, sel string) (int, error) {
	var n int
	script := fmt.Sprintf(`document.querySelectorAll(%q).length`, sel)
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *chromePage) Click(ctx context.Context, sel string) error {
	if ok, err := p.Exists(ctx, sel); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	if err := p.run(ctx, actionTimeout, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: click %s", ErrTimeout, sel)
		}
		return fmt.Errorf("click %s: %w", sel, err)
	}
	return nil
}

type elementRead struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

func (p *chromePage) Text(ctx context.Context, sel string) (string, error) {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? {found: true, value: el.innerText} : {found: false, value: ""}; })()`, sel)
	var res elementRead
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &res)); err != nil {
		return "", err
	}
	if !res.Found {
		return "", fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return res.Value, nil
}

func (p *chromePage) Attribute(ctx context.Context, sel, name string) (string, bool, error) {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (!el) return {found: false, value: ""};
		 const v = el.getAttribute(%q); return v === null ? {found: false, value: ""} : {found: true, value: v}; })()`,
		sel, name)
	var res elementRead
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &res)); err != nil {
		return "", false, err
	}
	return res.Value, res.Found, nil
}

func (p *chromePage) Value(ctx context.Context, sel string) (string, error) {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? {found: true, value: String(el.value ?? "")} : {found: false, value: ""}; })()`, sel)
	var res elementRead
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &res)); err != nil {
		return "", err
	}
	if !res.Found {
		return "", fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return res.Value, nil
}

func (p *chromePage) SetValue(ctx context.Context, sel, value string) error {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (!el) return false;
		 el.value = %q;
		 el.dispatchEvent(new Event('input', {bubbles: true}));
		 el.dispatchEvent(new Event('change', {bubbles: true}));
		 return true; })()`, sel, value)
	var ok bool
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return nil
}

func (p *chromePage) SetChecked(ctx context.Context, sel string, checked bool) error {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (!el) return false;
		 if (el.checked !== %t) { el.click(); el.checked = %t; }
		 el.dispatchEvent(new Event('change', {bubbles: true}));
		 return true; })()`, sel, checked, checked)
	var ok bool
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sel)
	}
	return nil
}

func (p *chromePage) Options(ctx context.Context, sel string) ([]Option, error) {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (!el || !el.options) return [];
		 return Array.from(el.options).map(o => ({value: o.value, label: o.label || o.text})); })()`, sel)
	var raw []struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &raw)); err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(raw))
	for _, o := range raw {
		opts = append(opts, Option{Value: o.Value, Label: o.Label})
	}
	return opts, nil
}

func (p *chromePage) SelectOption(ctx context.Context, sel, value string) error {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (!el) return false;
		 el.value = %q;
		 el.dispatchEvent(new Event('input', {bubbles: true}));
		 el.dispatchEvent(new Event('change', {bubbles: true}));
		 return el.value === %q; })()`, sel, value, value)
	var ok bool
	if err := p.run(ctx, actionTimeout, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("select %s on %s: %w", value, sel, ErrNotFound)
	}
	return nil
}

func (p *chromePage) PressKey(ctx context.Context, key string) error {
	code := key
	switch key {
	case "Escape":
		code = kb.Escape
	case "Enter":
		code = kb.Enter
	case "Tab":
		code = kb.Tab
	}
	return p.run(ctx, actionTimeout, chromedp.KeyEvent(code))
}

// AcceptDialogs installs a listener that accepts every native JS dialog the
// tab raises from now on. The sync workflow turns this on before its
// confirm/submit steps so window.confirm prompts never stall the run.
func (p *chromePage) AcceptDialogs() {
	p.dialogOnce.Do(func() {
		chromedp.ListenTarget(p.ctx, func(ev interface{}) {
			if _, ok := ev.(*cdppage.EventJavascriptDialogOpening); !ok {
				return
			}
			// Handling must happen off the listener goroutine.
			go func() {
				err := chromedp.Run(p.ctx, cdppage.HandleJavaScriptDialog(true))
				if err != nil && p.ctx.Err() == nil {
					p.logger.Warn("Failed to accept dialog.", zap.Error(err))
				}
			}()
		})
	})
}

func (p *chromePage) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func (p *chromePage) Close() error {
	p.closeOnce.Do(p.cancel)
	return nil
}
