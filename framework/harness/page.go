package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/translit-harness/singlish-e2e/framework"
)

const clearValueJS = `() => {
	this.value = "";
	this.dispatchEvent(new Event("input", { bubbles: true }));
}`

// Page is one browser tab in its own incognito context.
type Page struct {
	context *rod.Browser
	page    *rod.Page
	logger  framework.Logger
}

// The page is not bound to a context; every operation takes its own.
func newPage(incognito *rod.Browser, width, height int, logger framework.Logger) (*Page, error) {
	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		logger.Printf("warning: failed to set viewport: %v", err)
	}
	return &Page{context: incognito, page: page, logger: logger}, nil
}

// Navigate loads url and waits for DOMContentLoaded.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

// Fill replaces the element's text with text, typing it the way a user would.
func (p *Page) Fill(ctx context.Context, selector, text string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %s not found: %w", selector, err)
	}
	if text == "" {
		_, err = el.Eval(clearValueJS)
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(text)
}

// BodyText returns document.body.textContent.
func (p *Page) BodyText(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.body ? document.body.textContent : ""`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Screenshot captures the whole page as PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(true, nil)
}

// Close closes the tab and discards its incognito context.
func (p *Page) Close() error {
	return errors.Join(p.page.Close(), p.context.Close())
}
