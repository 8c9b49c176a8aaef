package suites

import (
	"context"
	"errors"
	"sync"
)

// fakeSite answers with whatever body text render produces for the current input.
type fakeSite struct {
	lock      sync.Mutex
	render    func(input string) string
	onFill    func(input string)
	openErr   error
	readErr   error
	opened    int
	closed    int
	navigated int
}

func (s *fakeSite) NewPage(ctx context.Context) (BrowserPage, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened++
	return &fakeBrowserPage{site: s}, nil
}

type fakeBrowserPage struct {
	site    *fakeSite
	content string
}

func (p *fakeBrowserPage) Navigate(ctx context.Context, url string) error {
	p.site.lock.Lock()
	p.site.navigated++
	p.site.lock.Unlock()
	p.content = ""
	return ctx.Err()
}

func (p *fakeBrowserPage) Fill(ctx context.Context, selector, text string) error {
	if p.site.onFill != nil {
		p.site.onFill(text)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.content = text
	return nil
}

func (p *fakeBrowserPage) BodyText(ctx context.Context) (string, error) {
	if p.site.readErr != nil {
		return "", p.site.readErr
	}
	return "Swift Translator\n" + p.site.render(p.content), nil
}

func (p *fakeBrowserPage) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}

func (p *fakeBrowserPage) Close() error {
	p.site.lock.Lock()
	defer p.site.lock.Unlock()
	p.site.closed++
	return nil
}

var errNoBrowser = errors.New("no browser")
