package translit

import (
	"context"
	"errors"
	"sync"
)

type fakePage struct {
	lock        sync.Mutex
	navigated   []string
	fills       []string
	content     string
	reads       int
	render      func(content string, reads int) string
	navigateErr error
	fillErr     error
	readErr     error
	blockOn     Stage
}

func newFakePage(render func(string) string) *fakePage {
	return &fakePage{render: func(c string, _ int) string { return render(c) }}
}

func (p *fakePage) block(ctx context.Context, stage Stage) error {
	if p.blockOn == stage {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	if err := p.block(ctx, StageNavigate); err != nil {
		return err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	// content survives navigation, like a site that restores the last draft
	p.navigated = append(p.navigated, url)
	return p.navigateErr
}

func (p *fakePage) Fill(ctx context.Context, selector, text string) error {
	if err := p.block(ctx, StageFill); err != nil {
		return err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.fills = append(p.fills, selector)
	if p.fillErr != nil {
		return p.fillErr
	}
	p.content = text
	return nil
}

func (p *fakePage) BodyText(ctx context.Context) (string, error) {
	if err := p.block(ctx, StageRead); err != nil {
		return "", err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.reads++
	if p.readErr != nil {
		return "", p.readErr
	}
	return "Singlish to Sinhala " + p.render(p.content, p.reads), nil
}

var errBrowserGone = errors.New("browser has disconnected")
