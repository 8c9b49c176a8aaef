package suites

import (
	"context"

	"github.com/translit-harness/singlish-e2e/corpus"
	"github.com/translit-harness/singlish-e2e/framework/e2etest"
	"github.com/translit-harness/singlish-e2e/translit"
)

// BrowserPage is a translit.Page that can also be photographed and closed.
type BrowserPage interface {
	translit.Page
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// PageSource opens a fresh, isolated page for each test case.
type PageSource interface {
	NewPage(ctx context.Context) (BrowserPage, error)
}

type suiteEnv struct {
	pages          PageSource
	verifierConfig translit.Config
	corpus         corpus.Corpus
	params         SuiteParams
	focused        bool
}

func requireEnv(t *e2etest.T) suiteEnv {
	if e, ok := t.Env().(suiteEnv); ok {
		return e
	}
	panic("suiteEnv was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}
