//go:build browser

package harness

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/translit-harness/singlish-e2e/framework"
	"github.com/translit-harness/singlish-e2e/framework/helpers"
	"github.com/translit-harness/singlish-e2e/mocksite"
	"github.com/translit-harness/singlish-e2e/translit"
)

// These tests need Chromium. Run them with: go test -tags browser ./framework/harness
// BROWSER_BIN can point at a specific executable.

func startHarness(t *testing.T) (*TestHarness, *mocksite.TranslatorService, string) {
	service := mocksite.NewTranslatorService(mocksite.DefaultDictionary(), nil)
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)

	h, err := NewTestHarness(context.Background(), Config{
		TargetURL:   server.URL + mocksite.PagePath,
		Placeholder: mocksite.Placeholder,
		Headless:    true,
		BrowserBin:  os.Getenv("BROWSER_BIN"),
	}, framework.NullLogger(), io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	require.NoError(t, h.ProbeError())
	assert.True(t, h.TargetInfo().HasInput)
	return h, service, server.URL + mocksite.PagePath
}

func TestBrowserVerifiesAgainstLocalSite(t *testing.T) {
	h, _, url := startHarness(t)
	config := translit.DefaultConfig()
	config.TargetURL = url
	config.Settle = translit.PollSettler{Window: 5 * time.Second, Interval: 100 * time.Millisecond}
	v := translit.NewVerifier(config, nil)

	for _, c := range []struct {
		input, expected string
		found           bool
	}{
		{"suba udaeesanak", "සුබ", true},
		{"mama kadeeta gihin ennam", "මම", true},
		{"Morning ekee api friends", "Morning", true},
		{"", "සුභ", false},
		{"@#$%^&*()", "සුභ", false},
	} {
		t.Run(c.input, func(t *testing.T) {
			page, err := h.NewPage(context.Background())
			require.NoError(t, err)
			defer page.Close() //nolint:errcheck

			o := v.Check(context.Background(), page, c.input, c.expected)
			require.NoError(t, o.Err)
			assert.Equal(t, c.found, o.Matched, o.Observed)
		})
	}
}

func TestBrowserFillReplacesText(t *testing.T) {
	h, _, url := startHarness(t)
	ctx := context.Background()
	page, err := h.NewPage(ctx)
	require.NoError(t, err)
	defer page.Close() //nolint:errcheck

	require.NoError(t, page.Navigate(ctx, url))
	selector := translit.DefaultInputSelector
	require.NoError(t, page.Fill(ctx, selector, "mama"))
	require.NoError(t, page.Fill(ctx, selector, "suba"))

	helpers.RequireEventually(t, func() bool {
		body, err := page.BodyText(ctx)
		return err == nil && !strings.Contains(body, "මම") && strings.Contains(body, "සුබ")
	}, 5*time.Second, 100*time.Millisecond, "second fill did not replace the first")

	png, err := page.Screenshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestBrowserReportsMissingInput(t *testing.T) {
	h, _, url := startHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	page, err := h.NewPage(ctx)
	require.NoError(t, err)
	defer page.Close() //nolint:errcheck

	require.NoError(t, page.Navigate(ctx, url))
	assert.Error(t, page.Fill(ctx, `[placeholder="nope"]`, "x"))
}

func TestBrowserPollSettlerWaitsOutSlowSite(t *testing.T) {
	h, service, url := startHarness(t)
	service.SetDelay(time.Second)
	config := translit.DefaultConfig()
	config.TargetURL = url

	check := func(settle translit.Settler) translit.Outcome {
		page, err := h.NewPage(context.Background())
		require.NoError(t, err)
		defer page.Close() //nolint:errcheck
		config.Settle = settle
		return translit.NewVerifier(config, nil).Check(context.Background(), page, "mama", "මම")
	}

	short := check(translit.SleepSettler{Delay: 100 * time.Millisecond})
	require.NoError(t, short.Err)
	assert.False(t, short.Matched, short.Observed)

	started := time.Now()
	polled := check(translit.PollSettler{Window: 5 * time.Second, Interval: 50 * time.Millisecond})
	require.NoError(t, polled.Err)
	assert.True(t, polled.Matched, polled.Observed)
	assert.Less(t, time.Since(started), 5*time.Second)
}

func TestBrowserFindsInputByPlaceholderIgnoringCase(t *testing.T) {
	h, _, url := startHarness(t)
	ctx := context.Background()
	page, err := h.NewPage(ctx)
	require.NoError(t, err)
	defer page.Close() //nolint:errcheck

	require.NoError(t, page.Navigate(ctx, url))
	assert.NoError(t, page.Fill(ctx, `[placeholder*="input your singlish" i]`, "mama"))
}
