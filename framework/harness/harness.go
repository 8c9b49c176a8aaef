// Package harness manages the browser that the verifications run in and the connection to the
// website under test. It contains no test logic of its own.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/translit-harness/singlish-e2e/framework"
)

const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultProbeTimeout   = 30 * time.Second
)

// Config describes how to reach the target and which browser to drive.
type Config struct {
	TargetURL string
	// Placeholder of the text area, used by the probe to tell whether the page looks right.
	Placeholder string

	// ProbeTimeout bounds the startup check of the target site. Zero uses DefaultProbeTimeout;
	// a negative value skips the probe.
	ProbeTimeout time.Duration

	Headless bool
	// BrowserBin is the Chromium executable to launch. Empty lets the launcher find or download one.
	BrowserBin string
	// BrowserURL attaches to an already running browser (DevTools URL) instead of launching one.
	BrowserURL string

	ViewportWidth  int
	ViewportHeight int
}

// TestHarness owns one browser for the whole run. Every NewPage call gets its own incognito
// context, so no state is shared between test cases.
type TestHarness struct {
	config     Config
	targetInfo TargetInfo
	probeErr   error
	launcher   *launcher.Launcher
	browser    *rod.Browser
	logger     framework.Logger
}

// NewTestHarness checks that the target site answers, then starts or attaches to a browser.
//
// A target that cannot be reached is not an error here: the checks themselves will fail and report
// it. The reason is available from ProbeError. Failure to get a browser is an error.
func NewTestHarness(
	ctx context.Context,
	config Config,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	if config.ViewportWidth <= 0 {
		config.ViewportWidth = DefaultViewportWidth
	}
	if config.ViewportHeight <= 0 {
		config.ViewportHeight = DefaultViewportHeight
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}

	h := &TestHarness{
		config:     config,
		targetInfo: TargetInfo{URL: config.TargetURL},
		logger:     debugLogger,
	}

	if config.ProbeTimeout > 0 {
		h.targetInfo, h.probeErr = probeTarget(ctx, http.DefaultClient, config.TargetURL, config.Placeholder,
			config.ProbeTimeout, startupOutput)
		if errors.Is(h.probeErr, context.Canceled) {
			return nil, h.probeErr
		}
	}

	if err := h.connect(ctx, startupOutput); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *TestHarness) connect(ctx context.Context, startupOutput io.Writer) error {
	controlURL := h.config.BrowserURL
	if controlURL != "" {
		resolved, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return fmt.Errorf("could not resolve browser URL %q: %w", controlURL, err)
		}
		controlURL = resolved
		fmt.Fprintf(startupOutput, "Attaching to browser at %s\n", controlURL)
	} else {
		l := launcher.New().Context(ctx).Headless(h.config.Headless).Logger(browserLogWriter(h.logger))
		if h.config.BrowserBin != "" {
			l = l.Bin(h.config.BrowserBin)
		}
		fmt.Fprintln(startupOutput, "Launching browser")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("could not launch browser: %w", err)
		}
		h.launcher = l
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		h.cleanupLauncher()
		return fmt.Errorf("could not connect to browser: %w", err)
	}
	h.browser = browser
	h.logger.Printf("Connected to browser at %s", controlURL)
	return nil
}

// TargetInfo returns what the startup probe found.
func (h *TestHarness) TargetInfo() TargetInfo {
	return h.targetInfo
}

// ProbeError is the reason the startup probe failed, or nil.
func (h *TestHarness) ProbeError() error {
	return h.probeErr
}

// NewPage opens a blank page in a fresh incognito context with the configured viewport.
func (h *TestHarness) NewPage(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	incognito, err := h.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	page, err := newPage(incognito, h.config.ViewportWidth, h.config.ViewportHeight, h.logger)
	if err != nil {
		_ = incognito.Close()
		return nil, err
	}
	return page, nil
}

// Close shuts down the browser, or only disconnects if it was attached to rather than launched.
func (h *TestHarness) Close() error {
	var err error
	if h.browser != nil {
		if h.launcher != nil {
			err = h.browser.Close()
		}
		h.browser = nil
	}
	h.cleanupLauncher()
	return err
}

func (h *TestHarness) cleanupLauncher() {
	if h.launcher != nil {
		h.launcher.Kill()
		h.launcher.Cleanup()
		h.launcher = nil
	}
}
