package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/translit-harness/singlish-e2e/framework/e2etest"
	"github.com/translit-harness/singlish-e2e/suites"
	"github.com/translit-harness/singlish-e2e/translit"
)

const (
	defaultHTMLReport   = "report/index.html"
	defaultArtifactsDir = "test-results"
	ciRetries           = 2
)

type settleMode string

const (
	settleSleep settleMode = "sleep"
	settlePoll  settleMode = "poll"
)

func (s *settleMode) String() string { return string(*s) }

func (s *settleMode) Set(value string) error {
	switch settleMode(value) {
	case settleSleep, settlePoll:
		*s = settleMode(value)
		return nil
	}
	return fmt.Errorf("must be %q or %q", settleSleep, settlePoll)
}

type commandParams struct {
	targetURL         string
	corpusPath        string
	filters           e2etest.RegexFilters
	skipFile          string
	recordFailures    string
	jUnitFile         string
	jsonFile          string
	htmlFile          string
	artifactsDir      string
	retries           int
	testTimeout       time.Duration
	navigationTimeout time.Duration
	actionTimeout     time.Duration
	probeTimeout      time.Duration
	settle            time.Duration
	settleMode        settleMode
	strict            bool
	headless          bool
	browserBin        string
	browserURL        string
	list              bool
	debug             bool
	debugAll          bool
	ci                bool
}

func (c *commandParams) Read(args []string) bool {
	if err := c.parse(args, os.Getenv, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		return false
	}
	return true
}

func (c *commandParams) parse(args []string, getenv func(string) string, output io.Writer) error {
	c.settleMode = settleSleep
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&c.targetURL, "url", translit.DefaultTargetURL, "URL of the transliteration site")
	fs.StringVar(&c.corpusPath, "corpus", "", "JSON or YAML corpus file to use instead of the built-in one")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.skipFile, "skip-file", "", "file of test IDs to skip, one per line")
	fs.StringVar(&c.recordFailures, "record-failures", "", "write the IDs of failed tests to this file")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.jsonFile, "json", "", "write a JSON report to the specified path")
	fs.StringVar(&c.htmlFile, "html", defaultHTMLReport, "write an HTML report to the specified path (empty to disable)")
	fs.StringVar(&c.artifactsDir, "artifacts", defaultArtifactsDir,
		"directory for screenshots taken on the first retry (empty to disable)")
	fs.IntVar(&c.retries, "retries", -1, "retries for a failed test (default 2 when CI is set, otherwise 0)")
	fs.DurationVar(&c.testTimeout, "timeout", suites.DefaultTestTimeout, "time limit for each test")
	fs.DurationVar(&c.navigationTimeout, "nav-timeout", translit.DefaultNavigationTimeout, "time limit for loading the page")
	fs.DurationVar(&c.actionTimeout, "action-timeout", translit.DefaultActionTimeout,
		"time limit for typing into and reading the page")
	fs.DurationVar(&c.probeTimeout, "probe-timeout", 10*time.Second,
		"how long to wait for the site to answer at startup (negative to skip the check)")
	fs.DurationVar(&c.settle, "settle", translit.DefaultSettleDelay, "how long to let the page react to the input")
	fs.Var(&c.settleMode, "settle-mode", `"sleep" waits the whole settle time, "poll" stops as soon as the text appears`)
	fs.BoolVar(&c.strict, "strict", false, "fail a test whenever the browser reported an error")
	fs.BoolVar(&c.headless, "headless", true, "run the browser without a window")
	fs.StringVar(&c.browserBin, "browser-bin", "", "Chromium executable to launch")
	fs.StringVar(&c.browserURL, "browser-url", "", "DevTools URL of a running browser to use instead of launching one")
	fs.BoolVar(&c.list, "list", false, "print the IDs of all tests and exit")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if c.targetURL == "" {
		return errors.New("-url must not be empty")
	}
	if c.settle < 0 {
		return errors.New("-settle must not be negative")
	}

	c.ci = getenv("CI") != ""
	if c.retries < 0 {
		c.retries = 0
		if c.ci {
			c.retries = ciRetries
		}
	}
	return nil
}

func (c *commandParams) settler() translit.Settler {
	if c.settleMode == settlePoll {
		return translit.PollSettler{Window: c.settle}
	}
	return translit.SleepSettler{Delay: c.settle}
}

func (c *commandParams) verifierConfig() translit.Config {
	return translit.Config{
		TargetURL:         c.targetURL,
		InputSelector:     translit.DefaultInputSelector,
		NavigationTimeout: c.navigationTimeout,
		ActionTimeout:     c.actionTimeout,
		Settle:            c.settler(),
	}
}
