package main

import (
	"bufio"
	"context"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"log"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/translit-harness/singlish-e2e/corpus"
	"github.com/translit-harness/singlish-e2e/framework"
	"github.com/translit-harness/singlish-e2e/framework/e2etest"
	"github.com/translit-harness/singlish-e2e/framework/harness"
	"github.com/translit-harness/singlish-e2e/suites"
	"github.com/translit-harness/singlish-e2e/translit"
)

const suiteName = "singlish-e2e"

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

var warningColor = color.New(color.FgYellow) //nolint:gochecknoglobals

func main() {
	fmt.Printf("%s v%s\n", suiteName, strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	results, err := run(ctx, params)
	interrupted := ctx.Err() != nil // checked before stop, which cancels ctx
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(results, err, interrupted))
}

// exitCode is 0 only for a run that finished without errors or failures.
func exitCode(results *e2etest.Results, err error, interrupted bool) int {
	switch {
	case err != nil:
		return 1
	case interrupted:
		fmt.Fprintln(os.Stderr, "Interrupted")
		return 1
	case results != nil && !results.OK():
		return 1
	}
	return 0
}

func run(ctx context.Context, params commandParams) (*e2etest.Results, error) {
	c, err := loadCorpus(params.corpusPath)
	if err != nil {
		return nil, err
	}

	if params.list {
		for _, id := range suites.ListTestIDs(c) {
			fmt.Println(id)
		}
		return nil, nil
	}

	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	h, err := harness.NewTestHarness(
		ctx,
		harness.Config{
			TargetURL:    params.targetURL,
			Placeholder:  translit.InputPlaceholder,
			ProbeTimeout: params.probeTimeout,
			Headless:     params.headless,
			BrowserBin:   params.browserBin,
			BrowserURL:   params.browserURL,
		},
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := h.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close browser: %s\n", err)
		}
	}()

	if probeErr := h.ProbeError(); probeErr != nil {
		_, _ = warningColor.Fprintf(os.Stderr, "Warning: %s did not respond properly: %s\n", params.targetURL, probeErr)
		_, _ = warningColor.Fprintln(os.Stderr, "Running the checks anyway; expect them to fail.")
	} else if info := h.TargetInfo(); info.StatusCode != 0 {
		fmt.Printf("Target %s answered with %s (%q)\n", info.URL, info.Status(), info.Title)
	}

	testLogger := buildTestLogger(params, reportProperties(params, c, h.TargetInfo()))

	results := suites.RunTranslitTestSuite(
		harnessPages{h},
		c,
		suites.SuiteParams{
			Verifier:           params.verifierConfig(),
			CI:                 params.ci,
			Retries:            params.retries,
			TestTimeout:        params.testTimeout,
			BaseContext:        ctx,
			StrictDriverErrors: params.strict,
			ArtifactsDir:       params.artifactsDir,
		},
		params.filters,
		testLogger,
	)

	fmt.Println()
	if err := testLogger.EndLog(results); err != nil {
		return nil, fmt.Errorf("error writing log: %v", err)
	}

	if params.recordFailures != "" {
		if err := recordFailures(params.recordFailures, results); err != nil {
			return nil, err
		}
	}

	return &results, nil
}

func loadCorpus(path string) (corpus.Corpus, error) {
	if path == "" {
		return corpus.Default()
	}
	return corpus.Load(path)
}

func buildTestLogger(params commandParams, properties map[string]string) e2etest.TestLogger {
	loggers := e2etest.MultiTestLogger{
		e2etest.ConsoleTestLogger{
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
		},
	}
	if params.jUnitFile != "" {
		loggers = append(loggers, e2etest.NewJUnitTestLogger(params.jUnitFile, suiteName, properties))
	}
	if params.jsonFile != "" {
		loggers = append(loggers, e2etest.NewJSONTestLogger(params.jsonFile, suiteName, properties))
	}
	if params.htmlFile != "" {
		loggers = append(loggers, e2etest.NewHTMLTestLogger(params.htmlFile, suiteName, properties))
	}
	if len(loggers) == 1 {
		return loggers[0]
	}
	return loggers
}

func reportProperties(params commandParams, c corpus.Corpus, target harness.TargetInfo) map[string]string {
	props := map[string]string{
		"target.url":    target.URL,
		"target.status": target.Status(),
		"corpus.source": c.Source,
		"settle":        params.settler().String(),
		"retries":       strconv.Itoa(params.retries),
		"ci":            strconv.FormatBool(params.ci),
	}
	if params.probeTimeout < 0 {
		props["target.status"] = "not checked"
	}
	if target.Title != "" {
		props["target.title"] = target.Title
	}
	if params.filters.MustMatch.IsDefined() {
		props["filter.run"] = params.filters.MustMatch.String()
	}
	if params.filters.MustNotMatch.IsDefined() {
		props["filter.skip"] = params.filters.MustNotMatch.String()
	}
	return props
}

func recordFailures(path string, results e2etest.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create suppression file: %v", err)
	}
	for _, test := range results.Failures {
		if len(test.TestID) != 0 {
			fmt.Fprintln(f, test.TestID)
		}
	}
	return f.Close()
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %v", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		escaped := regexp.QuoteMeta(line)
		if err := params.filters.MustNotMatch.Set(escaped); err != nil {
			return fmt.Errorf("cannot parse suppression: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %v", err)
	}
	return nil
}

// harnessPages adapts the browser harness to the suite's PageSource.
type harnessPages struct {
	h *harness.TestHarness
}

func (p harnessPages) NewPage(ctx context.Context) (suites.BrowserPage, error) {
	page, err := p.h.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return page, nil
}
