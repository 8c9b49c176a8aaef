package e2etest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/translit-harness/singlish-e2e/framework"
)

var consoleTestErrorColor = color.New(color.FgYellow)              //nolint:gochecknoglobals
var consoleTestFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleTestRetryColor = color.New(color.FgMagenta)             //nolint:gochecknoglobals
var consoleTestSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)               //nolint:gochecknoglobals
var allTestsPassedColor = color.New(color.FgGreen)                 //nolint:gochecknoglobals

// TestLogger receives status information as tests run. EndLog is called once after the whole run.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestRetrying(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
	EndLog(results Results) error
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                        {}
func (n nullTestLogger) TestError(TestID, error)                                   {}
func (n nullTestLogger) TestRetrying(TestID, TestResult, framework.CapturedOutput) {}
func (n nullTestLogger) TestFinished(TestID, TestResult, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                                {}
func (n nullTestLogger) EndLog(Results) error                                      { return nil }

type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	// Out defaults to os.Stdout.
	Out io.Writer
}

func (c ConsoleTestLogger) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	_, _ = fmt.Fprintf(c.out(), "[%s]\n", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		_, _ = consoleTestErrorColor.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c ConsoleTestLogger) TestRetrying(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	_, _ = consoleTestRetryColor.Fprintf(c.out(), "  RETRYING: %s (attempt %d failed)\n", id, result.Attempts)
	if len(debugOutput) > 0 && c.DebugOutputOnFailure {
		_, _ = consoleDebugOutputColor.Fprintln(c.out(), debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	failed := result.Failed
	if failed {
		if result.NonCritical {
			_, _ = consoleTestFailedColor.Fprintf(c.out(), "  FAILED (non-critical): %s\n", id)
		} else {
			_, _ = consoleTestFailedColor.Fprintf(c.out(), "  FAILED: %s\n", id)
		}
	} else if result.Attempts > 1 {
		_, _ = consoleTestRetryColor.Fprintf(c.out(), "  FLAKY: %s (passed on attempt %d)\n", id, result.Attempts)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		_, _ = consoleDebugOutputColor.Fprintln(c.out(), debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		_, _ = consoleTestSkippedColor.Fprintf(c.out(), "  SKIPPED: %s\n", id)
	} else {
		_, _ = consoleTestSkippedColor.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", id, reason)
	}
}

func (c ConsoleTestLogger) EndLog(results Results) error {
	PrintResults(results)
	return nil
}

// PrintResults writes the end-of-run summary. Failures go to stderr.
func PrintResults(results Results) {
	printResults(os.Stdout, os.Stderr, results)
}

func printResults(stdout, stderr io.Writer, results Results) {
	if len(results.Flaky) != 0 {
		_, _ = consoleTestRetryColor.Fprintf(stdout, "FLAKY TESTS (%d):\n", len(results.Flaky))
		for _, f := range results.Flaky {
			_, _ = consoleTestRetryColor.Fprintf(stdout, "  * %s (%d attempts)\n", f.TestID, f.Attempts)
		}
	}
	if len(results.NonCriticalFailures) != 0 {
		_, _ = consoleTestErrorColor.Fprintf(stdout, "NON-CRITICAL FAILURES (%d):\n", len(results.NonCriticalFailures))
		for _, f := range results.NonCriticalFailures {
			_, _ = consoleTestErrorColor.Fprintf(stdout, "  * %s (%s)\n", f.TestID, f.Explanation)
		}
	}
	if results.OK() {
		_, _ = allTestsPassedColor.Fprintln(stdout, "All tests passed")
		return
	}
	if results.Interrupted {
		_, _ = consoleTestFailedColor.Fprintln(stderr, "TEST RUN WAS INTERRUPTED")
	}
	if len(results.Failures) == 0 {
		return
	}
	_, _ = consoleTestFailedColor.Fprintf(stderr, "FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		_, _ = consoleTestFailedColor.Fprintf(stderr, "  * %s\n", f.TestID)
	}
}

// MultiTestLogger fans every event out to several loggers. EndLog returns the first error.
type MultiTestLogger []TestLogger

func (m MultiTestLogger) TestStarted(id TestID) {
	for _, l := range m {
		l.TestStarted(id)
	}
}

func (m MultiTestLogger) TestError(id TestID, err error) {
	for _, l := range m {
		l.TestError(id, err)
	}
}

func (m MultiTestLogger) TestRetrying(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m {
		l.TestRetrying(id, result, debugOutput)
	}
}

func (m MultiTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	for _, l := range m {
		l.TestFinished(id, result, debugOutput)
	}
}

func (m MultiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m {
		l.TestSkipped(id, reason)
	}
}

func (m MultiTestLogger) EndLog(results Results) error {
	var first error
	for _, l := range m {
		if err := l.EndLog(results); err != nil && first == nil {
			first = err
		}
	}
	return first
}
