package e2etest

import (
	"fmt"
	"strings"
	"time"
)

// Results is the outcome of a whole test run.
type Results struct {
	// Tests contains every test that was run (not skipped), in the order they finished.
	Tests []TestResult

	// Failures contains the tests that failed on their final attempt.
	Failures []TestResult

	// NonCriticalFailures contains failed tests that were marked with T.NonCritical.
	NonCriticalFailures []TestResult

	// Flaky contains tests that failed at first but passed on a retry.
	Flaky []TestResult

	// Interrupted is true if the run was cancelled before every test had a chance to finish.
	Interrupted bool
}

type TestResult struct {
	TestID      TestID
	Errors      []error
	Failed      bool
	NonCritical bool
	Explanation string
	Attempts    int
	Duration    time.Duration
	HasSubtests bool
}

// OK returns true if no test failed, other than non-critical failures, and the run was not
// interrupted.
func (r Results) OK() bool {
	return len(r.Failures) == 0 && !r.Interrupted
}

// Cases returns the results of the tests that have no subtests, in order. A parent scope is
// included only if it failed on its own.
func (r Results) Cases() []TestResult {
	var ret []TestResult
	for _, t := range r.Tests {
		if !t.HasSubtests || t.Failed {
			ret = append(ret, t)
		}
	}
	return ret
}

func (r *Results) add(result TestResult) {
	if result.Failed {
		if result.NonCritical {
			r.NonCriticalFailures = append(r.NonCriticalFailures, result)
		} else {
			r.Failures = append(r.Failures, result)
		}
	} else if result.Attempts > 1 {
		r.Flaky = append(r.Flaky, result)
	}
	r.Tests = append(r.Tests, result)
}

// Status returns one of "passed", "failed" or "flaky".
func (r TestResult) Status() string {
	switch {
	case r.Failed:
		return "failed"
	case r.Attempts > 1:
		return "flaky"
	default:
		return "passed"
	}
}

type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

// Last returns the innermost name, or "" for the root.
func (t TestID) Last() string {
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
