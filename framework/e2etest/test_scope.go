package e2etest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/translit-harness/singlish-e2e/framework"
)

type environment struct {
	config  TestConfiguration
	results Results
}

// T represents a test scope. It is very similar to Go's testing.T type.
type T struct {
	env         *environment
	id          TestID
	ctx         context.Context
	attempt     int
	debugLogger framework.CapturingLogger
	nonCritical string
	failed      bool
	skipped     bool
	skipReason  string
	hasSubtests bool
	cleanups    []func()
	errors      []error
	helperFns   []string
}

// TestConfiguration contains options for the entire test run.
type TestConfiguration struct {
	// Filter is an optional value for determining which tests to run based on their names.
	Filter Filter

	// TestLogger receives status information about each test.
	TestLogger TestLogger

	// Env is an optional value of any type defined by the application which can be accessed from tests.
	Env any

	// BaseContext is the parent of every test's Context. Cancelling it fails the test that is
	// running, skips all tests that have not started yet, and marks the Results as interrupted.
	// If nil, context.Background() is used.
	BaseContext context.Context

	// TestTimeout is the ceiling for a single test that has no subtests. Exceeding it fails that
	// test only. Zero means no ceiling.
	TestTimeout time.Duration

	// Retries is the number of times a failed test with no subtests is run again before it is
	// reported as failed.
	Retries int
}

// Run starts a top-level test scope.
func Run(
	config TestConfiguration,
	action func(*T),
) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	if config.BaseContext == nil {
		config.BaseContext = context.Background()
	}
	env := &environment{
		config: config,
	}
	t := &T{env: env, attempt: 1}
	result := t.run(action)
	if !t.skipped {
		env.results.add(result)
	}
	env.results.Interrupted = config.BaseContext.Err() != nil
	return env.results
}

func (t *T) run(action func(*T)) (result TestResult) {
	result.TestID = t.id
	result.Attempts = t.attempt
	started := time.Now()

	timeout := t.env.config.TestTimeout
	var cancel context.CancelFunc
	if timeout > 0 {
		t.ctx, cancel = context.WithTimeout(t.env.config.BaseContext, timeout)
	} else {
		t.ctx, cancel = context.WithCancel(t.env.config.BaseContext)
	}

	defer func() {
		if r := recover(); r != nil && !t.skipped {
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.addError(addError)
			}
		}
		if !t.skipped && !t.hasSubtests {
			if t.env.config.BaseContext.Err() != nil {
				t.failed = true
				t.addError(errors.New("test run was interrupted"))
			} else if timeout > 0 && errors.Is(t.ctx.Err(), context.DeadlineExceeded) {
				t.failed = true
				t.addError(fmt.Errorf("test timed out after %s", timeout))
			}
		}
		for i := len(t.cleanups) - 1; i >= 0; i-- {
			t.cleanups[i]()
		}
		cancel()

		result.Errors = t.errors
		result.Failed = t.failed
		result.HasSubtests = t.hasSubtests
		if t.failed && t.nonCritical != "" {
			result.NonCritical = true
			result.Explanation = t.nonCritical
		}
		result.Duration = time.Since(started)
	}()

	action(t)
	return result
}

func (t *T) addError(err error) {
	t.errors = append(t.errors, err)
	t.env.config.TestLogger.TestError(t.id, err)
}

// ID returns the full name of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Run runs a subtest in its own scope.
//
// This is equivalent to Go's testing.T.Run. If the subtest fails and has no subtests of its own,
// it is run again up to TestConfiguration.Retries times; only the last attempt is recorded.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)
	t.hasSubtests = true
	logger := t.env.config.TestLogger

	logger.TestStarted(id)
	if t.env.config.Filter != nil && !t.env.config.Filter.Match(id) {
		logger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	if t.env.config.BaseContext.Err() != nil {
		logger.TestSkipped(id, "test run was cancelled")
		return
	}

	maxAttempts := 1 + max(0, t.env.config.Retries)
	for attempt := 1; ; attempt++ {
		c1 := &T{
			id:      id,
			env:     t.env,
			attempt: attempt,
		}
		t.debugLogger.AddChildLogger(&c1.debugLogger) // see comments on t.DebugLogger()
		result := c1.run(action)
		t.debugLogger.RemoveChildLogger(&c1.debugLogger)

		if c1.skipped {
			logger.TestSkipped(id, c1.skipReason)
			return
		}
		if result.Failed && !c1.hasSubtests && attempt < maxAttempts && t.env.config.BaseContext.Err() == nil {
			logger.TestRetrying(id, result, c1.debugLogger.Output())
			continue
		}
		t.env.results.add(result)
		logger.TestFinished(id, result, c1.debugLogger.Output())
		return
	}
}

// NonCritical indicates that if this test fails, we would like to know about it but we're willing to
// live with it. It will be shown in the output as a non-critical failure, accompanied by the
// explanation that is specified here. Non-critical failures do not cause a non-zero exit code.
func (t *T) NonCritical(explanation string) {
	t.nonCritical = explanation
}

// Errorf reports a test failure. It is equivalent to Go's testing.T.Errorf. It does not cause the test
// to terminate, but adds the failure message to the output and marks the test as failed.
//
// You will rarely use this method directly; it is part of this type's implementation of the base
// interfaces testing.T and assert.TestingT, allowing it to be called from assertion helpers.
func (t *T) Errorf(format string, args ...any) {
	t.failed = true
	err := fmt.Errorf(format, args...)

	stacktrace := getStacktrace(false, t.helperFns)
	t.addError(transformError(err, stacktrace))
}

// FailNow causes the test to immediately terminate and be marked as failed.
func (t *T) FailNow() {
	panic(t)
}

// Skip causes the test to immediately terminate and be marked as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

// SkipWithReason is equivalent to Skip but provides a message.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug writes a message to the output for this test scope.
func (t *T) Debug(message string, args ...any) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger instance for writing output for this test scope.
//
// The output that is captured for a test will be passed to TestLogger.TestFinished at the end of
// the test. The test runner can choose whether to display this or not based on command-line options.
//
// When a test has subtests (created with t.Run), the logger for a subtest starts out with a copy of
// any output that was already logged for the parent test. During the lifetime of the subtest, any
// further output that is sent to the parent test's logger will go to the child test's logger
// instead.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules a cleanup function which is guaranteed to be called when this test scope
// exits for any reason. Unlike a Go defer statement, Defer can be used from within helper
// functions.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}

// Context returns a context that is cancelled when this test scope exits, when the test timeout
// elapses, or when the whole run is cancelled. Subtests do not inherit the parent's deadline.
func (t *T) Context() context.Context {
	return t.ctx
}

// Attempt returns 1 for the first run of a test, 2 for its first retry, and so on.
func (t *T) Attempt() int {
	return t.attempt
}

// Env returns the application-defined value, if any, that was specified in the TestConfiguration.
func (t *T) Env() any {
	return t.env.config.Env
}

// Helper marks the function that calls it as a test helper that shouldn't appear in stacktraces.
// Equivalent to Go's testing.T.Helper().
func (t *T) Helper() {
	pc, _, _, ok := runtime.Caller(1) // 0 is Helper() itself, 1 is who called it
	if !ok {
		return
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return
	}
	t.helperFns = append(t.helperFns, f.Name())
}
