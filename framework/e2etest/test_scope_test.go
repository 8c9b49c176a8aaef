package e2etest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/translit-harness/singlish-e2e/framework"
)

type recordingTestLogger struct {
	events []string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "start "+id.String())
}
func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String()+": "+err.Error())
}
func (r *recordingTestLogger) TestRetrying(id TestID, result TestResult, _ framework.CapturedOutput) {
	r.events = append(r.events, "retry "+id.String())
}
func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, _ framework.CapturedOutput) {
	r.events = append(r.events, "finish "+id.String()+" "+result.Status())
}
func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skip "+id.String()+" ("+reason+")")
}
func (r *recordingTestLogger) EndLog(Results) error { return nil }

func TestTestScopeInheritsEnv(t *testing.T) {
	myEnv := "hi"
	_ = Run(TestConfiguration{Env: myEnv}, func(ldt *T) {
		assert.Equal(t, myEnv, ldt.Env())

		ldt.Run("subtest", func(ldt1 *T) {
			assert.Equal(t, myEnv, ldt1.Env())
		})
	})
}

func TestTestScopeExitsImmediatelyOnFailNow(t *testing.T) {
	executed1 := false
	executed2 := false
	executed3 := false
	_ = Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("", func(ldt *T) {
			executed1 = true
			ldt.FailNow()
			executed2 = true
		})
		executed3 = true
	})
	assert.True(t, executed1)
	assert.False(t, executed2)
	assert.True(t, executed3)
}

func TestTestScopeExitsImmediatelyOnSkip(t *testing.T) {
	executed1 := false
	executed2 := false
	executed3 := false
	_ = Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("", func(ldt *T) {
			executed1 = true
			ldt.Skip()
			executed2 = true
		})
		executed3 = true
	})
	assert.True(t, executed1)
	assert.False(t, executed2)
	assert.True(t, executed3)
}

func TestTestScopePassedResult(t *testing.T) {
	result := Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("parent", func(ldt0 *T) {
			ldt0.Run("subtest1", func(ldt1 *T) {})
			ldt0.Run("subtest2", func(ldt2 *T) {})
		})
	})

	assert.True(t, result.OK())
	require.Len(t, result.Tests, 4)
	assert.Len(t, result.Failures, 0)

	assert.Equal(t, TestID{"parent", "subtest1"}, result.Tests[0].TestID)
	assert.Len(t, result.Tests[0].Errors, 0)
	assert.Equal(t, 1, result.Tests[0].Attempts)

	assert.Equal(t, TestID{"parent", "subtest2"}, result.Tests[1].TestID)
	assert.Equal(t, TestID{"parent"}, result.Tests[2].TestID)
	assert.Nil(t, result.Tests[3].TestID)
}

func TestTestScopeFailedResult(t *testing.T) {
	result := Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("parent", func(ldt0 *T) {
			ldt0.Run("subtest1", func(ldt1 *T) {})
			ldt0.Run("subtest2", func(ldt2 *T) {
				ldt2.Errorf("failed because %s", "reasons")
				ldt2.Errorf("and failed some more")
			})
			ldt0.Errorf("and parent failed")
		})
	})

	assert.False(t, result.OK())
	require.Len(t, result.Tests, 4)
	assert.Len(t, result.Failures, 2)

	assert.Equal(t, TestID{"parent", "subtest1"}, result.Tests[0].TestID)
	assert.Len(t, result.Tests[0].Errors, 0)

	assert.Equal(t, TestID{"parent", "subtest2"}, result.Tests[1].TestID)
	require.Len(t, result.Tests[1].Errors, 2)
	assert.Equal(t, "failed because reasons", result.Tests[1].Errors[0].Error())
	assert.Equal(t, "and failed some more", result.Tests[1].Errors[1].Error())

	assert.Equal(t, TestID{"parent"}, result.Tests[2].TestID)
	require.Len(t, result.Tests[2].Errors, 1)
	assert.Equal(t, "and parent failed", result.Tests[2].Errors[0].Error())
}

func TestTestScopeSkippedResult(t *testing.T) {
	logger := &recordingTestLogger{}
	result := Run(TestConfiguration{TestLogger: logger}, func(ldt *T) {
		ldt.Run("parent", func(ldt0 *T) {
			ldt0.Run("subtest1", func(ldt1 *T) {
				ldt1.Skip()
			})
			ldt0.Run("subtest2", func(ldt2 *T) {
				ldt2.SkipWithReason("why not")
			})
		})
	})

	assert.True(t, result.OK())
	require.Len(t, result.Tests, 2)
	assert.Equal(t, TestID{"parent"}, result.Tests[0].TestID)
	assert.Nil(t, result.Tests[1].TestID)
	assert.Contains(t, logger.events, "skip parent/subtest2 (why not)")
}

func TestTestScopeFilter(t *testing.T) {
	filter := FilterFunc(func(id TestID) bool {
		return len(id) == 0 || id[0] == "b"
	})

	result := Run(TestConfiguration{Filter: filter}, func(ldt *T) {
		ldt.Run("a", func(ldt0 *T) {
			ldt0.Run("sub1a", func(ldt1 *T) {})
			ldt0.Run("sub2a", func(ldt1 *T) {})
		})
		ldt.Run("b", func(ldt0 *T) {
			ldt0.Run("sub1b", func(ldt1 *T) {})
			ldt0.Run("sub2b", func(ldt1 *T) {})
		})
	})

	assert.True(t, result.OK())
	require.Len(t, result.Tests, 4)
	assert.Equal(t, TestID{"b", "sub1b"}, result.Tests[0].TestID)
	assert.Equal(t, TestID{"b", "sub2b"}, result.Tests[1].TestID)
	assert.Equal(t, TestID{"b"}, result.Tests[2].TestID)
	assert.Equal(t, TestID(nil), result.Tests[3].TestID)
}

func TestTestScopeRecoversFromPanic(t *testing.T) {
	result := Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("boom", func(ldt1 *T) {
			panic("oops")
		})
		ldt.Run("sibling", func(ldt1 *T) {})
	})

	require.Len(t, result.Failures, 1)
	assert.Equal(t, TestID{"boom"}, result.Failures[0].TestID)
	assert.Contains(t, result.Failures[0].Errors[0].Error(), "unexpected panic in test: oops")
	assert.Equal(t, TestID{"sibling"}, result.Tests[1].TestID)
}

func TestTestScopeRunsCleanupsInReverseOrder(t *testing.T) {
	var order []string
	_ = Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("x", func(ldt1 *T) {
			ldt1.Defer(func() { order = append(order, "first") })
			ldt1.Defer(func() { order = append(order, "second") })
			ldt1.FailNow()
		})
	})
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestTestScopeRetriesFailedLeafTests(t *testing.T) {
	logger := &recordingTestLogger{}
	calls := 0
	var attempts []int
	result := Run(TestConfiguration{Retries: 2, TestLogger: logger}, func(ldt *T) {
		ldt.Run("flaky", func(ldt1 *T) {
			calls++
			attempts = append(attempts, ldt1.Attempt())
			if calls < 2 {
				ldt1.Errorf("not yet")
			}
		})
	})

	assert.True(t, result.OK())
	assert.Equal(t, []int{1, 2}, attempts)
	require.Len(t, result.Flaky, 1)
	assert.Equal(t, 2, result.Flaky[0].Attempts)
	require.Len(t, result.Tests, 2) // flaky and root; the failed attempt is not recorded
	assert.Equal(t, []string{
		"start flaky",
		"error flaky: not yet",
		"retry flaky",
		"finish flaky flaky",
	}, logger.events)
}

func TestTestScopeGivesUpAfterRetries(t *testing.T) {
	calls := 0
	result := Run(TestConfiguration{Retries: 2}, func(ldt *T) {
		ldt.Run("broken", func(ldt1 *T) {
			calls++
			ldt1.Errorf("attempt %d failed", ldt1.Attempt())
		})
	})

	assert.Equal(t, 3, calls)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 3, result.Failures[0].Attempts)
	require.Len(t, result.Failures[0].Errors, 1)
	assert.Equal(t, "attempt 3 failed", result.Failures[0].Errors[0].Error())
}

func TestTestScopeDoesNotRetryParents(t *testing.T) {
	parentCalls := 0
	result := Run(TestConfiguration{Retries: 2}, func(ldt *T) {
		ldt.Run("parent", func(ldt0 *T) {
			parentCalls++
			ldt0.Run("child", func(ldt1 *T) {})
			ldt0.Errorf("parent failed")
		})
	})
	assert.Equal(t, 1, parentCalls)
	assert.Len(t, result.Failures, 1)
}

func TestTestScopeTimeoutFailsOnlyThatTest(t *testing.T) {
	result := Run(TestConfiguration{TestTimeout: 20 * time.Millisecond}, func(ldt *T) {
		ldt.Run("slow", func(ldt1 *T) {
			<-ldt1.Context().Done()
		})
		ldt.Run("fast", func(ldt1 *T) {
			assert.NoError(t, ldt1.Context().Err())
		})
	})

	require.Len(t, result.Failures, 1)
	assert.Equal(t, TestID{"slow"}, result.Failures[0].TestID)
	assert.Equal(t, "test timed out after 20ms", result.Failures[0].Errors[0].Error())
}

func TestTestScopeContextIsCancelledAtExit(t *testing.T) {
	var ctx context.Context
	_ = Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("x", func(ldt1 *T) {
			ctx = ldt1.Context()
			assert.NoError(t, ctx.Err())
		})
	})
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
}

func TestTestScopeSkipsRemainingTestsWhenRunIsCancelled(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	logger := &recordingTestLogger{}
	result := Run(TestConfiguration{BaseContext: base, TestLogger: logger}, func(ldt *T) {
		ldt.Run("first", func(ldt1 *T) { cancel() })
		ldt.Run("second", func(ldt1 *T) { assert.Fail(t, "should not run") })
	})
	assert.False(t, result.OK())
	assert.True(t, result.Interrupted)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, TestID{"first"}, result.Failures[0].TestID)
	assert.Equal(t, "test run was interrupted", result.Failures[0].Errors[0].Error())
	assert.Contains(t, logger.events, "skip second (test run was cancelled)")
}

func TestTestScopeRunCancelledBeforeStartIsNotOK(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	cancel()
	result := Run(TestConfiguration{BaseContext: base}, func(ldt *T) {
		ldt.Run("x", func(ldt1 *T) { assert.Fail(t, "should not run") })
	})
	assert.Empty(t, result.Failures)
	assert.True(t, result.Interrupted)
	assert.False(t, result.OK())
}

func TestTestScopeInterruptedTestIsNotRetried(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	defer cancel()
	attempts := 0
	result := Run(TestConfiguration{BaseContext: base, Retries: 2}, func(ldt *T) {
		ldt.Run("x", func(ldt1 *T) {
			attempts++
			cancel()
			<-ldt1.Context().Done()
		})
	})
	assert.Equal(t, 1, attempts)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "test run was interrupted", result.Failures[0].Errors[0].Error())
}

func TestResultsCasesLeaveOutParentScopes(t *testing.T) {
	result := Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("group", func(ldt1 *T) {
			ldt1.Run("a", func(*T) {})
			ldt1.Run("b", func(*T) {})
		})
		ldt.Run("c", func(*T) {})
	})
	var ids []string
	for _, r := range result.Cases() {
		ids = append(ids, r.TestID.String())
	}
	assert.Len(t, result.Tests, 5)
	assert.Equal(t, []string{"group/a", "group/b", "c"}, ids)
}

func TestTestScopeNonCritical(t *testing.T) {
	result := Run(TestConfiguration{}, func(ldt *T) {
		ldt.Run("x", func(ldt1 *T) {
			ldt1.NonCritical("known issue")
			ldt1.Errorf("bad")
		})
	})
	assert.True(t, result.OK())
	require.Len(t, result.NonCriticalFailures, 1)
	assert.Equal(t, "known issue", result.NonCriticalFailures[0].Explanation)
}

func TestTestScopeDebugOutputIsPassedToLogger(t *testing.T) {
	var output framework.CapturedOutput
	logger := &outputCapturingLogger{onFinish: func(o framework.CapturedOutput) { output = o }}
	_ = Run(TestConfiguration{TestLogger: logger}, func(ldt *T) {
		ldt.Debug("from parent")
		ldt.Run("x", func(ldt1 *T) {
			ldt1.Debug("from child %d", 1)
		})
	})
	assert.Equal(t, []string{"from parent", "from child 1"}, output.Messages())
}

type outputCapturingLogger struct {
	nullTestLogger
	onFinish func(framework.CapturedOutput)
}

func (o *outputCapturingLogger) TestFinished(_ TestID, _ TestResult, output framework.CapturedOutput) {
	o.onFinish(output)
}
