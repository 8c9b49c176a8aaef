package suites

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/translit-harness/singlish-e2e/corpus"
	"github.com/translit-harness/singlish-e2e/framework"
	"github.com/translit-harness/singlish-e2e/framework/e2etest"
	"github.com/translit-harness/singlish-e2e/translit"
)

const (
	// CountVerificationTitle is the name of the test that checks the corpus counts.
	CountVerificationTitle = "Test Count Verification"

	// ForbidOnlyTitle is the name of the single failing test reported when a CI run finds focused
	// cases.
	ForbidOnlyTitle = "Forbid Only"

	DefaultTestTimeout = 120 * time.Second

	observedExcerptLength = 200
	bannerWidth           = 60
)

// SuiteParams controls a run of the transliteration suite.
type SuiteParams struct {
	Verifier translit.Config

	// CI turns on the stricter rules used in continuous integration: focused cases are an error.
	CI bool

	Retries     int
	TestTimeout time.Duration
	BaseContext context.Context

	// StrictDriverErrors fails a case whenever the driver reported an error, even if the boolean
	// verdict was what the case expected.
	StrictDriverErrors bool

	// ArtifactsDir receives screenshots and body text from the first retry of each case. Empty
	// disables artifacts.
	ArtifactsDir string

	// Output gets the progress messages that are not tied to a single test. Defaults to stdout.
	Output framework.Logger
}

// RunTranslitTestSuite runs every case of the corpus, then the count verification.
func RunTranslitTestSuite(
	pages PageSource,
	c corpus.Corpus,
	params SuiteParams,
	filter e2etest.Filter,
	testLogger e2etest.TestLogger,
) e2etest.Results {
	out := params.Output
	if out == nil {
		out = stdoutLogger{}
	}

	focused := c.HasOnly()
	if focused && !params.CI {
		out.Println("Running only the cases marked \"only\"")
	}

	timeout := params.TestTimeout
	if timeout <= 0 {
		timeout = DefaultTestTimeout
	}
	config := e2etest.TestConfiguration{
		Filter:      filter,
		TestLogger:  testLogger,
		BaseContext: params.BaseContext,
		TestTimeout: timeout,
		Retries:     params.Retries,
		Env: suiteEnv{
			pages:          pages,
			verifierConfig: translit.NewVerifier(params.Verifier, nil).Config(),
			corpus:         c,
			params:         params,
			focused:        focused,
		},
	}

	if focused && params.CI {
		// Nothing else runs, and the filter must not hide the reason.
		config.Filter = nil
		config.Retries = 0
		return e2etest.Run(config, func(t *e2etest.T) {
			t.Run(ForbidOnlyTitle, doForbidOnly)
		})
	}

	out.Printf("Running %d transliteration checks from %s", len(c.Cases()), c.Source)
	out.Println()
	if sdf, ok := filter.(e2etest.SelfDescribingFilter); ok {
		sdf.Describe(os.Stdout)
	}

	return e2etest.Run(config, func(t *e2etest.T) {
		t.Run(c.GroupTitle(corpus.Positive), func(t *e2etest.T) { doCases(t, c.Positive()) })
		t.Run(c.GroupTitle(corpus.Negative), func(t *e2etest.T) { doCases(t, c.Negative()) })
		t.Run(CountVerificationTitle, doCountVerification)
	})
}

// ListTestIDs returns the IDs of every test the suite would run for the corpus, in order.
func ListTestIDs(c corpus.Corpus) []e2etest.TestID {
	var ret []e2etest.TestID
	for _, cat := range []corpus.Category{corpus.Positive, corpus.Negative} {
		group := e2etest.TestID{c.GroupTitle(cat)}
		cases := c.Positive()
		if cat == corpus.Negative {
			cases = c.Negative()
		}
		for _, tc := range cases {
			ret = append(ret, group.Plus(tc.Title()))
		}
	}
	return append(ret, e2etest.TestID{CountVerificationTitle})
}

func doForbidOnly(t *e2etest.T) {
	var ids []string
	for _, tc := range requireEnv(t).corpus.Cases() {
		if tc.Only {
			ids = append(ids, tc.ID)
		}
	}
	t.Errorf("cases marked \"only\" are not allowed in CI: %s", strings.Join(ids, ", "))
}

func doCases(t *e2etest.T, cases []corpus.TestCase) {
	for _, tc := range cases {
		tc := tc
		t.Run(tc.Title(), func(t *e2etest.T) { doCase(t, tc) })
	}
}

func doCase(t *e2etest.T, tc corpus.TestCase) {
	env := requireEnv(t)
	if env.focused && !tc.Only {
		t.SkipWithReason(`not marked "only"`)
	}
	if tc.KnownIssue != "" {
		t.NonCritical(tc.KnownIssue)
	}
	ctx := t.Context()

	var outcome translit.Outcome
	page, err := env.pages.NewPage(ctx)
	if err != nil {
		outcome = translit.Outcome{Err: &translit.DriverError{Stage: translit.StageOpenPage, Err: err}}
	} else {
		t.Defer(func() {
			if err := page.Close(); err != nil {
				t.Debug("error closing page: %s", err)
			}
		})
		outcome = translit.NewVerifier(env.verifierConfig, t.DebugLogger()).Check(ctx, page, tc.Input, tc.Expected)
	}

	result := translit.NewVerificationResult(tc.ID, outcome)
	t.Debug("observed: %q", translit.Excerpt(result.ObservedText, observedExcerptLength))

	if t.Attempt() == 2 {
		saveRetryArtifacts(t, page, result.ObservedText)
	}

	if env.params.StrictDriverErrors && result.Errored {
		t.Errorf("%s: driver error: %s", tc.ID, result.ErrorMessage)
		t.FailNow()
	}

	m.In(t).For(describeCase(tc, result)).Assert(outcome.Verdict(), m.Equal(tc.ExpectMatch))
}

func describeCase(tc corpus.TestCase, result translit.VerificationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s, expecting %q to be ", tc.ID, tc.Category, tc.Expected)
	if tc.ExpectMatch {
		b.WriteString("present")
	} else {
		b.WriteString("absent")
	}
	fmt.Fprintf(&b, "; observed %q", translit.Excerpt(result.ObservedText, observedExcerptLength))
	if result.Errored {
		fmt.Fprintf(&b, "; driver error: %s", result.ErrorMessage)
	}
	b.WriteString(")")
	return b.String()
}

func doCountVerification(t *e2etest.T) {
	env := requireEnv(t)
	if env.focused {
		t.SkipWithReason(`only cases marked "only" are running`)
	}
	c := env.corpus
	positive, negative := len(c.Positive()), len(c.Negative())
	meta := c.Declared.Meta

	rule := strings.Repeat("=", bannerWidth)
	t.Debug(rule)
	t.Debug("TOTAL TEST COUNT:")
	t.Debug(rule)
	t.Debug("Positive Tests: %d", positive)
	t.Debug("Negative Tests: %d", negative)
	t.Debug("Verification Test: %d", meta)
	t.Debug(rule)
	t.Debug("GRAND TOTAL: %d TESTS", positive+negative+meta)
	t.Debug(rule)

	require.NoError(t, c.CheckCounts())
}

type stdoutLogger struct{}

func (stdoutLogger) Println(args ...any) { fmt.Println(args...) }

func (stdoutLogger) Printf(message string, args ...any) { fmt.Printf(message+"\n", args...) }
