package translit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/translit-harness/singlish-e2e/framework"
)

const (
	DefaultTargetURL         = "https://www.swifttranslator.com/"
	InputPlaceholder         = "Input Your Singlish Text Here."
	DefaultNavigationTimeout = 60 * time.Second
	DefaultActionTimeout     = 30 * time.Second

	logInputLength = 30
)

// DefaultInputSelector finds the Singlish text area by its placeholder: any placeholder that
// contains InputPlaceholder, ignoring case.
const DefaultInputSelector = `[placeholder*="` + InputPlaceholder + `" i]`

type Config struct {
	TargetURL         string
	InputSelector     string
	NavigationTimeout time.Duration
	ActionTimeout     time.Duration
	Settle            Settler
}

func DefaultConfig() Config {
	return Config{
		TargetURL:         DefaultTargetURL,
		InputSelector:     DefaultInputSelector,
		NavigationTimeout: DefaultNavigationTimeout,
		ActionTimeout:     DefaultActionTimeout,
		Settle:            SleepSettler{Delay: DefaultSettleDelay},
	}
}

// Outcome is everything one verification observed. Err, if set, is a *DriverError.
type Outcome struct {
	Observed string
	Matched  bool
	Err      error
}

// Verdict is the boolean answer: the expected text was found and nothing went wrong.
func (o Outcome) Verdict() bool {
	return o.Err == nil && o.Matched
}

// DriverError returns the driver error, if any.
func (o Outcome) DriverError() *DriverError {
	var de *DriverError
	if errors.As(o.Err, &de) {
		return de
	}
	return nil
}

type Verifier struct {
	config Config
	logger framework.Logger
}

// NewVerifier fills in defaults for any zero fields of config.
func NewVerifier(config Config, logger framework.Logger) *Verifier {
	def := DefaultConfig()
	if config.TargetURL == "" {
		config.TargetURL = def.TargetURL
	}
	if config.InputSelector == "" {
		config.InputSelector = def.InputSelector
	}
	if config.NavigationTimeout <= 0 {
		config.NavigationTimeout = def.NavigationTimeout
	}
	if config.ActionTimeout <= 0 {
		config.ActionTimeout = def.ActionTimeout
	}
	if config.Settle == nil {
		config.Settle = def.Settle
	}
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Verifier{config: config, logger: logger}
}

func (v *Verifier) Config() Config {
	return v.config
}

// Check navigates to the target, replaces the input with the given text, waits for the page to
// settle and reports whether expected appears in the body text. It makes exactly one attempt.
func (v *Verifier) Check(ctx context.Context, page Page, input, expected string) Outcome {
	v.logger.Printf(`Testing: "%s"`, Abbreviate(input, logInputLength))

	o := v.check(ctx, page, input, expected)
	if o.Err != nil {
		v.logger.Printf("Error: %s", o.Err)
	}
	return o
}

func (v *Verifier) check(ctx context.Context, page Page, input, expected string) Outcome {
	err := withTimeout(ctx, v.config.NavigationTimeout, func(ctx context.Context) error {
		return page.Navigate(ctx, v.config.TargetURL)
	})
	if err != nil {
		return Outcome{Err: &DriverError{Stage: StageNavigate, Err: err}}
	}

	err = withTimeout(ctx, v.config.ActionTimeout, func(ctx context.Context) error {
		return page.Fill(ctx, v.config.InputSelector, input)
	})
	if err != nil {
		return Outcome{Err: &DriverError{Stage: StageFill, Err: err}}
	}

	if err := v.config.Settle.Settle(ctx, page, expected); err != nil {
		return Outcome{Err: &DriverError{Stage: StageSettle, Err: err}}
	}

	var body string
	err = withTimeout(ctx, v.config.ActionTimeout, func(ctx context.Context) error {
		var err error
		body, err = page.BodyText(ctx)
		return err
	})
	if err != nil {
		return Outcome{Err: &DriverError{Stage: StageRead, Err: err}}
	}

	return Outcome{Observed: body, Matched: strings.Contains(body, expected)}
}

// Verify is Check reduced to a boolean. Driver failures count as "not found".
func (v *Verifier) Verify(ctx context.Context, page Page, input, expected string) bool {
	return v.Check(ctx, page, input, expected).Verdict()
}

func withTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// Excerpt returns at most n runes of s.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Abbreviate is Excerpt with "..." appended when anything was cut off.
func Abbreviate(s string, n int) string {
	if e := Excerpt(s, n); e != s {
		return e + "..."
	}
	return s
}
