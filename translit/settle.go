package translit

import (
	"context"
	"strings"
	"time"

	"github.com/translit-harness/singlish-e2e/framework/helpers"
)

const (
	DefaultSettleDelay  = 3 * time.Second
	defaultPollInterval = 250 * time.Millisecond
)

// Settler waits for the page to finish reacting to the input before the body text is read.
type Settler interface {
	Settle(ctx context.Context, page Page, expected string) error
	String() string
}

// SleepSettler waits a fixed delay no matter what the page does.
type SleepSettler struct {
	Delay time.Duration
}

func (s SleepSettler) Settle(ctx context.Context, _ Page, _ string) error {
	return helpers.SleepContext(ctx, s.Delay)
}

func (s SleepSettler) String() string {
	return "sleep " + s.Delay.String()
}

// PollSettler samples the body text until the expected substring shows up or Window elapses.
// Running out of time is not an error: the final read decides the outcome. Read errors while
// polling count as "not there yet".
type PollSettler struct {
	Window   time.Duration
	Interval time.Duration
}

func (s PollSettler) Settle(ctx context.Context, page Page, expected string) error {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	helpers.PollForSpecificResultValue(ctx, func() bool {
		body, err := page.BodyText(ctx)
		return err == nil && strings.Contains(body, expected)
	}, s.Window, interval, true)
	return ctx.Err()
}

func (s PollSettler) String() string {
	return "poll up to " + s.Window.String()
}
