package harness

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	targetProbeInterval = time.Millisecond * 100
	maxProbeBodySize    = 1 << 20
)

var titleRegex = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`) //nolint:gochecknoglobals

// TargetInfo is what the startup probe learned about the website under test.
type TargetInfo struct {
	URL        string
	StatusCode int
	Title      string
	// HasInput is true if the page source mentions the placeholder of the text area, ignoring case.
	HasInput bool
}

// Status describes the probe result in a few words for reports.
func (t TargetInfo) Status() string {
	if t.StatusCode == 0 {
		return "unreachable"
	}
	return fmt.Sprintf("HTTP %d", t.StatusCode)
}

// probeTarget makes a plain HTTP request to the target, retrying until it gets any response or the
// timeout elapses. It prints a dot for every attempt, the same way a test service is awaited.
func probeTarget(
	ctx context.Context,
	client *http.Client,
	url string,
	placeholder string,
	timeout time.Duration,
	output io.Writer,
) (TargetInfo, error) {
	info := TargetInfo{URL: url}
	fmt.Fprintf(output, "Checking target site at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := get(ctx, client, url)
		if err == nil {
			fmt.Fprintln(output)
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxProbeBodySize))
			_ = resp.Body.Close()
			info.StatusCode = resp.StatusCode
			if resp.StatusCode >= 400 {
				return info, fmt.Errorf("target site returned status code %d", resp.StatusCode)
			}
			if readErr != nil {
				return info, fmt.Errorf("error reading target site response: %w", readErr)
			}
			if m := titleRegex.FindSubmatch(body); m != nil {
				info.Title = strings.TrimSpace(html.UnescapeString(string(m[1])))
			}
			info.HasInput = placeholder != "" &&
				strings.Contains(strings.ToLower(string(body)), strings.ToLower(placeholder))
			fmt.Fprintf(output, "Target site responded with %s (title %q)\n", info.Status(), info.Title)
			return info, nil
		}
		if ctx.Err() != nil {
			fmt.Fprintln(output)
			return info, ctx.Err()
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return info, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		select {
		case <-ctx.Done():
		case <-time.After(targetProbeInterval):
		}
	}
}

func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}
