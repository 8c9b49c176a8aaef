// Package e2etest contains a test runner framework that is similar to Go's testing package,
// but is run as regular Go application code rather than Go tests. It adds what an end-to-end
// run against an external website needs: per-test timeouts, retries of failed tests, flaky test
// detection, and reporting in console, JUnit, JSON and HTML formats.
//
// Tests always run one at a time on the calling goroutine.
package e2etest
