// Package internal contains test helpers for e2etest.
package internal

// RunAction is used only in unit tests, but exported because it has to be in a separate package
// for the stacktrace filtering to be observable.
func RunAction(action func()) {
	action()
}
