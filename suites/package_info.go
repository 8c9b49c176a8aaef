// Package suites builds the test tree for a corpus and runs it with the e2etest framework: one
// group per category, one test per case, and a final check of the corpus counts.
package suites
