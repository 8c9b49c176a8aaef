// Package framework contains the low-level infrastructure of the transliteration test harness
// that does not know anything about Singlish or about the target website. The base package
// contains shared types such as Logger; other components are in the subpackages:
//
// e2etest: a test scope framework similar to Go's testing package, but run as application
// code so that a test run can be configured from the command line and reported in several
// formats.
//
// harness: browser lifecycle management and the page driver used by the tests.
//
// helpers: polling and waiting helpers that work with e2etest scopes as well as *testing.T.
//
// The domain-specific code that knows what is being tested (the corpus and the suites)
// builds on top of these.
package framework
