// Package translit drives a single verification against the transliteration page: type a
// Singlish input into the text area, let the page settle, and look for an expected substring
// anywhere in the rendered body text.
//
// The browser is reached only through the Page interface, so the same logic runs against a real
// Chromium page in the harness and against fakes in unit tests.
package translit
