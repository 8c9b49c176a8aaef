package translit

import "context"

// Page is the subset of a browser page that a verification needs. Implementations must bound
// each call by the context and report failures as errors rather than panicking.
type Page interface {
	// Navigate loads the URL and returns once the document's structure is ready
	// (DOMContentLoaded), not waiting for every sub-resource.
	Navigate(ctx context.Context, url string) error

	// Fill replaces the content of the element matched by selector with text. It never appends.
	Fill(ctx context.Context, selector, text string) error

	// BodyText returns the text content of the whole document body.
	BodyText(ctx context.Context) (string, error)
}
