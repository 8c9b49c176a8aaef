package suites

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/translit-harness/singlish-e2e/framework/e2etest"
)

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`) //nolint:gochecknoglobals

func artifactDirName(id e2etest.TestID, attempt int) string {
	name := strings.Trim(unsafeFileNameChars.ReplaceAllString(id.Last(), "-"), "-")
	return fmt.Sprintf("%s-retry%d", name, attempt-1)
}

// saveRetryArtifacts keeps a screenshot and the body text of a retried case, the way a trace is
// kept on the first retry. Problems are logged to the test's output and otherwise ignored.
func saveRetryArtifacts(t *e2etest.T, page BrowserPage, body string) {
	env := requireEnv(t)
	if env.params.ArtifactsDir == "" || page == nil {
		return
	}
	dir := filepath.Join(env.params.ArtifactsDir, artifactDirName(t.ID(), t.Attempt()))
	if err := writeArtifacts(t, dir, page, body); err != nil {
		t.Debug("could not save artifacts: %s", err)
		return
	}
	t.Debug("saved artifacts to %s", dir)
}

func writeArtifacts(t *e2etest.T, dir string, page BrowserPage, body string) error {
	if err := os.MkdirAll(dir, 0755); err != nil { //nolint:gosec
		return err
	}
	var errs []error
	if err := os.WriteFile(filepath.Join(dir, "body.txt"), []byte(body), 0644); err != nil { //nolint:gosec
		errs = append(errs, err)
	}
	png, err := page.Screenshot(t.Context())
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, "screenshot.png"), png, 0644) //nolint:gosec
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("screenshot: %w", err))
	}
	return errors.Join(errs...)
}
