package harness

import (
	"bytes"
	"io"
	"regexp"
	"sync"

	"github.com/translit-harness/singlish-e2e/framework"
)

// Browser output lines matching any of these are noise that never helps diagnose a failed check.
var defaultBrowserNoise = []*regexp.Regexp{ //nolint:gochecknoglobals
	regexp.MustCompile(`DevTools listening on`),
	regexp.MustCompile(`(?i)dbus`),
	regexp.MustCompile(`Fontconfig`),
}

type filteredWriter struct {
	writer       io.Writer
	excludeRegex []*regexp.Regexp
}

func newFilteredWriter(writer io.Writer, excludeRegex []*regexp.Regexp) *filteredWriter {
	return &filteredWriter{writer, excludeRegex}
}

func (f *filteredWriter) Write(data []byte) (int, error) {
	for _, r := range f.excludeRegex {
		if r.Match(data) {
			return len(data), nil
		}
	}
	return f.writer.Write(data)
}

// loggerWriter turns a byte stream into one log message per line.
type loggerWriter struct {
	logger  framework.Logger
	pending []byte
	lock    sync.Mutex
}

func (w *loggerWriter) Write(data []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.pending = append(w.pending, data...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		if line := bytes.TrimRight(w.pending[:i], "\r"); len(line) != 0 {
			w.logger.Printf("%s", line)
		}
		w.pending = w.pending[i+1:]
	}
	return len(data), nil
}

// lineSplitter passes each complete line to the next writer in its own Write call, so that a
// filteredWriter sees whole lines.
type lineSplitter struct {
	next    io.Writer
	pending []byte
	lock    sync.Mutex
}

func (s *lineSplitter) Write(data []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pending = append(s.pending, data...)
	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			return len(data), nil
		}
		if _, err := s.next.Write(s.pending[:i+1]); err != nil {
			return len(data), err
		}
		s.pending = s.pending[i+1:]
	}
}

// browserLogWriter sends the browser's own output to the debug logger, minus the known noise.
func browserLogWriter(logger framework.Logger) io.Writer {
	prefixed := framework.LoggerWithPrefix(logger, "[browser] ")
	return &lineSplitter{next: newFilteredWriter(&loggerWriter{logger: prefixed}, defaultBrowserNoise)}
}
