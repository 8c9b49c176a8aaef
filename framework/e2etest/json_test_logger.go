package e2etest

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/translit-harness/singlish-e2e/framework"
)

// JSONTestLogger writes a machine-readable report of the run at EndLog.
type JSONTestLogger struct {
	filePath   string
	suiteName  string
	properties map[string]string
	outputs    map[string]framework.CapturedOutput
	skipped    []skippedTest
	lock       sync.Mutex
}

type skippedTest struct {
	id     TestID
	reason string
}

func NewJSONTestLogger(filePath, suiteName string, properties map[string]string) *JSONTestLogger {
	return &JSONTestLogger{
		filePath:   filePath,
		suiteName:  suiteName,
		properties: properties,
		outputs:    make(map[string]framework.CapturedOutput),
	}
}

func (j *JSONTestLogger) TestStarted(TestID)                                        {}
func (j *JSONTestLogger) TestError(TestID, error)                                   {}
func (j *JSONTestLogger) TestRetrying(TestID, TestResult, framework.CapturedOutput) {}

func (j *JSONTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	j.lock.Lock()
	j.outputs[id.String()] = debugOutput
	j.lock.Unlock()
}

func (j *JSONTestLogger) TestSkipped(id TestID, reason string) {
	j.lock.Lock()
	j.skipped = append(j.skipped, skippedTest{id: id, reason: reason})
	j.lock.Unlock()
}

func (j *JSONTestLogger) EndLog(results Results) error {
	data, err := j.render(results)
	if err != nil {
		return err
	}
	fmt.Printf("Writing JSON report to %s\n", j.filePath)
	if err := os.MkdirAll(filepath.Dir(j.filePath), 0755); err != nil { //nolint:gosec
		return err
	}
	return os.WriteFile(j.filePath, data, 0644) //nolint:gosec
}

func (j *JSONTestLogger) render(results Results) ([]byte, error) {
	j.lock.Lock()
	defer j.lock.Unlock()

	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("suite").String(j.suiteName)

	props := obj.Name("properties").Object()
	names := maps.Keys(j.properties)
	slices.Sort(names)
	for _, name := range names {
		props.Name(name).String(j.properties[name])
	}
	props.End()

	cases := results.Cases()
	stats := obj.Name("stats").Object()
	stats.Name("total").Int(len(cases))
	stats.Name("failed").Int(len(results.Failures))
	stats.Name("nonCritical").Int(len(results.NonCriticalFailures))
	stats.Name("flaky").Int(len(results.Flaky))
	stats.Name("skipped").Int(len(j.skipped))
	stats.Name("interrupted").Bool(results.Interrupted)
	stats.Name("ok").Bool(results.OK())
	stats.End()

	tests := obj.Name("tests").Array()
	for _, r := range cases {
		if len(r.TestID) == 0 {
			continue // the root scope is not a test of its own
		}
		t := tests.Object()
		t.Name("id").String(r.TestID.String())
		t.Name("status").String(r.Status())
		t.Name("attempts").Int(r.Attempts)
		t.Name("durationMs").Int(int(r.Duration.Milliseconds()))
		if r.NonCritical {
			t.Name("nonCritical").String(r.Explanation)
		}
		if len(r.Errors) != 0 {
			errs := t.Name("errors").Array()
			for _, e := range r.Errors {
				errs.String(describeError(e))
			}
			errs.End()
		}
		if output := j.outputs[r.TestID.String()]; len(output) != 0 {
			lines := t.Name("output").Array()
			for _, m := range output.Messages() {
				lines.String(m)
			}
			lines.End()
		}
		t.End()
	}
	tests.End()

	skipped := obj.Name("skipped").Array()
	for _, s := range j.skipped {
		o := skipped.Object()
		o.Name("id").String(s.id.String())
		o.Name("reason").String(s.reason)
		o.End()
	}
	skipped.End()

	obj.End()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return append(w.Bytes(), '\n'), nil
}
