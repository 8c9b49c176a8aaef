package e2etest

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/translit-harness/singlish-e2e/framework"
)

var htmlReportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Suite}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; vertical-align: top; }
.passed { color: #197319; } .failed { color: #b00020; } .flaky { color: #a05a00; } .skipped { color: #777; }
pre { margin: 0; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Suite}}</h1>
<p>Generated {{.Generated}}</p>
{{if .Properties}}<ul>{{range .Properties}}<li><b>{{.Name}}</b>: {{.Value}}</li>{{end}}</ul>{{end}}
<p id="summary">{{.Total}} tests: {{.Passed}} passed, {{.Failed}} failed, {{.Flaky}} flaky, {{.Skipped}} skipped</p>
{{if .Interrupted}}<p id="interrupted" class="failed">The test run was interrupted before it finished.</p>{{end}}
<table>
<tr><th>Test</th><th>Status</th><th>Attempts</th><th>Duration</th><th>Details</th></tr>
{{range .Rows}}<tr class="{{.Status}}"><td>{{.ID}}</td><td class="{{.Status}}">{{.Status}}</td><td>{{.Attempts}}</td><td>{{.Duration}}</td><td>{{range .Errors}}<pre>{{.}}</pre>{{end}}{{if .Output}}<details><summary>output</summary><pre>{{.Output}}</pre></details>{{end}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// HTMLTestLogger writes a self-contained HTML report at EndLog.
type HTMLTestLogger struct {
	filePath   string
	suiteName  string
	properties map[string]string
	outputs    map[string]string
	skipped    []skippedTest
	now        func() time.Time
	lock       sync.Mutex
}

type htmlReport struct {
	Suite       string
	Generated   string
	Properties  []jUnitXMLProperty
	Total       int
	Passed      int
	Failed      int
	Flaky       int
	Skipped     int
	Interrupted bool
	Rows        []htmlReportRow
}

type htmlReportRow struct {
	ID       string
	Status   string
	Attempts int
	Duration string
	Errors   []string
	Output   string
}

func NewHTMLTestLogger(filePath, suiteName string, properties map[string]string) *HTMLTestLogger {
	return &HTMLTestLogger{
		filePath:   filePath,
		suiteName:  suiteName,
		properties: properties,
		outputs:    make(map[string]string),
		now:        time.Now,
	}
}

func (h *HTMLTestLogger) TestStarted(TestID)                                        {}
func (h *HTMLTestLogger) TestError(TestID, error)                                   {}
func (h *HTMLTestLogger) TestRetrying(TestID, TestResult, framework.CapturedOutput) {}

func (h *HTMLTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	h.lock.Lock()
	h.outputs[id.String()] = debugOutput.ToString("")
	h.lock.Unlock()
}

func (h *HTMLTestLogger) TestSkipped(id TestID, reason string) {
	h.lock.Lock()
	h.skipped = append(h.skipped, skippedTest{id: id, reason: reason})
	h.lock.Unlock()
}

func (h *HTMLTestLogger) EndLog(results Results) error {
	data, err := h.render(results)
	if err != nil {
		return err
	}
	fmt.Printf("Writing HTML report to %s\n", h.filePath)
	if err := os.MkdirAll(filepath.Dir(h.filePath), 0755); err != nil { //nolint:gosec
		return err
	}
	return os.WriteFile(h.filePath, data, 0644) //nolint:gosec
}

func (h *HTMLTestLogger) render(results Results) ([]byte, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	report := htmlReport{
		Suite:     h.suiteName,
		Generated: h.now().UTC().Format(time.RFC3339),
		Skipped:   len(h.skipped),

		Interrupted: results.Interrupted,
	}
	report.Properties = sortedProperties(h.properties)

	for _, r := range results.Cases() {
		if len(r.TestID) == 0 {
			continue
		}
		row := htmlReportRow{
			ID:       r.TestID.String(),
			Status:   r.Status(),
			Attempts: r.Attempts,
			Duration: r.Duration.Round(time.Millisecond).String(),
			Output:   h.outputs[r.TestID.String()],
		}
		for _, e := range r.Errors {
			row.Errors = append(row.Errors, describeError(e))
		}
		switch row.Status {
		case "failed":
			report.Failed++
		case "flaky":
			report.Flaky++
		default:
			report.Passed++
		}
		report.Rows = append(report.Rows, row)
	}
	for _, s := range h.skipped {
		report.Rows = append(report.Rows, htmlReportRow{ID: s.id.String(), Status: "skipped", Errors: []string{s.reason}})
	}
	report.Total = report.Passed + report.Failed + report.Flaky

	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
