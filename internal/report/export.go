package report

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskconsole/internal/backend"
	"taskconsole/internal/i18n"
	"taskconsole/internal/preview"
)

// CSVOutputLimit bounds the terminal output written per CSV row, in runes.
const CSVOutputLimit = 500

// screenshotSaveError marks a CSV row whose screenshot could not be saved.
const screenshotSaveError = "Error saving screenshot"

var csvHeader = []string{
	"Test Case Number", "Test Case Name", "Result", "Executed At", "Terminal Output", "Screenshot File",
}

// CSVExport is the outcome of ExportCSV.
type CSVExport struct {
	Path          string
	ScreenshotDir string
	Rows          int
	Screenshots   int
}

// ExportCSV writes one row per test case to path. Screenshots go to a
// "screenshots" directory next to the file and the row names the saved file.
// A truncated payload loses its "..." marker and is still attempted; rows
// whose image cannot be decoded say so in the screenshot column.
func ExportCSV(rep backend.TestReport, path string) (CSVExport, error) {
	res := CSVExport{Path: path, ScreenshotDir: filepath.Join(filepath.Dir(path), "screenshots")}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("create export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return res, fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return res, fmt.Errorf("write csv header: %w", err)
	}
	for _, tc := range rep.TestCases {
		shot, err := exportScreenshot(tc, res.ScreenshotDir)
		if err != nil {
			return res, err
		}
		if shot != "" && shot != screenshotSaveError {
			res.Screenshots++
		}
		row := []string{tc.Number, tc.Name, tc.Result, tc.ExecutedAt, clip(tc.TerminalOutput, CSVOutputLimit), shot}
		if err := w.Write(row); err != nil {
			return res, fmt.Errorf("write csv row %s: %w", tc.Number, err)
		}
		res.Rows++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return res, fmt.Errorf("flush csv: %w", err)
	}
	return res, f.Close()
}

// exportScreenshot returns the file name for the CSV column. Only a failure
// to write the file is an error.
func exportScreenshot(tc backend.TestCase, dir string) (string, error) {
	data := strings.TrimSpace(tc.Screenshot)
	if data == "" {
		return "", nil
	}
	data = strings.TrimSuffix(data, "...")
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return screenshotSaveError, nil
	}
	name := ScreenshotName(tc)
	if _, err := preview.WriteFile(dir, name, raw); err != nil {
		return "", fmt.Errorf("save screenshot for %s: %w", tc.Number, err)
	}
	return name, nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// htmlCase is one test case as the HTML template sees it.
type htmlCase struct {
	backend.TestCase
	Class      string
	Icon       string
	Screenshot template.URL
}

type htmlReport struct {
	SessionID     string
	ExecutionDate string
	Summary       backend.ReportSummary
	Cases         []htmlCase
	Generated     string
	T             func(key string, args ...any) string
}

// WriteHTML renders a self-contained HTML session report to path. Case
// screenshots are inlined as data URIs; truncated or undecodable payloads
// are left out.
func WriteHTML(rep backend.TestReport, path string, now time.Time, loc *i18n.I18n) error {
	if loc == nil {
		loc = i18n.Global()
	}
	data := htmlReport{
		SessionID:     orUnknown(rep.SessionID),
		ExecutionDate: orUnknown(rep.ExecutionDate),
		Summary:       Summarize(rep),
		Generated:     now.Format("2006-01-02 15:04:05"),
		T:             loc.T,
	}
	for _, tc := range rep.TestCases {
		hc := htmlCase{TestCase: tc, Class: "unknown", Icon: "?"}
		switch tc.Result {
		case backend.ResultPass:
			hc.Class, hc.Icon = "pass", "✓"
		case backend.ResultFail:
			hc.Class, hc.Icon = "fail", "✗"
		}
		if shot := strings.TrimSpace(tc.Screenshot); shot != "" && !strings.HasSuffix(shot, "...") {
			if _, err := base64.StdEncoding.DecodeString(shot); err == nil {
				hc.Screenshot = template.URL("data:image/png;base64," + shot)
			}
		}
		data.Cases = append(data.Cases, hc)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	if err := sessionTemplate.Execute(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("render html report: %w", err)
	}
	return f.Close()
}

var sessionTemplate = template.Must(template.New("session").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{call .T "report.html_title"}} - {{.SessionID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; background: #f3f4f6; margin: 0; padding: 20px; }
.container { max-width: 1200px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
.header { background: #667eea; color: #fff; padding: 32px; text-align: center; }
.summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 16px; padding: 24px; background: #f8f9fa; }
.card { background: #fff; padding: 16px; border-radius: 8px; text-align: center; }
.card .value { font-size: 1.8em; font-weight: 700; }
.card.pass .value { color: #10b981; } .card.fail .value { color: #ef4444; } .card.unknown .value { color: #f59e0b; }
.cases { padding: 24px; }
details { border: 2px solid #e5e7eb; border-radius: 8px; margin-bottom: 20px; }
summary { padding: 16px 24px; cursor: pointer; font-weight: 600; }
.badge { float: right; padding: 4px 14px; border-radius: 16px; }
.badge.pass { background: #d1fae5; color: #065f46; } .badge.fail { background: #fee2e2; color: #991b1b; } .badge.unknown { background: #fef3c7; color: #92400e; }
.body { padding: 0 24px 24px; }
pre { background: #1f2937; color: #e5e7eb; padding: 16px; border-radius: 6px; white-space: pre-wrap; }
img { max-width: 100%; border: 1px solid #e5e7eb; border-radius: 6px; }
.footer { padding: 16px; text-align: center; color: #6b7280; font-size: 0.9em; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>{{call .T "report.html_title"}}</h1>
<div>{{call .T "report.session" .SessionID}}<br>{{call .T "report.date" .ExecutionDate}}</div>
</div>
<div class="summary">
<div class="card"><div>{{call .T "report.total"}}</div><div class="value">{{.Summary.TotalTests}}</div></div>
<div class="card pass"><div>{{call .T "report.passed"}}</div><div class="value">{{.Summary.Passed}}</div></div>
<div class="card fail"><div>{{call .T "report.failed"}}</div><div class="value">{{.Summary.Failed}}</div></div>
<div class="card unknown"><div>{{call .T "report.unknown"}}</div><div class="value">{{.Summary.Unknown}}</div></div>
<div class="card"><div>{{call .T "report.pass_rate"}}</div><div class="value">{{.Summary.PassRate}}</div></div>
</div>
<div class="cases">
{{- range $i, $c := .Cases}}
<details{{if eq $i 0}} open{{end}}>
<summary>{{$c.Number}} {{$c.Name}}<span class="badge {{$c.Class}}">{{$c.Icon}} {{$c.Result}}</span></summary>
<div class="body">
<p>{{call $.T "report.executed_at" $c.ExecutedAt}}</p>
<h3>{{call $.T "report.instructions"}}</h3>
<pre>{{$c.Instructions}}</pre>
<h3>{{call $.T "report.output"}}</h3>
<pre>{{$c.TerminalOutput}}</pre>
{{- if $c.Screenshot}}
<h3>{{call $.T "report.screenshot"}}</h3>
<img src="{{$c.Screenshot}}" alt="{{$c.Number}}">
{{- end}}
</div>
</details>
{{- else}}
<p>{{call .T "report.no_cases"}}</p>
{{- end}}
</div>
<div class="footer">{{call .T "report.generated" .Generated}}</div>
</div>
</body>
</html>
`))
