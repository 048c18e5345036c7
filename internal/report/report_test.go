package report

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskconsole/internal/backend"
	"taskconsole/internal/i18n"
)

func sampleReport() backend.TestReport {
	return backend.TestReport{
		TestSuite:     "Sauce Demo Automation Test Suite",
		ExecutionDate: "2025-01-01 10:00:00",
		TestCases: []backend.TestCase{
			{Number: "1.1", Name: "Login", Result: backend.ResultPass, ExecutedAt: "2025-01-01 10:01:00", TerminalOutput: "ok"},
			{Number: "1.2", Name: "Checkout", Result: backend.ResultFail, ExecutedAt: "2025-01-01 10:02:00", TerminalOutput: strings.Repeat("x", 300)},
			{Number: "1.3", Name: "Logout", Result: backend.ResultUnknown, ExecutedAt: "2025-01-01 10:03:00"},
		},
		Summary: &backend.ReportSummary{TotalTests: 3, Passed: 1, Failed: 1, Unknown: 1, PassRate: "33.33%"},
	}
}

func TestMarkdownFull(t *testing.T) {
	md := Markdown(sampleReport(), false, i18n.New("en"))
	for _, want := range []string{
		"# Test Suite: Sauce Demo Automation Test Suite",
		"Execution date: 2025-01-01 10:00:00",
		"| Pass rate | 33.33% |",
		"1. ✅ **1.1** Login",
		"3. ❔ **1.3** Logout",
		"## Failed tests (1)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, strings.Repeat("x", 201)) {
		t.Error("terminal output should be truncated")
	}
}

func TestMarkdownFailedOnly(t *testing.T) {
	md := Markdown(sampleReport(), true, i18n.New("en"))
	if strings.Contains(md, "Summary") || strings.Contains(md, "Login") {
		t.Fatalf("failed-only report has extra sections:\n%s", md)
	}
	if !strings.Contains(md, "**1.2** Checkout") {
		t.Fatalf("failed case missing:\n%s", md)
	}
}

func TestMarkdownNoCases(t *testing.T) {
	md := Markdown(backend.TestReport{}, false, i18n.New("en"))
	for _, want := range []string{"Test Suite: Unknown", "No test cases executed yet.", "No failed tests! All tests passed."} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestSummarizeWithoutBackendSummary(t *testing.T) {
	rep := sampleReport()
	rep.Summary = nil
	s := Summarize(rep)
	if s.TotalTests != 3 || s.Passed != 1 || s.Failed != 1 || s.Unknown != 1 {
		t.Fatalf("summary=%+v", s)
	}
	if s.PassRate != "33.33%" {
		t.Fatalf("pass rate=%q", s.PassRate)
	}
	if got := Summarize(backend.TestReport{}).PassRate; got != "0%" {
		t.Fatalf("empty pass rate=%q", got)
	}
}

func TestRenderPlain(t *testing.T) {
	out, err := Render("# Title\n\nbody", 60, true)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Title") || !strings.Contains(out, "body") {
		t.Fatalf("render output=%q", out)
	}
}

func TestScreenshotName(t *testing.T) {
	got := ScreenshotName(backend.TestCase{Number: "2.10", ExecutedAt: "2025-01-01 10:01:00"})
	if got != "TC_2_10_2025-01-01_10-01-00.png" {
		t.Fatalf("name=%q", got)
	}
}

func TestExtractScreenshots(t *testing.T) {
	payload := []byte("\x89PNG fake")
	rep := backend.TestReport{TestCases: []backend.TestCase{
		{Number: "1.1", ExecutedAt: "2025-01-01 10:01:00", Screenshot: base64.StdEncoding.EncodeToString(payload)},
		{Number: "1.2", ExecutedAt: "2025-01-01 10:02:00"},
		{Number: "1.3", ExecutedAt: "2025-01-01 10:03:00", Screenshot: "iVBORw0KGgo..."},
		{Number: "1.4", ExecutedAt: "2025-01-01 10:04:00", Screenshot: "***"},
	}}
	dir := filepath.Join(t.TempDir(), "shots")
	res, err := ExtractScreenshots(rep, dir)
	if err != nil {
		t.Fatalf("ExtractScreenshots: %v", err)
	}
	if len(res.Saved) != 1 || res.Skipped != 3 {
		t.Fatalf("saved=%v skipped=%d", res.Saved, res.Skipped)
	}
	data, err := os.ReadFile(filepath.Join(dir, "TC_1_1_2025-01-01_10-01-00.png"))
	if err != nil || !bytes.Equal(data, payload) {
		t.Fatalf("saved data mismatch: %v", err)
	}
}
