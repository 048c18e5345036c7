// Package report formats the backend's accumulated test report and extracts
// the screenshots stored with each test case.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"taskconsole/internal/backend"
	"taskconsole/internal/i18n"
)

// OutputPreviewWidth bounds the terminal output quoted per test case.
const OutputPreviewWidth = 200

// Markdown builds the report document. With failedOnly only the failed
// section is produced.
func Markdown(rep backend.TestReport, failedOnly bool, loc *i18n.I18n) string {
	if loc == nil {
		loc = i18n.Global()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", loc.T("report.title", orUnknown(rep.TestSuite)))
	fmt.Fprintf(&sb, "%s\n\n", loc.T("report.date", orUnknown(rep.ExecutionDate)))

	if !failedOnly {
		writeSummary(&sb, rep, loc)
		writeDetails(&sb, rep.TestCases, loc)
	}
	writeFailures(&sb, rep.TestCases, loc)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeSummary(sb *strings.Builder, rep backend.TestReport, loc *i18n.I18n) {
	s := Summarize(rep)
	fmt.Fprintf(sb, "## %s\n\n", loc.T("report.summary"))
	fmt.Fprintf(sb, "| | |\n|---|---|\n")
	fmt.Fprintf(sb, "| %s | %d |\n", loc.T("report.total"), s.TotalTests)
	fmt.Fprintf(sb, "| %s | %d |\n", loc.T("report.passed"), s.Passed)
	fmt.Fprintf(sb, "| %s | %d |\n", loc.T("report.failed"), s.Failed)
	fmt.Fprintf(sb, "| %s | %d |\n", loc.T("report.unknown"), s.Unknown)
	fmt.Fprintf(sb, "| %s | %s |\n\n", loc.T("report.pass_rate"), s.PassRate)
}

func writeDetails(sb *strings.Builder, cases []backend.TestCase, loc *i18n.I18n) {
	fmt.Fprintf(sb, "## %s\n\n", loc.T("report.details"))
	if len(cases) == 0 {
		fmt.Fprintf(sb, "%s\n\n", loc.T("report.no_cases"))
		return
	}
	for i, tc := range cases {
		writeCase(sb, i+1, tc, true)
	}
}

func writeFailures(sb *strings.Builder, cases []backend.TestCase, loc *i18n.I18n) {
	failed := Failed(cases)
	if len(failed) == 0 {
		fmt.Fprintf(sb, "%s\n", loc.T("report.no_failed"))
		return
	}
	fmt.Fprintf(sb, "## %s (%d)\n\n", loc.T("report.failures"), len(failed))
	for i, tc := range failed {
		writeCase(sb, i+1, tc, false)
	}
}

func writeCase(sb *strings.Builder, n int, tc backend.TestCase, withResult bool) {
	fmt.Fprintf(sb, "%d. %s **%s** %s\n", n, Symbol(tc.Result), tc.Number, tc.Name)
	if withResult {
		fmt.Fprintf(sb, "   - Result: %s\n", tc.Result)
	}
	fmt.Fprintf(sb, "   - Executed: %s\n", tc.ExecutedAt)
	if out := strings.TrimSpace(tc.TerminalOutput); out != "" {
		out = strings.Join(strings.Fields(out), " ")
		fmt.Fprintf(sb, "   - Output: `%s`\n", strings.ReplaceAll(Truncate(out), "`", "'"))
	}
	sb.WriteString("\n")
}

// Summarize returns the backend summary, or counts the cases when the
// report carries none.
func Summarize(rep backend.TestReport) backend.ReportSummary {
	if rep.Summary != nil {
		return *rep.Summary
	}
	var s backend.ReportSummary
	for _, tc := range rep.TestCases {
		switch tc.Result {
		case backend.ResultPass:
			s.Passed++
		case backend.ResultFail:
			s.Failed++
		default:
			s.Unknown++
		}
	}
	s.TotalTests = len(rep.TestCases)
	s.PassRate = "0%"
	if s.TotalTests > 0 {
		s.PassRate = fmt.Sprintf("%.2f%%", float64(s.Passed)/float64(s.TotalTests)*100)
	}
	return s
}

// Failed filters the failed cases, keeping their order.
func Failed(cases []backend.TestCase) []backend.TestCase {
	var out []backend.TestCase
	for _, tc := range cases {
		if tc.Result == backend.ResultFail {
			out = append(out, tc)
		}
	}
	return out
}

// Symbol maps a result to its marker.
func Symbol(result string) string {
	switch result {
	case backend.ResultPass:
		return "✅"
	case backend.ResultFail:
		return "❌"
	default:
		return "❔"
	}
}

// Truncate shortens s to OutputPreviewWidth display cells.
func Truncate(s string) string {
	return runewidth.Truncate(s, OutputPreviewWidth, "...")
}

// Render formats markdown for a terminal. plain selects the no-color style
// used when stdout is not a TTY.
func Render(md string, width int, plain bool) (string, error) {
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
