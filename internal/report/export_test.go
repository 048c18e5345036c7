package report

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskconsole/internal/backend"
	"taskconsole/internal/i18n"
)

func TestExportCSV(t *testing.T) {
	payload := []byte("\x89PNG fake")
	rep := backend.TestReport{TestCases: []backend.TestCase{
		{Number: "1.1", Name: "Login", Result: backend.ResultPass, ExecutedAt: "2025-01-01 10:01:00",
			TerminalOutput: strings.Repeat("é", 600), Screenshot: base64.StdEncoding.EncodeToString(payload)},
		{Number: "1.2", Name: "Checkout", Result: backend.ResultFail, ExecutedAt: "2025-01-01 10:02:00",
			TerminalOutput: "declined, \"card\"", Screenshot: "iVBORw0KGgo..."},
		{Number: "1.3", Name: "Logout", Result: backend.ResultUnknown, ExecutedAt: "2025-01-01 10:03:00"},
	}}
	path := filepath.Join(t.TempDir(), "out", "test_report.csv")

	res, err := ExportCSV(rep, path)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if res.Rows != 3 || res.Screenshots != 1 {
		t.Fatalf("rows=%d screenshots=%d", res.Rows, res.Screenshots)
	}
	if res.ScreenshotDir != filepath.Join(filepath.Dir(path), "screenshots") {
		t.Fatalf("screenshot dir=%q", res.ScreenshotDir)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 || records[0][0] != "Test Case Number" || records[0][5] != "Screenshot File" {
		t.Fatalf("header/rows: %v", records[0])
	}

	tests := []struct {
		row        int
		output     string
		screenshot string
	}{
		{1, strings.Repeat("é", CSVOutputLimit), "TC_1_1_2025-01-01_10-01-00.png"},
		{2, "declined, \"card\"", "Error saving screenshot"},
		{3, "", ""},
	}
	for _, tt := range tests {
		rec := records[tt.row]
		if rec[4] != tt.output {
			t.Errorf("row %d output has %d runes", tt.row, len([]rune(rec[4])))
		}
		if rec[5] != tt.screenshot {
			t.Errorf("row %d screenshot=%q, want %q", tt.row, rec[5], tt.screenshot)
		}
	}

	data, err := os.ReadFile(filepath.Join(res.ScreenshotDir, "TC_1_1_2025-01-01_10-01-00.png"))
	if err != nil || !bytes.Equal(data, payload) {
		t.Fatalf("saved screenshot mismatch: %v", err)
	}
}

func TestWriteHTML(t *testing.T) {
	rep := sampleReport()
	rep.SessionID = "session_42"
	rep.TestCases[0].Instructions = "<script>alert(1)</script>"
	rep.TestCases[0].Screenshot = base64.StdEncoding.EncodeToString([]byte("png"))
	rep.TestCases[1].Screenshot = "iVBORw0KGgo..."
	path := filepath.Join(t.TempDir(), "last_session_report.html")

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := WriteHTML(rep, path, at, i18n.New("en")); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(raw)
	for _, want := range []string{
		"Session ID: session_42",
		"33.33%",
		"Login", "Checkout", "Logout",
		`class="badge fail"`,
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		`src="data:image/png;base64,cG5n"`,
		"Generated on 2025-01-02 03:04:05",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(html, "<script>alert(1)") {
		t.Error("instructions were not escaped")
	}
	if n := strings.Count(html, "<img "); n != 1 {
		t.Errorf("img count=%d, want 1 (truncated payload skipped)", n)
	}
}

func TestWriteHTMLNoCases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.html")
	if err := WriteHTML(backend.TestReport{}, path, time.Now(), i18n.New("en")); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "No test cases executed yet.") {
		t.Fatalf("empty report html:\n%s", raw)
	}
}
