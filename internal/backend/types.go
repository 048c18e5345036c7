package backend

// StatusOK is the envelope status the backend uses for success.
const StatusOK = "ok"

// Task statuses reported by the status endpoint that the console acts on.
// Anything else ("pending", "running", "waiting_for_input", ...) is displayed
// as-is.
const (
	TaskStatusError     = "error"
	TaskStatusCompleted = "completed"
)

// CreateResult is the send-task response.
type CreateResult struct {
	Status  string `json:"status"`
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Snapshot is one poll response. Empty strings mean the field was absent
// (or null), matching how the backend omits them.
type Snapshot struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	Screenshot     string `json:"screenshot,omitempty"`
	TerminalOutput string `json:"terminal_output,omitempty"`
	NeedsInput     bool   `json:"needs_input,omitempty"`
	Prompt         string `json:"prompt,omitempty"`
}

// HasPrompt reports whether the snapshot asks the user for input.
func (s Snapshot) HasPrompt() bool {
	return s.NeedsInput && s.Prompt != ""
}

// Ack is the generic {status, message} envelope.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the backend accepted the request.
func (a Ack) OK() bool {
	return a.Status == StatusOK
}

// TestReport is the accumulated test-case report kept by the backend.
type TestReport struct {
	TestSuite     string         `json:"test_suite"`
	SessionID     string         `json:"session_id"`
	ExecutionDate string         `json:"execution_date"`
	TestCases     []TestCase     `json:"test_cases"`
	Summary       *ReportSummary `json:"summary,omitempty"`
}

// TestCase is one executed case inside a report.
type TestCase struct {
	Number         string `json:"test_case_number"`
	Name           string `json:"test_case_name"`
	Result         string `json:"result"`
	ExecutedAt     string `json:"executed_at"`
	Instructions   string `json:"instructions"`
	TerminalOutput string `json:"terminal_output"`
	Screenshot     string `json:"screenshot,omitempty"`
}

// ReportSummary holds the counts the backend maintains per report.
type ReportSummary struct {
	TotalTests int    `json:"total_tests"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Unknown    int    `json:"unknown"`
	PassRate   string `json:"pass_rate"`
}

// Test case results.
const (
	ResultPass    = "Pass"
	ResultFail    = "Fail"
	ResultUnknown = "Unknown"
)
