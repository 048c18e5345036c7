package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Console messages (insights region)
	"console.enter_instructions": "Please enter instructions.",
	"console.task_running":       "A task is already running. Please wait or reset.",
	"console.starting":           "Starting task...",
	"console.started":            "Task started. Waiting for updates...",
	"console.start_failed":       "Error starting task",
	"console.error":              "Error: %s",
	"console.poll_error":         "Error checking task status: %s",
	"console.status":             "Status: %s",
	"console.cancelled":          "Cancelled.",
	"console.response_sent":      "Response sent. Waiting for updates...",
	"console.respond_failed":     "Error sending response",

	// Prompt input placeholders
	"prompt.placeholder": "Type your response here and click Send...",
	"prompt.waiting":     "Waiting for next prompt...",

	// Instructions input
	"input.placeholder": "Describe the task... (ctrl+d to send)",

	// Preview region
	"preview.placeholder": "Screenshot preview will appear here",
	"preview.broken":      "Screenshot failed to load",
	"preview.saved":       "Screenshot saved to %s",
	"preview.none":        "No screenshot to save",

	// UI (TUI) - Panel titles
	"panel.instructions": "Instructions",
	"panel.prompt":       "Prompt",
	"panel.insights":     "Insights",
	"panel.preview":      "Preview",
	"panel.terminal":     "Terminal",

	// UI - Status bar
	"status.idle":       "Idle",
	"status.submitting": "Submitting...",
	"status.polling":    "Running",
	"status.waiting":    "Waiting for input",
	"status.completed":  "Completed",
	"status.failed":     "Failed",
	"status.task":       "task %s",

	// UI - Keybindings (TUI)
	"keys.send":   "send",
	"keys.cancel": "cancel",
	"keys.reset":  "reset",
	"keys.focus":  "switch input",
	"keys.save":   "save frame",
	"keys.quit":   "quit",

	// Line mode
	"line.banner":        "taskconsole connected to %s",
	"line.help":          "type instructions to start a task; while a prompt is open, lines are sent as responses",
	"line.commands":      "commands: /status /cancel /reset /save /help /quit",
	"line.prompt":        "? %s",
	"line.screenshot":    "[screenshot %dx%d]",
	"line.unknown":       "unknown command: %s",
	"line.waiting":       "input closed, waiting for task %s to finish",
	"line.waiting_start": "input closed, waiting for the task to finish",
	"line.unanswerable":  "input closed while the task asks %q; cancelling",

	// Report
	"report.title":        "Test Suite: %s",
	"report.date":         "Execution date: %s",
	"report.summary":      "Summary",
	"report.total":        "Total tests",
	"report.passed":       "Passed",
	"report.failed":       "Failed",
	"report.unknown":      "Unknown",
	"report.pass_rate":    "Pass rate",
	"report.details":      "Detailed results",
	"report.failures":     "Failed tests",
	"report.no_cases":     "No test cases executed yet.",
	"report.no_failed":    "No failed tests! All tests passed.",
	"report.cleared":      "Test report cleared",
	"report.extracted":    "Saved %d screenshots to %s (%d skipped)",
	"report.unavailable":  "No test report available yet",
	"report.html_title":   "Test Execution Report",
	"report.session":      "Session ID: %s",
	"report.executed_at":  "Executed at: %s",
	"report.instructions": "Test instructions",
	"report.output":       "Terminal output",
	"report.screenshot":   "Screenshot",
	"report.generated":    "Generated on %s",
	"report.csv_written":  "Exported %d test cases to %s (%d screenshots in %s)",
	"report.html_written": "HTML report written to %s",
	"report.export_none":  "nothing to export: pass --csv FILE and/or --html FILE",

	// History
	"history.none":       "No tasks recorded yet",
	"history.no_prompts": "No prompts answered for %s",
	"history.disabled":   "Task history is disabled (storage.history)",

	// CLI
	"cli.config_ready": "Project config: %s",

	// Errors
	"error.backend": "Backend error: %s",
	"error.config":  "Config error: %s",
}
