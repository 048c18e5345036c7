package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskconsole/internal/config"
	"taskconsole/internal/logging"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(config.BackendConfig{BaseURL: ts.URL + "/", TimeoutMS: 2000, MaxResponseMB: 1}, nil)
}

func TestCreateTask(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/send-task" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type=%q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"status":"ok","message":"Task started","task_id":"t1"}`)
	})

	res, err := c.CreateTask(context.Background(), "open example.com")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if res.Status != StatusOK || res.TaskID != "t1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotBody["instructions"] != "open example.com" {
		t.Fatalf("body=%v", gotBody)
	}
}

func TestCreateTaskBadRequestEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":"error","message":"No instructions provided"}`)
	})
	res, err := c.CreateTask(context.Background(), "")
	if err != nil {
		t.Fatalf("envelope on 400 should not be a transport error: %v", err)
	}
	if res.Status != "error" || res.Message != "No instructions provided" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestTaskStatusSnapshot(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/task-status/t%2F1" {
			t.Errorf("path=%q", r.URL.EscapedPath())
		}
		_, _ = io.WriteString(w, `{"status":"waiting_for_input","terminal_output":"loading...","needs_input":true,"prompt":"Enter username:","screenshot":null}`)
	})
	snap, err := c.TaskStatus(context.Background(), "t/1")
	if err != nil {
		t.Fatalf("TaskStatus: %v", err)
	}
	if !snap.HasPrompt() || snap.Prompt != "Enter username:" {
		t.Fatalf("expected prompt, got %+v", snap)
	}
	if snap.Screenshot != "" {
		t.Fatalf("null screenshot should decode empty")
	}
	if snap.TerminalOutput != "loading..." {
		t.Fatalf("terminal=%q", snap.TerminalOutput)
	}
}

func TestTaskStatusNotFoundEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":"error","message":"Task not found"}`)
	})
	snap, err := c.TaskStatus(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Status != TaskStatusError || snap.Message != "Task not found" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestNonJSONErrorBecomesStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	_, err := c.TaskStatus(context.Background(), "t1")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadGateway || !strings.Contains(statusErr.Body, "upstream exploded") {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}

func TestInvalidJSONOnSuccessIsParseError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	})
	_, err := c.TaskStatus(context.Background(), "t1")
	if err == nil || !strings.Contains(err.Error(), "parse response") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestResponseLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"running","screenshot":"`+strings.Repeat("A", 2<<20)+`"}`)
	})
	_, err := c.TaskStatus(context.Background(), "t1")
	if !IsResponseTooLarge(err) {
		t.Fatalf("expected ResponseTooLargeError, got %v", err)
	}
}

func TestRespondToPrompt(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/respond-to-prompt/t1" {
			t.Errorf("path=%q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"status":"ok","message":"Response received"}`)
	})
	ack, err := c.RespondToPrompt(context.Background(), "t1", "alice")
	if err != nil {
		t.Fatalf("RespondToPrompt: %v", err)
	}
	if !ack.OK() || gotBody["response"] != "alice" {
		t.Fatalf("ack=%+v body=%v", ack, gotBody)
	}
}

func TestTestReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"test_suite": "Sauce Demo Automation Test Suite",
			"session_id": "session_1",
			"execution_date": "2025-01-01 10:00:00",
			"test_cases": [{"test_case_number":"1.1","test_case_name":"Login","result":"Pass","executed_at":"2025-01-01 10:01:00"}],
			"summary": {"total_tests":1,"passed":1,"failed":0,"unknown":0,"pass_rate":"100.00%"}
		}`)
	})
	rep, err := c.TestReport(context.Background())
	if err != nil {
		t.Fatalf("TestReport: %v", err)
	}
	if rep.TestSuite == "" || len(rep.TestCases) != 1 || rep.TestCases[0].Number != "1.1" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Summary == nil || rep.Summary.PassRate != "100.00%" {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}
}

func TestTestReportMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":"error","message":"No test report available yet"}`)
	})
	_, err := c.TestReport(context.Background())
	if !IsAPIError(err) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !strings.Contains(err.Error(), "No test report available yet") {
		t.Fatalf("message lost: %v", err)
	}
}

func TestClearTestReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/test-report/clear" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"status":"ok","message":"Test report cleared"}`)
	})
	ack, err := c.ClearTestReport(context.Background())
	if err != nil || !ack.OK() {
		t.Fatalf("ack=%+v err=%v", ack, err)
	}
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	c := NewClient(config.BackendConfig{BaseURL: url, TimeoutMS: 500}, nil)
	if _, err := c.CreateTask(context.Background(), "x"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestClientKeepsCallerLoggerName(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","task_id":"t1"}`))
	}))
	defer ts.Close()

	var buf bytes.Buffer
	log := logging.New("report", &buf, "debug").Named("backend")
	c := NewClient(config.BackendConfig{BaseURL: ts.URL, TimeoutMS: 2000, MaxResponseMB: 1}, log)
	if _, err := c.CreateTask(context.Background(), "x"); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if got := c.log.Component(); got != "report.backend" {
		t.Fatalf("component=%q", got)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a debug line for the request")
	}
	if n := strings.Count(line, `"sub":"backend"`); n != 1 {
		t.Fatalf("sub field appears %d times: %s", n, line)
	}
}
