package cli

import (
	"strings"
	"testing"

	"github.com/VladislavFirsov/claude-workflow/pkg/runtimetest"
)

func TestStatus_PrintsRun(t *testing.T) {
	srv := testServer(t)
	startTestRun(t, srv, "st-1", "build")

	out, err := execute(t, "status", "--runtime-url", srv.URL(), "st-1")
	if err != nil {
		t.Fatalf("status returned error: %v", err)
	}
	// The fake advances one state per poll: pending becomes running.
	want := "run_id=st-1 state=running\ntasks: build=running\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestStatus_UnknownRun(t *testing.T) {
	srv := testServer(t)

	_, err := execute(t, "status", "--runtime-url", srv.URL(), "nope")
	if err == nil || !strings.Contains(err.Error(), "[run_not_found]") {
		t.Errorf("expected run_not_found error, got: %v", err)
	}
}

func TestStatus_JSON(t *testing.T) {
	srv := testServer(t)
	startTestRun(t, srv, "st-json", "build")

	out, err := execute(t, "status", "--runtime-url", srv.URL(), "--json", "st-json")
	if err != nil {
		t.Fatalf("status --json returned error: %v", err)
	}
	if !strings.Contains(out, `"state": "running"`) {
		t.Errorf("expected raw JSON document:\n%s", out)
	}
}

func TestStatus_JSONPathString(t *testing.T) {
	srv := testServer(t)
	startTestRun(t, srv, "st-2", "build")

	out, err := execute(t, "status", "--runtime-url", srv.URL(), "st-2", "--jsonpath", "$.state")
	if err != nil {
		t.Fatalf("status --jsonpath returned error: %v", err)
	}
	if out != "running\n" {
		t.Errorf("output = %q, want %q", out, "running\n")
	}
}

func TestStatus_JSONPathNested(t *testing.T) {
	srv := testServer(t)
	startTestRun(t, srv, "st-3", "build")

	// Two polls: running, then completed with task output set.
	if _, err := execute(t, "status", "--runtime-url", srv.URL(), "st-3"); err != nil {
		t.Fatalf("first poll returned error: %v", err)
	}
	out, err := execute(t, "status", "--runtime-url", srv.URL(), "st-3", "--jsonpath", "$.tasks.build.output")
	if err != nil {
		t.Fatalf("status --jsonpath returned error: %v", err)
	}
	if out != "executed:build\n" {
		t.Errorf("output = %q, want %q", out, "executed:build\n")
	}
}

func TestStatus_JSONPathNonString(t *testing.T) {
	srv := testServer(t)
	startTestRun(t, srv, "st-4", "build")

	// Drive to completed so the usage block exists.
	for i := 0; i < 2; i++ {
		if _, err := execute(t, "status", "--runtime-url", srv.URL(), "st-4"); err != nil {
			t.Fatalf("poll returned error: %v", err)
		}
	}
	out, err := execute(t, "status", "--runtime-url", srv.URL(), "st-4", "--jsonpath", "$.usage.tokens")
	if err != nil {
		t.Fatalf("status --jsonpath returned error: %v", err)
	}
	if out != "100\n" {
		t.Errorf("output = %q, want %q", out, "100\n")
	}
}

func TestStatus_JSONPathNoMatch(t *testing.T) {
	srv := testServer(t)
	startTestRun(t, srv, "st-5", "build")

	_, err := execute(t, "status", "--runtime-url", srv.URL(), "st-5", "--jsonpath", "$.missing")
	if err == nil || !strings.Contains(err.Error(), "no values match") {
		t.Errorf("expected no-match error, got: %v", err)
	}
}

func TestStatus_JSONPathInvalid(t *testing.T) {
	srv := testServer(t)
	startTestRun(t, srv, "st-6", "build")

	_, err := execute(t, "status", "--runtime-url", srv.URL(), "st-6", "--jsonpath", "$[")
	if err == nil || !strings.Contains(err.Error(), "invalid JSONPath") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestStatus_WatchReportsFailureWithoutError(t *testing.T) {
	srv := testServer(t, runtimetest.WithFailRun("st-f", "task_failed", "step exploded"))
	startTestRun(t, srv, "st-f", "build")

	out, err := execute(t, "status", "--runtime-url", srv.URL(), "st-f", "--watch", "--interval", "1ms")
	if err != nil {
		t.Fatalf("status --watch returned error: %v", err)
	}
	// Reporting a failed run is itself a success; only 'run --watch'
	// turns a bad outcome into a bad exit code.
	if !strings.Contains(out, "state=failed") {
		t.Errorf("watch output missing terminal state:\n%s", out)
	}
	if !strings.Contains(out, "error: [task_failed] step exploded") {
		t.Errorf("watch output missing run error:\n%s", out)
	}
}
