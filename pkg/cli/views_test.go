package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/VladislavFirsov/claude-workflow/pkg/runtime"
)

func capturePrintRun(view runView) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	printRun(view)

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestPrintRun_StateOnly(t *testing.T) {
	out := capturePrintRun(runView{ID: "run-1", State: "pending"})
	want := "run_id=run-1 state=pending\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestPrintRun_TasksSortedOnOneLine(t *testing.T) {
	out := capturePrintRun(runView{
		ID:    "run-1",
		State: "running",
		Tasks: map[string]taskView{
			"deploy": {State: "pending"},
			"build":  {State: "running"},
			"test":   {State: "pending"},
		},
	})
	want := "run_id=run-1 state=running\ntasks: build=running, deploy=pending, test=pending\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestPrintRun_FailedTaskShowsCode(t *testing.T) {
	out := capturePrintRun(runView{
		ID:    "run-1",
		State: "failed",
		Tasks: map[string]taskView{
			"build": {State: "completed"},
			"test":  {State: "failed", Error: &errorView{Code: "budget_exceeded", Message: "over budget"}},
		},
		Error: &errorView{Code: "budget_exceeded", Message: "over budget"},
	})
	want := "run_id=run-1 state=failed\n" +
		"tasks: build=completed, test=failed(budget_exceeded)\n" +
		"error: [budget_exceeded] over budget\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestPrintRun_FailedTaskWithoutErrorBody(t *testing.T) {
	out := capturePrintRun(runView{
		ID:    "run-1",
		State: "failed",
		Tasks: map[string]taskView{
			"build": {State: "failed"},
		},
	})
	want := "run_id=run-1 state=failed\ntasks: build=failed\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestDecodeRun(t *testing.T) {
	doc := runtime.Document{
		"id":    "run-9",
		"state": "failed",
		"tasks": map[string]any{
			"build": map[string]any{"state": "failed", "error": map[string]any{"code": "boom", "message": "exploded"}},
		},
		"error":      map[string]any{"code": "boom", "message": "exploded"},
		"created_at": float64(1700000000),
	}

	view, err := decodeRun(doc)
	if err != nil {
		t.Fatalf("decodeRun returned error: %v", err)
	}
	if view.ID != "run-9" || view.State != "failed" {
		t.Errorf("view = %+v", view)
	}
	if view.Tasks["build"].Error == nil || view.Tasks["build"].Error.Code != "boom" {
		t.Errorf("task error not decoded: %+v", view.Tasks["build"])
	}
	if view.Error == nil || view.Error.Message != "exploded" {
		t.Errorf("run error not decoded: %+v", view.Error)
	}
}

func TestDecodeRun_WrongTypes(t *testing.T) {
	if _, err := decodeRun(runtime.Document{"id": 42}); err == nil {
		t.Error("expected error for non-string id")
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[string]bool{
		"pending":   false,
		"running":   false,
		"aborting":  false,
		"completed": true,
		"failed":    true,
		"aborted":   true,
		"":          false,
	}
	for state, want := range terminal {
		if got := isTerminal(state); got != want {
			t.Errorf("isTerminal(%q) = %v, want %v", state, got, want)
		}
	}
}
