// Package runtimetest provides an in-process fake of the workflow runtime
// sidecar for tests and examples.
//
// The fake implements the three v1 endpoints (start, status, abort) with
// the sidecar's observable wire contract: JSON run documents, structured
// {"code","message"} error bodies, and the run/task state vocabulary. It
// executes nothing; instead every run advances one state per status poll
// (pending, running, then a terminal state), so polling loops terminate
// deterministically without sleeps.
package runtimetest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VladislavFirsov/claude-workflow/pkg/logging"
)

// Run states reported by the fake sidecar.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateAborting  = "aborting"
	StateAborted   = "aborted"
)

// Task states reported by the fake sidecar.
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskSkipped   = "skipped"
)

// Error codes used in {"code","message"} bodies.
const (
	CodeInvalidInput = "invalid_input"
	CodeRunNotFound  = "run_not_found"
	CodeRunExists    = "run_exists"
	CodeRunCompleted = "run_completed"
	CodeRunAborted   = "run_aborted"
)

// versionHeader is logged when absent so misconfigured clients show up in
// test output; the fake never rejects on it.
const versionHeader = "X-Runtime-Version"

// Server is the fake sidecar. Create one with New, point a client at URL,
// and Close it when done.
type Server struct {
	httpServer *httptest.Server
	log        *slog.Logger

	initialState string

	mu       sync.Mutex
	runs     map[string]*runRecord
	failures map[string]errorBody
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithInitialState makes every new run start in the given state instead of
// pending. Useful for staging terminal runs (abort conflicts, completed
// status) without polling.
func WithInitialState(state string) Option {
	return func(s *Server) {
		s.initialState = state
	}
}

// WithFailRun stages a failure: when the run with the given ID leaves the
// running state it transitions to failed instead of completed, carrying the
// given error code and message. The lexically last task absorbs the failure;
// the rest complete.
func WithFailRun(id, code, message string) Option {
	return func(s *Server) {
		s.failures[id] = errorBody{Code: code, Message: message}
	}
}

// New starts a fake sidecar on a random local port.
func New(opts ...Option) *Server {
	s := &Server{
		log:          logging.Nop(),
		initialState: StatePending,
		runs:         make(map[string]*runRecord),
		failures:     make(map[string]errorBody),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/runs", s.handleStartRun)
	mux.HandleFunc("GET /api/v1/runs/{id}", s.handleGetStatus)
	mux.HandleFunc("POST /api/v1/runs/{id}/abort", s.handleAbort)

	s.httpServer = httptest.NewServer(mux)
	return s
}

// URL returns the base URL of the fake sidecar.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the fake down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// runRecord tracks one run. Task IDs are kept sorted so state transitions
// and rendered documents are deterministic.
type runRecord struct {
	id        string
	state     string
	taskIDs   []string
	tasks     map[string]taskStatus
	failure   *errorBody
	createdAt int64
	updatedAt int64
}

// Wire documents. These mirror the sidecar's response shapes; omitempty
// keeps absent sections out of the JSON the way the real API does.

type runDocument struct {
	ID        string                `json:"id"`
	State     string                `json:"state"`
	Tasks     map[string]taskStatus `json:"tasks,omitempty"`
	Usage     *usageBody            `json:"usage,omitempty"`
	Error     *errorBody            `json:"error,omitempty"`
	CreatedAt int64                 `json:"created_at"`
	UpdatedAt int64                 `json:"updated_at,omitempty"`
}

type taskStatus struct {
	State  string     `json:"state"`
	Output string     `json:"output,omitempty"`
	Error  *errorBody `json:"error,omitempty"`
}

type usageBody struct {
	Tokens int64     `json:"tokens"`
	Cost   *costBody `json:"cost,omitempty"`
}

type costBody struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// startRequest is the subset of the start-run body the fake cares about.
// Prompts, models, deps, and policy are accepted and ignored.
type startRequest struct {
	ID    string `json:"id"`
	Tasks []struct {
		ID string `json:"id"`
	} `json:"tasks"`
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	s.checkVersionHeader(r)

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Info("start rejected", "reason", "malformed JSON", "error", err)
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Tasks) == 0 {
		s.log.Info("start rejected", "reason", "no tasks")
		writeError(w, http.StatusBadRequest, CodeInvalidInput, "at least one task is required")
		return
	}

	seen := make(map[string]bool, len(req.Tasks))
	taskIDs := make([]string, 0, len(req.Tasks))
	for _, task := range req.Tasks {
		if task.ID == "" {
			writeError(w, http.StatusBadRequest, CodeInvalidInput, "task.id is required")
			return
		}
		if seen[task.ID] {
			writeError(w, http.StatusBadRequest, CodeInvalidInput, "duplicate task.id: "+task.ID)
			return
		}
		seen[task.ID] = true
		taskIDs = append(taskIDs, task.ID)
	}
	sort.Strings(taskIDs)

	runID := req.ID
	if runID == "" {
		runID = "run-" + uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		s.log.Info("start rejected", "reason", "duplicate run", "run_id", runID)
		writeError(w, http.StatusConflict, CodeRunExists, "run "+runID+": run already exists")
		return
	}

	now := time.Now().Unix()
	rec := &runRecord{
		id:        runID,
		state:     s.initialState,
		taskIDs:   taskIDs,
		tasks:     make(map[string]taskStatus, len(taskIDs)),
		createdAt: now,
		updatedAt: now,
	}
	if failure, ok := s.failures[runID]; ok {
		rec.failure = &failure
	}
	rec.syncTasks()
	s.runs[runID] = rec

	s.log.Info("run started", "run_id", runID, "tasks", len(taskIDs), "state", rec.state)
	writeDocument(w, http.StatusAccepted, rec.document())
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	s.checkVersionHeader(r)
	runID := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.runs[runID]
	if !exists {
		s.log.Info("status rejected", "reason", "unknown run", "run_id", runID)
		writeError(w, http.StatusNotFound, CodeRunNotFound, "run "+runID+": run not found")
		return
	}

	rec.advance()
	s.log.Info("status polled", "run_id", runID, "state", rec.state)
	writeDocument(w, http.StatusOK, rec.document())
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	s.checkVersionHeader(r)
	runID := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.runs[runID]
	if !exists {
		s.log.Info("abort rejected", "reason", "unknown run", "run_id", runID)
		writeError(w, http.StatusNotFound, CodeRunNotFound, "run "+runID+": run not found")
		return
	}

	switch rec.state {
	case StateAborted:
		writeError(w, http.StatusConflict, CodeRunAborted, "run "+runID+": run already aborted")
		return
	case StateCompleted, StateFailed:
		writeError(w, http.StatusConflict, CodeRunCompleted, "run "+runID+": run already finished")
		return
	case StateAborting:
		// Repeat abort while winding down is idempotent.
	default:
		rec.state = StateAborting
		rec.updatedAt = time.Now().Unix()
	}

	s.log.Info("abort requested", "run_id", runID)
	writeDocument(w, http.StatusAccepted, rec.document())
}

func (s *Server) checkVersionHeader(r *http.Request) {
	if got := r.Header.Get(versionHeader); got != "v1" {
		s.log.Warn("unexpected version header", "method", r.Method, "path", r.URL.Path, "got", got)
	}
}

// advance moves the run one step along its lifecycle. Terminal states are
// sticky.
func (r *runRecord) advance() {
	switch r.state {
	case StatePending:
		r.state = StateRunning
	case StateRunning:
		if r.failure != nil {
			r.state = StateFailed
		} else {
			r.state = StateCompleted
		}
	case StateAborting:
		r.state = StateAborted
	default:
		return
	}
	r.updatedAt = time.Now().Unix()
	r.syncTasks()
}

// syncTasks derives task states from the run state.
func (r *runRecord) syncTasks() {
	for i, id := range r.taskIDs {
		ts := taskStatus{}
		switch r.state {
		case StatePending:
			ts.State = TaskPending
		case StateRunning, StateAborting:
			ts.State = TaskRunning
		case StateCompleted:
			ts.State = TaskCompleted
			ts.Output = "executed:" + id
		case StateFailed:
			if i == len(r.taskIDs)-1 {
				ts.State = TaskFailed
				ts.Error = r.failure
			} else {
				ts.State = TaskCompleted
				ts.Output = "executed:" + id
			}
		case StateAborted:
			if prev, ok := r.tasks[id]; ok && prev.State == TaskCompleted {
				ts = prev
			} else {
				ts.State = TaskSkipped
			}
		default:
			ts.State = TaskPending
		}
		r.tasks[id] = ts
	}
}

// document renders the run as a wire document.
func (r *runRecord) document() runDocument {
	doc := runDocument{
		ID:        r.id,
		State:     r.state,
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}

	if len(r.tasks) > 0 {
		doc.Tasks = make(map[string]taskStatus, len(r.tasks))
		for id, ts := range r.tasks {
			doc.Tasks[id] = ts
		}
	}

	if r.state == StateCompleted {
		n := int64(len(r.taskIDs))
		doc.Usage = &usageBody{
			Tokens: 100 * n,
			Cost:   &costBody{Amount: 0.001 * float64(n), Currency: "USD"},
		}
	}

	if r.state == StateFailed && r.failure != nil {
		doc.Error = r.failure
	}

	return doc
}

func writeDocument(w http.ResponseWriter, status int, doc runDocument) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(doc)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: code, Message: message})
}
