// Package runner orchestrates test sessions: scenario iteration, step retry,
// fail-fast within a scenario, and the terminal session verdict.
package runner

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed" // ran to the end, even with failed scenarios
	SessionFailed    SessionStatus = "failed"    // aborted by a fatal error
)

// ScenarioStatus is the lifecycle state of a scenario.
type ScenarioStatus string

const (
	ScenarioPending ScenarioStatus = "pending"
	ScenarioRunning ScenarioStatus = "running"
	ScenarioPassed  ScenarioStatus = "passed"
	ScenarioFailed  ScenarioStatus = "failed"
)

// StepResult records the outcome of one step, including how many attempts it
// took.
type StepResult struct {
	Instruction string
	Passed      bool
	Attempts    int
	Error       string
}

// Scenario is one titled sequence of natural-language steps.
type Scenario struct {
	Title       string   `yaml:"title"`
	Steps       []string `yaml:"steps"`
	Status      ScenarioStatus
	Results     []StepResult
	StartedAt   time.Time
	CompletedAt time.Time
}

// Passed reports whether every executed step passed.
func (s *Scenario) Passed() bool {
	return s.Status == ScenarioPassed
}

// Session is one full run against a target URL.
type Session struct {
	ID          uuid.UUID
	URL         string
	Status      SessionStatus
	Scenarios   []*Scenario
	StartedAt   time.Time
	CompletedAt time.Time

	PassedScenarios int
	FailedScenarios int
	PassedSteps     int
	FailedSteps     int
}

// NewSession creates a pending session for the target URL.
func NewSession(url string) *Session {
	return &Session{
		ID:     uuid.New(),
		URL:    url,
		Status: SessionPending,
	}
}

// Duration returns the wall-clock time the session ran for.
func (s *Session) Duration() time.Duration {
	if s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}
