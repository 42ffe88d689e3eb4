package runner

import (
	"sync"

	"github.com/google/uuid"

	"github.com/webpilot-dev/webpilot/pkg/planning"
)

// LogLevel classifies an execution log entry.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// LogEntry is one execution log record, attributed to the scenario that
// produced it.
type LogEntry struct {
	Scenario string
	Level    LogLevel
	Message  string
}

// Store persists run artifacts. All writes are fire-and-forget from the
// runner's perspective: a persistence failure never changes a verdict.
type Store interface {
	// CreateLog appends an execution log entry.
	CreateLog(sessionID uuid.UUID, entry LogEntry) error

	// UpdateScenario records a scenario's current state.
	UpdateScenario(sessionID uuid.UUID, scenario *Scenario) error

	// UpdateSession records the session's current state.
	UpdateSession(session *Session) error

	// CreateScenarioReport stores the analysis of one finished scenario.
	CreateScenarioReport(sessionID uuid.UUID, scenario string, report *planning.ScenarioAnalysis) error

	// CreateSessionReport stores the holistic analysis of the whole run.
	CreateSessionReport(sessionID uuid.UUID, report *planning.SessionAnalysis) error

	// Logs returns the log entries recorded for a session so far.
	Logs(sessionID uuid.UUID) []LogEntry
}

// MemoryStore keeps run artifacts in memory. Suitable for single-process CLI
// runs and tests.
type MemoryStore struct {
	mu sync.Mutex

	logs            map[uuid.UUID][]LogEntry
	scenarios       map[uuid.UUID]map[string]Scenario
	sessions        map[uuid.UUID]Session
	scenarioReports map[uuid.UUID]map[string]*planning.ScenarioAnalysis
	sessionReports  map[uuid.UUID]*planning.SessionAnalysis
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs:            make(map[uuid.UUID][]LogEntry),
		scenarios:       make(map[uuid.UUID]map[string]Scenario),
		sessions:        make(map[uuid.UUID]Session),
		scenarioReports: make(map[uuid.UUID]map[string]*planning.ScenarioAnalysis),
		sessionReports:  make(map[uuid.UUID]*planning.SessionAnalysis),
	}
}

func (m *MemoryStore) CreateLog(sessionID uuid.UUID, entry LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[sessionID] = append(m.logs[sessionID], entry)
	return nil
}

func (m *MemoryStore) UpdateScenario(sessionID uuid.UUID, scenario *Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scenarios[sessionID] == nil {
		m.scenarios[sessionID] = make(map[string]Scenario)
	}
	m.scenarios[sessionID][scenario.Title] = *scenario
	return nil
}

func (m *MemoryStore) UpdateSession(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	return nil
}

func (m *MemoryStore) CreateScenarioReport(sessionID uuid.UUID, scenario string, report *planning.ScenarioAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scenarioReports[sessionID] == nil {
		m.scenarioReports[sessionID] = make(map[string]*planning.ScenarioAnalysis)
	}
	m.scenarioReports[sessionID][scenario] = report
	return nil
}

func (m *MemoryStore) CreateSessionReport(sessionID uuid.UUID, report *planning.SessionAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionReports[sessionID] = report
	return nil
}

// Logs returns the log entries recorded for a session.
func (m *MemoryStore) Logs(sessionID uuid.UUID) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.logs[sessionID]))
	copy(out, m.logs[sessionID])
	return out
}

// SessionReport returns the stored holistic analysis, or nil.
func (m *MemoryStore) SessionReport(sessionID uuid.UUID) *planning.SessionAnalysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionReports[sessionID]
}

// ScenarioReport returns the stored analysis for one scenario, or nil.
func (m *MemoryStore) ScenarioReport(sessionID uuid.UUID, scenario string) *planning.ScenarioAnalysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scenarioReports[sessionID][scenario]
}
