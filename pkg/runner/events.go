package runner

import "time"

// RunEventType defines the type of event emitted while a session runs.
type RunEventType string

const (
	EventTypeSessionStarted    RunEventType = "session_started"    // EventTypeSessionStarted indicates a test session has begun.
	EventTypeScenarioStarted   RunEventType = "scenario_started"   // EventTypeScenarioStarted indicates a scenario has begun.
	EventTypeStepStarted       RunEventType = "step_started"       // EventTypeStepStarted indicates a step attempt has begun.
	EventTypeStepCompleted     RunEventType = "step_completed"     // EventTypeStepCompleted indicates a step finished, pass or fail.
	EventTypeScenarioCompleted RunEventType = "scenario_completed" // EventTypeScenarioCompleted indicates a scenario finished, pass or fail.
	EventTypeSessionCompleted  RunEventType = "session_completed"  // EventTypeSessionCompleted indicates the session ran to the end.
	EventTypeSessionFailed     RunEventType = "session_failed"     // EventTypeSessionFailed indicates the session aborted on a fatal error.
	EventTypeLog               RunEventType = "log"                // EventTypeLog carries a log line attributed to the running scenario.
	EventTypeScreenshot        RunEventType = "screenshot"         // EventTypeScreenshot carries a post-step screenshot.
)

// RunEvent is one event emitted during session execution.
type RunEvent struct {
	// Type indicates the kind of event.
	Type RunEventType

	// Scenario is the title of the scenario the event belongs to, if any.
	Scenario string

	// Step is the step instruction, for step-scoped events.
	Step string

	// Attempt is the 1-based attempt number, for step-scoped events.
	Attempt int

	// Passed reports the outcome for completed-type events.
	Passed bool

	// Error contains failure information for failed outcomes.
	Error error

	// Message holds a log line for log events.
	Message string

	// Level classifies log events (info, success, warning, error).
	Level LogLevel

	// Screenshot holds PNG bytes for screenshot events.
	Screenshot []byte

	// At is when the event was emitted.
	At time.Time
}

func newEvent(t RunEventType) *RunEvent {
	return &RunEvent{Type: t, At: time.Now()}
}

// NewSessionStartedEvent creates an event marking the start of a session.
func NewSessionStartedEvent() *RunEvent {
	return newEvent(EventTypeSessionStarted)
}

// NewScenarioStartedEvent creates an event marking the start of a scenario.
func NewScenarioStartedEvent(title string) *RunEvent {
	e := newEvent(EventTypeScenarioStarted)
	e.Scenario = title
	return e
}

// NewStepStartedEvent creates an event marking the start of a step attempt.
func NewStepStartedEvent(title, step string, attempt int) *RunEvent {
	e := newEvent(EventTypeStepStarted)
	e.Scenario = title
	e.Step = step
	e.Attempt = attempt
	return e
}

// NewStepCompletedEvent creates an event recording a step attempt's outcome.
func NewStepCompletedEvent(title, step string, attempt int, err error) *RunEvent {
	e := newEvent(EventTypeStepCompleted)
	e.Scenario = title
	e.Step = step
	e.Attempt = attempt
	e.Passed = err == nil
	e.Error = err
	return e
}

// NewScenarioCompletedEvent creates an event recording a scenario's outcome.
func NewScenarioCompletedEvent(title string, passed bool) *RunEvent {
	e := newEvent(EventTypeScenarioCompleted)
	e.Scenario = title
	e.Passed = passed
	return e
}

// NewSessionCompletedEvent creates an event marking a session that ran to the
// end, regardless of how many scenarios passed.
func NewSessionCompletedEvent(passed bool) *RunEvent {
	e := newEvent(EventTypeSessionCompleted)
	e.Passed = passed
	return e
}

// NewSessionFailedEvent creates an event marking a session aborted by a fatal
// error.
func NewSessionFailedEvent(err error) *RunEvent {
	e := newEvent(EventTypeSessionFailed)
	e.Error = err
	return e
}

// NewLogEvent creates an event carrying a leveled log line for a scenario.
func NewLogEvent(title string, level LogLevel, message string) *RunEvent {
	e := newEvent(EventTypeLog)
	e.Scenario = title
	e.Level = level
	e.Message = message
	return e
}

// NewScreenshotEvent creates an event carrying a post-step screenshot.
func NewScreenshotEvent(title, step string, shot []byte) *RunEvent {
	e := newEvent(EventTypeScreenshot)
	e.Scenario = title
	e.Step = step
	e.Screenshot = shot
	return e
}
