package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/webpilot-dev/webpilot/pkg/planning"
)

// DefaultMaxStepRetries is how many times a failed step is retried before the
// scenario is marked failed. One retry means two attempts total.
const DefaultMaxStepRetries = 1

const defaultRetryBackoff = 500 * time.Millisecond

// SessionFatal wraps an error that must abort the whole session rather than
// fail one scenario: a crashed browser, a canceled context. Step-level
// failures are never fatal; the runner moves on to the next scenario.
type SessionFatal struct {
	Err error
}

func (e *SessionFatal) Error() string {
	return fmt.Sprintf("session fatal: %v", e.Err)
}

func (e *SessionFatal) Unwrap() error {
	return e.Err
}

// Dispatcher executes one natural-language step.
type Dispatcher interface {
	Dispatch(ctx context.Context, instruction string) error
}

// Runner drives a session: scenarios in order, steps in order, retry on step
// failure, fail-fast within a scenario, always advance to the next scenario.
type Runner struct {
	dispatcher Dispatcher
	store      Store
	log        *logrus.Entry

	planner        planning.Client
	golden         *GoldenSet
	events         chan<- *RunEvent
	capture        func() ([]byte, error)
	maxStepRetries int
	retryBackoff   time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithPlanner enables post-run analysis through the planning client.
func WithPlanner(planner planning.Client) Option {
	return func(r *Runner) { r.planner = planner }
}

// WithGoldenSet enables curated step overrides for exactly matching titles.
func WithGoldenSet(golden *GoldenSet) Option {
	return func(r *Runner) { r.golden = golden }
}

// WithEvents registers a channel receiving run events. Sends are blocking;
// the consumer must keep draining.
func WithEvents(ch chan<- *RunEvent) Option {
	return func(r *Runner) { r.events = ch }
}

// WithScreenshots registers a capture function invoked after every step
// attempt.
func WithScreenshots(capture func() ([]byte, error)) Option {
	return func(r *Runner) { r.capture = capture }
}

// WithMaxStepRetries overrides the per-step retry count.
func WithMaxStepRetries(n int) Option {
	return func(r *Runner) {
		if n >= 0 {
			r.maxStepRetries = n
		}
	}
}

// WithRetryBackoff overrides the pause between step attempts.
func WithRetryBackoff(d time.Duration) Option {
	return func(r *Runner) { r.retryBackoff = d }
}

// New creates a runner.
func New(dispatcher Dispatcher, store Store, log *logrus.Entry, opts ...Option) *Runner {
	r := &Runner{
		dispatcher:     dispatcher,
		store:          store,
		log:            log,
		maxStepRetries: DefaultMaxStepRetries,
		retryBackoff:   defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the scenarios against the target URL. The returned error is
// non-nil only when the session aborted on a fatal error; scenario failures
// are recorded in the session and do not error the run.
func (r *Runner) Run(ctx context.Context, url string, scenarios []*Scenario) (*Session, error) {
	session := NewSession(url)
	session.Scenarios = scenarios
	session.Status = SessionRunning
	session.StartedAt = time.Now()
	r.persistSession(session)
	r.emit(NewSessionStartedEvent())

	for _, scenario := range scenarios {
		if err := r.runScenario(ctx, session, scenario); err != nil {
			return r.failSession(session, err), err
		}
	}

	session.Status = SessionCompleted
	session.CompletedAt = time.Now()
	r.persistSession(session)
	r.analyzeSession(ctx, session)
	r.emit(NewSessionCompletedEvent(session.FailedScenarios == 0))
	return session, nil
}

// runScenario executes one scenario. It returns an error only for fatal
// conditions; an ordinary step failure marks the scenario failed and returns
// nil so the session can advance.
func (r *Runner) runScenario(ctx context.Context, session *Session, scenario *Scenario) error {
	scenario.Status = ScenarioRunning
	scenario.StartedAt = time.Now()
	r.emit(NewScenarioStartedEvent(scenario.Title))

	steps := scenario.Steps
	if curated, ok := r.golden.Lookup(scenario.Title); ok {
		r.logLine(session, scenario.Title, LogInfo, "using curated steps for this scenario")
		steps = curated
	}

	scenario.Status = ScenarioPassed
	for _, step := range steps {
		result, err := r.runStep(ctx, session, scenario.Title, step)
		scenario.Results = append(scenario.Results, result)
		if err != nil {
			return err
		}
		if result.Passed {
			session.PassedSteps++
			continue
		}
		// Fail fast: later steps depend on earlier ones having worked.
		session.FailedSteps++
		scenario.Status = ScenarioFailed
		r.logLine(session, scenario.Title, LogWarning,
			fmt.Sprintf("step failed, skipping the rest of the scenario: %s", result.Error))
		break
	}

	scenario.CompletedAt = time.Now()
	if scenario.Passed() {
		session.PassedScenarios++
	} else {
		session.FailedScenarios++
	}
	r.persistScenario(session, scenario)
	r.emit(NewScenarioCompletedEvent(scenario.Title, scenario.Passed()))
	r.analyzeScenario(ctx, session, scenario)
	return nil
}

// runStep executes one step with retries. A nil error with Passed false means
// the step exhausted its attempts; a non-nil error means the session must
// abort.
func (r *Runner) runStep(ctx context.Context, session *Session, title, step string) (StepResult, error) {
	result := StepResult{Instruction: step}

	for attempt := 1; attempt <= r.maxStepRetries+1; attempt++ {
		result.Attempts = attempt
		r.emit(NewStepStartedEvent(title, step, attempt))
		r.logLine(session, title, LogInfo, fmt.Sprintf("step attempt %d: %s", attempt, step))

		err := r.dispatcher.Dispatch(ctx, step)
		r.snapshot(title, step)
		r.emit(NewStepCompletedEvent(title, step, attempt, err))

		if err == nil {
			result.Passed = true
			r.logLine(session, title, LogSuccess, fmt.Sprintf("step passed: %s", step))
			return result, nil
		}

		var fatal *SessionFatal
		if errors.As(err, &fatal) {
			return result, err
		}
		if ctx.Err() != nil {
			return result, &SessionFatal{Err: ctx.Err()}
		}

		result.Error = err.Error()
		r.logLine(session, title, LogError, fmt.Sprintf("step attempt %d failed: %v", attempt, err))

		if attempt <= r.maxStepRetries {
			select {
			case <-time.After(r.retryBackoff):
			case <-ctx.Done():
				return result, &SessionFatal{Err: ctx.Err()}
			}
		}
	}
	return result, nil
}

func (r *Runner) failSession(session *Session, cause error) *Session {
	session.Status = SessionFailed
	session.CompletedAt = time.Now()
	r.persistSession(session)
	r.emit(NewSessionFailedEvent(cause))
	return session
}

// analyzeScenario asks the planner to review a finished scenario. Best
// effort: analysis never changes a verdict.
func (r *Runner) analyzeScenario(ctx context.Context, session *Session, scenario *Scenario) {
	if r.planner == nil {
		return
	}
	report, err := r.planner.AnalyzeScenario(ctx, scenario.Title, r.scenarioLogs(session, scenario.Title))
	if err != nil {
		r.log.Warnf("scenario analysis for %q failed: %v", scenario.Title, err)
		return
	}
	if err := r.store.CreateScenarioReport(session.ID, scenario.Title, report); err != nil {
		r.log.Warnf("failed to store scenario report: %v", err)
	}
}

// analyzeSession asks the planner for the holistic read on the whole run.
func (r *Runner) analyzeSession(ctx context.Context, session *Session) {
	if r.planner == nil {
		return
	}
	results := planning.SessionResults{
		URL:             session.URL,
		PassedScenarios: session.PassedScenarios,
		FailedScenarios: session.FailedScenarios,
		PassedSteps:     session.PassedSteps,
		FailedSteps:     session.FailedSteps,
		DurationSeconds: session.Duration().Seconds(),
	}
	for _, scenario := range session.Scenarios {
		results.ScenarioTitles = append(results.ScenarioTitles, scenario.Title)
		if scenario.Status == ScenarioFailed {
			results.FailedTitles = append(results.FailedTitles, scenario.Title)
		}
	}

	var lines []string
	for _, entry := range r.store.Logs(session.ID) {
		lines = append(lines, renderLogEntry(entry))
	}
	report, err := r.planner.AnalyzeSession(ctx, results, lines)
	if err != nil {
		r.log.Warnf("session analysis failed: %v", err)
		return
	}
	if err := r.store.CreateSessionReport(session.ID, report); err != nil {
		r.log.Warnf("failed to store session report: %v", err)
	}
}

func (r *Runner) snapshot(title, step string) {
	if r.capture == nil {
		return
	}
	shot, err := r.capture()
	if err != nil {
		r.log.Debugf("screenshot after step failed: %v", err)
		return
	}
	r.emit(NewScreenshotEvent(title, step, shot))
}

// logLine records a leveled entry in the store and on the event stream.
func (r *Runner) logLine(session *Session, title string, level LogLevel, message string) {
	entry := LogEntry{Scenario: title, Level: level, Message: message}
	if err := r.store.CreateLog(session.ID, entry); err != nil {
		r.log.Warnf("failed to store log entry: %v", err)
	}
	r.emit(NewLogEvent(title, level, message))
}

func (r *Runner) scenarioLogs(session *Session, title string) []string {
	var out []string
	for _, entry := range r.store.Logs(session.ID) {
		if entry.Scenario == title {
			out = append(out, renderLogEntry(entry))
		}
	}
	return out
}

func renderLogEntry(entry LogEntry) string {
	return fmt.Sprintf("[%s] %s", entry.Level, entry.Message)
}

func (r *Runner) persistSession(session *Session) {
	if err := r.store.UpdateSession(session); err != nil {
		r.log.Warnf("failed to store session state: %v", err)
	}
}

func (r *Runner) persistScenario(session *Session, scenario *Scenario) {
	if err := r.store.UpdateScenario(session.ID, scenario); err != nil {
		r.log.Warnf("failed to store scenario state: %v", err)
	}
}

// emit sends an event on the event channel, if one is registered. Blocking,
// matching the consumer contract in WithEvents.
func (r *Runner) emit(event *RunEvent) {
	if r.events == nil {
		return
	}
	r.events <- event
}
