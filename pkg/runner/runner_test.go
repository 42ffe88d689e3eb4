package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webpilot-dev/webpilot/pkg/planning"
)

type scriptedDispatcher struct {
	failing  map[string]error
	executed []string
}

func (d *scriptedDispatcher) Dispatch(_ context.Context, instruction string) error {
	d.executed = append(d.executed, instruction)
	if err, ok := d.failing[instruction]; ok {
		return err
	}
	return nil
}

type fakeAnalyst struct {
	planning.Client

	scenarioCalls []string
	scenarioLogs  map[string][]string
	sessionCalls  int
}

func (f *fakeAnalyst) AnalyzeScenario(_ context.Context, title string, logs []string) (*planning.ScenarioAnalysis, error) {
	f.scenarioCalls = append(f.scenarioCalls, title)
	if f.scenarioLogs == nil {
		f.scenarioLogs = make(map[string][]string)
	}
	f.scenarioLogs[title] = logs
	return &planning.ScenarioAnalysis{Summary: "reviewed " + title}, nil
}

func (f *fakeAnalyst) AnalyzeSession(_ context.Context, _ planning.SessionResults, _ []string) (*planning.SessionAnalysis, error) {
	f.sessionCalls++
	return &planning.SessionAnalysis{Summary: "run reviewed", QualityScore: 0.8}, nil
}

func testLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

func newTestRunner(d Dispatcher, store Store, opts ...Option) *Runner {
	opts = append([]Option{WithRetryBackoff(time.Millisecond)}, opts...)
	return New(d, store, testLog(), opts...)
}

func scenario(title string, steps ...string) *Scenario {
	return &Scenario{Title: title, Steps: steps}
}

func TestRun_AllScenariosPass(t *testing.T) {
	dispatcher := &scriptedDispatcher{}
	r := newTestRunner(dispatcher, NewMemoryStore())

	session, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{
			scenario("First", "step one", "step two"),
			scenario("Second", "step three"),
		})
	require.NoError(t, err)

	assert.Equal(t, SessionCompleted, session.Status)
	assert.Equal(t, 2, session.PassedScenarios)
	assert.Zero(t, session.FailedScenarios)
	assert.Equal(t, 3, session.PassedSteps)
	assert.Equal(t, []string{"step one", "step two", "step three"}, dispatcher.executed)
}

func TestRun_FailFastWithinScenario(t *testing.T) {
	dispatcher := &scriptedDispatcher{failing: map[string]error{
		"step two": errors.New("element not found"),
	}}
	r := newTestRunner(dispatcher, NewMemoryStore())

	session, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{scenario("Only", "step one", "step two", "step three", "step four")})
	require.NoError(t, err)

	sc := session.Scenarios[0]
	assert.Equal(t, ScenarioFailed, sc.Status)
	require.Len(t, sc.Results, 2, "steps after the failure must not run")
	assert.True(t, sc.Results[0].Passed)
	assert.False(t, sc.Results[1].Passed)
	assert.NotContains(t, dispatcher.executed, "step three")
}

func TestRun_FailedScenarioDoesNotStopTheSession(t *testing.T) {
	dispatcher := &scriptedDispatcher{failing: map[string]error{
		"breaks": errors.New("assertion failed"),
	}}
	r := newTestRunner(dispatcher, NewMemoryStore())

	session, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{
			scenario("Good", "works"),
			scenario("Bad", "breaks"),
			scenario("Also good", "works too"),
		})
	require.NoError(t, err)

	assert.Equal(t, SessionCompleted, session.Status)
	assert.Equal(t, 2, session.PassedScenarios)
	assert.Equal(t, 1, session.FailedScenarios)
	assert.Contains(t, dispatcher.executed, "works too")
}

func TestRun_StepRetriesBeforeFailing(t *testing.T) {
	dispatcher := &scriptedDispatcher{failing: map[string]error{
		"flaky": errors.New("timed out"),
	}}
	r := newTestRunner(dispatcher, NewMemoryStore(), WithMaxStepRetries(2))

	session, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{scenario("Retry", "flaky")})
	require.NoError(t, err)

	result := session.Scenarios[0].Results[0]
	assert.Equal(t, 3, result.Attempts)
	assert.False(t, result.Passed)
	assert.Equal(t, []string{"flaky", "flaky", "flaky"}, dispatcher.executed)
}

func TestRun_FatalErrorAbortsSession(t *testing.T) {
	dispatcher := &scriptedDispatcher{failing: map[string]error{
		"crash": &SessionFatal{Err: errors.New("browser gone")},
	}}
	r := newTestRunner(dispatcher, NewMemoryStore())

	session, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{
			scenario("Crashes", "crash"),
			scenario("Never runs", "later step"),
		})
	require.Error(t, err)
	var fatal *SessionFatal
	assert.ErrorAs(t, err, &fatal)
	assert.Equal(t, SessionFailed, session.Status)
	assert.NotContains(t, dispatcher.executed, "later step")
}

func TestRun_CanceledContextIsFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dispatcher := &scriptedDispatcher{failing: map[string]error{
		"anything": errors.New("interrupted"),
	}}
	r := newTestRunner(dispatcher, NewMemoryStore())

	session, err := r.Run(ctx, "https://app.local",
		[]*Scenario{scenario("Canceled", "anything")})
	require.Error(t, err)
	assert.Equal(t, SessionFailed, session.Status)
}

func TestRun_GoldenOverrideReplacesSteps(t *testing.T) {
	dispatcher := &scriptedDispatcher{}
	r := newTestRunner(dispatcher, NewMemoryStore(), WithGoldenSet(DefaultGoldenSet()))

	_, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{scenario("Valid login test", "log in somehow")})
	require.NoError(t, err)

	assert.NotContains(t, dispatcher.executed, "log in somehow")
	require.Len(t, dispatcher.executed, 4)
	assert.Equal(t, "Go to the login page", dispatcher.executed[0])
}

func TestRun_AnalysisIsStoredBestEffort(t *testing.T) {
	store := NewMemoryStore()
	analyst := &fakeAnalyst{}
	r := newTestRunner(&scriptedDispatcher{}, store, WithPlanner(analyst))

	session, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{scenario("Reviewed", "a step")})
	require.NoError(t, err)

	assert.Equal(t, []string{"Reviewed"}, analyst.scenarioCalls)
	assert.Equal(t, 1, analyst.sessionCalls)
	require.NotNil(t, store.SessionReport(session.ID))
	assert.Equal(t, "run reviewed", store.SessionReport(session.ID).Summary)
	require.NotNil(t, store.ScenarioReport(session.ID, "Reviewed"))
}

func TestRun_LogEntriesCarryLevels(t *testing.T) {
	store := NewMemoryStore()
	dispatcher := &scriptedDispatcher{failing: map[string]error{
		"breaks": errors.New("assertion failed"),
	}}
	r := newTestRunner(dispatcher, store)

	session, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{scenario("Mixed", "works", "breaks")})
	require.NoError(t, err)

	var levels []LogLevel
	for _, entry := range store.Logs(session.ID) {
		require.NotEmpty(t, entry.Level, "every log entry must carry a level")
		levels = append(levels, entry.Level)
	}
	assert.Contains(t, levels, LogSuccess, "a passed step records a success entry")
	assert.Contains(t, levels, LogError, "a failed attempt records an error entry")
	assert.Contains(t, levels, LogWarning, "the fail-fast skip records a warning")
}

func TestRun_ScenarioLogsAttributedExactly(t *testing.T) {
	analyst := &fakeAnalyst{}
	r := newTestRunner(&scriptedDispatcher{}, NewMemoryStore(), WithPlanner(analyst))

	// One title extends the other; attribution must not bleed between them.
	_, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{
			scenario("Login: admin", "admin step"),
			scenario("Login", "base step"),
		})
	require.NoError(t, err)

	require.NotEmpty(t, analyst.scenarioLogs["Login"])
	for _, line := range analyst.scenarioLogs["Login"] {
		assert.NotContains(t, line, "admin step")
	}
	require.NotEmpty(t, analyst.scenarioLogs["Login: admin"])
}

func TestRun_EmitsEventsInOrder(t *testing.T) {
	events := make(chan *RunEvent, 64)
	r := newTestRunner(&scriptedDispatcher{}, NewMemoryStore(), WithEvents(events))

	_, err := r.Run(context.Background(), "https://app.local",
		[]*Scenario{scenario("Eventful", "only step")})
	require.NoError(t, err)
	close(events)

	var types []RunEventType
	for e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, RunEventType("session_started"), types[0])
	assert.Equal(t, RunEventType("session_completed"), types[len(types)-1])
	assert.Contains(t, types, EventTypeStepStarted)
	assert.Contains(t, types, EventTypeScenarioCompleted)
}
