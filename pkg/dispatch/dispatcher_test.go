package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webpilot-dev/webpilot/pkg/grammar"
	"github.com/webpilot-dev/webpilot/pkg/planning"
)

type fakeRunner struct {
	commands []grammar.Command
	err      error
}

func (f *fakeRunner) Run(_ context.Context, cmd grammar.Command) error {
	f.commands = append(f.commands, cmd)
	return f.err
}

type fakeSkills struct {
	happyPathCalls  []string
	validationCalls []string
}

func (f *fakeSkills) FillFormHappyPath(_ context.Context, contextSelector string) error {
	f.happyPathCalls = append(f.happyPathCalls, contextSelector)
	return nil
}

func (f *fakeSkills) TestFormValidation(_ context.Context, contextSelector string) error {
	f.validationCalls = append(f.validationCalls, contextSelector)
	return nil
}

type fakePlanner struct {
	planning.Client

	plan         *planning.WorkflowPlan
	err          error
	instructions []string
}

func (f *fakePlanner) Plan(_ context.Context, instruction string, _ planning.PageContext) (*planning.WorkflowPlan, error) {
	f.instructions = append(f.instructions, instruction)
	return f.plan, f.err
}

type fakeCapture struct {
	ctx      planning.PageContext
	captured int
}

func (f *fakeCapture) Capture() planning.PageContext {
	f.captured++
	return f.ctx
}

func newTestDispatcher(runner *fakeRunner, skills *fakeSkills, planner *fakePlanner, capture *fakeCapture) *Dispatcher {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(grammar.New(), runner, skills, planner, capture, logrus.NewEntry(logger))
}

func TestDispatch_GrammarFastPathSkipsPlanner(t *testing.T) {
	runner := &fakeRunner{}
	planner := &fakePlanner{}
	capture := &fakeCapture{}
	d := newTestDispatcher(runner, &fakeSkills{}, planner, capture)

	err := d.Dispatch(context.Background(), `Click the "Login" button`)
	require.NoError(t, err)

	require.Len(t, runner.commands, 1)
	assert.Equal(t, grammar.KindClick, runner.commands[0].Kind)
	assert.Empty(t, planner.instructions, "planner must not be consulted on the fast path")
	assert.Zero(t, capture.captured, "context capture only happens when escalating")
}

func TestDispatch_CompoundInstruction(t *testing.T) {
	runner := &fakeRunner{}
	d := newTestDispatcher(runner, &fakeSkills{}, &fakePlanner{}, &fakeCapture{})

	err := d.Dispatch(context.Background(), `Go to the login page and then wait 1 second`)
	require.NoError(t, err)
	require.Len(t, runner.commands, 2)
	assert.Equal(t, grammar.KindNavigatePage, runner.commands[0].Kind)
	assert.Equal(t, grammar.KindWait, runner.commands[1].Kind)
}

func TestDispatch_EscalatesToPlanner(t *testing.T) {
	runner := &fakeRunner{}
	skills := &fakeSkills{}
	planner := &fakePlanner{
		plan: &planning.WorkflowPlan{Steps: []planning.PlanStep{
			{Skill: planning.SkillClick, Target: "Add Agent"},
			{Skill: planning.SkillFillFormHappyPath},
		}},
	}
	capture := &fakeCapture{ctx: planning.PageContext{ActiveSelector: `[role="dialog"]`}}
	d := newTestDispatcher(runner, skills, planner, capture)

	err := d.Dispatch(context.Background(), "Add an agent with relatable details")
	require.NoError(t, err)

	assert.Equal(t, []string{"Add an agent with relatable details"}, planner.instructions)
	assert.Equal(t, 1, capture.captured)
	require.Len(t, runner.commands, 1)
	assert.Equal(t, "Add Agent", runner.commands[0].Target)
	assert.Equal(t, []string{`[role="dialog"]`}, skills.happyPathCalls,
		"skills run against the captured active context")
}

func TestDispatch_UnknownSkillIsHardError(t *testing.T) {
	planner := &fakePlanner{
		plan: &planning.WorkflowPlan{Steps: []planning.PlanStep{
			{Skill: "TELEPORT"},
		}},
	}
	d := newTestDispatcher(&fakeRunner{}, &fakeSkills{}, planner, &fakeCapture{})

	err := d.Dispatch(context.Background(), "do something impossible")
	var unknownErr *UnknownSkillError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "TELEPORT", unknownErr.Skill)
}

func TestDispatch_PlannerFailurePropagates(t *testing.T) {
	planner := &fakePlanner{err: &planning.UnparsableResponseError{Err: errors.New("bad json")}}
	d := newTestDispatcher(&fakeRunner{}, &fakeSkills{}, planner, &fakeCapture{})

	err := d.Dispatch(context.Background(), "do something odd")
	require.Error(t, err)
	var uerr *planning.UnparsableResponseError
	assert.ErrorAs(t, err, &uerr)
}

func TestDispatch_StopsPlanOnFirstFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("click failed")}
	skills := &fakeSkills{}
	planner := &fakePlanner{
		plan: &planning.WorkflowPlan{Steps: []planning.PlanStep{
			{Skill: planning.SkillClick, Target: "Open"},
			{Skill: planning.SkillTestFormValidation},
		}},
	}
	d := newTestDispatcher(runner, skills, planner, &fakeCapture{})

	err := d.Dispatch(context.Background(), "probe the form")
	require.Error(t, err)
	assert.Empty(t, skills.validationCalls, "later plan steps must not run after a failure")
}
