package dispatch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/webpilot-dev/webpilot/pkg/grammar"
	"github.com/webpilot-dev/webpilot/pkg/planning"
)

// UnknownSkillError reports a workflow plan step naming a skill the engine
// does not implement. It aborts the step being dispatched.
type UnknownSkillError struct {
	Skill string
}

func (e *UnknownSkillError) Error() string {
	return fmt.Sprintf("workflow plan references unknown skill %q", e.Skill)
}

// CommandRunner executes one structured command. Satisfied by
// executor.Executor.
type CommandRunner interface {
	Run(ctx context.Context, cmd grammar.Command) error
}

// SkillSet exposes the composite behaviors a plan may invoke. Satisfied by
// skills.Skills.
type SkillSet interface {
	FillFormHappyPath(ctx context.Context, contextSelector string) error
	TestFormValidation(ctx context.Context, contextSelector string) error
}

// Dispatcher routes one instruction at a time: the grammar's deterministic
// fast path first, and the planning collaborator when no rule matches.
type Dispatcher struct {
	grammar *grammar.Grammar
	runner  CommandRunner
	skills  SkillSet
	planner planning.Client
	capture ContextCapturer
	log     *logrus.Entry
}

// New wires a dispatcher. All collaborators are required.
func New(g *grammar.Grammar, runner CommandRunner, skills SkillSet, planner planning.Client, capture ContextCapturer, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		grammar: g,
		runner:  runner,
		skills:  skills,
		planner: planner,
		capture: capture,
		log:     log,
	}
}

// Dispatch executes one raw instruction.
func (d *Dispatcher) Dispatch(ctx context.Context, instruction string) error {
	if cmds, ok := d.grammar.Parse(instruction); ok {
		d.log.Debugf("instruction matched grammar (%d command(s)): %s", len(cmds), instruction)
		for _, cmd := range cmds {
			if err := d.runner.Run(ctx, cmd); err != nil {
				return err
			}
		}
		return nil
	}

	d.log.Infof("instruction did not match grammar, escalating to planner: %s", instruction)
	pageCtx := d.capture.Capture()

	plan, err := d.planner.Plan(ctx, instruction, pageCtx)
	if err != nil {
		return fmt.Errorf("planning failed for %q: %w", instruction, err)
	}

	for _, step := range plan.Steps {
		if err := d.runPlanStep(ctx, step, pageCtx.ActiveSelector); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) runPlanStep(ctx context.Context, step planning.PlanStep, contextSelector string) error {
	switch step.Skill {
	case planning.SkillClick:
		return d.runner.Run(ctx, grammar.Command{Kind: grammar.KindClick, Target: step.Target})
	case planning.SkillNavigate:
		return d.runner.Run(ctx, grammar.Command{Kind: grammar.KindNavigateURL, Value: step.URL})
	case planning.SkillFillFormHappyPath:
		return d.skills.FillFormHappyPath(ctx, contextSelector)
	case planning.SkillTestFormValidation:
		return d.skills.TestFormValidation(ctx, contextSelector)
	default:
		return &UnknownSkillError{Skill: step.Skill}
	}
}
