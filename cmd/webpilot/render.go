package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/webpilot-dev/webpilot/pkg/planning"
	"github.com/webpilot-dev/webpilot/pkg/runner"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			MarginTop(1)
)

// renderEvents prints run progress until the event channel closes.
func renderEvents(events <-chan *runner.RunEvent) {
	for e := range events {
		switch e.Type {
		case runner.EventTypeScenarioStarted:
			fmt.Println(titleStyle.Render("▶ " + e.Scenario))
		case runner.EventTypeStepStarted:
			label := e.Step
			if e.Attempt > 1 {
				label = fmt.Sprintf("%s (attempt %d)", e.Step, e.Attempt)
			}
			fmt.Println(stepStyle.Render("  · " + label))
		case runner.EventTypeStepCompleted:
			if e.Passed {
				fmt.Println(passStyle.Render("    ✓ ok"))
			} else {
				fmt.Println(failStyle.Render(fmt.Sprintf("    ✗ %v", e.Error)))
			}
		case runner.EventTypeScenarioCompleted:
			if e.Passed {
				fmt.Println(passStyle.Render("✓ " + e.Scenario))
			} else {
				fmt.Println(failStyle.Render("✗ " + e.Scenario))
			}
		case runner.EventTypeSessionFailed:
			fmt.Println(failStyle.Render(fmt.Sprintf("session aborted: %v", e.Error)))
		}
	}
}

// renderSummary prints the final verdict and, when available, the AI review
// of the run.
func renderSummary(session *runner.Session, report *planning.SessionAnalysis) {
	verdict := passStyle.Render("PASSED")
	if session.Status == runner.SessionFailed || session.FailedScenarios > 0 {
		verdict = failStyle.Render("FAILED")
	}

	body := fmt.Sprintf("%s  %d/%d scenarios passed, %d steps failed, %.1fs",
		verdict,
		session.PassedScenarios, len(session.Scenarios),
		session.FailedSteps,
		session.Duration().Seconds())

	if report != nil {
		body += "\n\n" + titleStyle.Render("Review") + "\n" + report.Summary
		for _, finding := range report.KeyFindings {
			body += "\n  • " + finding
		}
		if report.RiskAssessment != "" {
			body += "\n" + stepStyle.Render("risk: "+report.RiskAssessment)
		}
		body += "\n" + stepStyle.Render(fmt.Sprintf("quality score: %.1f/10", report.QualityScore))
	}

	fmt.Println(summaryStyle.Render(body))
}
