// Package main provides the webpilot CLI: an AI-driven browser test runner
// that executes natural-language scenarios against a web application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/webpilot-dev/webpilot/pkg/browser"
	"github.com/webpilot-dev/webpilot/pkg/config"
	"github.com/webpilot-dev/webpilot/pkg/dispatch"
	"github.com/webpilot-dev/webpilot/pkg/executor"
	"github.com/webpilot-dev/webpilot/pkg/grammar"
	"github.com/webpilot-dev/webpilot/pkg/logging"
	"github.com/webpilot-dev/webpilot/pkg/planning"
	"github.com/webpilot-dev/webpilot/pkg/runner"
	"github.com/webpilot-dev/webpilot/pkg/skills"
)

const version = "0.1.0"

var (
	configPath    string
	scenariosPath string
	headed        bool
	showVersion   bool
)

var rootCmd = &cobra.Command{
	Use:   "webpilot",
	Short: "AI-driven browser test runner",
	Long: `Webpilot executes natural-language test scenarios against a web
application: deterministic instructions run through a grammar, anything the
grammar cannot parse is planned by an AI collaborator.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("webpilot v%s\n", version)
			return nil
		}
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "webpilot.yaml", "path to the config file")
	rootCmd.Flags().StringVarP(&scenariosPath, "scenarios", "s", "scenarios.yaml", "path to the scenarios file")
	rootCmd.Flags().BoolVar(&headed, "headed", false, "run the browser with a visible window, overriding the config")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print the version and exit")
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if headed {
		cfg.Browser.Headless = false
	}
	scenarios, err := loadScenarios(scenariosPath)
	if err != nil {
		return err
	}

	logger := logging.New()
	log := logging.Component(logger, "cli")

	golden := runner.DefaultGoldenSet()
	if cfg.GoldenSetPath != "" {
		golden, err = runner.LoadGoldenSet(cfg.GoldenSetPath)
		if err != nil {
			return err
		}
	}

	plannerOpts := []planning.OpenAIOption{
		planning.WithModel(cfg.Planner.Model),
		planning.WithTokenBudget(cfg.Planner.TokenBudget),
	}
	if cfg.Planner.BaseURL != "" {
		plannerOpts = append(plannerOpts, planning.WithBaseURL(cfg.Planner.BaseURL))
	}
	planner, err := planning.NewOpenAIClient("", logging.Component(logger, "planning"), plannerOpts...)
	if err != nil {
		return err
	}

	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			log.Warnf("browser shutdown: %v", err)
		}
	}()

	session, err := manager.Launch(browser.SessionOptions{
		Headless:       cfg.Browser.Headless,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		Timeout:        cfg.Browser.TimeoutMs,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Navigate(cfg.TargetURL); err != nil {
		return err
	}

	resolver := browser.NewResolver(session.Page, 0)
	exec := executor.New(session, resolver, cfg.TargetURL,
		logging.Component(logger, "executor"),
		executor.WithAllowedHosts(cfg.AllowedHosts))

	skillLog := logging.Component(logger, "skills")
	skillSet := skills.New(session, planner, skillLog,
		skills.WithObserver(func(obs skills.Observation) {
			skillLog.Infof("validation probe %q finished at %s", obs.Scenario, obs.URL)
		}))

	dispatcher := dispatch.New(grammar.New(), exec, skillSet, planner,
		dispatch.NewPageCapturer(session, logging.Component(logger, "dispatch")),
		logging.Component(logger, "dispatch"))

	events := make(chan *runner.RunEvent, 64)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		renderEvents(events)
	}()

	store := runner.NewMemoryStore()
	engine := runner.New(dispatcher, store, logging.Component(logger, "runner"),
		runner.WithPlanner(planner),
		runner.WithGoldenSet(golden),
		runner.WithEvents(events),
		runner.WithScreenshots(session.Screenshot),
		runner.WithMaxStepRetries(cfg.MaxStepRetries))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, runErr := engine.Run(ctx, cfg.TargetURL, scenarios)
	close(events)
	<-rendered

	renderSummary(result, store.SessionReport(result.ID))

	if runErr != nil {
		return runErr
	}
	if result.FailedScenarios > 0 {
		return fmt.Errorf("%d of %d scenarios failed",
			result.FailedScenarios, len(result.Scenarios))
	}
	return nil
}

// loadScenarios reads the scenario list from a YAML file.
func loadScenarios(path string) ([]*runner.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios %s: %w", path, err)
	}
	var scenarios []*runner.Scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios %s: %w", path, err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios defined in %s", path)
	}
	for i, s := range scenarios {
		if s.Title == "" {
			return nil, fmt.Errorf("scenario %d has no title", i+1)
		}
	}
	return scenarios, nil
}
