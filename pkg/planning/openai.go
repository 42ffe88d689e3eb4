package planning

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// OpenAIClient implements Client against any OpenAI-compatible API.
type OpenAIClient struct {
	api     openai.Client
	model   string
	trimmer *Trimmer
	log     *logrus.Entry
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	model   string
	baseURL string
	budget  int
}

// WithModel sets the chat model (default gpt-4o).
func WithModel(model string) OpenAIOption {
	return func(c *openAIConfig) { c.model = model }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = baseURL }
}

// WithTokenBudget bounds the page context attached to planning prompts.
func WithTokenBudget(budget int) OpenAIOption {
	return func(c *openAIConfig) { c.budget = budget }
}

// NewOpenAIClient builds the production planning collaborator. An empty
// apiKey falls back to OPENAI_API_KEY.
func NewOpenAIClient(apiKey string, log *logrus.Entry, opts ...OpenAIOption) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (parameter or OPENAI_API_KEY)")
	}

	cfg := &openAIConfig{model: "gpt-4o"}
	for _, opt := range opts {
		opt(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &OpenAIClient{
		api:     openai.NewClient(reqOpts...),
		model:   cfg.model,
		trimmer: NewTrimmer(cfg.budget),
		log:     log,
	}, nil
}

// complete issues one non-streaming chat completion and returns the raw text.
func (c *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Plan implements Client.
func (c *OpenAIClient) Plan(ctx context.Context, instruction string, pageCtx PageContext) (*WorkflowPlan, error) {
	pageCtx.HTML = c.trimmer.Trim(pageCtx.HTML)
	raw, err := c.complete(ctx, planSystemPrompt, buildPlanPrompt(instruction, pageCtx))
	if err != nil {
		return nil, err
	}
	plan, err := DecodePlan(raw)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("planner produced %d step(s) for %q", len(plan.Steps), instruction)
	return plan, nil
}

// MapFormFields implements Client.
func (c *OpenAIClient) MapFormFields(ctx context.Context, fields []FieldSpec) (FieldMapping, error) {
	raw, err := c.complete(ctx, mappingSystemPrompt, buildFieldsPrompt(fields))
	if err != nil {
		return nil, err
	}
	return DecodeFieldMapping(raw)
}

// ValidationScenarios implements Client.
func (c *OpenAIClient) ValidationScenarios(ctx context.Context, fields []FieldSpec) ([]ValidationScenario, error) {
	raw, err := c.complete(ctx, validationSystemPrompt, buildFieldsPrompt(fields))
	if err != nil {
		return nil, err
	}
	return DecodeValidationScenarios(raw)
}

// AnalyzeScenario implements Client.
func (c *OpenAIClient) AnalyzeScenario(ctx context.Context, title string, logs []string) (*ScenarioAnalysis, error) {
	raw, err := c.complete(ctx, scenarioAnalysisSystemPrompt, buildScenarioAnalysisPrompt(title, logs))
	if err != nil {
		return nil, err
	}
	return DecodeScenarioAnalysis(raw)
}

// AnalyzeSession implements Client.
func (c *OpenAIClient) AnalyzeSession(ctx context.Context, results SessionResults, logs []string) (*SessionAnalysis, error) {
	raw, err := c.complete(ctx, sessionAnalysisSystemPrompt, buildSessionAnalysisPrompt(results, logs))
	if err != nil {
		return nil, err
	}
	return DecodeSessionAnalysis(raw)
}

var _ Client = (*OpenAIClient)(nil)
