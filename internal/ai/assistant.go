package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/csvdash/internal/table"
)

const (
	// DefaultModel is the fixed model every request is sent to.
	DefaultModel = "llama-3.1-8b-instant"
	// DefaultSampleRows bounds how much of the Table is sent to the model.
	DefaultSampleRows = 50
)

// ErrEmptyQuestion is returned by Ask when the question is blank; no request is sent.
var ErrEmptyQuestion = errors.New("please enter a question before clicking Ask AI")

// Config is the process-wide AI configuration, built once at startup.
type Config struct {
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
	SampleRows  int
}

// Answer is the model's reply to one request.
type Answer struct {
	Text         string `json:"text"`
	RequestID    string `json:"request_id,omitempty"`
	PromptTokens int    `json:"prompt_tokens"`
}

// Assistant builds prompts from a Table sample and sends them to a Runtime.
// Every call is independent: no history, no caching.
type Assistant struct {
	runtime    Runtime
	model      string
	sampleRows int
}

// NewAssistant wires an Assistant to the hosted service described by cfg.
func NewAssistant(cfg Config) *Assistant {
	return NewAssistantWithRuntime(NewClientWithBaseURL(cfg.APIKey, cfg.HTTPTimeout, cfg.BaseURL), cfg.SampleRows)
}

// NewAssistantWithRuntime uses rt for requests; sampleRows <= 0 means DefaultSampleRows.
func NewAssistantWithRuntime(rt Runtime, sampleRows int) *Assistant {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	return &Assistant{runtime: rt, model: DefaultModel, sampleRows: sampleRows}
}

// Insights asks the model for general observations about the Table sample.
func (a *Assistant) Insights(ctx context.Context, t *table.Table) (*Answer, error) {
	sample, err := SampleCSV(t, a.sampleRows)
	if err != nil {
		return nil, err
	}
	return a.send(ctx, InsightsPrompt(sample))
}

// Ask answers question against the Table sample. A blank question returns
// ErrEmptyQuestion without contacting the service.
func (a *Assistant) Ask(ctx context.Context, t *table.Table, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	sample, err := SampleCSV(t, a.sampleRows)
	if err != nil {
		return nil, err
	}
	return a.send(ctx, QuestionPrompt(sample, question))
}

func (a *Assistant) send(ctx context.Context, prompt string) (*Answer, error) {
	resp, err := a.runtime.Generate(ctx, GenerateRequest{
		Model:    a.model,
		Messages: []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("no content returned from model")
	}
	return &Answer{
		Text:         resp.Choices[0].Message.Content,
		RequestID:    resp.RequestID,
		PromptTokens: EstimateTokens(prompt),
	}, nil
}

// SampleCSV serializes the first n rows of t as CSV.
func SampleCSV(t *table.Table, n int) (string, error) {
	b, err := t.Head(n).CSV()
	if err != nil {
		return "", fmt.Errorf("serialize sample: %w", err)
	}
	return string(b), nil
}

func InsightsPrompt(sample string) string {
	return fmt.Sprintf(`
You are a professional data analyst. Analyze the following dataset sample and give key insights:

Dataset Sample:
%s

Provide observations about trends, anomalies, missing data, or distributions.
`, sample)
}

func QuestionPrompt(sample, question string) string {
	return fmt.Sprintf(`
You are a data analyst. The user has provided a dataset sample in CSV format.

Dataset Sample:
%s

User question: %s

Answer clearly and provide insights. If calculation is needed, estimate based on the sample provided.
`, sample, question)
}

// EstimateTokens approximates prompt size at one token per four characters.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}
