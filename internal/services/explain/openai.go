package explain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/logger"
	"github.com/benvon/cinemate/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	// DefaultModel is used when no model is configured
	DefaultModel = "gpt-4o-mini"
	// DefaultBaseURL is the OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds one completion call
	DefaultTimeout = 10 * time.Second
	// MaxExplanationLength caps the stored explanation, in runes
	MaxExplanationLength = 300
)

// ErrEmptyResponse is returned when the model answers without usable text
var ErrEmptyResponse = errors.New("empty response from model")

// BreakerSettings tunes the circuit breaker around the model calls
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerSettings opens after 3 consecutive failures and probes again after 30s
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// OpenAIExplainer asks a chat model for the explanation sentence. Calls run
// through a circuit breaker; any failure falls back to the template.
type OpenAIExplainer struct {
	client    openai.Client
	model     string
	breaker   *gobreaker.CircuitBreaker[string]
	fallback  Explainer
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIExplainer creates an explainer backed by the OpenAI chat API
func NewOpenAIExplainer(apiKey, baseURL, model string, settings BreakerSettings, log *zap.Logger, debugMode bool) *OpenAIExplainer {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: DefaultTimeout}),
		option.WithMaxRetries(0),
	)

	e := &OpenAIExplainer{
		client:    client,
		model:     model,
		fallback:  NewTemplateExplainer(),
		logger:    log,
		debugMode: debugMode,
	}
	e.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "openai-explainer",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit_breaker_state_change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return e
}

// State reports the breaker state, for health output
func (e *OpenAIExplainer) State() string {
	return e.breaker.State().String()
}

// Explain returns the model's sentence or, on any failure, the template text
func (e *OpenAIExplainer) Explain(ctx context.Context, d *catalog.Domain, p models.PreferenceSet, rec models.RecommendationRecord) (string, error) {
	text, err := e.breaker.Execute(func() (string, error) {
		return e.complete(ctx, buildPrompt(d, rec))
	})
	if err != nil {
		e.logger.Warn("explanation_fallback",
			zap.String("domain", d.Name),
			zap.String("candidate", rec.Name),
			zap.String("error", logger.SanitizeError(err)),
		)
		return e.fallback.Explain(ctx, d, p, rec)
	}
	return text, nil
}

func (e *OpenAIExplainer) complete(ctx context.Context, prompt string) (string, error) {
	if e.debugMode {
		e.logger.Debug("llm_api_request",
			zap.String("operation", "explain"),
			zap.String("model", e.model),
			zap.String("prompt_preview", logger.SanitizeDebugContent(prompt)),
		)
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Du erklärst in genau einem kurzen deutschen Satz, warum eine Empfehlung zu den Vorgaben passt. Keine Aufzählungen, keine Anführungszeichen."),
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(120),
	})
	latency := time.Since(start)
	if err != nil {
		return "", fmt.Errorf("failed to request explanation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := cleanSentence(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	if e.debugMode {
		e.logger.Debug("llm_api_response",
			zap.String("operation", "explain"),
			zap.String("model", e.model),
			zap.String("response_preview", logger.SanitizeDebugContent(text)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return text, nil
}

func buildPrompt(d *catalog.Domain, rec models.RecommendationRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Anwendung: %s\n", d.Title)
	fmt.Fprintf(&b, "Empfehlung: %s\n", rec.Name)
	if len(rec.Selections) > 0 {
		fmt.Fprintf(&b, "%s: %s\n", d.Primary.Label, strings.Join(rec.Selections, ", "))
	}
	for _, c := range d.Choices {
		if v, ok := rec.Attributes[c.Key]; ok {
			fmt.Fprintf(&b, "%s: %s\n", c.Label, v)
		}
	}
	if rec.Rating > 0 {
		fmt.Fprintf(&b, "Bewertung: %.1f\n", rec.Rating)
	}
	if rec.Runtime > 0 {
		fmt.Fprintf(&b, "Laufzeit: %d Minuten\n", rec.Runtime)
	}
	if rec.Year > 0 {
		fmt.Fprintf(&b, "Jahr: %d\n", rec.Year)
	}
	if rec.PriceLabel != "" {
		fmt.Fprintf(&b, "Preis: %s\n", rec.PriceLabel)
	}
	return b.String()
}

// cleanSentence trims quotes and whitespace, collapses line breaks and caps the length
func cleanSentence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'„“”")
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > MaxExplanationLength {
		s = string(runes[:MaxExplanationLength]) + "…"
	}
	return logger.SanitizeString(s, 0)
}
