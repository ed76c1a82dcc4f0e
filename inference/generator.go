// Package inference generates session insights with an LLM.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/MohamedH1998/onbored-sub001/analytics"
	"github.com/MohamedH1998/onbored-sub001/config"
	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/metrics"
	"github.com/MohamedH1998/onbored-sub001/models"
)

// maxPromptRawEvents bounds how many raw interaction events are quoted in a prompt.
const maxPromptRawEvents = 200

// Generator asks an LLM for a structured insight. Calls go through a circuit
// breaker so a failing provider is reported quickly; nothing is retried.
type Generator struct {
	llm       llms.Model
	modelName string
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker[*models.InsightFields]
}

// NewModel builds the provider client selected in cfg.
func NewModel(cfg config.Config) (llms.Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		model, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return model, nil
	case config.ProviderAnthropic:
		model, err := anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}
		return model, nil
	case config.ProviderOllama:
		model, err := ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

func NewGenerator(model llms.Model, cfg config.Config) *Generator {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        "inference",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Caller cancellation is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.InferenceBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Inference circuit breaker changed state")
		},
	}
	return &Generator{
		llm:       model,
		modelName: cfg.LLMModel,
		timeout:   cfg.InferenceTimeout,
		breaker:   gobreaker.NewCircuitBreaker[*models.InsightFields](settings),
	}
}

// Generate returns nil, nil when the model answers with nothing usable.
func (g *Generator) Generate(ctx context.Context, in analytics.GenerateInput) (*models.InsightFields, error) {
	prompt, err := buildPrompt(in)
	if err != nil {
		return nil, err
	}

	fields, err := g.breaker.Execute(func() (*models.InsightFields, error) {
		return g.call(ctx, prompt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("inference provider unavailable: %w", err)
	}
	return fields, err
}

func (g *Generator) call(ctx context.Context, prompt string) (*models.InsightFields, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithJSONMode(), llms.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("generate insight: %w", err)
	}
	logging.Debug().Str("model", g.modelName).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("Insight generation complete")

	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return parseInsight(resp.Choices[0].Content)
}

// parseInsight decodes the model's JSON answer, tolerating a fenced block.
// An answer without a summary counts as no insight.
func parseInsight(content string) (*models.InsightFields, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var fields models.InsightFields
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("decode insight response: %w", err)
	}
	if strings.TrimSpace(fields.Summary) == "" {
		return nil, nil
	}
	return &fields, nil
}

const systemPrompt = `You are a product analyst reviewing one user's session recording against an onboarding funnel.
Answer with a single JSON object and nothing else, using exactly these keys:
  "summary": two or three sentences describing what the user did,
  "user_intent": what the user was trying to achieve,
  "outcome": one of "completed", "dropped_off", "in_progress",
  "drop_off_step": the key of the funnel step where the user stopped, or "" if none,
  "friction_points": short descriptions of moments the user struggled,
  "recommendations": concrete product changes that would help,
  "confidence": a number between 0 and 1.
Base every statement on the interaction timeline. Do not invent steps that are not in the funnel.`

func buildPrompt(in analytics.GenerateInput) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Funnel: %s\n\nSteps:\n", in.FunnelName)
	for _, s := range in.FunnelSteps {
		fmt.Fprintf(&b, "%d. %s (key: %s)", s.Order, s.Name, s.Key)
		if len(s.Metadata) > 0 {
			fmt.Fprintf(&b, " metadata: %s", s.Metadata)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nInteraction timeline (%d interactions over %.1fs):\n", len(in.Summary.Events), float64(in.Summary.DurationMs)/1000)
	b.WriteString(in.Summary.Text())

	raw := make([]models.ReplayEvent, 0, maxPromptRawEvents)
	for _, ev := range in.RawEvents {
		if len(raw) == maxPromptRawEvents {
			break
		}
		if analytics.IsInteraction(ev) {
			raw = append(raw, ev)
		}
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode raw events: %w", err)
	}
	fmt.Fprintf(&b, "\nRaw interaction events (%d quoted, %d recorded in total):\n%s\n", len(raw), len(in.RawEvents), encoded)

	return b.String(), nil
}
