package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"airogue/internal/debug"
	"airogue/internal/observability"
)

// Context keys for operation tracing
type contextKey string

const operationTypeKey contextKey = "operation_type"

// Service is the completion boundary for the content pipeline. It issues
// blocking chat completions and never retries at the transport level; the
// pipeline retries at the semantic level only.
type Service struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	debug   *debug.Logger
	tracer  trace.Tracer
}

func NewService(apiKey, model string, timeout time.Duration, debugLogger *debug.Logger) *Service {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Service{
		client:  &client,
		model:   model,
		timeout: timeout,
		debug:   debugLogger,
		tracer:  otel.Tracer("llm-service"),
	}
}

type TextCompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
	Model        string // optional override
}

type JSONCompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
	Model        string // optional override
}

// CompleteText returns the raw text of a single completion.
func (s *Service) CompleteText(ctx context.Context, req TextCompletionRequest) (string, error) {
	return s.complete(ctx, completionParams{
		systemPrompt: req.SystemPrompt,
		userPrompt:   req.UserPrompt,
		maxTokens:    req.MaxTokens,
		temperature:  req.Temperature,
		model:        req.Model,
		format:       "text",
	})
}

// CompleteJSON returns the raw text of a completion constrained to a JSON
// object via response_format. The caller still owns parsing.
func (s *Service) CompleteJSON(ctx context.Context, req JSONCompletionRequest) (string, error) {
	return s.complete(ctx, completionParams{
		systemPrompt: req.SystemPrompt,
		userPrompt:   req.UserPrompt,
		maxTokens:    req.MaxTokens,
		temperature:  req.Temperature,
		model:        req.Model,
		format:       "json",
	})
}

type completionParams struct {
	systemPrompt string
	userPrompt   string
	maxTokens    int
	temperature  float64
	model        string
	format       string
}

func (s *Service) complete(ctx context.Context, p completionParams) (string, error) {
	operationType := getOperationType(ctx)
	if operationType == "" {
		operationType = "llm." + p.format + "_completion"
	}

	model := s.model
	if strings.TrimSpace(p.model) != "" {
		model = p.model
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, operationType,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			observability.CreateGenAIAttributes("openai", model, 0, 0, p.temperature)...,
		),
	)
	defer span.End()

	span.SetAttributes(
		attribute.Int("gen_ai.request.max_tokens", p.maxTokens),
		attribute.String("langfuse.observation.type", "generation"),
		attribute.String("response_format", p.format),
	)

	span.AddEvent("gen_ai.user.message", trace.WithAttributes(
		attribute.String("gen_ai.system", "openai"),
		attribute.String("content", p.userPrompt),
	))

	openaiReq := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.systemPrompt),
			openai.UserMessage(p.userPrompt),
		},
		MaxCompletionTokens: openai.Int(int64(p.maxTokens)),
		Temperature:         openai.Float(p.temperature),
	}

	if p.format == "json" {
		openaiReq.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: func() *shared.ResponseFormatJSONObjectParam {
				param := shared.NewResponseFormatJSONObjectParam()
				return &param
			}(),
		}
	}

	s.debug.Printf("LLM %s completion - model: %s, max tokens: %d, temperature: %.2f, system prompt length: %d",
		p.format, model, p.maxTokens, p.temperature, len(p.systemPrompt))

	startTime := time.Now()

	resp, err := s.client.Chat.Completions.New(ctx, openaiReq)
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "llm_completion_error"))
		span.RecordError(err)
		s.debug.Printf("LLM %s completion error: %v", p.format, err)
		return "", fmt.Errorf("%s completion failed: %w", p.format, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no completion choices returned")
		span.RecordError(err)
		return "", err
	}

	content := resp.Choices[0].Message.Content
	duration := time.Since(startTime)

	span.SetAttributes(
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
		attribute.Int64("response_time_ms", duration.Milliseconds()),
		attribute.String("langfuse.observation.input", p.systemPrompt+"\n\n"+p.userPrompt),
		attribute.String("langfuse.observation.output", content),
		attribute.String("langfuse.observation.output_format", p.format),
		attribute.String("langfuse.observation.model.name", model),
	)

	span.AddEvent("gen_ai.choice", trace.WithAttributes(
		attribute.String("gen_ai.system", "openai"),
		attribute.String("content", content),
	))

	s.debug.Printf("LLM %s completion response length: %d, tokens: %d/%d, duration: %v",
		p.format, len(content), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, duration)

	return content, nil
}

// WithOperationType names the span started for the next completion call.
func WithOperationType(ctx context.Context, opType string) context.Context {
	return context.WithValue(ctx, operationTypeKey, opType)
}

// WithSessionID tags all spans under ctx with a generation run id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, observability.GetSessionIDKey(), sessionID)
}

func getOperationType(ctx context.Context) string {
	if opType, ok := ctx.Value(operationTypeKey).(string); ok {
		return opType
	}
	return ""
}
