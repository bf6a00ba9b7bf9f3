package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"pkdindustries/codi/internal/core"
)

// Config selects the hosted model and its sampling parameters
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
	Timeout     time.Duration
}

var _ core.Completer = (*OpenAIClient)(nil)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	config       Config
	ClientConfig ai.ClientConfig
	Client       *ai.Client
}

func NewOpenAIClient(config Config) *OpenAIClient {
	cfg := ai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}
	return &OpenAIClient{
		config:       config,
		ClientConfig: cfg,
		Client:       ai.NewClientWithConfig(cfg),
	}
}

// Complete issues one completion call. Streaming and non-streaming calls
// return the same assembled Completion; streaming additionally feeds
// req.OnDelta.
func (o *OpenAIClient) Complete(ctx context.Context, req *core.CompletionRequest) (*core.Completion, error) {
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	ccr := o.chatRequest(req)
	log := zap.S().With("model", ccr.Model, "stream", req.Stream, "turns", len(ccr.Messages), "tools", len(ccr.Tools))
	defer core.LogDuration(log, "completion", time.Now())

	var (
		completion *core.Completion
		err        error
	)
	if req.Stream {
		completion, err = o.completionStream(ctx, ccr, req.OnDelta)
	} else {
		completion, err = o.completion(ctx, ccr)
	}
	if err != nil {
		log.Warnw("completion failed", "error", err)
		return nil, err
	}
	log.Debugw("completion done", "finish_reason", completion.FinishReason, "tool_calls", len(completion.ToolCalls))
	return completion, nil
}

func (o *OpenAIClient) chatRequest(req *core.CompletionRequest) ai.ChatCompletionRequest {
	ccr := ai.ChatCompletionRequest{
		Model:               o.config.Model,
		Messages:            toMessages(req.Turns),
		MaxCompletionTokens: o.config.MaxTokens,
		Temperature:         o.config.Temperature,
		TopP:                o.config.TopP,
		Stream:              req.Stream,
	}
	if len(req.Tools) > 0 {
		ccr.Tools = toTools(req.Tools)
		if req.ToolChoice != "" {
			ccr.ToolChoice = req.ToolChoice
		}
	}
	return ccr
}

func (o *OpenAIClient) completion(ctx context.Context, ccr ai.ChatCompletionRequest) (*core.Completion, error) {
	response, err := o.Client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return nil, hostedError(err)
	}
	if len(response.Choices) == 0 {
		return nil, hostedError(errors.New("empty completion response"))
	}

	choice := response.Choices[0]
	return &core.Completion{
		Content:      choice.Message.Content,
		ToolCalls:    fromToolCalls(choice.Message.ToolCalls),
		FinishReason: string(choice.FinishReason),
	}, nil
}

func (o *OpenAIClient) completionStream(ctx context.Context, ccr ai.ChatCompletionRequest, onDelta func(string)) (*core.Completion, error) {
	stream, err := o.Client.CreateChatCompletionStream(ctx, ccr)
	if err != nil {
		return nil, hostedError(err)
	}
	defer stream.Close()

	var (
		content  strings.Builder
		calls    toolCallAccumulator
		finish   string
		received bool
	)
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, hostedError(err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		received = true

		choice := response.Choices[0]
		if delta := choice.Delta.Content; delta != "" {
			content.WriteString(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		}
		calls.add(choice.Delta.ToolCalls)
		if choice.FinishReason != "" {
			finish = string(choice.FinishReason)
		}
	}

	if !received {
		return nil, hostedError(errors.New("empty completion stream"))
	}
	return &core.Completion{
		Content:      content.String(),
		ToolCalls:    calls.requests(),
		FinishReason: finish,
	}, nil
}

// toolCallAccumulator reassembles tool calls split across stream deltas
type toolCallAccumulator struct {
	order []int
	calls map[int]*core.ToolCallRequest
	args  map[int]*strings.Builder
}

func (a *toolCallAccumulator) add(deltas []ai.ToolCall) {
	if a.calls == nil {
		a.calls = make(map[int]*core.ToolCallRequest)
		a.args = make(map[int]*strings.Builder)
	}
	for i, d := range deltas {
		idx := i
		if d.Index != nil {
			idx = *d.Index
		}
		call, ok := a.calls[idx]
		if !ok {
			call = &core.ToolCallRequest{}
			a.calls[idx] = call
			a.args[idx] = &strings.Builder{}
			a.order = append(a.order, idx)
		}
		if d.ID != "" {
			call.ID = d.ID
		}
		if d.Function.Name != "" {
			call.Name = d.Function.Name
		}
		a.args[idx].WriteString(d.Function.Arguments)
	}
}

func (a *toolCallAccumulator) requests() []core.ToolCallRequest {
	if len(a.order) == 0 {
		return nil
	}
	out := make([]core.ToolCallRequest, 0, len(a.order))
	for _, idx := range a.order {
		call := *a.calls[idx]
		call.Arguments = a.args[idx].String()
		out = append(out, call)
	}
	return out
}

// hostedError classifies a go-openai failure as a HostedServiceError
func hostedError(err error) error {
	hse := &core.HostedServiceError{Err: err}

	var apiErr *ai.APIError
	var reqErr *ai.RequestError
	switch {
	case errors.As(err, &apiErr):
		hse.StatusCode = apiErr.HTTPStatusCode
		if code, ok := apiErr.Code.(string); ok {
			hse.Code = code
		}
	case errors.As(err, &reqErr):
		hse.StatusCode = reqErr.HTTPStatusCode
	}

	hse.LimitReached = isLimitError(hse.Code, err)
	return hse
}

func isLimitError(code string, err error) bool {
	switch code {
	case "context_length_exceeded", "string_above_max_length", "tokens_exceeded":
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "maximum context length") || strings.Contains(msg, "token limit")
}

func (o *OpenAIClient) String() string {
	return fmt.Sprintf("openai(%s @ %s)", o.config.Model, o.ClientConfig.BaseURL)
}
