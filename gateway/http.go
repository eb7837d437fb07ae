package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tailored-agentic-units/roundtable/capability"
	"github.com/tailored-agentic-units/roundtable/core/protocol"
)

// capabilityFailedContent is substituted for a capability result when
// execution fails. The failure stays local to the persona's turn.
const capabilityFailedContent = "request failed"

// CapabilityExecutor abstracts capability execution for testability.
// The default implementation delegates to the global capability registry.
type CapabilityExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (capability.Result, error)
}

type globalCapabilityExecutor struct{}

func (globalCapabilityExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (capability.Result, error) {
	return capability.Execute(ctx, name, args)
}

// wireMessage is one role-tagged message in the chat-completions body.
type wireMessage struct {
	Role       string                    `json:"role"`
	Content    string                    `json:"content"`
	Name       string                    `json:"name,omitempty"`
	ToolCallID string                    `json:"tool_call_id,omitempty"`
	ToolCalls  []protocol.CapabilityCall `json:"tool_calls,omitempty"`
}

type wireTool struct {
	Type     string              `json:"type"`
	Function protocol.Capability `json:"function"`
}

type completionRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Tools       []wireTool    `json:"tools,omitempty"`
}

type completionChoice struct {
	Message struct {
		Role      string                    `json:"role"`
		Content   string                    `json:"content"`
		ToolCalls []protocol.CapabilityCall `json:"tool_calls"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
}

// HTTPGateway calls a chat-completions endpoint over HTTP(S).
// Safe for concurrent use; each Complete call is independent.
type HTTPGateway struct {
	cfg      Config
	client   *http.Client
	executor CapabilityExecutor
}

// HTTPOption configures an HTTPGateway after config-driven initialization.
type HTTPOption func(*HTTPGateway)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(g *HTTPGateway) { g.client = client }
}

// WithCapabilityExecutor overrides the default global capability executor.
func WithCapabilityExecutor(e CapabilityExecutor) HTTPOption {
	return func(g *HTTPGateway) { g.executor = e }
}

// NewHTTPGateway creates a gateway from configuration. Fails fast on
// missing endpoint or credentials so misconfiguration surfaces before the
// session loop starts.
func NewHTTPGateway(cfg Config, opts ...HTTPOption) (*HTTPGateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base_url is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gateway api_key is required")
	}

	defaults := DefaultConfig()
	defaults.Merge(&cfg)

	g := &HTTPGateway{
		cfg:      defaults,
		client:   &http.Client{Timeout: defaults.Timeout},
		executor: globalCapabilityExecutor{},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Complete implements Gateway. When the request carries capabilities, the
// model may respond with capability calls; those are executed via the
// capability executor and their results fed back, up to
// MaxCapabilityRounds round-trips. A failing capability substitutes
// "request failed" as its result rather than aborting the call.
func (g *HTTPGateway) Complete(ctx context.Context, req Request) (string, error) {
	messages := g.buildMessages(req)

	var tools []wireTool
	for _, capDef := range req.Capabilities {
		tools = append(tools, wireTool{Type: "function", Function: capDef})
	}

	for round := 0; round <= g.cfg.MaxCapabilityRounds; round++ {
		choice, err := g.post(ctx, completionRequest{
			Model:       g.cfg.Model,
			Messages:    messages,
			Temperature: g.cfg.Temperature,
			MaxTokens:   g.cfg.MaxTokens,
			Tools:       tools,
		})
		if err != nil {
			return "", err
		}

		if len(choice.Message.ToolCalls) == 0 {
			return choice.Message.Content, nil
		}

		messages = append(messages, wireMessage{
			Role:      "assistant",
			Content:   choice.Message.Content,
			ToolCalls: choice.Message.ToolCalls,
		})

		for _, call := range choice.Message.ToolCalls {
			result, execErr := g.executor.Execute(ctx, call.Name, json.RawMessage(call.Arguments))
			content := result.Content
			if execErr != nil {
				content = capabilityFailedContent
			}
			messages = append(messages, wireMessage{
				Role:       "tool",
				Content:    content,
				ToolCallID: call.ID,
			})
		}
	}

	return "", fmt.Errorf("%w after %d rounds", ErrCapabilityLoop, g.cfg.MaxCapabilityRounds)
}

func (g *HTTPGateway) buildMessages(req Request) []wireMessage {
	messages := make([]wireMessage, 0, len(req.History)+2)

	if req.Directive != "" {
		messages = append(messages, wireMessage{Role: "system", Content: req.Directive})
	}

	for _, turn := range req.History {
		switch turn.Role {
		case protocol.RoleUser:
			messages = append(messages, wireMessage{Role: "user", Content: turn.GatewayContent()})
		case protocol.RoleAssistant:
			messages = append(messages, wireMessage{
				Role:    "assistant",
				Content: turn.GatewayContent(),
				Name:    sanitizeName(turn.Speaker),
			})
		default:
			// Facilitator turns are display-only.
		}
	}

	if req.Task != "" {
		messages = append(messages, wireMessage{Role: "user", Content: req.Task})
	}

	return messages
}

func (g *HTTPGateway) post(ctx context.Context, body completionRequest) (*completionChoice, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if strings.EqualFold(g.cfg.AuthHeader, "api-key") {
		httpReq.Header.Set("api-key", g.cfg.APIKey)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: endpoint returned %d: %s", ErrUnavailable, resp.StatusCode, truncate(string(data), 200))
	}

	var decoded completionResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrMalformed, err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", ErrMalformed)
	}

	return &decoded.Choices[0], nil
}

func (g *HTTPGateway) endpoint() string {
	base := strings.TrimSuffix(g.cfg.BaseURL, "/")
	full := base + "/" + strings.TrimPrefix(g.cfg.Path, "/")
	if g.cfg.APIVersion != "" {
		full += "?api-version=" + url.QueryEscape(g.cfg.APIVersion)
	}
	return full
}

// sanitizeName maps a speaker id onto the wire-level name constraint
// (no whitespace). Display ids are unrestricted; the wire field is only a
// hint to the model.
func sanitizeName(speaker string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n':
			return '_'
		}
		return r
	}, speaker)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
