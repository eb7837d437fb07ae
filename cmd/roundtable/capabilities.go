package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/tailored-agentic-units/roundtable/capability"
	"github.com/tailored-agentic-units/roundtable/core/protocol"
	"github.com/tailored-agentic-units/roundtable/gateway"
)

const (
	searchTopK          = 5
	searchFailedContent = "request failed"
)

func registerBuiltinCapabilities() {
	must(capability.Register(protocol.Capability{
		Name:        "datetime",
		Description: "Returns the current date and time in RFC3339 format.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, handleDatetime))
}

// registerSearchCapability wires the external search endpoint as a
// capability. Results are condensed through one extra gateway call before
// they reach the requesting persona; a failing endpoint yields a fixed
// failure text instead of an error.
func registerSearchCapability(url string, gwCfg gateway.Config) {
	gw, err := gateway.NewHTTPGateway(gwCfg)
	if err != nil {
		log.Fatalf("Failed to create search summarizer gateway: %v", err)
	}

	s := &searcher{
		url:    url,
		gw:     gw,
		client: &http.Client{Timeout: 30 * time.Second},
	}

	must(capability.Register(protocol.Capability{
		Name:        "search",
		Description: "Searches the external knowledge base and returns a summary of the results.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query.",
				},
			},
			"required": []string{"query"},
		},
	}, s.handle))
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("failed to register capability: %v", err))
	}
}

func handleDatetime(_ context.Context, _ json.RawMessage) (capability.Result, error) {
	return capability.Result{Content: time.Now().Format(time.RFC3339)}, nil
}

type searcher struct {
	url    string
	gw     gateway.Gateway
	client *http.Client
}

func (s *searcher) handle(ctx context.Context, raw json.RawMessage) (capability.Result, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return capability.Result{Content: "invalid arguments: " + err.Error(), IsError: true}, nil
	}
	if args.Query == "" {
		return capability.Result{Content: "query is required", IsError: true}, nil
	}

	body, err := json.Marshal(map[string]any{"query": args.Query, "top_k": searchTopK})
	if err != nil {
		return capability.Result{Content: searchFailedContent, IsError: true}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return capability.Result{Content: searchFailedContent, IsError: true}, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return capability.Result{Content: searchFailedContent, IsError: true}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return capability.Result{Content: searchFailedContent, IsError: true}, nil
	}

	results, err := io.ReadAll(resp.Body)
	if err != nil {
		return capability.Result{Content: searchFailedContent, IsError: true}, nil
	}

	summary, err := s.gw.Complete(ctx, gateway.Request{
		Directive: "Summarize the following search results, keeping only the points relevant to the question.",
		Task:      fmt.Sprintf("Question: %s\nSearch results:\n%s", args.Query, results),
	})
	if err != nil {
		// The raw results are still useful when the summarizer is down.
		return capability.Result{Content: string(results)}, nil
	}

	return capability.Result{Content: summary}, nil
}
