// Package suggest asks a cloud model for an alternative selector strategy
// when the heuristic ranking looks weak. The suggestion is advisory: it
// re-enters the engine through the validator and is indistinguishable from
// a manually built spec.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
)

const promptTemplate = `You are helping build a resilient element selector for web automation.
Given this structural analysis of the chosen element (JSON), propose ONE
selector strategy as JSON with the same shape as the "strategy" examples:
{"kind":"structure","confidence":0.8,"combined":"tr.row .name",
 "structure":{"scope":{"selector":"tr.row"},
  "anchor":{"type":"text_match","selector":".name","value":"...","matchMode":"exact"},
  "target":{"selector":".approve"}}}
Prefer anchors whose value is unique across sibling rows. Respond with JSON only.

Analysis:
%s`

// Client wraps the generative model call.
type Client struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewClient creates a suggestion client. The API key is required; callers
// gate on configuration before constructing one.
func NewClient(ctx context.Context, apiKey, model string, log *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("suggestion client requires an API key")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if log == nil {
		log = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{client: client, model: model, log: log.Named("suggest")}, nil
}

// Suggest sends the analysis to the model and parses one strategy back.
// The caller must validate the result before trusting it.
func (c *Client) Suggest(ctx context.Context, analysis schemas.ElementAnalysis) (*schemas.Strategy, error) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(promptTemplate, payload), genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("suggestion request failed: %w", err)
	}

	text := resp.Text()
	strategy, err := parseStrategy(text)
	if err != nil {
		c.log.Warn("unparseable suggestion", zap.String("raw", text), zap.Error(err))
		return nil, err
	}
	return strategy, nil
}

// parseStrategy tolerates markdown fences around the JSON body.
func parseStrategy(text string) (*schemas.Strategy, error) {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "{"); idx > 0 {
		text = text[idx:]
	}
	if idx := strings.LastIndex(text, "}"); idx >= 0 {
		text = text[:idx+1]
	}
	var s schemas.Strategy
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("suggestion is not a strategy: %w", err)
	}
	if s.Kind == "" {
		return nil, fmt.Errorf("suggestion lacks a strategy kind")
	}
	return &s, nil
}
