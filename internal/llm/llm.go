// Package llm wraps the generative model used for classification and the
// knowledge fallback.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

var (
	ErrNotConfigured = errors.New("llm: api key not configured")
	ErrEmptyResponse = errors.New("llm: empty response")
)

type Request struct {
	Model       string
	System      string
	Prompt      string
	Schema      *genai.Schema // non-nil requests a JSON response
	Temperature *float32
}

type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Gemini struct {
	client  *genai.Client
	timeout time.Duration
}

type GeminiOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func NewGemini(ctx context.Context, opts GeminiOptions) (*Gemini, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}

	return &Gemini{client: client, timeout: opts.Timeout}, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("error generating content with %s: %w", req.Model, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

const fence = "```"

// StripCodeFence returns the body of the first markdown code fence in s
// (```json ... ```), whether or not the markers sit on their own lines.
// Text without a fence is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, fence)
	if start < 0 {
		return s
	}

	body := stripFenceLang(s[start+len(fence):])
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// stripFenceLang drops an info string such as "json" directly after the
// opening marker. On a single line the word only counts as an info string
// when JSON follows it, so "```New Delhi```" keeps its text.
func stripFenceLang(s string) string {
	n := 0
	for n < len(s) && isLangByte(s[n]) {
		n++
	}
	if n == 0 || n == len(s) {
		return s
	}
	switch s[n] {
	case '\r', '\n', '{', '[':
		return s[n:]
	case ' ', '\t':
		if rest := strings.TrimLeft(s[n:], " \t"); rest != "" && (rest[0] == '{' || rest[0] == '[') {
			return rest
		}
	}
	return s
}

func isLangByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '-' || b == '+'
}
