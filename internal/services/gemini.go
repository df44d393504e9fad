package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/pkg/logger"
	"google.golang.org/genai"
)

// ContentGenerator is the part of the genai client the proxy calls.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ProxyError is a failure the proxy reports to the browser.
type ProxyError struct {
	Status  int
	Title   string
	Message string
}

func (e *ProxyError) Error() string { return e.Title + ": " + e.Message }

var (
	ErrProxyNotConfigured = &ProxyError{
		Status:  http.StatusInternalServerError,
		Title:   "API configuration error",
		Message: "The server is not properly configured for AI services.",
	}
	errProxyBadRequest = &ProxyError{
		Status:  http.StatusBadRequest,
		Title:   "Invalid request format",
		Message: "Request must be valid JSON",
	}
	errProxyUnavailable = &ProxyError{
		Status:  http.StatusServiceUnavailable,
		Title:   "API service error",
		Message: "Unable to communicate with the AI service.",
	}
)

// generateRequest mirrors the body of the REST generateContent call.
// generationConfig decodes straight into the SDK config, so every field the
// SDK knows is forwarded. Keys neither level knows are rejected.
type generateRequest struct {
	Contents          []*genai.Content             `json:"contents"`
	SystemInstruction *genai.Content               `json:"systemInstruction,omitempty"`
	SafetySettings    []*genai.SafetySetting       `json:"safetySettings,omitempty"`
	Tools             []*genai.Tool                `json:"tools,omitempty"`
	ToolConfig        *genai.ToolConfig            `json:"toolConfig,omitempty"`
	CachedContent     string                       `json:"cachedContent,omitempty"`
	Labels            map[string]string            `json:"labels,omitempty"`
	GenerationConfig  *genai.GenerateContentConfig `json:"generationConfig,omitempty"`
}

// GeminiProxy forwards browser prompts to Gemini with the server key.
type GeminiProxy struct {
	cfg       config.GeminiConfig
	generator ContentGenerator
}

// NewGeminiProxy builds the proxy. Without an API key it is created
// unconfigured and every call fails with ErrProxyNotConfigured.
func NewGeminiProxy(ctx context.Context, cfg config.GeminiConfig) (*GeminiProxy, error) {
	if cfg.APIKey == "" {
		return &GeminiProxy{cfg: cfg}, nil
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProxy{cfg: cfg, generator: client.Models}, nil
}

// NewGeminiProxyWithGenerator is used by tests to inject a fake upstream.
func NewGeminiProxyWithGenerator(cfg config.GeminiConfig, gen ContentGenerator) *GeminiProxy {
	return &GeminiProxy{cfg: cfg, generator: gen}
}

func (p *GeminiProxy) Configured() bool {
	return p.generator != nil && p.cfg.APIKey != ""
}

// Generate forwards payload once with a fixed timeout. Failures are
// returned as *ProxyError.
func (p *GeminiProxy) Generate(ctx context.Context, payload []byte) (*genai.GenerateContentResponse, error) {
	if !p.Configured() {
		logger.Error().Msg("[Proxy] Gemini API key not configured")
		return nil, ErrProxyNotConfigured
	}

	req, err := decodeGenerateRequest(payload)
	if err != nil {
		return nil, err
	}
	if len(req.Contents) == 0 {
		return nil, &ProxyError{Status: http.StatusBadRequest, Title: errProxyBadRequest.Title, Message: "Request must include contents"}
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout())
	defer cancel()

	resp, err := p.generator.GenerateContent(ctx, p.model(), req.Contents, req.config())
	if err != nil {
		return nil, p.upstreamError(err)
	}
	return resp, nil
}

func (p *GeminiProxy) model() string {
	if p.cfg.Model != "" {
		return p.cfg.Model
	}
	return "gemini-1.5-flash-latest"
}

func (p *GeminiProxy) upstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Code
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		msg := p.sanitize(apiErr.Message)
		logger.Warn().Int("status", status).Str("upstream_status", apiErr.Status).Msgf("[Proxy] Gemini API error: %s", msg)
		return &ProxyError{Status: status, Title: "Upstream API error", Message: msg}
	}
	logger.Error().Msgf("[Proxy] Error forwarding request to Gemini API: %s", p.sanitize(err.Error()))
	return errProxyUnavailable
}

// sanitize removes the API key and caps the length of upstream text.
func (p *GeminiProxy) sanitize(msg string) string {
	if p.cfg.APIKey != "" {
		msg = strings.ReplaceAll(msg, p.cfg.APIKey, "[redacted]")
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "The AI service returned an error."
	}
	return truncate(msg, 500)
}

func decodeGenerateRequest(payload []byte) (*generateRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var req generateRequest
	if err := dec.Decode(&req); err != nil {
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return nil, &ProxyError{
				Status:  http.StatusBadRequest,
				Title:   errProxyBadRequest.Title,
				Message: "Unsupported field " + field,
			}
		}
		return nil, errProxyBadRequest
	}
	return &req, nil
}

// config merges the top-level request fields into the generation config.
// Transport options always come from the server.
func (r *generateRequest) config() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if r.GenerationConfig != nil {
		*cfg = *r.GenerationConfig
	}
	cfg.HTTPOptions = nil
	if r.SystemInstruction != nil {
		cfg.SystemInstruction = r.SystemInstruction
	}
	if r.SafetySettings != nil {
		cfg.SafetySettings = r.SafetySettings
	}
	if r.Tools != nil {
		cfg.Tools = r.Tools
	}
	if r.ToolConfig != nil {
		cfg.ToolConfig = r.ToolConfig
	}
	if r.CachedContent != "" {
		cfg.CachedContent = r.CachedContent
	}
	if r.Labels != nil {
		cfg.Labels = r.Labels
	}
	return cfg
}
