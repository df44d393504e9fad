package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubGenerator struct {
	model string
	resp  *genai.GenerateContentResponse
	err   error
}

func (g *stubGenerator) GenerateContent(_ context.Context, model string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	g.model = model
	return g.resp, g.err
}

func newBareRouter() *gin.Engine {
	return gin.New()
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func proxyRouter(p *services.GeminiProxy) *gin.Engine {
	r := newBareRouter()
	r.POST("/api/proxy/gemini/", NewProxyHandler(p).Gemini)
	return r
}

const prompt = `{"contents":[{"role":"user","parts":[{"text":"Hello"}]}]}`

func TestProxy_NotConfigured(t *testing.T) {
	r := proxyRouter(services.NewGeminiProxyWithGenerator(config.GeminiConfig{}, nil))

	w := serve(r, http.MethodPost, "/api/proxy/gemini/", prompt)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "API configuration error", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestProxy_Forwards(t *testing.T) {
	gen := &stubGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("Hi there", genai.RoleModel)}},
	}}
	r := proxyRouter(services.NewGeminiProxyWithGenerator(config.GeminiConfig{APIKey: "key", Model: "gemini-test"}, gen))

	w := serve(r, http.MethodPost, "/api/proxy/gemini/", prompt)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Hi there")
	assert.Equal(t, "gemini-test", gen.model)
}

func TestProxy_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		title  string
	}{
		{"malformed json", `{"contents":`, nil, http.StatusBadRequest, "Invalid request format"},
		{"missing contents", `{}`, nil, http.StatusBadRequest, "Invalid request format"},
		{"unknown field", `{"contents":[{"parts":[{"text":"hi"}]}],"stream":true}`, nil, http.StatusBadRequest, "Invalid request format"},
		{"upstream down", prompt, errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, "API service error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := proxyRouter(services.NewGeminiProxyWithGenerator(config.GeminiConfig{APIKey: "key"}, &stubGenerator{err: tt.err}))
			w := serve(r, http.MethodPost, "/api/proxy/gemini/", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, tt.title, body["error"])
			assert.NotContains(t, body["message"], "key")
		})
	}
}
