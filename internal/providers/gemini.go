package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// GeminiProvider is the secondary chat provider. It is also the only provider
// that accepts a document payload alongside the prompt, so it serves the
// multimodal path for chats grounded in an uploaded PDF.
type GeminiProvider struct {
	keyName string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiProvider(keyName string) *GeminiProvider {
	model := os.Getenv("PDFCHAT_GEMINI_MODEL")
	if strings.TrimSpace(model) == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		keyName: keyName,
		apiKey:  resolveGeminiKey(keyName),
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *GeminiProvider) Configured() bool {
	return g.apiKey != ""
}

func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.model, Key: g.keyName}
	if g.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("gemini key missing for alias %q", g.keyName)
	}
	prompt := "You are a helpful AI assistant. Please respond to: " + req.Prompt
	if len(req.Context) > 0 {
		prompt = prompt + "\n\nContext:\n" + strings.Join(req.Context, "\n\n")
	}
	parts := []map[string]any{{"text": prompt}}
	return g.generateContent(ctx, info, parts)
}

func (g *GeminiProvider) GenerateWithDocument(ctx context.Context, req DocumentRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.model, Key: g.keyName}
	if g.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("gemini key missing for alias %q", g.keyName)
	}
	parts := []map[string]any{
		{"text": req.Prompt},
		{"inline_data": map[string]string{
			"mime_type": req.MIMEType,
			"data":      base64.StdEncoding.EncodeToString(req.Data),
		}},
	}
	return g.generateContent(ctx, info, parts)
}

func (g *GeminiProvider) generateContent(ctx context.Context, info ProviderInfo, parts []map[string]any) (GenerateResponse, ProviderInfo, error) {
	payload, _ := json.Marshal(map[string]any{
		"contents": []map[string]any{{"parts": parts}},
	})
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("gemini generate request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return GenerateResponse{}, info, fmt.Errorf("gemini generate error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return GenerateResponse{}, info, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return GenerateResponse{}, info, fmt.Errorf("gemini returned no candidates")
	}
	return GenerateResponse{Text: parsed.Candidates[0].Content.Parts[0].Text}, info, nil
}

func resolveGeminiKey(alias string) string {
	if alias != "" {
		if k := os.Getenv("PDFCHAT_GEMINI_KEY_" + strings.ToUpper(alias)); k != "" {
			return k
		}
	}
	return os.Getenv("GEMINI_API_KEY")
}
