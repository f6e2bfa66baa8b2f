package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type GenerateRequest struct {
	Operation string   `json:"operation"`
	Prompt    string   `json:"prompt"`
	Context   []string `json:"context"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

type EmbedRequest struct {
	Operation string `json:"operation"`
	Input     string `json:"input"`
	Dimension int    `json:"dimension"`
}

// DocumentRequest pairs a user prompt with a binary document payload for a
// single multimodal call.
type DocumentRequest struct {
	Prompt   string
	MIMEType string
	Data     []byte
}

type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
}

type EmbeddingProvider interface {
	Embed(ctx context.Context, req EmbedRequest) ([]float32, ProviderInfo, error)
}

type MultimodalProvider interface {
	GenerateWithDocument(ctx context.Context, req DocumentRequest) (GenerateResponse, ProviderInfo, error)
}
