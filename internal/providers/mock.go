package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// MockProvider gives deterministic answers and vectors for tests and local
// development without any keys.
type MockProvider struct {
	dim int
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 1024
	}
	return &MockProvider{dim: dim}
}

func (m *MockProvider) Embed(ctx context.Context, req EmbedRequest) ([]float32, ProviderInfo, error) {
	_ = ctx
	dim := req.Dimension
	if dim <= 0 {
		dim = m.dim
	}
	return deterministicVector(req.Input, dim), ProviderInfo{Name: "mock", Model: fmt.Sprintf("mock-embed-%d", dim), Key: "mock"}, nil
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	text := "Mock answer to: " + req.Prompt
	if len(req.Context) > 0 {
		text += fmt.Sprintf(" (grounded in %d context snippets)", len(req.Context))
	}
	return GenerateResponse{Text: text}, ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}, nil
}

func (m *MockProvider) GenerateWithDocument(ctx context.Context, req DocumentRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	text := fmt.Sprintf("Mock answer about attached %s (%d bytes): %s", req.MIMEType, len(req.Data), req.Prompt)
	return GenerateResponse{Text: text}, ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}, nil
}

func (m *MockProvider) Configured() bool { return true }

func deterministicVector(input string, dim int) []float32 {
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return vec
}
