package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/Akshat29Upadhyay/chatpdf/internal/config"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	text string
	err  error
}

func (s stubLLM) Generate(context.Context, GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	return GenerateResponse{Text: s.text}, ProviderInfo{Name: "stub"}, s.err
}

type stubEmbed struct {
	vec []float32
	err error
}

func (s stubEmbed) Embed(context.Context, EmbedRequest) ([]float32, ProviderInfo, error) {
	return s.vec, ProviderInfo{Name: "stub"}, s.err
}

func TestNewManagerBuildsChains(t *testing.T) {
	cfg := config.Config{LLMProviders: "openai|gemini|mock", EmbedProviders: "openai|pseudo", EmbedDim: 1024}
	m, err := NewManager(cfg)
	require.NoError(t, err)
	require.Equal(t, 3, m.LLMCount())
	require.Equal(t, 2, m.EmbedCount())
}

func TestNewManagerRejectsUnknownProvider(t *testing.T) {
	_, err := NewManager(config.Config{LLMProviders: "carrierpigeon", EmbedDim: 1024})
	require.Error(t, err)
}

func TestNewManagerRejectsChatOnlyMismatch(t *testing.T) {
	// pseudo only embeds, so it cannot sit in the chat chain.
	_, err := NewManager(config.Config{LLMProviders: "pseudo", EmbedDim: 1024})
	require.Error(t, err)
}

func TestGenerateFallbackOrder(t *testing.T) {
	m := &Manager{llmProviders: []NamedLLMProvider{
		{Ref: ProviderRef{Raw: "first"}, Provider: stubLLM{err: errors.New("boom")}},
		{Ref: ProviderRef{Raw: "second"}, Provider: stubLLM{text: "   "}},
		{Ref: ProviderRef{Raw: "third"}, Provider: stubLLM{text: "an answer"}},
	}}
	resp, _, err := m.GenerateWithFallback(context.Background(), GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)
	require.Equal(t, "an answer", resp.Text)
}

func TestGenerateFallbackExhausted(t *testing.T) {
	m := &Manager{llmProviders: []NamedLLMProvider{
		{Ref: ProviderRef{Raw: "only"}, Provider: stubLLM{err: errors.New("key missing")}},
	}}
	_, _, err := m.GenerateWithFallback(context.Background(), GenerateRequest{Prompt: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "key missing")
}

func TestEmbedFallbackTruncatesNativeVector(t *testing.T) {
	native := make([]float32, 1536)
	for i := range native {
		native[i] = float32(i)
	}
	m := &Manager{embedProviders: []NamedEmbedProvider{
		{Ref: ProviderRef{Raw: "native"}, Provider: stubEmbed{vec: native}},
	}}
	vec, _, err := m.EmbedWithFallback(context.Background(), EmbedRequest{Input: "x", Dimension: 1024})
	require.NoError(t, err)
	require.Len(t, vec, 1024)
	require.Equal(t, float32(1023), vec[1023])
}

func TestEmbedFallbackKeepsMatchingVector(t *testing.T) {
	m := &Manager{embedProviders: []NamedEmbedProvider{
		{Ref: ProviderRef{Raw: "exact"}, Provider: stubEmbed{vec: make([]float32, 1024)}},
	}}
	vec, _, err := m.EmbedWithFallback(context.Background(), EmbedRequest{Input: "x", Dimension: 1024})
	require.NoError(t, err)
	require.Len(t, vec, 1024)
}

func TestEmbedFallbackSkipsFailingProvider(t *testing.T) {
	m := &Manager{embedProviders: []NamedEmbedProvider{
		{Ref: ProviderRef{Raw: "down"}, Provider: stubEmbed{err: errors.New("quota exceeded")}},
		{Ref: ProviderRef{Raw: "up"}, Provider: stubEmbed{vec: []float32{0.5, 0.5}}},
	}}
	vec, _, err := m.EmbedWithFallback(context.Background(), EmbedRequest{Input: "x"})
	require.NoError(t, err)
	require.Len(t, vec, 2)
}

func TestMultimodalSelection(t *testing.T) {
	m := &Manager{llmProviders: []NamedLLMProvider{
		{Ref: ProviderRef{Raw: "plain"}, Provider: stubLLM{text: "x"}},
		{Ref: ProviderRef{Raw: "mock"}, Provider: NewMockProvider(8)},
	}}
	mm, ok := m.Multimodal()
	require.True(t, ok)
	resp, _, err := mm.GenerateWithDocument(context.Background(), DocumentRequest{Prompt: "p", MIMEType: "application/pdf", Data: []byte("d")})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Text)
}

func TestMultimodalAbsent(t *testing.T) {
	m := &Manager{llmProviders: []NamedLLMProvider{
		{Ref: ProviderRef{Raw: "plain"}, Provider: stubLLM{text: "x"}},
	}}
	if _, ok := m.Multimodal(); ok {
		t.Fatal("no multimodal provider should be found")
	}
}
