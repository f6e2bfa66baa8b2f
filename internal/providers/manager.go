package providers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Akshat29Upadhyay/chatpdf/internal/config"
	"github.com/Akshat29Upadhyay/chatpdf/internal/util"
)

// openAINativeDim is the dimension text-embedding-3-small produces; vectors
// of this size are cut down to the index dimension.
const openAINativeDim = 1536

type NamedLLMProvider struct {
	Ref      ProviderRef
	Provider LLMProvider
}

type NamedEmbedProvider struct {
	Ref      ProviderRef
	Provider EmbeddingProvider
}

// Manager holds the priority-ordered provider chains. Fallback is a single
// pass over each chain: every provider gets exactly one try, and the first
// usable answer wins.
type Manager struct {
	llmProviders   []NamedLLMProvider
	embedProviders []NamedEmbedProvider
}

func NewManager(cfg config.Config) (*Manager, error) {
	m := &Manager{}
	for _, ref := range ParseProviderList(cfg.LLMProviders) {
		p, err := buildProvider(ref, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		llm, ok := p.(LLMProvider)
		if !ok {
			return nil, fmt.Errorf("provider %s does not support chat generation", ref.Raw)
		}
		m.llmProviders = append(m.llmProviders, NamedLLMProvider{Ref: ref, Provider: llm})
	}
	for _, ref := range ParseProviderList(cfg.EmbedProviders) {
		p, err := buildProvider(ref, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		embed, ok := p.(EmbeddingProvider)
		if !ok {
			return nil, fmt.Errorf("provider %s does not support embeddings", ref.Raw)
		}
		m.embedProviders = append(m.embedProviders, NamedEmbedProvider{Ref: ref, Provider: embed})
	}
	return m, nil
}

// GenerateWithFallback tries each chat provider once, in priority order, and
// returns the first non-empty response. The last failure is returned when the
// whole chain is exhausted.
func (m *Manager) GenerateWithFallback(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	var lastErr error
	for _, np := range m.llmProviders {
		resp, info, err := np.Provider.Generate(ctx, req)
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			return resp, info, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned an empty response", np.Ref.Raw)
		}
		log.Printf("llm provider %s failed (%s), trying next: %v", np.Ref.Raw, ClassifyError(err), err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = util.ErrNoProvider
	}
	return GenerateResponse{}, ProviderInfo{}, lastErr
}

// EmbedWithFallback tries each embedding provider once, in priority order.
// A native 1536-dim vector is truncated to the requested dimension, which is
// lossy dimensionality reduction rather than a projection.
func (m *Manager) EmbedWithFallback(ctx context.Context, req EmbedRequest) ([]float32, ProviderInfo, error) {
	var lastErr error
	for _, np := range m.embedProviders {
		vec, info, err := np.Provider.Embed(ctx, req)
		if err == nil && len(vec) > 0 {
			if len(vec) == openAINativeDim && req.Dimension > 0 && req.Dimension < openAINativeDim {
				vec = vec[:req.Dimension]
			}
			return vec, info, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned an empty vector", np.Ref.Raw)
		}
		log.Printf("embed provider %s failed (%s), trying next: %v", np.Ref.Raw, ClassifyError(err), err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = util.ErrNoProvider
	}
	return nil, ProviderInfo{}, lastErr
}

// Multimodal returns the first configured chat provider that accepts a
// document payload, if any.
func (m *Manager) Multimodal() (MultimodalProvider, bool) {
	for _, np := range m.llmProviders {
		mm, ok := np.Provider.(MultimodalProvider)
		if !ok {
			continue
		}
		if c, ok := np.Provider.(interface{ Configured() bool }); ok && !c.Configured() {
			continue
		}
		return mm, true
	}
	return nil, false
}

func (m *Manager) LLMCount() int   { return len(m.llmProviders) }
func (m *Manager) EmbedCount() int { return len(m.embedProviders) }

func buildProvider(ref ProviderRef, dim int) (any, error) {
	switch strings.ToLower(ref.Name) {
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	case "gemini":
		return NewGeminiProvider(ref.KeyAlias), nil
	case "pseudo":
		return NewPseudoProvider(dim), nil
	case "mock":
		return NewMockProvider(dim), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
