package providers

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
)

// PseudoProvider derives a deterministic vector from character codes and word
// statistics. It is NOT a semantic embedding: two texts land near each other
// only when their gross byte layout matches, so nearest-neighbor results from
// this path carry no relevance guarantee. It exists so indexing can limp along
// in degraded mode when the real embedding provider is down, and it only
// activates when the secondary provider key is present.
type PseudoProvider struct {
	gateKey string
	dim     int
}

func NewPseudoProvider(dim int) *PseudoProvider {
	if dim <= 0 {
		dim = 1024
	}
	return &PseudoProvider{gateKey: os.Getenv("GEMINI_API_KEY"), dim: dim}
}

func (p *PseudoProvider) Embed(ctx context.Context, req EmbedRequest) ([]float32, ProviderInfo, error) {
	_ = ctx
	dim := req.Dimension
	if dim <= 0 {
		dim = p.dim
	}
	info := ProviderInfo{Name: "pseudo", Model: fmt.Sprintf("pseudo-embed-%d", dim), Key: "gemini"}
	if p.gateKey == "" {
		return nil, info, fmt.Errorf("pseudo embedding disabled: no fallback provider key configured")
	}

	vec := make([]float32, dim)
	data := []byte(req.Input)
	n := len(data)
	if n > dim {
		n = dim
	}
	for i := 0; i < n; i++ {
		vec[i] = float32(data[i])/255*2 - 1
	}
	avg := averageWordLength(req.Input)
	for i := n; i < dim; i++ {
		vec[i] = float32(math.Sin(float64(i)*avg*0.1) * 0.5)
	}
	return vec, info, nil
}

func averageWordLength(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len(w)
	}
	return float64(total) / float64(len(words))
}
