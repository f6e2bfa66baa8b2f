// Package vectorindex wraps the externally managed similarity index. The
// adapter never retries: failures propagate to the caller, who decides
// whether they are fatal to the request or just mean "no context available".
package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/Akshat29Upadhyay/chatpdf/internal/config"
)

// Metadata travels with every stored vector. A vector is never stored without
// its text and ownerId; ownerId is the sole tenant-isolation boundary.
type Metadata struct {
	OwnerID      string `json:"ownerId"`
	DocumentID   string `json:"documentId"`
	DocumentName string `json:"documentName"`
	ChunkIndex   int    `json:"chunkIndex"`
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
}

type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Filter scopes queries and deletes. OwnerID is mandatory on both; a missing
// owner filter would leak records across tenants.
type Filter struct {
	OwnerID    string
	DocumentID string
}

var ErrOwnerRequired = errors.New("ownerId filter is required")

type Index interface {
	// Upsert is idempotent by record id and overwrites on collision.
	Upsert(ctx context.Context, records []Record) error
	// Query returns up to topK records ranked by cosine similarity,
	// restricted to the filter's owner.
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error)
	// DeleteByFilter bulk-deletes every record matching the filter.
	DeleteByFilter(ctx context.Context, filter Filter) error
}

// New selects the configured backend. Neither backend connects here; the
// connection is established lazily on first use and cached for the process
// lifetime.
func New(cfg config.Config) (Index, error) {
	switch cfg.VectorBackend {
	case "pinecone":
		return NewPineconeIndex(cfg.PineconeIndexName), nil
	case "pgvector":
		return NewPgVectorIndex(cfg.PostgresURL, cfg.EmbedDim), nil
	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", cfg.VectorBackend)
	}
}
