// Package ingest runs the document indexing pipeline: extract text, chunk it,
// embed each chunk, and upsert the vectors with their metadata. It also wraps
// the read path used by the chat responder.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Akshat29Upadhyay/chatpdf/internal/config"
	"github.com/Akshat29Upadhyay/chatpdf/internal/extract"
	"github.com/Akshat29Upadhyay/chatpdf/internal/models"
	"github.com/Akshat29Upadhyay/chatpdf/internal/providers"
	"github.com/Akshat29Upadhyay/chatpdf/internal/util"
	"github.com/Akshat29Upadhyay/chatpdf/internal/vectorindex"
)

type Indexer struct {
	cfg       config.Config
	providers *providers.Manager
	index     vectorindex.Index
}

func New(cfg config.Config, pm *providers.Manager, idx vectorindex.Index) *Indexer {
	return &Indexer{cfg: cfg, providers: pm, index: idx}
}

// StoreDocument indexes an uploaded PDF for its owner. Embeddings are
// generated in small sequential batches with a pause in between so bulk
// indexing does not trip a rate-limited provider. A chunk whose embedding
// fails is skipped; only a document yielding zero vectors is an error.
func (ix *Indexer) StoreDocument(ctx context.Context, ownerID, docID, docName string, data []byte) error {
	text := extract.Text(data)
	parts := util.ChunkText(text, ix.cfg.ChunkSize, ix.cfg.ChunkOverlap)
	if len(parts) == 0 {
		return util.ErrNoExtractableText
	}
	now := time.Now().UTC()
	chunks := make([]models.TextChunk, len(parts))
	for i, p := range parts {
		chunks[i] = models.TextChunk{
			Text:       p,
			OwnerID:    ownerID,
			DocumentID: docID,
			ChunkIndex: i,
			CreatedAt:  now,
		}
	}

	batchSize := ix.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 3
	}
	delay := time.Duration(ix.cfg.EmbedBatchDelay) * time.Millisecond

	records := make([]vectorindex.Record, 0, len(chunks))
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		for j := i; j < end; j++ {
			ch := chunks[j]
			vec, _, err := ix.providers.EmbedWithFallback(ctx, providers.EmbedRequest{
				Operation: "index_chunk",
				Input:     ch.Text,
				Dimension: ix.cfg.EmbedDim,
			})
			if err != nil {
				log.Printf("embedding chunk %d of %s failed, skipping: %v", j, docID, err)
				continue
			}
			records = append(records, vectorindex.Record{
				ID:     fmt.Sprintf("%s_%s_chunk_%d", ch.OwnerID, ch.DocumentID, ch.ChunkIndex),
				Values: vec,
				Metadata: vectorindex.Metadata{
					OwnerID:      ch.OwnerID,
					DocumentID:   ch.DocumentID,
					DocumentName: docName,
					ChunkIndex:   ch.ChunkIndex,
					Text:         ch.Text,
					Timestamp:    ch.CreatedAt.Format(time.RFC3339),
				},
			})
		}
		if end < len(chunks) && delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	if len(records) == 0 {
		return util.ErrNoEmbeddings
	}
	return ix.index.Upsert(ctx, records)
}

// Search embeds the query and returns the owner's top-ranked chunks.
func (ix *Indexer) Search(ctx context.Context, ownerID, query string, topK int) ([]models.ContextSnippet, error) {
	vec, _, err := ix.providers.EmbedWithFallback(ctx, providers.EmbedRequest{
		Operation: "query_embed",
		Input:     query,
		Dimension: ix.cfg.EmbedDim,
	})
	if err != nil {
		return nil, err
	}
	matches, err := ix.index.Query(ctx, vec, topK, vectorindex.Filter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	out := make([]models.ContextSnippet, 0, len(matches))
	for _, m := range matches {
		out = append(out, models.ContextSnippet{
			Text:         m.Metadata.Text,
			DocumentName: m.Metadata.DocumentName,
			Score:        m.Score,
		})
	}
	return out, nil
}

// DeleteDocument removes every indexed chunk of one document for one owner.
func (ix *Indexer) DeleteDocument(ctx context.Context, ownerID, docID string) error {
	return ix.index.DeleteByFilter(ctx, vectorindex.Filter{OwnerID: ownerID, DocumentID: docID})
}
