package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

const defaultControlPlaneURL = "https://api.pinecone.io"

// PineconeIndex talks to a managed Pinecone index over its REST API. The
// index host is resolved from the control plane once, on first use, and
// cached for the process lifetime. A missing API key is a hard error: nothing
// can substitute for the index.
type PineconeIndex struct {
	apiKey          string
	indexName       string
	controlPlaneURL string
	client          *http.Client

	connectOnce sync.Once
	host        string
	connectErr  error
}

func NewPineconeIndex(indexName string) *PineconeIndex {
	return &PineconeIndex{
		apiKey:          os.Getenv("PINECONE_API_KEY"),
		indexName:       indexName,
		controlPlaneURL: defaultControlPlaneURL,
		client:          &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PineconeIndex) connect(ctx context.Context) (string, error) {
	p.connectOnce.Do(func() {
		if p.apiKey == "" {
			p.connectErr = fmt.Errorf("PINECONE_API_KEY not configured")
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.controlPlaneURL+"/indexes/"+p.indexName, nil)
		if err != nil {
			p.connectErr = err
			return
		}
		req.Header.Set("Api-Key", p.apiKey)
		resp, err := p.client.Do(req)
		if err != nil {
			p.connectErr = fmt.Errorf("describe index %s: %w", p.indexName, err)
			return
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 400 {
			p.connectErr = fmt.Errorf("describe index %s: status %d: %s", p.indexName, resp.StatusCode, string(body))
			return
		}
		var parsed struct {
			Host string `json:"host"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			p.connectErr = fmt.Errorf("decode describe index response: %w", err)
			return
		}
		if parsed.Host == "" {
			p.connectErr = fmt.Errorf("index %s has no host", p.indexName)
			return
		}
		p.host = "https://" + parsed.Host
	})
	return p.host, p.connectErr
}

func (p *PineconeIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	return p.dataPlane(ctx, "/vectors/upsert", map[string]any{"vectors": records}, nil)
}

func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if filter.OwnerID == "" {
		return nil, ErrOwnerRequired
	}
	if topK <= 0 {
		topK = 3
	}
	var parsed struct {
		Matches []Match `json:"matches"`
	}
	err := p.dataPlane(ctx, "/query", map[string]any{
		"vector":          vector,
		"topK":            topK,
		"filter":          metadataFilter(filter),
		"includeMetadata": true,
	}, &parsed)
	if err != nil {
		return nil, err
	}
	return parsed.Matches, nil
}

func (p *PineconeIndex) DeleteByFilter(ctx context.Context, filter Filter) error {
	if filter.OwnerID == "" {
		return ErrOwnerRequired
	}
	return p.dataPlane(ctx, "/vectors/delete", map[string]any{"filter": metadataFilter(filter)}, nil)
}

func (p *PineconeIndex) dataPlane(ctx context.Context, path string, payload any, out any) error {
	host, err := p.connect(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone %s request failed: %w", path, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("pinecone %s error %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode pinecone %s response: %w", path, err)
		}
	}
	return nil
}

func metadataFilter(f Filter) map[string]any {
	out := map[string]any{
		"ownerId": map[string]string{"$eq": f.OwnerID},
	}
	if f.DocumentID != "" {
		out["documentId"] = map[string]string{"$eq": f.DocumentID}
	}
	return out
}
