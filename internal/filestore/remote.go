package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxRemoteFetchBytes = 10*1024*1024 + 1

// RemoteStore hands uploads to an external CDN upload endpoint authenticated
// with a public key. The locator is the URL the CDN returns, so Get is a
// plain fetch.
type RemoteStore struct {
	uploadURL string
	publicKey string
	client    *http.Client
}

func NewRemoteStore(uploadURL, publicKey string) *RemoteStore {
	return &RemoteStore{
		uploadURL: uploadURL,
		publicKey: publicKey,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *RemoteStore) Put(ctx context.Context, ownerID, name string, data []byte) (string, error) {
	if s.uploadURL == "" || s.publicKey == "" {
		return "", fmt.Errorf("remote upload not configured")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	objectName := uuid.NewString() + "-" + filepath.Base(name)
	part, err := mw.CreateFormFile("file", objectName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.WriteField("ownerId", ownerID); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.publicKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote upload failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("remote upload error %d: %s", resp.StatusCode, string(respBody))
	}
	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode remote upload response: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("remote upload returned no url")
	}
	return parsed.URL, nil
}

func (s *RemoteStore) Get(ctx context.Context, locator string) ([]byte, error) {
	return FetchURL(ctx, s.client, locator)
}

// FetchURL retrieves a previously uploaded document by its public URL. It is
// used both by the remote store and by chat requests that carry a fileUrl
// while a different store strategy is active.
func FetchURL(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, fmt.Errorf("locator %s is not a URL", rawURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch document: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	return data, nil
}
