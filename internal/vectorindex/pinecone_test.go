package vectorindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakePinecone stands in for both the control plane and the data plane.
func fakePinecone(t *testing.T, dataPlane http.HandlerFunc) *PineconeIndex {
	t.Helper()
	// The data-plane URL is always https://<host>, so the fake needs TLS.
	var srv *httptest.Server
	srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/indexes/test-index" {
			require.Equal(t, "test-key", r.Header.Get("Api-Key"))
			host := srv.Listener.Addr().String()
			_ = json.NewEncoder(w).Encode(map[string]string{"host": host})
			return
		}
		dataPlane(w, r)
	}))
	t.Cleanup(srv.Close)

	return &PineconeIndex{
		apiKey:          "test-key",
		indexName:       "test-index",
		controlPlaneURL: srv.URL,
		client:          srv.Client(),
	}
}

func TestPineconeQuery(t *testing.T) {
	var captured map[string]any
	idx := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"id": "u1_d1_chunk_0", "score": 0.91, "metadata": map[string]any{"ownerId": "u1", "text": "hello"}},
			},
		})
	})

	matches, err := idx.Query(context.Background(), []float32{0.1, 0.2}, 3, Filter{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "hello", matches[0].Metadata.Text)

	require.Equal(t, true, captured["includeMetadata"])
	filter, ok := captured["filter"].(map[string]any)
	require.True(t, ok)
	owner, ok := filter["ownerId"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "u1", owner["$eq"])
}

func TestPineconeQueryRequiresOwner(t *testing.T) {
	called := false
	idx := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	_, err := idx.Query(context.Background(), []float32{0.1}, 3, Filter{})
	require.ErrorIs(t, err, ErrOwnerRequired)
	require.False(t, called, "no network call should happen without an owner filter")
}

func TestPineconeDeleteByFilter(t *testing.T) {
	var captured map[string]any
	idx := fakePinecone(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vectors/delete", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})
	require.NoError(t, idx.DeleteByFilter(context.Background(), Filter{OwnerID: "u1", DocumentID: "d1"}))
	filter := captured["filter"].(map[string]any)
	require.Equal(t, "u1", filter["ownerId"].(map[string]any)["$eq"])
	require.Equal(t, "d1", filter["documentId"].(map[string]any)["$eq"])

	require.ErrorIs(t, idx.DeleteByFilter(context.Background(), Filter{}), ErrOwnerRequired)
}

func TestPineconeUpsertEmptyIsNoop(t *testing.T) {
	idx := &PineconeIndex{} // no key; would fail if it tried to connect
	require.NoError(t, idx.Upsert(context.Background(), nil))
}

func TestPineconeMissingKey(t *testing.T) {
	idx := &PineconeIndex{indexName: "x", controlPlaneURL: defaultControlPlaneURL, client: http.DefaultClient}
	err := idx.Upsert(context.Background(), []Record{{ID: "a"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not configured")
}

func TestToLiteral(t *testing.T) {
	got := ToLiteral([]float32{0.5, -1})
	require.Equal(t, "[0.500000,-1.000000]", got)
	require.Equal(t, "[]", ToLiteral(nil))
}
