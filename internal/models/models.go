package models

import "time"

type UploadedDocument struct {
	ID             string    `json:"id"`
	OriginalName   string    `json:"name"`
	ByteSize       int64     `json:"size"`
	OwnerID        string    `json:"ownerId"`
	UploadedAt     time.Time `json:"uploadedAt"`
	StorageLocator string    `json:"-"`
}

type TextChunk struct {
	Text       string    `json:"text"`
	OwnerID    string    `json:"ownerId"`
	DocumentID string    `json:"documentId"`
	ChunkIndex int       `json:"chunkIndex"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ContextSnippet is a retrieved chunk handed to the chat responder, tagged
// with the document it came from.
type ContextSnippet struct {
	Text         string  `json:"text"`
	DocumentName string  `json:"documentName"`
	Score        float64 `json:"score"`
}
