package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")
	ErrNoEmbeddings      = errors.New("no embeddings could be generated for document chunks")

	ErrNoProvider = errors.New("no provider configured for this capability")
)
