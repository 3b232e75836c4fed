package vectorstore

import (
	"context"
	"errors"
)

// ErrStoreUnavailable indicates the backing index could not be reached or
// written. Callers are expected to degrade rather than fail the request.
var ErrStoreUnavailable = errors.New("vector store unavailable")

// Document is a piece of text indexed for similarity search.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Match is a single similarity query result. Distance is cosine distance:
// non-negative, 0 means identical, lower is more similar.
type Match struct {
	ID       string
	Distance float64
	Metadata map[string]string
}

// Filter restricts a query to documents whose metadata field Key equals
// Value. The zero Filter matches everything.
type Filter struct {
	Key   string
	Value string
}

func (f Filter) isZero() bool {
	return f.Key == ""
}

// Embedder turns text into a vector in the embedding space shared by all
// documents of a store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is a nearest-neighbor text index over one collection of documents.
type Store interface {
	// Upsert indexes a document, replacing any previous document with the
	// same ID.
	Upsert(ctx context.Context, doc Document) error

	// Query returns up to k matches ordered by ascending distance. An empty
	// result is not an error.
	Query(ctx context.Context, text string, k int, filter Filter) ([]Match, error)

	// Delete removes all documents matching the filter.
	Delete(ctx context.Context, filter Filter) error
}
