package driven

import "context"

// PageEmbedder maps page images and query text into one shared vector space.
// Every returned vector is unit-normalized and has the same dimension.
type PageEmbedder interface {
	// EmbedImages returns one vector per image path, in order.
	EmbedImages(ctx context.Context, paths []string) ([][]float32, error)

	// EmbedText returns the vector of a query.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// ModelName identifies the embedding model.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
