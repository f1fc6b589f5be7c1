package driven

import "context"

// Answerer produces an answer to a question from evidence page images.
type Answerer interface {
	// Answer returns the model text for the question, grounded on the images.
	Answer(ctx context.Context, question string, imagePaths []string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
