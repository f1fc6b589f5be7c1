package driving

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// AnswerService answers questions from the indexed pages.
type AnswerService interface {
	// Answer retrieves the topK most similar pages and asks the answering model.
	// topK must be within 1..domain.MaxTopK.
	Answer(ctx context.Context, question string, topK int) (*domain.Answer, error)
}
