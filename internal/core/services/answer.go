package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers questions from retrieved page images.
type AnswerService struct {
	p *Pipeline
}

// NewAnswerService creates a new answer service.
func NewAnswerService(p *Pipeline) *AnswerService {
	return &AnswerService{p: p}
}

// Answer embeds the question, retrieves the topK most similar pages and
// returns the answering model's text with the supporting evidence.
func (s *AnswerService) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if topK < 1 || topK > domain.MaxTopK {
		return nil, fmt.Errorf("%w: top_k must be between 1 and %d", domain.ErrInvalidInput, domain.MaxTopK)
	}

	logger.Section("Answer")
	logger.Debug("Question: %q (top_k=%d)", question, topK)

	index := s.p.ports.Index
	if index.Count() == 0 {
		return noDocuments(), nil
	}

	query, err := s.p.ports.Embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := index.Search(ctx, query, topK)
	if errors.Is(err, domain.ErrEmptyIndex) {
		// Cleared between the count check and the search.
		return noDocuments(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	evidence := make([]domain.Evidence, len(hits))
	paths := make([]string, len(hits))
	for i, h := range hits {
		evidence[i] = domain.Evidence{
			DocID:     h.Ref.DocID,
			Page:      h.Ref.PageNum,
			ImagePath: h.Ref.ImagePath,
			Score:     h.Score,
		}
		paths[i] = h.Ref.ImagePath
		logger.Debug("  %d. %s p%d score=%.4f", i+1, h.Ref.DocID, h.Ref.PageNum, h.Score)
	}

	text, err := s.p.ports.Answerer.Answer(ctx, question, paths)
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}

	return &domain.Answer{Text: text, Evidence: evidence}, nil
}

func noDocuments() *domain.Answer {
	return &domain.Answer{Text: domain.NoDocumentsAnswer, Evidence: []domain.Evidence{}}
}
