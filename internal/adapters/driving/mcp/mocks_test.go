package mcp

import (
	"context"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	gotTopK  int
	question string
}

func (m *mockAnswerService) Answer(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.question = question
	m.gotTopK = topK
	return m.answer, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result   *domain.IngestResult
	err      error
	data     []byte
	filename string
	maxBytes int64
}

func (m *mockIngestService) Limits() domain.Limits {
	return domain.Limits{MaxUploadBytes: m.maxBytes}
}

func (m *mockIngestService) Ingest(_ context.Context, data []byte, filename string) (*domain.IngestResult, error) {
	m.data = data
	m.filename = filename
	return m.result, m.err
}

// mockStatsService is a mock implementation of driving.StatsService.
type mockStatsService struct {
	stats *domain.Stats
	err   error
}

func (m *mockStatsService) Stats(_ context.Context) (*domain.Stats, error) {
	return m.stats, m.err
}

func (m *mockStatsService) Health(_ context.Context) domain.Health {
	return domain.Health{OK: true}
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	manifests []*domain.Manifest
	pagePath  string
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]*domain.Manifest, error) {
	return m.manifests, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Manifest, error) {
	for _, man := range m.manifests {
		if man.DocID == id {
			return man, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) PageImage(_ context.Context, _ string, _ int) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.pagePath, nil
}
