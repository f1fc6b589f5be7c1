package gateway

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
	calls    int
	data     []byte
	filename string
}

func (m *mockIngestService) Limits() domain.Limits {
	return domain.Limits{}
}

func (m *mockIngestService) Ingest(_ context.Context, data []byte, filename string) (*domain.IngestResult, error) {
	m.calls++
	m.data = data
	m.filename = filename
	return m.result, m.err
}

// mockStatsService is a mock implementation of driving.StatsService.
type mockStatsService struct {
	stats *domain.Stats
	err   error
	pages int
}

func (m *mockStatsService) Stats(_ context.Context) (*domain.Stats, error) {
	return m.stats, m.err
}

func (m *mockStatsService) Health(_ context.Context) domain.Health {
	return domain.Health{OK: true, IndexedPages: m.pages}
}

// mockMaintenanceService is a mock implementation of driving.MaintenanceService.
type mockMaintenanceService struct {
	cleared  bool
	reindex  *domain.ReindexResult
	clearErr error
	err      error
}

func (m *mockMaintenanceService) ClearIndex(_ context.Context) error {
	m.cleared = true
	return m.clearErr
}

func (m *mockMaintenanceService) ReindexAll(_ context.Context) (*domain.ReindexResult, error) {
	return m.reindex, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	pagePath string
	err      error
	gotDoc   string
	gotPage  int
}

func (m *mockDocumentService) List(_ context.Context) ([]*domain.Manifest, error) {
	return nil, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Manifest, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) PageImage(_ context.Context, id string, page int) (string, error) {
	m.gotDoc = id
	m.gotPage = page
	if m.err != nil {
		return "", m.err
	}
	return m.pagePath, nil
}
