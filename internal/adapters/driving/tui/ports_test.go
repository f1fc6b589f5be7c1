package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	AnswerFunc func(ctx context.Context, question string, topK int) (*domain.Answer, error)
}

func (m *MockAnswerService) Answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question, topK)
	}
	return &domain.Answer{Text: domain.NoDocumentsAnswer}, nil
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	Documents []*domain.Manifest
	Err       error
}

func (m *MockDocumentService) List(_ context.Context) ([]*domain.Manifest, error) {
	return m.Documents, m.Err
}

func (m *MockDocumentService) Get(_ context.Context, id string) (*domain.Manifest, error) {
	for _, d := range m.Documents {
		if d.DocID == id {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) PageImage(_ context.Context, _ string, _ int) (string, error) {
	return "", domain.ErrNotFound
}

// MockStatsService implements driving.StatsService for testing.
type MockStatsService struct {
	Snapshot *domain.Stats
	Err      error
}

func (m *MockStatsService) Stats(_ context.Context) (*domain.Stats, error) {
	return m.Snapshot, m.Err
}

func (m *MockStatsService) Health(_ context.Context) domain.Health {
	if m.Snapshot == nil {
		return domain.Health{OK: true}
	}
	return domain.Health{OK: true, IndexedPages: m.Snapshot.Pages}
}

func TestNewPorts(t *testing.T) {
	answer := &MockAnswerService{}
	document := &MockDocumentService{}
	stats := &MockStatsService{}

	ports := NewPorts(answer, document, stats)

	assert.Equal(t, answer, ports.Answer)
	assert.Equal(t, document, ports.Document)
	assert.Equal(t, stats, ports.Stats)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"all ports", NewPorts(&MockAnswerService{}, &MockDocumentService{}, &MockStatsService{}), nil},
		{"answer only", &Ports{Answer: &MockAnswerService{}}, nil},
		{"missing answer", &Ports{Document: &MockDocumentService{}, Stats: &MockStatsService{}}, ErrMissingAnswerService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
