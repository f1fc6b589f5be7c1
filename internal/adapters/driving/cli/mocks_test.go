package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/pagelens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/services"
)

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	seen     map[string]bool
	names    []string
	err      error
	maxBytes int64
}

func (m *mockIngestService) Limits() domain.Limits {
	return domain.Limits{MaxUploadBytes: m.maxBytes}
}

func (m *mockIngestService) Ingest(_ context.Context, data []byte, filename string) (*domain.IngestResult, error) {
	m.names = append(m.names, filename)
	if m.err != nil {
		return nil, m.err
	}
	id := domain.IdentityOf(data).ID
	isNew := !m.seen[id]
	m.seen[id] = true
	return &domain.IngestResult{DocID: id, NumPages: 2, IsNew: isNew}, nil
}

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	question string
	topK     int
	err      error
}

func (m *mockAnswerService) Answer(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.question = question
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{
		Text: "The warranty lasts two years.",
		Evidence: []domain.Evidence{
			{DocID: "0123456789abcdef", Page: 4, ImagePath: "/data/docs/0123456789abcdef/pages/page_0004.png", Score: 0.312345},
		},
	}, nil
}

// mockStatsService implements driving.StatsService for testing.
type mockStatsService struct{}

func (m *mockStatsService) Stats(_ context.Context) (*domain.Stats, error) {
	return &domain.Stats{
		Documents:    2,
		Pages:        1234,
		Dimensions:   512,
		Embedder:     "clip:openai/clip-vit-base-patch32",
		Answerer:     "ollama:llava",
		IndexBackend: "flat",
		IndexType:    "inner_product",
		Device:       "remote",
		CPUs:         4,
		MemoryBytes:  32 << 20,
		HeapBytes:    8 << 20,
		Limits:       domain.DefaultLimits(),
	}, nil
}

func (m *mockStatsService) Health(_ context.Context) domain.Health {
	return domain.Health{OK: true, IndexedPages: 1234}
}

// mockMaintenanceService implements driving.MaintenanceService for testing.
type mockMaintenanceService struct {
	cleared bool
	err     error
}

func (m *mockMaintenanceService) ClearIndex(_ context.Context) error {
	m.cleared = true
	return m.err
}

func (m *mockMaintenanceService) ReindexAll(_ context.Context) (*domain.ReindexResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ReindexResult{
		Documents: 2,
		Pages:     12,
		Skipped:   []string{"ffffffffffffffff"},
		Elapsed:   1500 * time.Millisecond,
	}, nil
}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs []*domain.Manifest
}

func (m *mockDocumentService) List(_ context.Context) ([]*domain.Manifest, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Manifest, error) {
	for _, d := range m.docs {
		if d.DocID == id {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) PageImage(_ context.Context, id string, page int) (string, error) {
	for _, d := range m.docs {
		if d.DocID == id && page >= 1 && page <= d.NumPages {
			return "/data/docs/" + id + "/pages/" + domain.PageFileName(page), nil
		}
	}
	return "", domain.ErrNotFound
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest      *mockIngestService
	answer      *mockAnswerService
	maintenance *mockMaintenanceService
	document    *mockDocumentService
}

var mocks *testServices

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() func() {
	indexed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mocks = &testServices{
		ingest:      &mockIngestService{seen: map[string]bool{}},
		answer:      &mockAnswerService{},
		maintenance: &mockMaintenanceService{},
		document: &mockDocumentService{docs: []*domain.Manifest{
			{
				DocID:     "0123456789abcdef",
				Filename:  "warranty.pdf",
				NumPages:  6,
				Indexed:   true,
				CreatedAt: indexed,
				IndexedAt: &indexed,
				SHA256:    "0123456789abcdef" + "00",
				Embedder:  "clip:openai/clip-vit-base-patch32",
			},
			{
				DocID:     "fedcba9876543210",
				Filename:  "draft.pdf",
				NumPages:  3,
				CreatedAt: indexed,
			},
		}},
	}

	SetServices(&Services{
		Ingest:      mocks.ingest,
		Answer:      mocks.answer,
		Stats:       &mockStatsService{},
		Maintenance: mocks.maintenance,
		Document:    mocks.document,
		Settings:    newSettingsStub(),
	})

	return func() {
		SetServices(&Services{})
		mocks = nil
	}
}

// newSettingsStub returns a settings service over an in-memory store.
func newSettingsStub() *services.SettingsService {
	return services.NewSettingsService(memory.NewConfigStore(), "/tmp/pagelens-test")
}
