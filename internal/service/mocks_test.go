package service

import (
	"context"
	"sync"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockLLMProvider mocks llm.Provider
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	return "mock-provider"
}

func (m *MockLLMProvider) AvailableModels() []string {
	return []string{"mock-model"}
}

func (m *MockLLMProvider) DefaultModel() string {
	return "mock-model"
}

func (m *MockLLMProvider) IsConfigured() bool {
	return true
}

func (m *MockLLMProvider) Invoke(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// MockQuotaRepository mocks domain.QuotaRepository
type MockQuotaRepository struct {
	mock.Mock
}

func (m *MockQuotaRepository) GetQuota(ctx context.Context, ownerID string) (domain.Quota, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(domain.Quota), args.Error(1)
}

func (m *MockQuotaRepository) UpdateQuota(ctx context.Context, ownerID string, prev, next domain.Quota) error {
	args := m.Called(ctx, ownerID, prev, next)
	return args.Error(0)
}

// MockDeckStore mocks domain.DeckStore
type MockDeckStore struct {
	mock.Mock
}

func (m *MockDeckStore) Save(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error) {
	args := m.Called(ctx, deck, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deck), args.Error(1)
}

func (m *MockDeckStore) List(ctx context.Context, ownerID string) ([]domain.DeckSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeckSummary), args.Error(1)
}

func (m *MockDeckStore) Get(ctx context.Context, id, ownerID string) (*domain.Deck, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deck), args.Error(1)
}

func (m *MockDeckStore) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// MockGenerationLog mocks domain.GenerationLog
type MockGenerationLog struct {
	mock.Mock
}

func (m *MockGenerationLog) Record(ctx context.Context, g *domain.Generation) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

// MockUserRepository mocks domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockFolderRepository mocks domain.FolderRepository
type MockFolderRepository struct {
	mock.Mock
}

func (m *MockFolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *MockFolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Folder, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Folder), args.Error(1)
}

func (m *MockFolderRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// MockUploader mocks storage.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, name, data, contentType)
	return args.String(0), args.Error(1)
}

// memQuota is an in-memory compare-and-swap ledger for concurrency tests
type memQuota struct {
	mu     sync.Mutex
	ledger map[string]domain.Quota
}

func newMemQuota() *memQuota {
	return &memQuota{ledger: make(map[string]domain.Quota)}
}

func (m *memQuota) GetQuota(_ context.Context, ownerID string) (domain.Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger[ownerID], nil
}

func (m *memQuota) UpdateQuota(_ context.Context, ownerID string, prev, next domain.Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ledger[ownerID].Equal(prev) {
		return domain.ErrQuotaConflict
	}
	m.ledger[ownerID] = next
	return nil
}
