package mocks

import (
	"context"
	"errors"

	"github.com/Deokive/BE-sub001/internal/domain/contract"
	"github.com/Deokive/BE-sub001/internal/domain/entity"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// MockLikeUsecase is a mock implementation of the ILikeUsecase interface
type MockLikeUsecase struct {
	// Control mock behavior
	ShouldFailToggleLike   bool
	ShouldFailIsLiked      bool
	ShouldFailGetLikeCount bool

	// Return values
	MockLiked bool
	MockCount int64

	// Recorded arguments from the last call
	LastDomain   entity.ContentDomain
	LastEntityID string
	LastActorID  string
}

// Ensure MockLikeUsecase implements the correct interface for handler.NewInteractionHandler
var _ usecasecontract.ILikeUsecase = (*MockLikeUsecase)(nil)

func NewMockLikeUsecase() *MockLikeUsecase {
	return &MockLikeUsecase{MockLiked: true, MockCount: 42}
}

func (m *MockLikeUsecase) ToggleLike(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (bool, error) {
	m.LastDomain, m.LastEntityID, m.LastActorID = domain, entityID, actorID
	if m.ShouldFailToggleLike {
		return false, errors.New("toggle like failed")
	}
	return m.MockLiked, nil
}

func (m *MockLikeUsecase) IsLiked(ctx context.Context, domain entity.ContentDomain, entityID, actorID string) (bool, error) {
	m.LastDomain, m.LastEntityID, m.LastActorID = domain, entityID, actorID
	if m.ShouldFailIsLiked {
		return false, errors.New("is liked failed")
	}
	return m.MockLiked, nil
}

func (m *MockLikeUsecase) GetLikeCount(ctx context.Context, domain entity.ContentDomain, entityID string) (int64, error) {
	m.LastDomain, m.LastEntityID = domain, entityID
	if m.ShouldFailGetLikeCount {
		return 0, errors.New("get like count failed")
	}
	return m.MockCount, nil
}

// MockStatsUsecase is a mock implementation of the IStatsUsecase interface
type MockStatsUsecase struct {
	ShouldFailGetStats bool
	StatsNotFound      bool

	MockStats entity.EntityStats

	LastDomain   entity.ContentDomain
	LastEntityID string
}

var _ usecasecontract.IStatsUsecase = (*MockStatsUsecase)(nil)

func NewMockStatsUsecase() *MockStatsUsecase {
	return &MockStatsUsecase{
		MockStats: entity.EntityStats{
			ID:        "mock-entity-id",
			Domain:    entity.DomainPost,
			ViewCount: 100,
			LikeCount: 10,
			HotScore:  42.5,
		},
	}
}

func (m *MockStatsUsecase) GetStats(ctx context.Context, domain entity.ContentDomain, entityID string) (*entity.EntityStats, error) {
	m.LastDomain, m.LastEntityID = domain, entityID
	if m.ShouldFailGetStats {
		return nil, errors.New("get stats failed")
	}
	if m.StatsNotFound {
		return nil, contract.ErrStatsNotFound
	}
	stats := m.MockStats
	return &stats, nil
}

// MockViewUsecase is a mock implementation of the IViewUsecase interface
type MockViewUsecase struct {
	ShouldFailRegisterView bool

	MockCounted bool

	LastDomain   entity.ContentDomain
	LastEntityID string
	LastViewer   string
}

var _ usecasecontract.IViewUsecase = (*MockViewUsecase)(nil)

func NewMockViewUsecase() *MockViewUsecase {
	return &MockViewUsecase{MockCounted: true}
}

func (m *MockViewUsecase) RegisterView(ctx context.Context, domain entity.ContentDomain, entityID, viewerIdentity string) (bool, error) {
	m.LastDomain, m.LastEntityID, m.LastViewer = domain, entityID, viewerIdentity
	if m.ShouldFailRegisterView {
		return false, errors.New("register view failed")
	}
	return m.MockCounted, nil
}
