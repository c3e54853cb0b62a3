package listing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/domain"
)

var _ listingRepo = &listingRepoMock{}

type listingRepoMock struct {
	CreateFunc  func(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListFunc    func(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error)
	CountFunc   func(ctx context.Context, f domain.ListingFilter) (int, error)

	calls struct {
		Create []struct {
			Ctx context.Context
			L   *domain.Listing
		}
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		List []struct {
			Ctx context.Context
			F   domain.ListingFilter
		}
		Count []struct {
			Ctx context.Context
			F   domain.ListingFilter
		}
	}
	lockCreate  sync.RWMutex
	lockGetByID sync.RWMutex
	lockList    sync.RWMutex
	lockCount   sync.RWMutex
}

func (mock *listingRepoMock) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	if mock.CreateFunc == nil {
		panic("listingRepoMock.CreateFunc: method is nil but listingRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		L   *domain.Listing
	}{Ctx: ctx, L: l}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, l)
}

func (mock *listingRepoMock) CreateCalls() []struct {
	Ctx context.Context
	L   *domain.Listing
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *listingRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	if mock.GetByIDFunc == nil {
		panic("listingRepoMock.GetByIDFunc: method is nil but listingRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *listingRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *listingRepoMock) List(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	if mock.ListFunc == nil {
		panic("listingRepoMock.ListFunc: method is nil but listingRepo.List was just called")
	}
	callInfo := struct {
		Ctx context.Context
		F   domain.ListingFilter
	}{Ctx: ctx, F: f}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, f)
}

func (mock *listingRepoMock) ListCalls() []struct {
	Ctx context.Context
	F   domain.ListingFilter
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *listingRepoMock) Count(ctx context.Context, f domain.ListingFilter) (int, error) {
	if mock.CountFunc == nil {
		panic("listingRepoMock.CountFunc: method is nil but listingRepo.Count was just called")
	}
	callInfo := struct {
		Ctx context.Context
		F   domain.ListingFilter
	}{Ctx: ctx, F: f}
	mock.lockCount.Lock()
	mock.calls.Count = append(mock.calls.Count, callInfo)
	mock.lockCount.Unlock()
	return mock.CountFunc(ctx, f)
}

func (mock *listingRepoMock) CountCalls() []struct {
	Ctx context.Context
	F   domain.ListingFilter
} {
	mock.lockCount.RLock()
	calls := mock.calls.Count
	mock.lockCount.RUnlock()
	return calls
}
