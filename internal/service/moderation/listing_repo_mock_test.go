package moderation

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gharonda/gharonda-backend/internal/domain"
)

var _ listingRepo = &listingRepoMock{}

type listingRepoMock struct {
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status domain.ListingStatus) (*domain.Listing, error)

	calls struct {
		UpdateStatus []struct {
			Ctx    context.Context
			ID     uuid.UUID
			Status domain.ListingStatus
		}
	}
	lockUpdateStatus sync.RWMutex
}

func (mock *listingRepoMock) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) (*domain.Listing, error) {
	if mock.UpdateStatusFunc == nil {
		panic("listingRepoMock.UpdateStatusFunc: method is nil but listingRepo.UpdateStatus was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     uuid.UUID
		Status domain.ListingStatus
	}{Ctx: ctx, ID: id, Status: status}
	mock.lockUpdateStatus.Lock()
	mock.calls.UpdateStatus = append(mock.calls.UpdateStatus, callInfo)
	mock.lockUpdateStatus.Unlock()
	return mock.UpdateStatusFunc(ctx, id, status)
}

func (mock *listingRepoMock) UpdateStatusCalls() []struct {
	Ctx    context.Context
	ID     uuid.UUID
	Status domain.ListingStatus
} {
	mock.lockUpdateStatus.RLock()
	calls := mock.calls.UpdateStatus
	mock.lockUpdateStatus.RUnlock()
	return calls
}
