package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mock.Mock
}

// ListEvents implements the Storage interface
func (m *MockStorage) ListEvents(ctx context.Context) ([]*MasterEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MasterEvent), args.Error(1)
}

// ListExceptions implements the Storage interface
func (m *MockStorage) ListExceptions(ctx context.Context) ([]*EventException, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*EventException), args.Error(1)
}

// GetEvent implements the Storage interface
func (m *MockStorage) GetEvent(ctx context.Context, id string) (*MasterEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MasterEvent), args.Error(1)
}

// CreateEvent implements the Storage interface
func (m *MockStorage) CreateEvent(ctx context.Context, event *MasterEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// UpdateEvent implements the Storage interface
func (m *MockStorage) UpdateEvent(ctx context.Context, event *MasterEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// DeleteEvent implements the Storage interface
func (m *MockStorage) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// PutException implements the Storage interface
func (m *MockStorage) PutException(ctx context.Context, exc *EventException) error {
	args := m.Called(ctx, exc)
	return args.Error(0)
}

// FindException implements the Storage interface
func (m *MockStorage) FindException(ctx context.Context, parentID, dayKey string) (*EventException, error) {
	args := m.Called(ctx, parentID, dayKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EventException), args.Error(1)
}
