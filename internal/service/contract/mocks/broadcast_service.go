package mocks

import (
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

// MockBroadcastService contract.BroadcastService 의 Mock 구현체입니다.
type MockBroadcastService struct {
	mock.Mock
}

func (m *MockBroadcastService) Submit(req *contract.SubmitRequest) (contract.BroadcastID, error) {
	args := m.Called(req)
	return args.Get(0).(contract.BroadcastID), args.Error(1)
}

func (m *MockBroadcastService) Cancel(id contract.BroadcastID) error {
	return m.Called(id).Error(0)
}

func (m *MockBroadcastService) Retry(id contract.BroadcastID) error {
	return m.Called(id).Error(0)
}

func (m *MockBroadcastService) Get(id contract.BroadcastID) (contract.WriterSnapshot, error) {
	args := m.Called(id)
	return args.Get(0).(contract.WriterSnapshot), args.Error(1)
}

func (m *MockBroadcastService) List() []contract.WriterSnapshot {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]contract.WriterSnapshot)
}

func (m *MockBroadcastService) Health() error {
	return m.Called().Error(0)
}
