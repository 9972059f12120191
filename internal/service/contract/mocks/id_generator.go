package mocks

import (
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

// MockIDGenerator 예측 가능한 ID가 필요한 테스트에서 사용합니다.
type MockIDGenerator struct {
	mock.Mock
}

func (m *MockIDGenerator) Next() contract.BroadcastID {
	return m.Called().Get(0).(contract.BroadcastID)
}
