package mocks

import (
	"context"

	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	"github.com/stretchr/testify/mock"
)

// MockRemoteClient contract.RemoteClient 의 Mock 구현체입니다.
type MockRemoteClient struct {
	mock.Mock
}

func (m *MockRemoteClient) UploadImage(ctx context.Context, image contract.ImageSource) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteClient) SendBroadcast(ctx context.Context, text string, imageURLs []string, linkTitle, linkURL string) (*contract.Broadcast, error) {
	args := m.Called(ctx, text, imageURLs, linkTitle, linkURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Broadcast), args.Error(1)
}
