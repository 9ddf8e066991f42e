package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/fedintake/internal/mastodon"
)

// MockOriginClient is a mock implementation of intake.OriginClient.
type MockOriginClient struct {
	mock.Mock
}

//nolint:revive
func (m *MockOriginClient) GetStatus(ctx context.Context, id string) (*mastodon.Status, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mastodon.Status), args.Error(1)
}

//nolint:revive
func (m *MockOriginClient) GetContext(ctx context.Context, id string) (*mastodon.Context, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mastodon.Context), args.Error(1)
}

//nolint:revive
func (m *MockOriginClient) PostStatus(ctx context.Context, status mastodon.NewStatus, idempotencyKey string) (*mastodon.Status, error) {
	args := m.Called(ctx, status, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mastodon.Status), args.Error(1)
}

//nolint:revive
func (m *MockOriginClient) ListNotifications(ctx context.Context, excludeTypes ...string) ([]mastodon.Notification, error) {
	args := m.Called(ctx, excludeTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mastodon.Notification), args.Error(1)
}
