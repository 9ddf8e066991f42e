package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/fedintake/internal/lemmy"
)

// MockBoardClient is a mock implementation of intake.BoardClient.
type MockBoardClient struct {
	mock.Mock
}

//nolint:revive
func (m *MockBoardClient) CreatePost(ctx context.Context, req lemmy.CreatePostRequest) (*lemmy.PostResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lemmy.PostResponse), args.Error(1)
}
