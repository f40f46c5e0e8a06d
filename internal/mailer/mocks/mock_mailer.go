package mocks

import (
	"context"

	"certapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Ready() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMailer) Send(ctx context.Context, msg model.Message) (*model.SendResult, error) {
	args := m.Called(ctx, msg)
	var res *model.SendResult
	if v := args.Get(0); v != nil {
		res = v.(*model.SendResult)
	}
	return res, args.Error(1)
}
