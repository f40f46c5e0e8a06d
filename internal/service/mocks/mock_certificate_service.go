package mocks

import (
	"context"

	"certapi/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockCertificateService struct {
	mock.Mock
}

func (m *MockCertificateService) Generate(ctx context.Context, req model.CertificateRequest) (*model.CertificateMeta, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CertificateMeta), args.Error(1)
}

func (m *MockCertificateService) GetMeta(ctx context.Context, filenameBase string) (*model.CertificateMeta, error) {
	args := m.Called(ctx, filenameBase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CertificateMeta), args.Error(1)
}
