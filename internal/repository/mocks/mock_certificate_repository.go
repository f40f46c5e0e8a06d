package mocks

import (
	"context"

	"certapi/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockCertificateRepository struct {
	mock.Mock
}

func (m *MockCertificateRepository) Create(ctx context.Context, rec *model.CertificateRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockCertificateRepository) FindByFilenameBase(ctx context.Context, filenameBase string) (*model.CertificateMeta, error) {
	args := m.Called(ctx, filenameBase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CertificateMeta), args.Error(1)
}
