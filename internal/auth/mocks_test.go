package auth

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clinicore/clinic-backend/pkg/types"
)

// MockDirectoryStore is a mock implementation of interfaces.DirectoryStore
type MockDirectoryStore struct {
	mock.Mock
}

func (m *MockDirectoryStore) GetAdminByUsername(ctx context.Context, username string) (*types.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Admin), args.Error(1)
}

func (m *MockDirectoryStore) GetDoctorByID(ctx context.Context, id string) (*types.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Doctor), args.Error(1)
}

func (m *MockDirectoryStore) GetDoctorByEmail(ctx context.Context, email string) (*types.Doctor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Doctor), args.Error(1)
}

func (m *MockDirectoryStore) ListDoctors(ctx context.Context) ([]*types.Doctor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*types.Doctor), args.Error(1)
}

func (m *MockDirectoryStore) SearchDoctors(ctx context.Context, name, specialty string) ([]*types.Doctor, error) {
	args := m.Called(ctx, name, specialty)
	return args.Get(0).([]*types.Doctor), args.Error(1)
}

func (m *MockDirectoryStore) CreateDoctor(ctx context.Context, doctor *types.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *MockDirectoryStore) UpdateDoctor(ctx context.Context, doctor *types.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *MockDirectoryStore) DeleteDoctor(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDirectoryStore) GetPatientByID(ctx context.Context, id string) (*types.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Patient), args.Error(1)
}

func (m *MockDirectoryStore) GetPatientByEmail(ctx context.Context, email string) (*types.Patient, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Patient), args.Error(1)
}

func (m *MockDirectoryStore) CreatePatient(ctx context.Context, patient *types.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}
