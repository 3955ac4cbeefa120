package directory

import (
	"context"
	"time"

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

// MockAppointmentStore is a mock implementation of interfaces.AppointmentStore
type MockAppointmentStore struct {
	mock.Mock
}

func (m *MockAppointmentStore) Create(ctx context.Context, apt *types.Appointment) error {
	args := m.Called(ctx, apt)
	return args.Error(0)
}

func (m *MockAppointmentStore) GetByID(ctx context.Context, id string) (*types.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Appointment), args.Error(1)
}

func (m *MockAppointmentStore) FindByDoctorAndRange(ctx context.Context, doctorID string, from, to time.Time, patientName string) ([]*types.Appointment, error) {
	args := m.Called(ctx, doctorID, from, to, patientName)
	return args.Get(0).([]*types.Appointment), args.Error(1)
}

func (m *MockAppointmentStore) FindViewsByPatient(ctx context.Context, filters *types.AppointmentFilters) ([]*types.AppointmentView, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*types.AppointmentView), args.Error(1)
}

func (m *MockAppointmentStore) UpdateTime(ctx context.Context, id string, t time.Time) error {
	args := m.Called(ctx, id, t)
	return args.Error(0)
}

func (m *MockAppointmentStore) UpdateStatus(ctx context.Context, id string, status types.AppointmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAppointmentStore) DeleteByDoctor(ctx context.Context, doctorID string) error {
	args := m.Called(ctx, doctorID)
	return args.Error(0)
}

// MockTokenAuthority is a mock implementation of interfaces.TokenAuthority
type MockTokenAuthority struct {
	mock.Mock
}

func (m *MockTokenAuthority) Issue(subject string, role types.Role) (*types.AuthToken, error) {
	args := m.Called(subject, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AuthToken), args.Error(1)
}

func (m *MockTokenAuthority) Validate(ctx context.Context, tokenString string, expected types.Role) (string, error) {
	args := m.Called(ctx, tokenString, expected)
	return args.String(0), args.Error(1)
}
