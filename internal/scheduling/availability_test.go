package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

func setupResolver() (*AvailabilityResolver, *MockDirectoryStore, *MockAppointmentStore) {
	directory := &MockDirectoryStore{}
	appointments := &MockAppointmentStore{}
	return NewAvailabilityResolver(directory, appointments, logger.New("debug")), directory, appointments
}

func testDoctor() *types.Doctor {
	return &types.Doctor{
		ID:             "doc-1",
		Name:           "Dr. Carter",
		Email:          "carter@clinic.test",
		Specialty:      "Cardiology",
		AvailableTimes: []string{"09:00", "10:00", "11:00"},
	}
}

func slotAt(day string, slot string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+slot)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFreeSlots_BookedSlotRemoved(t *testing.T) {
	resolver, directory, appointments := setupResolver()
	date := slotAt("2024-06-01", "00:00")

	directory.On("GetDoctorByID", mock.Anything, "doc-1").Return(testDoctor(), nil)
	appointments.On("FindByDoctorAndRange", mock.Anything, "doc-1", mock.Anything, mock.Anything, "").
		Return([]*types.Appointment{
			{ID: "apt-1", DoctorID: "doc-1", AppointmentTime: slotAt("2024-06-01", "10:00"), Status: types.StatusScheduled},
		}, nil)

	free, err := resolver.FreeSlots(context.Background(), "doc-1", date)

	assert.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, free)
}

func TestFreeSlots_RangeCoversWholeDay(t *testing.T) {
	resolver, directory, appointments := setupResolver()
	date := slotAt("2024-06-01", "14:30")

	directory.On("GetDoctorByID", mock.Anything, "doc-1").Return(testDoctor(), nil)

	var from, to time.Time
	appointments.On("FindByDoctorAndRange", mock.Anything, "doc-1", mock.Anything, mock.Anything, "").
		Run(func(args mock.Arguments) {
			from = args.Get(2).(time.Time)
			to = args.Get(3).(time.Time)
		}).
		Return([]*types.Appointment{}, nil)

	free, err := resolver.FreeSlots(context.Background(), "doc-1", date)

	assert.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, free)
	assert.Equal(t, "2024-06-01 00:00:00", from.Format("2006-01-02 15:04:05"))
	assert.Equal(t, "2024-06-01 23:59:59", to.Format("2006-01-02 15:04:05"))
}

func TestFreeSlots_UnknownDoctorYieldsEmpty(t *testing.T) {
	resolver, directory, _ := setupResolver()

	directory.On("GetDoctorByID", mock.Anything, "ghost").
		Return(nil, types.NewNotFoundError(types.ErrCodeDoctorNotFound, "doctor not found"))

	free, err := resolver.FreeSlots(context.Background(), "ghost", slotAt("2024-06-01", "00:00"))

	assert.NoError(t, err)
	assert.Empty(t, free)
	assert.NotNil(t, free)
}

func TestFreeSlots_CancelledAppointmentFreesSlot(t *testing.T) {
	resolver, directory, appointments := setupResolver()

	directory.On("GetDoctorByID", mock.Anything, "doc-1").Return(testDoctor(), nil)
	appointments.On("FindByDoctorAndRange", mock.Anything, "doc-1", mock.Anything, mock.Anything, "").
		Return([]*types.Appointment{
			{ID: "apt-1", DoctorID: "doc-1", AppointmentTime: slotAt("2024-06-01", "10:00"), Status: types.StatusCancelled},
		}, nil)

	free, err := resolver.FreeSlots(context.Background(), "doc-1", slotAt("2024-06-01", "00:00"))

	assert.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, free)
}

func TestFreeSlots_PrescribedAppointmentStillOccupies(t *testing.T) {
	resolver, directory, appointments := setupResolver()

	directory.On("GetDoctorByID", mock.Anything, "doc-1").Return(testDoctor(), nil)
	appointments.On("FindByDoctorAndRange", mock.Anything, "doc-1", mock.Anything, mock.Anything, "").
		Return([]*types.Appointment{
			{ID: "apt-1", DoctorID: "doc-1", AppointmentTime: slotAt("2024-06-01", "09:00"), Status: types.StatusPrescribed},
		}, nil)

	free, err := resolver.FreeSlots(context.Background(), "doc-1", slotAt("2024-06-01", "00:00"))

	assert.NoError(t, err)
	assert.Equal(t, []string{"10:00", "11:00"}, free)
}

func TestFreeSlots_CatalogOrderPreserved(t *testing.T) {
	resolver, directory, appointments := setupResolver()

	doctor := testDoctor()
	doctor.AvailableTimes = []string{"14:00", "09:00", "11:30"}
	directory.On("GetDoctorByID", mock.Anything, "doc-1").Return(doctor, nil)
	appointments.On("FindByDoctorAndRange", mock.Anything, "doc-1", mock.Anything, mock.Anything, "").
		Return([]*types.Appointment{}, nil)

	free, err := resolver.FreeSlots(context.Background(), "doc-1", slotAt("2024-06-01", "00:00"))

	assert.NoError(t, err)
	assert.Equal(t, []string{"14:00", "09:00", "11:30"}, free)
}

func TestDoctorAgenda_FiltersByPatientName(t *testing.T) {
	resolver, directory, appointments := setupResolver()

	directory.On("GetDoctorByEmail", mock.Anything, "carter@clinic.test").Return(testDoctor(), nil)
	want := []*types.Appointment{
		{ID: "apt-1", DoctorID: "doc-1", AppointmentTime: slotAt("2024-06-01", "09:00"), Status: types.StatusScheduled},
	}
	appointments.On("FindByDoctorAndRange", mock.Anything, "doc-1", mock.Anything, mock.Anything, "smith").
		Return(want, nil)

	agenda, err := resolver.DoctorAgenda(context.Background(), "carter@clinic.test", slotAt("2024-06-01", "00:00"), "smith")

	assert.NoError(t, err)
	assert.Equal(t, want, agenda)
}

func TestDoctorAgenda_UnknownSubject(t *testing.T) {
	resolver, directory, _ := setupResolver()

	directory.On("GetDoctorByEmail", mock.Anything, "ghost@clinic.test").
		Return(nil, types.NewNotFoundError(types.ErrCodeDoctorNotFound, "doctor not found"))

	_, err := resolver.DoctorAgenda(context.Background(), "ghost@clinic.test", slotAt("2024-06-01", "00:00"), "")

	assert.Error(t, err)
	assert.Equal(t, types.ErrCodeUnknownSubject, types.CodeOf(err))
}

func TestFreeSlots_StoreErrorPropagates(t *testing.T) {
	resolver, directory, appointments := setupResolver()

	directory.On("GetDoctorByID", mock.Anything, "doc-1").Return(testDoctor(), nil)
	appointments.On("FindByDoctorAndRange", mock.Anything, "doc-1", mock.Anything, mock.Anything, "").
		Return([]*types.Appointment(nil), types.NewTimeoutError(types.ErrCodeStoreUnavailable, "store timeout", context.DeadlineExceeded))

	free, err := resolver.FreeSlots(context.Background(), "doc-1", slotAt("2024-06-01", "00:00"))

	assert.Error(t, err)
	assert.Nil(t, free)
	assert.Equal(t, types.ErrCodeStoreUnavailable, types.CodeOf(err))
}
