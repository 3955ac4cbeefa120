package interfaces

import (
	"context"
	"time"

	"github.com/clinicore/clinic-backend/pkg/types"
)

// DirectoryStore resolves role-scoped account records. It is the
// accessor contract over the relational store for admins, doctors and
// patients; the availability and authorization components consult it,
// never the database directly.
type DirectoryStore interface {
	// Admins
	GetAdminByUsername(ctx context.Context, username string) (*types.Admin, error)

	// Doctors
	GetDoctorByID(ctx context.Context, id string) (*types.Doctor, error)
	GetDoctorByEmail(ctx context.Context, email string) (*types.Doctor, error)
	ListDoctors(ctx context.Context) ([]*types.Doctor, error)
	SearchDoctors(ctx context.Context, name, specialty string) ([]*types.Doctor, error)
	CreateDoctor(ctx context.Context, doctor *types.Doctor) error
	UpdateDoctor(ctx context.Context, doctor *types.Doctor) error
	DeleteDoctor(ctx context.Context, id string) error

	// Patients
	GetPatientByID(ctx context.Context, id string) (*types.Patient, error)
	GetPatientByEmail(ctx context.Context, email string) (*types.Patient, error)
	CreatePatient(ctx context.Context, patient *types.Patient) error
}

// AppointmentStore is the persistence contract for appointment records.
// Implementations must guarantee uniqueness of (doctor_id,
// appointment_time) among non-cancelled rows so that a lost booking race
// surfaces as a persistence error instead of a double booking.
type AppointmentStore interface {
	Create(ctx context.Context, apt *types.Appointment) error
	GetByID(ctx context.Context, id string) (*types.Appointment, error)

	// FindByDoctorAndRange returns appointments for a doctor whose time
	// falls within [from, to]; patientName, when non-empty, filters by
	// case-insensitive substring match on the patient's name.
	FindByDoctorAndRange(ctx context.Context, doctorID string, from, to time.Time, patientName string) ([]*types.Appointment, error)

	FindViewsByPatient(ctx context.Context, filters *types.AppointmentFilters) ([]*types.AppointmentView, error)

	// UpdateTime moves an appointment to a new time; UpdateStatus
	// transitions its status. Both report not-found via error.
	UpdateTime(ctx context.Context, id string, t time.Time) error
	UpdateStatus(ctx context.Context, id string, status types.AppointmentStatus) error

	DeleteByDoctor(ctx context.Context, doctorID string) error
}

// PrescriptionStore is the persistence contract for the prescription
// document store. Save rejects a second document for the same
// appointment.
type PrescriptionStore interface {
	Save(ctx context.Context, p *types.Prescription) error
	GetByAppointment(ctx context.Context, appointmentID string) (*types.Prescription, error)
}

// TokenAuthority issues and validates stateless bearer tokens carrying
// (subject, role, expiry).
type TokenAuthority interface {
	Issue(subject string, role types.Role) (*types.AuthToken, error)
	Validate(ctx context.Context, tokenString string, expected types.Role) (string, error)
}
