package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// OwnershipChecker is the slice of the authorization gate the ledger
// needs: it guards reschedule and cancel against a non-owning subject.
type OwnershipChecker interface {
	AuthorizeOwnership(subject, ownerID string) error
}

// Ledger is the transactional front for appointment mutations. Every
// mutating operation authorizes, validates, then writes; the store's
// unique constraint on live (doctor, time) pairs closes the window the
// validate-then-write sequence leaves open.
//
// Status transitions: scheduled -> cancelled and scheduled -> prescribed;
// both targets are terminal.
type Ledger struct {
	validator    *Validator
	gate         OwnershipChecker
	directory    interfaces.DirectoryStore
	appointments interfaces.AppointmentStore
	logger       *logger.Logger

	// revalidate re-runs slot validation before a reschedule write. The
	// legacy system skipped this; the flag keeps that behavior reachable.
	revalidate bool
}

// NewLedger creates a new booking ledger
func NewLedger(validator *Validator, gate OwnershipChecker, directory interfaces.DirectoryStore,
	appointments interfaces.AppointmentStore, revalidateOnReschedule bool, log *logger.Logger) *Ledger {
	return &Ledger{
		validator:    validator,
		gate:         gate,
		directory:    directory,
		appointments: appointments,
		revalidate:   revalidateOnReschedule,
		logger:       log,
	}
}

// Book validates and persists a new appointment for the acting patient.
// The patient owns the appointment by construction; their record is
// resolved from the authenticated subject, never taken from the request.
// A store conflict (a concurrently filled slot) surfaces as a
// persistence error and is never retried here.
func (l *Ledger) Book(ctx context.Context, req *types.BookingRequest, subject string) (*types.Appointment, error) {
	patient, err := l.directory.GetPatientByEmail(ctx, subject)
	if err != nil {
		return nil, types.NewAuthenticationError(types.ErrCodeUnknownSubject, "account not found for token subject")
	}

	now := time.Now()
	apt := &types.Appointment{
		ID:              uuid.New().String(),
		DoctorID:        req.DoctorID,
		PatientID:       patient.ID,
		AppointmentTime: req.AppointmentTime,
		Status:          types.StatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := l.validator.Validate(ctx, apt); err != nil {
		return nil, err
	}

	if err := l.appointments.Create(ctx, apt); err != nil {
		return nil, err
	}

	l.logger.WithSubject(subject).Infof("Booked appointment %s with doctor %s at %s",
		apt.ID, apt.DoctorID, apt.AppointmentTime.Format(time.RFC3339))
	return apt, nil
}

// Reschedule moves an existing appointment owned by the acting patient
// to a new time. The new slot is re-validated unless the ledger was
// configured for legacy parity.
func (l *Ledger) Reschedule(ctx context.Context, req *types.BookingRequest, subject string) error {
	existing, owner, err := l.ownedAppointment(ctx, req.ID, subject)
	if err != nil {
		return err
	}

	if existing.Status != types.StatusScheduled {
		return types.NewConflictError(types.ErrCodeAppointmentNotActive, "appointment is no longer active")
	}

	if l.revalidate {
		candidate := &types.Appointment{
			ID:              existing.ID,
			DoctorID:        existing.DoctorID,
			AppointmentTime: req.AppointmentTime,
		}
		if err := l.validator.Validate(ctx, candidate); err != nil {
			return err
		}
	}

	if err := l.appointments.UpdateTime(ctx, existing.ID, req.AppointmentTime); err != nil {
		return err
	}

	l.logger.WithSubject(owner.Email).Infof("Rescheduled appointment %s to %s",
		existing.ID, req.AppointmentTime.Format(time.RFC3339))
	return nil
}

// Cancel transitions an appointment owned by the acting patient to the
// terminal cancelled status, immediately freeing its slot for subsequent
// availability queries.
func (l *Ledger) Cancel(ctx context.Context, id, subject string) error {
	existing, owner, err := l.ownedAppointment(ctx, id, subject)
	if err != nil {
		return err
	}

	switch existing.Status {
	case types.StatusCancelled:
		return types.NewNotFoundError(types.ErrCodeAppointmentNotFound, "appointment not found")
	case types.StatusPrescribed:
		return types.NewConflictError(types.ErrCodeAppointmentNotActive, "appointment is no longer active")
	}

	if err := l.appointments.UpdateStatus(ctx, id, types.StatusCancelled); err != nil {
		return err
	}

	l.logger.WithSubject(owner.Email).Infof("Cancelled appointment %s", id)
	return nil
}

// MarkPrescribed transitions a scheduled appointment to the terminal
// prescribed status. The acting doctor must be the appointment's doctor.
func (l *Ledger) MarkPrescribed(ctx context.Context, id, doctorSubject string) error {
	existing, err := l.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}

	doctor, err := l.directory.GetDoctorByEmail(ctx, doctorSubject)
	if err != nil {
		return types.NewAuthenticationError(types.ErrCodeUnknownSubject, "account not found for token subject")
	}

	if err := l.gate.AuthorizeOwnership(doctor.ID, existing.DoctorID); err != nil {
		return err
	}

	if existing.Status != types.StatusScheduled {
		return types.NewConflictError(types.ErrCodeAppointmentNotActive, "appointment is no longer active")
	}

	return l.appointments.UpdateStatus(ctx, id, types.StatusPrescribed)
}

// ownedAppointment loads an appointment and verifies the acting subject
// owns it.
func (l *Ledger) ownedAppointment(ctx context.Context, id, subject string) (*types.Appointment, *types.Patient, error) {
	existing, err := l.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	patient, err := l.directory.GetPatientByEmail(ctx, subject)
	if err != nil {
		return nil, nil, types.NewAuthenticationError(types.ErrCodeUnknownSubject, "account not found for token subject")
	}

	if err := l.gate.AuthorizeOwnership(patient.ID, existing.PatientID); err != nil {
		return nil, nil, err
	}

	return existing, patient, nil
}
