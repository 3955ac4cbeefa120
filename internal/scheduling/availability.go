package scheduling

import (
	"context"
	"time"

	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// AvailabilityResolver computes a doctor's free slots for a calendar day
// from their fixed slot catalog minus the slots already carrying a
// non-cancelled appointment. It never mutates anything.
type AvailabilityResolver struct {
	directory    interfaces.DirectoryStore
	appointments interfaces.AppointmentStore
	logger       *logger.Logger
}

// NewAvailabilityResolver creates a new availability resolver
func NewAvailabilityResolver(directory interfaces.DirectoryStore, appointments interfaces.AppointmentStore, log *logger.Logger) *AvailabilityResolver {
	return &AvailabilityResolver{
		directory:    directory,
		appointments: appointments,
		logger:       log,
	}
}

// FreeSlots returns the doctor's free time-of-day slots for the day
// containing date, in catalog order. An unknown doctor yields an empty
// sequence, not an error. Duplicate catalog literals are not deduplicated
// here; the catalog owns its own hygiene.
func (r *AvailabilityResolver) FreeSlots(ctx context.Context, doctorID string, date time.Time) ([]string, error) {
	return r.freeSlots(ctx, doctorID, date, "")
}

// freeSlots computes availability treating the appointment identified by
// excludeID as absent. A reschedule onto the appointment's own slot must
// not see that appointment as a blocker.
func (r *AvailabilityResolver) freeSlots(ctx context.Context, doctorID string, date time.Time, excludeID string) ([]string, error) {
	doctor, err := r.directory.GetDoctorByID(ctx, doctorID)
	if err != nil {
		if ce, ok := err.(*types.ClinicError); ok && ce.Type == types.ErrorTypeNotFound {
			return []string{}, nil
		}
		return nil, err
	}

	start, end := types.DayRange(date)
	booked, err := r.appointments.FindByDoctorAndRange(ctx, doctorID, start, end, "")
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(booked))
	for _, apt := range booked {
		if apt.Status == types.StatusCancelled {
			continue
		}
		if excludeID != "" && apt.ID == excludeID {
			continue
		}
		taken[apt.SlotTime()] = struct{}{}
	}

	free := make([]string, 0, len(doctor.AvailableTimes))
	for _, slot := range doctor.AvailableTimes {
		if _, occupied := taken[slot]; !occupied {
			free = append(free, slot)
		}
	}

	return free, nil
}

// DoctorAgenda returns the acting doctor's appointments for the day
// containing date, optionally filtered by a patient-name substring.
func (r *AvailabilityResolver) DoctorAgenda(ctx context.Context, doctorEmail string, date time.Time, patientName string) ([]*types.Appointment, error) {
	doctor, err := r.directory.GetDoctorByEmail(ctx, doctorEmail)
	if err != nil {
		return nil, types.NewAuthenticationError(types.ErrCodeUnknownSubject, "account not found for token subject")
	}

	start, end := types.DayRange(date)
	return r.appointments.FindByDoctorAndRange(ctx, doctor.ID, start, end, patientName)
}
