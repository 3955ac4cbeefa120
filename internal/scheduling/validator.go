package scheduling

import (
	"context"

	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// Validator checks a proposed appointment against the doctor's computed
// availability before anything is persisted. It is read-only and safe to
// call repeatedly; the final double-booking guarantee lives in the
// store's unique constraint, not here.
type Validator struct {
	directory    interfaces.DirectoryStore
	availability *AvailabilityResolver
	logger       *logger.Logger
}

// NewValidator creates a new appointment validator
func NewValidator(directory interfaces.DirectoryStore, availability *AvailabilityResolver, log *logger.Logger) *Validator {
	return &Validator{
		directory:    directory,
		availability: availability,
		logger:       log,
	}
}

// Validate returns nil when the appointment's doctor exists and its
// time-of-day matches a currently free catalog slot. Comparison is exact
// string equality on the "15:04" rendering; slots have no duration. The
// appointment's own current booking never blocks it, so a reschedule
// onto its present slot passes.
func (v *Validator) Validate(ctx context.Context, apt *types.Appointment) error {
	if _, err := v.directory.GetDoctorByID(ctx, apt.DoctorID); err != nil {
		if ce, ok := err.(*types.ClinicError); ok && ce.Type == types.ErrorTypeNotFound {
			return types.NewNotFoundError(types.ErrCodeDoctorNotFound, "doctor not found")
		}
		return err
	}

	free, err := v.availability.freeSlots(ctx, apt.DoctorID, apt.AppointmentTime, apt.ID)
	if err != nil {
		return err
	}

	requested := apt.SlotTime()
	for _, slot := range free {
		if slot == requested {
			return nil
		}
	}

	return types.NewValidationError(types.ErrCodeSlotUnavailable, "appointment time not available")
}
