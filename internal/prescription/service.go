package prescription

import (
	"context"
	"time"

	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// AppointmentMarker is the slice of the booking ledger the prescription
// flow needs: the doctor-side transition to the prescribed status.
type AppointmentMarker interface {
	MarkPrescribed(ctx context.Context, id, doctorSubject string) error
}

// Service coordinates prescription writes with the appointment ledger.
// Issuing a prescription transitions the appointment first, so a second
// attempt fails before it reaches the document store.
type Service struct {
	store  interfaces.PrescriptionStore
	ledger AppointmentMarker
	logger *logger.Logger
}

// NewService creates a new prescription service
func NewService(store interfaces.PrescriptionStore, ledger AppointmentMarker, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		logger: log,
	}
}

// Issue records a prescription written by the acting doctor against one
// of their appointments. The appointment must still be scheduled.
func (s *Service) Issue(ctx context.Context, p *types.Prescription, doctorSubject string) error {
	if p.AppointmentID == "" || p.Medication == "" {
		return types.NewValidationError(types.ErrCodeInvalidInput, "appointment id and medication are required")
	}

	if err := s.ledger.MarkPrescribed(ctx, p.AppointmentID, doctorSubject); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	if err := s.store.Save(ctx, p); err != nil {
		return err
	}

	s.logger.WithSubject(doctorSubject).Infof("Issued prescription for appointment %s", p.AppointmentID)
	return nil
}

// Get retrieves the prescription written for an appointment
func (s *Service) Get(ctx context.Context, appointmentID string) (*types.Prescription, error) {
	return s.store.GetByAppointment(ctx, appointmentID)
}
