package directory

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-backend/internal/auth"
	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// Service owns account lifecycle and roster queries: logins for all
// three roles, patient self-signup, the admin-managed doctor roster and
// the patient-facing appointment listings.
type Service struct {
	directory    interfaces.DirectoryStore
	appointments interfaces.AppointmentStore
	authority    interfaces.TokenAuthority
	passwords    *auth.PasswordManager
	logger       *logger.Logger
}

// NewService creates a new directory service
func NewService(directory interfaces.DirectoryStore, appointments interfaces.AppointmentStore,
	authority interfaces.TokenAuthority, log *logger.Logger) *Service {
	return &Service{
		directory:    directory,
		appointments: appointments,
		authority:    authority,
		passwords:    auth.NewPasswordManager(),
		logger:       log,
	}
}

// LoginAdmin authenticates an admin by username and issues a token.
// Unknown accounts and wrong passwords are indistinguishable to the
// caller.
func (s *Service) LoginAdmin(ctx context.Context, creds *types.Credentials) (*types.AuthToken, error) {
	admin, err := s.directory.GetAdminByUsername(ctx, creds.Identifier)
	if err != nil {
		return nil, s.credentialFailure(creds.Identifier, err)
	}
	if err := s.verifyPassword(admin.PasswordHash, creds.Password, creds.Identifier); err != nil {
		return nil, err
	}
	return s.authority.Issue(admin.Username, types.RoleAdmin)
}

// LoginDoctor authenticates a doctor by email and issues a token
func (s *Service) LoginDoctor(ctx context.Context, creds *types.Credentials) (*types.AuthToken, error) {
	doctor, err := s.directory.GetDoctorByEmail(ctx, creds.Identifier)
	if err != nil {
		return nil, s.credentialFailure(creds.Identifier, err)
	}
	if err := s.verifyPassword(doctor.PasswordHash, creds.Password, creds.Identifier); err != nil {
		return nil, err
	}
	return s.authority.Issue(doctor.Email, types.RoleDoctor)
}

// LoginPatient authenticates a patient by email and issues a token
func (s *Service) LoginPatient(ctx context.Context, creds *types.Credentials) (*types.AuthToken, error) {
	patient, err := s.directory.GetPatientByEmail(ctx, creds.Identifier)
	if err != nil {
		return nil, s.credentialFailure(creds.Identifier, err)
	}
	if err := s.verifyPassword(patient.PasswordHash, creds.Password, creds.Identifier); err != nil {
		return nil, err
	}
	return s.authority.Issue(patient.Email, types.RolePatient)
}

func (s *Service) credentialFailure(identifier string, err error) error {
	if ce, ok := err.(*types.ClinicError); ok && ce.Type == types.ErrorTypeNotFound {
		s.logger.WithSubject(identifier).Warn("Login attempt for unknown account")
		return types.NewAuthenticationError(types.ErrCodeInvalidCredentials, "invalid credentials")
	}
	return err
}

func (s *Service) verifyPassword(hash, password, identifier string) error {
	ok, err := s.passwords.VerifyPassword(hash, password)
	if err != nil {
		return types.NewInternalError(types.ErrCodePersistError, "failed to verify credentials", err)
	}
	if !ok {
		s.logger.WithSubject(identifier).Warn("Login attempt with wrong password")
		return types.NewAuthenticationError(types.ErrCodeInvalidCredentials, "invalid credentials")
	}
	return nil
}

// SignupPatient creates a patient account from self-service signup.
// Email and phone must both be unused.
func (s *Service) SignupPatient(ctx context.Context, req *types.PatientSignupRequest) (*types.Patient, error) {
	if req.Name == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "name, email, phone and password are required")
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, types.NewInternalError(types.ErrCodePersistError, "failed to hash password", err)
	}

	patient := &types.Patient{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.directory.CreatePatient(ctx, patient); err != nil {
		return nil, err
	}

	s.logger.WithSubject(patient.Email).Info("Patient account created")
	return patient, nil
}

// RegisterDoctor creates a doctor roster entry with its slot catalog
func (s *Service) RegisterDoctor(ctx context.Context, req *types.DoctorRegistrationRequest) (*types.Doctor, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "name, email and password are required")
	}
	if err := validateCatalog(req.AvailableTimes); err != nil {
		return nil, err
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, types.NewInternalError(types.ErrCodePersistError, "failed to hash password", err)
	}

	now := time.Now()
	doctor := &types.Doctor{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Email:          req.Email,
		Specialty:      req.Specialty,
		PasswordHash:   hash,
		AvailableTimes: req.AvailableTimes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.directory.CreateDoctor(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

// UpdateDoctor replaces a doctor's profile and slot catalog
func (s *Service) UpdateDoctor(ctx context.Context, doctor *types.Doctor) error {
	if doctor.ID == "" {
		return types.NewValidationError(types.ErrCodeInvalidInput, "doctor id is required")
	}
	if err := validateCatalog(doctor.AvailableTimes); err != nil {
		return err
	}
	return s.directory.UpdateDoctor(ctx, doctor)
}

// RemoveDoctor deletes a doctor from the roster together with all of
// their appointments. Patients holding a booking with the doctor lose it.
func (s *Service) RemoveDoctor(ctx context.Context, id string) error {
	if _, err := s.directory.GetDoctorByID(ctx, id); err != nil {
		return err
	}
	if err := s.appointments.DeleteByDoctor(ctx, id); err != nil {
		return err
	}
	if err := s.directory.DeleteDoctor(ctx, id); err != nil {
		return err
	}
	s.logger.Infof("Removed doctor %s and their appointments", id)
	return nil
}

// ListDoctors returns the full public roster
func (s *Service) ListDoctors(ctx context.Context) ([]*types.Doctor, error) {
	return s.directory.ListDoctors(ctx)
}

// FilterDoctors returns doctors matching a name substring, a specialty
// and a half-day period. Each filter accepts "all" or empty to match
// everything; period is "AM" or "PM" and matches doctors with at least
// one catalog slot in that half of the day.
func (s *Service) FilterDoctors(ctx context.Context, name, specialty, period string) ([]*types.Doctor, error) {
	name = normalizeFilter(name)
	specialty = normalizeFilter(specialty)
	period = strings.ToUpper(normalizeFilter(period))

	if period != "" && period != "AM" && period != "PM" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "period must be AM or PM")
	}

	doctors, err := s.directory.SearchDoctors(ctx, name, specialty)
	if err != nil {
		return nil, err
	}
	if period == "" {
		return doctors, nil
	}

	filtered := make([]*types.Doctor, 0, len(doctors))
	for _, doctor := range doctors {
		if catalogHasPeriod(doctor.AvailableTimes, period) {
			filtered = append(filtered, doctor)
		}
	}
	return filtered, nil
}

// PatientDetails returns the account record for the acting patient
func (s *Service) PatientDetails(ctx context.Context, subject string) (*types.Patient, error) {
	return s.directory.GetPatientByEmail(ctx, subject)
}

// PatientAppointments returns the acting patient's appointment views,
// optionally restricted to past or future bookings and to a doctor-name
// substring. Condition accepts "past", "future" or "all"/empty.
func (s *Service) PatientAppointments(ctx context.Context, subject, condition, doctorName string) ([]*types.AppointmentView, error) {
	patient, err := s.directory.GetPatientByEmail(ctx, subject)
	if err != nil {
		return nil, err
	}

	filters := &types.AppointmentFilters{
		PatientID:  patient.ID,
		DoctorName: normalizeFilter(doctorName),
	}

	switch strings.ToLower(normalizeFilter(condition)) {
	case "":
	case "past":
		filters.ToTime = time.Now()
	case "future":
		filters.FromTime = time.Now()
	default:
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "condition must be past, future or all")
	}

	return s.appointments.FindViewsByPatient(ctx, filters)
}

// normalizeFilter treats the "all" path literal as an absent filter
func normalizeFilter(v string) string {
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

// validateCatalog rejects slot literals that do not parse as "15:04"
func validateCatalog(times []string) error {
	for _, slot := range times {
		if _, err := time.Parse(types.SlotTimeLayout, slot); err != nil {
			return types.NewValidationError(types.ErrCodeInvalidInput, "invalid slot time "+strconv.Quote(slot))
		}
	}
	return nil
}

// catalogHasPeriod reports whether any catalog slot falls in the given
// half day. Noon belongs to PM.
func catalogHasPeriod(times []string, period string) bool {
	for _, slot := range times {
		t, err := time.Parse(types.SlotTimeLayout, slot)
		if err != nil {
			continue
		}
		if (period == "AM") == (t.Hour() < 12) {
			return true
		}
	}
	return false
}
