package clinic

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/clinicore/clinic-backend/pkg/types"
)

const dateLayout = "2006-01-02"

// handleAvailability returns a doctor's free slots for a day. Any of
// the three roles may ask; the role segment names which token kind the
// caller presents.
func (s *Service) handleAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	role, ok := types.ParseRole(vars["role"])
	if !ok {
		s.writeError(w, types.NewValidationError(types.ErrCodeInvalidInput, "unknown role "+vars["role"]))
		return
	}

	if _, err := s.gate.Authorize(r.Context(), vars["token"], role); err != nil {
		s.writeError(w, err)
		return
	}

	date, err := time.Parse(dateLayout, vars["date"])
	if err != nil {
		s.writeError(w, types.NewValidationError(types.ErrCodeInvalidInput, "date must be YYYY-MM-DD"))
		return
	}

	slots, err := s.availability.FreeSlots(r.Context(), vars["doctorId"], date)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"availability": slots})
}

// handleListDoctors returns the public doctor roster
func (s *Service) handleListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := s.directory.ListDoctors(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"doctors": doctors})
}

// handleFilterDoctors returns doctors matching name, specialty and
// half-day period filters; "all" in any segment disables that filter
func (s *Service) handleFilterDoctors(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	doctors, err := s.directory.FilterDoctors(r.Context(), vars["name"], vars["specialty"], vars["time"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"doctors": doctors})
}

func (s *Service) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	s.handleLogin(w, r, types.RoleAdmin)
}

func (s *Service) handleDoctorLogin(w http.ResponseWriter, r *http.Request) {
	s.handleLogin(w, r, types.RoleDoctor)
}

func (s *Service) handlePatientLogin(w http.ResponseWriter, r *http.Request) {
	s.handleLogin(w, r, types.RolePatient)
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request, role types.Role) {
	creds := &types.Credentials{}
	if err := s.decodeBody(r, creds); err != nil {
		s.writeError(w, err)
		return
	}

	var token *types.AuthToken
	var err error
	switch role {
	case types.RoleAdmin:
		token, err = s.directory.LoginAdmin(r.Context(), creds)
	case types.RoleDoctor:
		token, err = s.directory.LoginDoctor(r.Context(), creds)
	default:
		token, err = s.directory.LoginPatient(r.Context(), creds)
	}

	if err != nil {
		s.metrics.RecordAuthAttempt(string(role), "failure")
		s.writeError(w, err)
		return
	}

	s.metrics.RecordAuthAttempt(string(role), "success")
	s.writeJSON(w, http.StatusOK, map[string]string{"token": token.Token})
}

// handleRegisterDoctor creates a doctor roster entry. Admin only.
func (s *Service) handleRegisterDoctor(w http.ResponseWriter, r *http.Request) {
	if _, err := s.gate.Authorize(r.Context(), mux.Vars(r)["token"], types.RoleAdmin); err != nil {
		s.writeError(w, err)
		return
	}

	req := &types.DoctorRegistrationRequest{}
	if err := s.decodeBody(r, req); err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.directory.RegisterDoctor(r.Context(), req); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeMessage(w, http.StatusCreated, "Doctor added to the roster")
}

// handleUpdateDoctor replaces a doctor's profile and slot catalog. Admin only.
func (s *Service) handleUpdateDoctor(w http.ResponseWriter, r *http.Request) {
	if _, err := s.gate.Authorize(r.Context(), mux.Vars(r)["token"], types.RoleAdmin); err != nil {
		s.writeError(w, err)
		return
	}

	doctor := &types.Doctor{}
	if err := s.decodeBody(r, doctor); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.directory.UpdateDoctor(r.Context(), doctor); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Doctor updated")
}

// handleRemoveDoctor deletes a doctor and their appointments. Admin only.
func (s *Service) handleRemoveDoctor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := s.gate.Authorize(r.Context(), vars["token"], types.RoleAdmin); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.directory.RemoveDoctor(r.Context(), vars["id"]); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "Doctor removed from the roster")
}

// handlePatientSignup creates a patient account
func (s *Service) handlePatientSignup(w http.ResponseWriter, r *http.Request) {
	req := &types.PatientSignupRequest{}
	if err := s.decodeBody(r, req); err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.directory.SignupPatient(r.Context(), req); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeMessage(w, http.StatusCreated, "Signup successful")
}

// handlePatientDetails returns the acting patient's account record
func (s *Service) handlePatientDetails(w http.ResponseWriter, r *http.Request) {
	subject, err := s.gate.Authorize(r.Context(), mux.Vars(r)["token"], types.RolePatient)
	if err != nil {
		s.writeError(w, err)
		return
	}

	patient, err := s.directory.PatientDetails(r.Context(), subject)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"patient": patient})
}

// handlePatientAppointments returns a patient's appointments. The path
// id must be the acting patient's own.
func (s *Service) handlePatientAppointments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subject, err := s.gate.Authorize(r.Context(), vars["token"], types.RolePatient)
	if err != nil {
		s.writeError(w, err)
		return
	}

	patient, err := s.directory.PatientDetails(r.Context(), subject)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.gate.AuthorizeOwnership(patient.ID, vars["id"]); err != nil {
		s.writeError(w, err)
		return
	}

	views, err := s.directory.PatientAppointments(r.Context(), subject, "", "")
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": views})
}

// handlePatientFilterAppointments returns the acting patient's
// appointments restricted by past/future condition and doctor name
func (s *Service) handlePatientFilterAppointments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subject, err := s.gate.Authorize(r.Context(), vars["token"], types.RolePatient)
	if err != nil {
		s.writeError(w, err)
		return
	}

	views, err := s.directory.PatientAppointments(r.Context(), subject, vars["condition"], vars["name"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": views})
}

// handleDoctorAppointments returns the acting doctor's day agenda
func (s *Service) handleDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subject, err := s.gate.Authorize(r.Context(), vars["token"], types.RoleDoctor)
	if err != nil {
		s.writeError(w, err)
		return
	}

	date, err := time.Parse(dateLayout, vars["date"])
	if err != nil {
		s.writeError(w, types.NewValidationError(types.ErrCodeInvalidInput, "date must be YYYY-MM-DD"))
		return
	}

	patientName := vars["patientName"]
	if patientName == "all" {
		patientName = ""
	}

	agenda, err := s.availability.DoctorAgenda(r.Context(), subject, date, patientName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": agenda})
}

// handleBookAppointment books a slot for the acting patient
func (s *Service) handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	subject, err := s.gate.Authorize(r.Context(), mux.Vars(r)["token"], types.RolePatient)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req := &types.BookingRequest{}
	if err := s.decodeBody(r, req); err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.ledger.Book(r.Context(), req, subject); err != nil {
		s.metrics.RecordBookingOutcome("book", types.CodeOf(err))
		s.writeError(w, err)
		return
	}

	s.metrics.RecordBookingOutcome("book", "ok")
	s.writeMessage(w, http.StatusCreated, "Appointment booked successfully")
}

// handleRescheduleAppointment moves the acting patient's appointment
func (s *Service) handleRescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	subject, err := s.gate.Authorize(r.Context(), mux.Vars(r)["token"], types.RolePatient)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req := &types.BookingRequest{}
	if err := s.decodeBody(r, req); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.ledger.Reschedule(r.Context(), req, subject); err != nil {
		s.metrics.RecordBookingOutcome("reschedule", types.CodeOf(err))
		s.writeError(w, err)
		return
	}

	s.metrics.RecordBookingOutcome("reschedule", "ok")
	s.writeMessage(w, http.StatusOK, "Appointment rescheduled successfully")
}

// handleCancelAppointment cancels the acting patient's appointment
func (s *Service) handleCancelAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subject, err := s.gate.Authorize(r.Context(), vars["token"], types.RolePatient)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.ledger.Cancel(r.Context(), vars["id"], subject); err != nil {
		s.metrics.RecordBookingOutcome("cancel", types.CodeOf(err))
		s.writeError(w, err)
		return
	}

	s.metrics.RecordBookingOutcome("cancel", "ok")
	s.writeMessage(w, http.StatusOK, "Appointment cancelled successfully")
}

// handleSavePrescription records a prescription for one of the acting
// doctor's appointments
func (s *Service) handleSavePrescription(w http.ResponseWriter, r *http.Request) {
	subject, err := s.gate.Authorize(r.Context(), mux.Vars(r)["token"], types.RoleDoctor)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p := &types.Prescription{}
	if err := s.decodeBody(r, p); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.prescriptions.Issue(r.Context(), p, subject); err != nil {
		s.writeError(w, err)
		return
	}

	s.metrics.RecordPrescriptionIssued()
	s.writeMessage(w, http.StatusCreated, "Prescription saved successfully")
}

// handleGetPrescription returns the prescription for an appointment
func (s *Service) handleGetPrescription(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := s.gate.Authorize(r.Context(), vars["token"], types.RoleDoctor); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.prescriptions.Get(r.Context(), vars["appointmentId"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"prescription": p})
}

// handleHealth reports service and store health
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Health(); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "clinic-backend",
	})
}
