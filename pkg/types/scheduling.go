package types

import "time"

// SlotTimeLayout is the time-of-day rendering used for slot catalog
// entries and availability comparison ("09:00", "14:30").
const SlotTimeLayout = "15:04"

// Appointment represents a booked appointment. AppointmentTime is naive
// local time; the slot it occupies is its time-of-day rendering.
type Appointment struct {
	ID              string            `json:"id" db:"id"`
	DoctorID        string            `json:"doctor_id" db:"doctor_id"`
	PatientID       string            `json:"patient_id" db:"patient_id"`
	AppointmentTime time.Time         `json:"appointment_time" db:"appointment_time"`
	Status          AppointmentStatus `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// SlotTime returns the time-of-day string the appointment occupies
func (a *Appointment) SlotTime() string {
	return a.AppointmentTime.Format(SlotTimeLayout)
}

// AppointmentStatus represents appointment status values
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusCompleted  AppointmentStatus = "completed"
	StatusPrescribed AppointmentStatus = "prescribed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted out of s
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusPrescribed
}

// AppointmentFilters represents filters for appointment queries
type AppointmentFilters struct {
	PatientID  string            `json:"patient_id,omitempty"`
	DoctorID   string            `json:"doctor_id,omitempty"`
	DoctorName string            `json:"doctor_name,omitempty"`
	Status     AppointmentStatus `json:"status,omitempty"`
	FromTime   time.Time         `json:"from_time,omitempty"`
	ToTime     time.Time         `json:"to_time,omitempty"`
}

// BookingRequest represents a patient booking or reschedule request
type BookingRequest struct {
	ID              string    `json:"id,omitempty"`
	DoctorID        string    `json:"doctor_id"`
	AppointmentTime time.Time `json:"appointment_time"`
}

// AppointmentView is the patient-facing appointment projection returned
// by the listing endpoints.
type AppointmentView struct {
	ID              string            `json:"id"`
	DoctorName      string            `json:"doctor_name"`
	AppointmentTime time.Time         `json:"appointment_time"`
	Status          AppointmentStatus `json:"status"`
}

// DayRange returns the inclusive bounds of the calendar day containing t,
// [00:00:00, 23:59:59] in t's location.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
	return start, end
}
