package types

import "time"

// Prescription is the document written by a doctor against a completed
// consultation. At most one prescription exists per appointment; the
// store enforces that on AppointmentID.
type Prescription struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	AppointmentID string    `json:"appointment_id" bson:"appointment_id"`
	PatientName   string    `json:"patient_name" bson:"patient_name"`
	Medication    string    `json:"medication" bson:"medication"`
	Dosage        string    `json:"dosage" bson:"dosage"`
	DoctorNotes   string    `json:"doctor_notes,omitempty" bson:"doctor_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
