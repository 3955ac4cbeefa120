package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/clinicore/clinic-backend/pkg/database"
	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

// Repository implements the AppointmentStore interface over Postgres.
// The partial unique index on live (doctor_id, appointment_time) pairs
// is what turns a lost booking race into a persistence error.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a new appointment repository
func NewRepository(db *database.DB, log *logger.Logger) interfaces.AppointmentStore {
	return &Repository{
		db:     db,
		logger: log,
	}
}

// Create inserts a new appointment row
func (r *Repository) Create(ctx context.Context, apt *types.Appointment) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		INSERT INTO appointments (id, doctor_id, patient_id, appointment_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.DoctorID,
		apt.PatientID,
		apt.AppointmentTime,
		apt.Status,
		apt.CreatedAt,
		apt.UpdatedAt,
	)

	if err != nil {
		return r.storeError("create appointment", err)
	}

	r.logger.Infof("Created appointment %s for patient %s with doctor %s", apt.ID, apt.PatientID, apt.DoctorID)
	return nil
}

// GetByID retrieves an appointment by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*types.Appointment, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		SELECT id, doctor_id, patient_id, appointment_time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1`

	apt := &types.Appointment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&apt.ID,
		&apt.DoctorID,
		&apt.PatientID,
		&apt.AppointmentTime,
		&apt.Status,
		&apt.CreatedAt,
		&apt.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NewNotFoundError(types.ErrCodeAppointmentNotFound, "appointment not found")
		}
		return nil, r.storeError("get appointment", err)
	}

	return apt, nil
}

// FindByDoctorAndRange returns a doctor's appointments within [from, to],
// optionally filtered by patient-name substring, ordered by time.
func (r *Repository) FindByDoctorAndRange(ctx context.Context, doctorID string, from, to time.Time, patientName string) ([]*types.Appointment, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		SELECT a.id, a.doctor_id, a.patient_id, a.appointment_time, a.status, a.created_at, a.updated_at
		FROM appointments a`
	args := []interface{}{doctorID, from, to}

	if patientName != "" {
		query += `
		JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1 AND a.appointment_time BETWEEN $2 AND $3
			AND LOWER(p.name) LIKE '%' || LOWER($4) || '%'`
		args = append(args, patientName)
	} else {
		query += `
		WHERE a.doctor_id = $1 AND a.appointment_time BETWEEN $2 AND $3`
	}
	query += `
		ORDER BY a.appointment_time ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.storeError("find appointments by doctor", err)
	}
	defer rows.Close()

	var appointments []*types.Appointment
	for rows.Next() {
		apt := &types.Appointment{}
		if err := rows.Scan(&apt.ID, &apt.DoctorID, &apt.PatientID, &apt.AppointmentTime, &apt.Status, &apt.CreatedAt, &apt.UpdatedAt); err != nil {
			return nil, r.storeError("scan appointment", err)
		}
		appointments = append(appointments, apt)
	}

	if err := rows.Err(); err != nil {
		return nil, r.storeError("iterate appointments", err)
	}

	return appointments, nil
}

// FindViewsByPatient returns the patient-facing appointment projections
// matching the filters, ordered by time.
func (r *Repository) FindViewsByPatient(ctx context.Context, filters *types.AppointmentFilters) ([]*types.AppointmentView, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		SELECT a.id, d.name, a.appointment_time, a.status
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.patient_id = $1`
	args := []interface{}{filters.PatientID}

	next := func(v interface{}) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filters.DoctorName != "" {
		query += ` AND LOWER(d.name) LIKE '%' || LOWER(` + next(filters.DoctorName) + `) || '%'`
	}
	if filters.Status != "" {
		query += ` AND a.status = ` + next(string(filters.Status))
	}
	if !filters.FromTime.IsZero() {
		query += ` AND a.appointment_time >= ` + next(filters.FromTime)
	}
	if !filters.ToTime.IsZero() {
		query += ` AND a.appointment_time <= ` + next(filters.ToTime)
	}
	query += ` ORDER BY a.appointment_time ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.storeError("find appointments by patient", err)
	}
	defer rows.Close()

	var views []*types.AppointmentView
	for rows.Next() {
		view := &types.AppointmentView{}
		if err := rows.Scan(&view.ID, &view.DoctorName, &view.AppointmentTime, &view.Status); err != nil {
			return nil, r.storeError("scan appointment view", err)
		}
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, r.storeError("iterate appointment views", err)
	}

	return views, nil
}

// UpdateTime moves an appointment to a new time
func (r *Repository) UpdateTime(ctx context.Context, id string, t time.Time) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `UPDATE appointments SET appointment_time = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, t, time.Now(), id)
	if err != nil {
		return r.storeError("update appointment time", err)
	}

	return r.requireRow(result, id)
}

// UpdateStatus transitions an appointment's status
func (r *Repository) UpdateStatus(ctx context.Context, id string, status types.AppointmentStatus) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return r.storeError("update appointment status", err)
	}

	return r.requireRow(result, id)
}

// DeleteByDoctor removes all appointments for a doctor. Used when an
// administrator deletes the doctor from the roster.
func (r *Repository) DeleteByDoctor(ctx context.Context, doctorID string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `DELETE FROM appointments WHERE doctor_id = $1`

	if _, err := r.db.ExecContext(ctx, query, doctorID); err != nil {
		return r.storeError("delete appointments by doctor", err)
	}
	return nil
}

// bound derives a context carrying the configured store timeout
func (r *Repository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.db.QueryTimeout())
}

// requireRow maps a zero-row update to a not-found error
func (r *Repository) requireRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.storeError("rows affected", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeAppointmentNotFound, "appointment not found")
	}
	return nil
}

// storeError classifies a store-level failure. A unique violation means
// a concurrent booking won the slot; a deadline means the store did not
// answer in time. Neither is retried here.
func (r *Repository) storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		r.logger.Errorf("Store timeout during %s: %v", op, err)
		return types.NewTimeoutError(types.ErrCodeStoreUnavailable, "store did not respond in time", err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		r.logger.Warnf("Unique violation during %s: %v", op, err)
		return types.NewConflictError(types.ErrCodePersistError, "slot was booked concurrently")
	}

	r.logger.Errorf("Store failure during %s: %v", op, err)
	return types.NewInternalError(types.ErrCodePersistError, "failed to "+op, err)
}

// placeholder renders the nth positional query parameter
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
