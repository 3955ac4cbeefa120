package directory

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

// Repository implements the DirectoryStore interface over Postgres. A
// doctor's slot catalog lives in doctor_available_times keyed by
// position, so catalog order survives the round trip.
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a new directory repository
func NewRepository(db *database.DB, log *logger.Logger) interfaces.DirectoryStore {
	return &Repository{
		db:     db,
		logger: log,
	}
}

// GetAdminByUsername retrieves an admin account by username
func (r *Repository) GetAdminByUsername(ctx context.Context, username string) (*types.Admin, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		SELECT id, username, password_hash, created_at
		FROM admins
		WHERE username = $1`

	admin := &types.Admin{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NewNotFoundError(types.ErrCodeAdminNotFound, "admin not found")
		}
		return nil, r.storeError("get admin", err)
	}

	return admin, nil
}

// GetDoctorByID retrieves a doctor with their slot catalog
func (r *Repository) GetDoctorByID(ctx context.Context, id string) (*types.Doctor, error) {
	return r.getDoctor(ctx, `WHERE id = $1`, id)
}

// GetDoctorByEmail retrieves a doctor with their slot catalog by email
func (r *Repository) GetDoctorByEmail(ctx context.Context, email string) (*types.Doctor, error) {
	return r.getDoctor(ctx, `WHERE email = $1`, email)
}

func (r *Repository) getDoctor(ctx context.Context, where string, arg interface{}) (*types.Doctor, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, specialty, password_hash, created_at, updated_at
		FROM doctors ` + where

	doctor := &types.Doctor{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&doctor.ID,
		&doctor.Name,
		&doctor.Email,
		&doctor.Specialty,
		&doctor.PasswordHash,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NewNotFoundError(types.ErrCodeDoctorNotFound, "doctor not found")
		}
		return nil, r.storeError("get doctor", err)
	}

	times, err := r.availableTimes(ctx, doctor.ID)
	if err != nil {
		return nil, err
	}
	doctor.AvailableTimes = times

	return doctor, nil
}

// ListDoctors returns the full doctor roster with slot catalogs
func (r *Repository) ListDoctors(ctx context.Context) ([]*types.Doctor, error) {
	return r.queryDoctors(ctx, "", nil)
}

// SearchDoctors returns doctors matching a case-insensitive name
// substring and/or an exact specialty. Empty arguments match everything.
func (r *Repository) SearchDoctors(ctx context.Context, name, specialty string) ([]*types.Doctor, error) {
	where := ""
	var args []interface{}

	if name != "" {
		args = append(args, name)
		where = `WHERE LOWER(name) LIKE '%' || LOWER($1) || '%'`
	}
	if specialty != "" {
		args = append(args, specialty)
		clause := `LOWER(specialty) = LOWER(` + placeholder(len(args)) + `)`
		if where == "" {
			where = `WHERE ` + clause
		} else {
			where += ` AND ` + clause
		}
	}

	return r.queryDoctors(ctx, where, args)
}

func (r *Repository) queryDoctors(ctx context.Context, where string, args []interface{}) ([]*types.Doctor, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, specialty, password_hash, created_at, updated_at
		FROM doctors `
	if where != "" {
		query += where
	}
	query += `
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.storeError("list doctors", err)
	}
	defer rows.Close()

	var doctors []*types.Doctor
	for rows.Next() {
		doctor := &types.Doctor{}
		if err := rows.Scan(&doctor.ID, &doctor.Name, &doctor.Email, &doctor.Specialty,
			&doctor.PasswordHash, &doctor.CreatedAt, &doctor.UpdatedAt); err != nil {
			return nil, r.storeError("scan doctor", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storeError("iterate doctors", err)
	}

	for _, doctor := range doctors {
		times, err := r.availableTimes(ctx, doctor.ID)
		if err != nil {
			return nil, err
		}
		doctor.AvailableTimes = times
	}

	return doctors, nil
}

// availableTimes loads a doctor's slot catalog in declared order
func (r *Repository) availableTimes(ctx context.Context, doctorID string) ([]string, error) {
	query := `
		SELECT slot_time
		FROM doctor_available_times
		WHERE doctor_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, doctorID)
	if err != nil {
		return nil, r.storeError("load slot catalog", err)
	}
	defer rows.Close()

	times := []string{}
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, r.storeError("scan slot", err)
		}
		times = append(times, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, r.storeError("iterate slots", err)
	}

	return times, nil
}

// CreateDoctor inserts a doctor and their slot catalog in one transaction
func (r *Repository) CreateDoctor(ctx context.Context, doctor *types.Doctor) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.storeError("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO doctors (id, name, email, specialty, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := tx.ExecContext(ctx, query,
		doctor.ID, doctor.Name, doctor.Email, doctor.Specialty,
		doctor.PasswordHash, doctor.CreatedAt, doctor.UpdatedAt); err != nil {
		return r.storeError("create doctor", err)
	}

	if err := r.insertCatalog(ctx, tx, doctor.ID, doctor.AvailableTimes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return r.storeError("commit doctor", err)
	}

	r.logger.Infof("Created doctor %s (%s)", doctor.ID, doctor.Email)
	return nil
}

// UpdateDoctor replaces a doctor's profile and slot catalog
func (r *Repository) UpdateDoctor(ctx context.Context, doctor *types.Doctor) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.storeError("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE doctors
		SET name = $1, email = $2, specialty = $3, updated_at = $4
		WHERE id = $5`

	result, err := tx.ExecContext(ctx, query,
		doctor.Name, doctor.Email, doctor.Specialty, time.Now(), doctor.ID)
	if err != nil {
		return r.storeError("update doctor", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.storeError("rows affected", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeDoctorNotFound, "doctor not found")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM doctor_available_times WHERE doctor_id = $1`, doctor.ID); err != nil {
		return r.storeError("clear slot catalog", err)
	}
	if err := r.insertCatalog(ctx, tx, doctor.ID, doctor.AvailableTimes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return r.storeError("commit doctor", err)
	}

	r.logger.Infof("Updated doctor %s", doctor.ID)
	return nil
}

func (r *Repository) insertCatalog(ctx context.Context, tx *sql.Tx, doctorID string, times []string) error {
	query := `
		INSERT INTO doctor_available_times (doctor_id, position, slot_time)
		VALUES ($1, $2, $3)`

	for i, slot := range times {
		if _, err := tx.ExecContext(ctx, query, doctorID, i, slot); err != nil {
			return r.storeError("insert slot", err)
		}
	}
	return nil
}

// DeleteDoctor removes a doctor; the slot catalog cascades via the
// foreign key. Appointment cleanup is the service's responsibility.
func (r *Repository) DeleteDoctor(ctx context.Context, id string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return r.storeError("delete doctor", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.storeError("rows affected", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeDoctorNotFound, "doctor not found")
	}

	r.logger.Infof("Deleted doctor %s", id)
	return nil
}

// GetPatientByID retrieves a patient account by ID
func (r *Repository) GetPatientByID(ctx context.Context, id string) (*types.Patient, error) {
	return r.getPatient(ctx, `WHERE id = $1`, id)
}

// GetPatientByEmail retrieves a patient account by email
func (r *Repository) GetPatientByEmail(ctx context.Context, email string) (*types.Patient, error) {
	return r.getPatient(ctx, `WHERE email = $1`, email)
}

func (r *Repository) getPatient(ctx context.Context, where string, arg interface{}) (*types.Patient, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, phone, address, password_hash, created_at
		FROM patients ` + where

	patient := &types.Patient{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&patient.ID,
		&patient.Name,
		&patient.Email,
		&patient.Phone,
		&patient.Address,
		&patient.PasswordHash,
		&patient.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.NewNotFoundError(types.ErrCodePatientNotFound, "patient not found")
		}
		return nil, r.storeError("get patient", err)
	}

	return patient, nil
}

// CreatePatient inserts a new patient account. Unique violations on
// email or phone surface as a duplicate-account conflict.
func (r *Repository) CreatePatient(ctx context.Context, patient *types.Patient) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		INSERT INTO patients (id, name, email, phone, address, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		patient.ID, patient.Name, patient.Email, patient.Phone,
		patient.Address, patient.PasswordHash, patient.CreatedAt)
	if err != nil {
		return r.storeError("create patient", err)
	}

	r.logger.Infof("Created patient %s", patient.ID)
	return nil
}

// bound derives a context carrying the configured store timeout
func (r *Repository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.db.QueryTimeout())
}

// storeError classifies a store-level failure
func (r *Repository) storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		r.logger.Errorf("Store timeout during %s: %v", op, err)
		return types.NewTimeoutError(types.ErrCodeStoreUnavailable, "store did not respond in time", err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		r.logger.Warnf("Unique violation during %s: %v", op, err)
		return types.NewConflictError(types.ErrCodeDuplicateAccount, "an account with these details already exists")
	}

	r.logger.Errorf("Store failure during %s: %v", op, err)
	return types.NewInternalError(types.ErrCodePersistError, "failed to "+op, err)
}

// placeholder renders the nth positional query parameter
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
