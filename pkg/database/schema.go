package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the relational schema for the clinic backend
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.Info("Creating database schema...")

	if err := db.createExtensions(ctx); err != nil {
		return fmt.Errorf("failed to create extensions: %w", err)
	}

	tables := []string{
		createAdminsTable,
		createDoctorsTable,
		createDoctorAvailableTimesTable,
		createPatientsTable,
		createAppointmentsTable,
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		createAppointmentsIndexes,
		createAppointmentSlotIndex,
		createDoctorsIndexes,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	db.logger.Info("Database schema created successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func (db *DB) createExtensions(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`); err != nil {
		return fmt.Errorf("failed to create extension: %w", err)
	}
	return nil
}

// SQL DDL statements for table creation
const (
	createAdminsTable = `
		CREATE TABLE IF NOT EXISTS admins (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);`

	createDoctorsTable = `
		CREATE TABLE IF NOT EXISTS doctors (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			specialty VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);`

	// position preserves the declared catalog order; availability results
	// must come back in insertion order, not sorted.
	createDoctorAvailableTimesTable = `
		CREATE TABLE IF NOT EXISTS doctor_available_times (
			doctor_id UUID NOT NULL REFERENCES doctors(id) ON DELETE CASCADE,
			position INT NOT NULL,
			slot_time VARCHAR(5) NOT NULL,
			PRIMARY KEY (doctor_id, position)
		);`

	createPatientsTable = `
		CREATE TABLE IF NOT EXISTS patients (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone VARCHAR(20) UNIQUE NOT NULL,
			address VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		);`

	createAppointmentsTable = `
		CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			doctor_id UUID NOT NULL REFERENCES doctors(id),
			patient_id UUID NOT NULL REFERENCES patients(id),
			appointment_time TIMESTAMP NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);`
)

// SQL DDL statements for index creation
const (
	createAppointmentsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_appointments_doctor_time
			ON appointments (doctor_id, appointment_time);
		CREATE INDEX IF NOT EXISTS idx_appointments_patient
			ON appointments (patient_id);`

	// The booking path is check-then-act; this partial unique index is
	// the source of truth that makes a lost race a persistence error
	// instead of a double booking.
	createAppointmentSlotIndex = `
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_appointments_live_slot
			ON appointments (doctor_id, appointment_time)
			WHERE status <> 'cancelled';`

	createDoctorsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_doctors_specialty
			ON doctors (LOWER(specialty));`
)
