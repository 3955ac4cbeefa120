package types

import "time"

// Role represents the actor roles recognized by the clinic backend
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole normalizes a role string supplied by an endpoint path
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RolePatient:
		return Role(s), true
	}
	return "", false
}

// Admin represents a clinic administrator account
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Doctor represents a clinic doctor and the fixed slot catalog configured
// for them. AvailableTimes keeps the order the catalog was declared in.
type Doctor struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Specialty      string    `json:"specialty" db:"specialty"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	AvailableTimes []string  `json:"available_times"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Patient represents a patient account created through self-service signup
type Patient struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Credentials represents login credentials. Admins log in by username,
// doctors and patients by email; Identifier carries either.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AuthToken represents an issued bearer token response
type AuthToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims represents the identity carried inside a bearer token
type TokenClaims struct {
	Subject   string    `json:"subject"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DoctorRegistrationRequest represents admin-supplied doctor roster data
type DoctorRegistrationRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Specialty      string   `json:"specialty"`
	Password       string   `json:"password"`
	AvailableTimes []string `json:"available_times"`
}

// PatientSignupRequest represents patient self-service signup data
type PatientSignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}
