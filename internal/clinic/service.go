package clinic

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/clinicore/clinic-backend/internal/auth"
	"github.com/clinicore/clinic-backend/internal/directory"
	"github.com/clinicore/clinic-backend/internal/prescription"
	"github.com/clinicore/clinic-backend/internal/scheduling"
	"github.com/clinicore/clinic-backend/pkg/config"
	"github.com/clinicore/clinic-backend/pkg/database"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/monitoring"
)

// Service is the HTTP surface of the clinic backend. It wires the
// directory, scheduling and prescription services behind the legacy
// token-in-path route shape.
type Service struct {
	config        *config.Config
	logger        *logger.Logger
	router        *mux.Router
	server        *http.Server
	metrics       *monitoring.MetricsCollector
	rateLimiter   *RateLimiter
	db            *database.DB
	gate          *auth.Gate
	directory     *directory.Service
	availability  *scheduling.AvailabilityResolver
	ledger        *scheduling.Ledger
	prescriptions *prescription.Service
}

// NewService creates the HTTP service and wires its routes
func NewService(
	cfg *config.Config,
	log *logger.Logger,
	metrics *monitoring.MetricsCollector,
	db *database.DB,
	gate *auth.Gate,
	directorySvc *directory.Service,
	availability *scheduling.AvailabilityResolver,
	ledger *scheduling.Ledger,
	prescriptions *prescription.Service,
) *Service {
	s := &Service{
		config:        cfg,
		logger:        log,
		router:        mux.NewRouter(),
		metrics:       metrics,
		db:            db,
		gate:          gate,
		directory:     directorySvc,
		availability:  availability,
		ledger:        ledger,
		prescriptions: prescriptions,
	}

	if cfg.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, time.Minute)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Service) Start() error {
	s.logger.Infof("Starting clinic service on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server
func (s *Service) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Stopping clinic service")
	return s.server.Shutdown(ctx)
}

// setupMiddleware sets up the middleware chain
func (s *Service) setupMiddleware() {
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.securityHeadersMiddleware)
	if s.config.Monitoring.Enabled {
		s.router.Use(s.metrics.HTTPMiddleware)
	}
	s.router.Use(s.loggingMiddleware)
	if s.rateLimiter != nil {
		s.router.Use(s.rateLimitMiddleware)
	}
}

// setupRoutes sets up the routing. Tokens travel in the path, matching
// the route shape the legacy clients already depend on.
func (s *Service) setupRoutes() {
	// Availability and doctor roster
	s.router.HandleFunc("/doctor/availability/{role}/{doctorId}/{date}/{token}", s.handleAvailability).Methods("GET")
	s.router.HandleFunc("/doctor", s.handleListDoctors).Methods("GET")
	s.router.HandleFunc("/doctor/login", s.handleDoctorLogin).Methods("POST")
	s.router.HandleFunc("/doctor/filter/{name}/{specialty}/{time}", s.handleFilterDoctors).Methods("GET")
	s.router.HandleFunc("/doctor/{token}", s.handleRegisterDoctor).Methods("POST")
	s.router.HandleFunc("/doctor/{token}", s.handleUpdateDoctor).Methods("PUT")
	s.router.HandleFunc("/doctor/{id}/{token}", s.handleRemoveDoctor).Methods("DELETE")

	// Admin and patient accounts
	s.router.HandleFunc("/admin/login", s.handleAdminLogin).Methods("POST")
	s.router.HandleFunc("/patient/login", s.handlePatientLogin).Methods("POST")
	s.router.HandleFunc("/patient", s.handlePatientSignup).Methods("POST")
	s.router.HandleFunc("/patient/filter/{condition}/{name}/{token}", s.handlePatientFilterAppointments).Methods("GET")
	s.router.HandleFunc("/patient/{token}", s.handlePatientDetails).Methods("GET")
	s.router.HandleFunc("/patient/{id}/{token}", s.handlePatientAppointments).Methods("GET")

	// Appointments
	s.router.HandleFunc("/appointments/{date}/{patientName}/{token}", s.handleDoctorAppointments).Methods("GET")
	s.router.HandleFunc("/appointments/{token}", s.handleBookAppointment).Methods("POST")
	s.router.HandleFunc("/appointments/{token}", s.handleRescheduleAppointment).Methods("PUT")
	s.router.HandleFunc("/appointments/{id}/{token}", s.handleCancelAppointment).Methods("DELETE")

	// Prescriptions
	s.router.HandleFunc("/prescription/{appointmentId}/{token}", s.handleGetPrescription).Methods("GET")
	s.router.HandleFunc("/prescription/{token}", s.handleSavePrescription).Methods("POST")

	// Operational endpoints
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	if s.config.Monitoring.Enabled {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
}
