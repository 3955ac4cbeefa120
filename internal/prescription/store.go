package prescription

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicore/clinic-backend/pkg/interfaces"
	"github.com/clinicore/clinic-backend/pkg/logger"
	"github.com/clinicore/clinic-backend/pkg/types"
)

const collectionName = "prescriptions"

// Store implements the PrescriptionStore interface over MongoDB. A
// unique index on appointment_id enforces the one-prescription-per-
// appointment rule at the store.
type Store struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewStore creates a new prescription store and ensures its indexes
func NewStore(ctx context.Context, db *mongo.Database, log *logger.Logger) (interfaces.PrescriptionStore, error) {
	collection := db.Collection(collectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "appointment_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, types.NewInternalError(types.ErrCodePersistError, "failed to create prescription index", err)
	}

	return &Store{
		collection: collection,
		logger:     log,
	}, nil
}

// Save writes a prescription document. A second document for the same
// appointment is rejected as a duplicate record.
func (s *Store) Save(ctx context.Context, p *types.Prescription) error {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}

	if _, err := s.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			s.logger.Warnf("Duplicate prescription for appointment %s", p.AppointmentID)
			return types.NewValidationError(types.ErrCodeDuplicateRecord, "a prescription already exists for this appointment")
		}
		s.logger.Errorf("Failed to save prescription: %v", err)
		return types.NewInternalError(types.ErrCodePersistError, "failed to save prescription", err)
	}

	s.logger.Infof("Saved prescription %s for appointment %s", p.ID, p.AppointmentID)
	return nil
}

// GetByAppointment retrieves the prescription written for an appointment
func (s *Store) GetByAppointment(ctx context.Context, appointmentID string) (*types.Prescription, error) {
	p := &types.Prescription{}
	err := s.collection.FindOne(ctx, bson.M{"appointment_id": appointmentID}).Decode(p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.NewNotFoundError(types.ErrCodeRecordNotFound, "no prescription for this appointment")
		}
		s.logger.Errorf("Failed to load prescription: %v", err)
		return nil, types.NewInternalError(types.ErrCodePersistError, "failed to load prescription", err)
	}
	return p, nil
}
