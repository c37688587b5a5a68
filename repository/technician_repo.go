package repository

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/models"
	"electrocare-backend/utils/logger"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type TechnicianRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewTechnicianRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *TechnicianRepository {
	return &TechnicianRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *TechnicianRepository) table() string {
	return r.config.DynamoDBTablePrefix + "_technicians"
}

func (r *TechnicianRepository) GetTechnician(ctx context.Context, id string) (*models.Technician, error) {
	if id == "" {
		return nil, models.NewValidation("technician ID is required")
	}

	tech := models.Technician{}
	err := r.db.GetItem(ctx, models.QueryConfig{
		TableName: r.table(),
		KeyName:   "technicianID",
		KeyValue:  id,
		KeyType:   models.StringType,
	}, &tech)
	if err != nil {
		r.logger.Errorf("Failed to get technician %s: %v", id, err)
		return nil, err
	}

	if tech.TechnicianID == "" {
		return nil, models.NewNotFound("technician not found")
	}

	return &tech, nil
}

// ListBroadcastable returns every technician eligible to receive new
// broadcasts. The geo filter happens in the matching service; the table
// scan here is bounded by the technician population.
func (r *TechnicianRepository) ListBroadcastable(ctx context.Context) ([]*models.Technician, error) {
	var all []*models.Technician
	if err := r.db.ScanTable(ctx, r.table(), &all); err != nil {
		r.logger.Errorf("Failed to scan technicians: %v", err)
		return nil, err
	}

	var eligible []*models.Technician
	for _, t := range all {
		if t.EligibleForBroadcast() {
			eligible = append(eligible, t)
		}
	}
	return eligible, nil
}

// ListByPincode returns broadcast-eligible technicians sharing the exact
// pincode. No distance ranking applies on this path.
func (r *TechnicianRepository) ListByPincode(ctx context.Context, pincode string) ([]*models.Technician, error) {
	var matches []*models.Technician
	err := r.db.QueryByIndex(ctx, r.table(), "pincode-index", "pincode", pincode, &matches)
	if err != nil {
		r.logger.Errorf("Failed to query technicians by pincode %s: %v", pincode, err)
		return nil, err
	}

	var eligible []*models.Technician
	for _, t := range matches {
		if t.EligibleForBroadcast() {
			eligible = append(eligible, t)
		}
	}
	return eligible, nil
}

// SetAvailability flips the shared availability snapshot around travel and
// terminal outcomes.
func (r *TechnicianRepository) SetAvailability(ctx context.Context, id string, status models.TechnicianStatus, available bool) error {
	return r.db.UpdateItem(ctx, r.table(), "technicianID", id, map[string]interface{}{
		"status":      status,
		"isAvailable": available,
		"updatedAt":   time.Now(),
	})
}

// TxAdjust builds the technician-table leg of a settlement transaction:
// wallet/loyalty deltas plus any status fields, applied with the group.
func (r *TechnicianRepository) TxAdjust(id string, sets map[string]interface{}, adds map[string]int) (types.TransactWriteItem, error) {
	if sets == nil {
		sets = map[string]interface{}{}
	}
	sets["updatedAt"] = time.Now()
	return buildUpdateTx(r.table(), "technicianID", id, sets, adds, "", nil)
}
