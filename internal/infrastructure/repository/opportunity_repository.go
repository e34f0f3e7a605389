package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	domainRepo "github.com/sangkips/cowork-api/internal/domain/repository"
	"gorm.io/gorm"
)

var opportunitySortColumns = map[string]string{
	"title":               "title",
	"value":               "value",
	"probability":         "probability",
	"expected_close_date": "expected_close_date",
	"updated_at":          "updated_at",
	"created_at":          "created_at",
}

type opportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository creates a new opportunity repository
func NewOpportunityRepository(db *gorm.DB) domainRepo.OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) Create(ctx context.Context, opportunity *entity.Opportunity) error {
	return r.db.WithContext(ctx).Create(opportunity).Error
}

func (r *opportunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Opportunity, error) {
	var opportunity entity.Opportunity
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Client").
		Preload("Lead").
		Preload("AssignedTo").
		First(&opportunity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &opportunity, err
}

func (r *opportunityRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Opportunity, error) {
	var opportunities []entity.Opportunity
	if len(ids) == 0 {
		return opportunities, nil
	}
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("id IN ?", ids).
		Find(&opportunities).Error
	return opportunities, err
}

func (r *opportunityRepository) Update(ctx context.Context, opportunity *entity.Opportunity) error {
	return r.db.WithContext(ctx).
		Omit("Client", "Lead", "AssignedTo").
		Save(opportunity).Error
}

// UpdateStage skips the save hooks; the stage does not affect expected revenue
func (r *opportunityRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage enum.OpportunityStage) error {
	return r.db.WithContext(ctx).
		Model(&entity.Opportunity{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"stage":      stage,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *opportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Delete(&entity.Opportunity{}, "id = ?", id).Error
}

func (r *opportunityRepository) List(ctx context.Context, params *domainRepo.OpportunityFilterParams) ([]entity.Opportunity, int64, error) {
	var opportunities []entity.Opportunity
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Opportunity{}).Scopes(TenantScope(ctx))

	if params.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", searchPattern(params.Search))
	}
	if params.Stage != nil {
		query = query.Where("stage = ?", *params.Stage)
	}
	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}
	if params.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *params.AssignedToID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Client").
		Preload("Lead").
		Order(orderClause(params.SortBy, params.SortOrder, opportunitySortColumns, "updated_at")).
		Find(&opportunities).Error

	return opportunities, total, err
}

func (r *opportunityRepository) ListOpen(ctx context.Context) ([]entity.Opportunity, error) {
	var opportunities []entity.Opportunity
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("stage NOT IN ?", []enum.OpportunityStage{enum.StageClosedWon, enum.StageClosedLost}).
		Preload("Client").
		Preload("Lead").
		Order("updated_at ASC").
		Find(&opportunities).Error
	return opportunities, err
}

func (r *opportunityRepository) ListAll(ctx context.Context) ([]entity.Opportunity, error) {
	var opportunities []entity.Opportunity
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Client").
		Preload("Lead").
		Order("updated_at DESC").
		Find(&opportunities).Error
	return opportunities, err
}

func (r *opportunityRepository) StageTotals(ctx context.Context) ([]domainRepo.StageTotal, error) {
	var totals []domainRepo.StageTotal
	err := r.db.WithContext(ctx).
		Model(&entity.Opportunity{}).
		Scopes(TenantScope(ctx)).
		Select("stage, COUNT(*) AS count, COALESCE(SUM(value), 0) AS value, COALESCE(SUM(expected_revenue), 0) AS expected_revenue").
		Group("stage").
		Scan(&totals).Error
	return totals, err
}
