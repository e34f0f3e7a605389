package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	domainRepo "github.com/sangkips/cowork-api/internal/domain/repository"
	"gorm.io/gorm"
)

type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) domainRepo.LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *leadRepository) CreateBatch(ctx context.Context, leads []entity.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(leads, 100).Error
}

func (r *leadRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	var lead entity.Lead
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("AssignedTo").
		First(&lead, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &lead, err
}

func (r *leadRepository) GetByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	var lead entity.Lead
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		First(&lead, "LOWER(email) = LOWER(?)", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &lead, err
}

func (r *leadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	return r.db.WithContext(ctx).Omit("AssignedTo").Save(lead).Error
}

func (r *leadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Delete(&entity.Lead{}, "id = ?", id).Error
}

func (r *leadRepository) List(ctx context.Context, params *domainRepo.LeadFilterParams) ([]entity.Lead, int64, error) {
	var leads []entity.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Lead{}).Scopes(TenantScope(ctx))

	if params.Search != "" {
		like := searchPattern(params.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?", like, like, like)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Source != "" {
		query = query.Where("source = ?", params.Source)
	}
	if params.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *params.AssignedToID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&leads).Error

	return leads, total, err
}
