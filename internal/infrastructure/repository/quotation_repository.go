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

var quotationSortColumns = map[string]string{
	"number":      "number",
	"title":       "title",
	"total":       "total",
	"valid_until": "valid_until",
	"created_at":  "created_at",
}

type quotationRepository struct {
	db *gorm.DB
}

// NewQuotationRepository creates a new quotation repository
func NewQuotationRepository(db *gorm.DB) domainRepo.QuotationRepository {
	return &quotationRepository{db: db}
}

func (r *quotationRepository) Create(ctx context.Context, quotation *entity.Quotation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Client", "Opportunity").Create(quotation).Error
	})
}

func (r *quotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Quotation, error) {
	var quotation entity.Quotation
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Client").
		First(&quotation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &quotation, err
}

func (r *quotationRepository) GetByNumber(ctx context.Context, number string) (*entity.Quotation, error) {
	var quotation entity.Quotation
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		First(&quotation, "number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &quotation, err
}

func (r *quotationRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Quotation, error) {
	var quotation entity.Quotation
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Client").
		Preload("Opportunity").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quotation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &quotation, err
}

func (r *quotationRepository) Update(ctx context.Context, quotation *entity.Quotation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quotation_id = ?", quotation.ID).Delete(&entity.QuotationItem{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Client", "Opportunity", "Items").Save(quotation).Error; err != nil {
			return err
		}
		if len(quotation.Items) == 0 {
			return nil
		}
		for i := range quotation.Items {
			quotation.Items[i].ID = uuid.Nil
			quotation.Items[i].QuotationID = quotation.ID
		}
		return tx.Create(&quotation.Items).Error
	})
}

func (r *quotationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.QuotationStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == enum.QuotationStatusSent {
		updates["sent_at"] = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Model(&entity.Quotation{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *quotationRepository) Convert(ctx context.Context, id uuid.UUID, wonOpportunityID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entity.Quotation{}).
			Scopes(TenantScope(ctx)).
			Where("id = ?", id).
			Update("status", enum.QuotationStatusConverted).Error
		if err != nil || wonOpportunityID == nil {
			return err
		}
		return tx.Model(&entity.Opportunity{}).
			Scopes(TenantScope(ctx)).
			Where("id = ?", *wonOpportunityID).
			UpdateColumns(map[string]interface{}{
				"stage":      enum.StageClosedWon,
				"updated_at": time.Now().UTC(),
			}).Error
	})
}

func (r *quotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Delete(&entity.Quotation{}, "id = ?", id).Error
}

func (r *quotationRepository) List(ctx context.Context, params *domainRepo.QuotationFilterParams) ([]entity.Quotation, int64, error) {
	var quotations []entity.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Quotation{}).Scopes(TenantScope(ctx))

	if params.Search != "" {
		like := searchPattern(params.Search)
		query = query.Where("LOWER(number) LIKE ? OR LOWER(title) LIKE ?", like, like)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}
	if params.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *params.OpportunityID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Client").
		Order(orderClause(params.SortBy, params.SortOrder, quotationSortColumns, "created_at")).
		Find(&quotations).Error

	return quotations, total, err
}

// NextSequence counts soft-deleted rows too, so numbers are never reused
func (r *quotationRepository) NextSequence(ctx context.Context) (int, error) {
	var maxSeq int
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&entity.Quotation{}).
		Scopes(TenantScope(ctx)).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&maxSeq).Error
	return maxSeq + 1, err
}

func (r *quotationRepository) CountByStatus(ctx context.Context) (map[enum.QuotationStatus]int64, error) {
	var rows []struct {
		Status enum.QuotationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Quotation{}).
		Scopes(TenantScope(ctx)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enum.QuotationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *quotationRepository) ListExpirable(ctx context.Context, now time.Time) ([]entity.Quotation, error) {
	var quotations []entity.Quotation
	err := r.db.WithContext(ctx).
		Where("status IN ? AND valid_until < ?", []enum.QuotationStatus{enum.QuotationStatusSent, enum.QuotationStatusViewed}, now).
		Find(&quotations).Error
	return quotations, err
}
