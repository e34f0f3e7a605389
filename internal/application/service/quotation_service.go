package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/config"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/internal/domain/pricing"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/internal/infrastructure/event"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/email"
	"github.com/sangkips/cowork-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// QuotationMailer sends a quotation to the client
type QuotationMailer interface {
	Enabled() bool
	SendQuotation(to string, data email.QuotationEmail) error
}

// QuotationService handles quotation-related operations
type QuotationService struct {
	quotationRepo   repository.QuotationRepository
	clientRepo      repository.ClientRepository
	opportunityRepo repository.OpportunityRepository
	tenantRepo      repository.TenantRepository
	mailer          QuotationMailer
	publisher       event.Publisher
	invalidator     SummaryInvalidator
	defaults        config.QuotationConfig
	now             Clock
}

// NewQuotationService creates a new quotation service
func NewQuotationService(
	quotationRepo repository.QuotationRepository,
	clientRepo repository.ClientRepository,
	opportunityRepo repository.OpportunityRepository,
	tenantRepo repository.TenantRepository,
	mailer QuotationMailer,
	publisher event.Publisher,
	invalidator SummaryInvalidator,
	defaults config.QuotationConfig,
) *QuotationService {
	return &QuotationService{
		quotationRepo:   quotationRepo,
		clientRepo:      clientRepo,
		opportunityRepo: opportunityRepo,
		tenantRepo:      tenantRepo,
		mailer:          mailer,
		publisher:       publisher,
		invalidator:     invalidator,
		defaults:        defaults,
		now:             systemClock,
	}
}

// QuotationItemInput represents a line item input
type QuotationItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateQuotationInput represents the input for creating a quotation
type CreateQuotationInput struct {
	UserID        uuid.UUID
	Title         string
	ClientID      *uuid.UUID
	OpportunityID *uuid.UUID
	Currency      string
	DiscountType  enum.DiscountType
	DiscountValue decimal.Decimal
	ValidUntil    *time.Time
	Notes         *string
	Items         []QuotationItemInput
}

// CreateQuotation validates and stores a new DRAFT quotation with computed totals
func (s *QuotationService) CreateQuotation(ctx context.Context, input *CreateQuotationInput) (*entity.Quotation, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Cowork")
	}

	now := s.now()
	currency := s.currency(input.Currency, tenant.Settings)
	discountType := discountTypeOrDefault(input.DiscountType)
	validUntil := input.ValidUntil
	if validUntil == nil {
		v := now.AddDate(0, 0, s.validityDays(tenant.Settings))
		validUntil = &v
	}

	items := toPricingItems(input.Items)
	draft := pricing.Draft{
		Title:         input.Title,
		ClientID:      input.ClientID,
		Currency:      currency,
		Items:         items,
		DiscountType:  discountType,
		DiscountValue: input.DiscountValue,
		ValidUntil:    validUntil,
	}
	if errs := pricing.Validate(draft, now); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	if err := s.checkReferences(ctx, *input.ClientID, input.OpportunityID); err != nil {
		return nil, err
	}

	summary, err := pricing.Summarize(items, discountType, input.DiscountValue, currency)
	if err != nil {
		return nil, discountError(err)
	}

	seq, err := s.quotationRepo.NextSequence(ctx)
	if err != nil {
		return nil, err
	}

	quotation := &entity.Quotation{
		TenantID:      tenantID,
		CreatedByID:   input.UserID,
		Number:        fmt.Sprintf("%s%06d", s.numberPrefix(tenant.Settings), seq),
		Sequence:      seq,
		Title:         strings.TrimSpace(input.Title),
		Currency:      currency,
		ClientID:      *input.ClientID,
		OpportunityID: input.OpportunityID,
		Status:        enum.QuotationStatusDraft,
		DiscountType:  discountType,
		DiscountValue: input.DiscountValue,
		ValidUntil:    *validUntil,
		Notes:         input.Notes,
		Items:         toQuotationItems(items, currency),
	}
	quotation.ApplySummary(summary)

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, err
	}
	invalidate(ctx, s.invalidator, tenantID)

	return s.GetQuotation(ctx, quotation.ID)
}

// PreviewQuotationInput carries the lines and discount to price
type PreviewQuotationInput struct {
	Currency      string
	DiscountType  enum.DiscountType
	DiscountValue decimal.Decimal
	Items         []QuotationItemInput
}

// QuotationPreview is the computed breakdown of a quotation that is not stored
type QuotationPreview struct {
	Currency string                 `json:"currency"`
	Items    []entity.QuotationItem `json:"items"`
	pricing.Summary
}

// PreviewQuotation computes totals without persisting anything
func (s *QuotationService) PreviewQuotation(ctx context.Context, input *PreviewQuotationInput) (*QuotationPreview, error) {
	settings := entity.TenantSettings{}
	if tenantID, ok := tenantFromContext(ctx); ok {
		tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if tenant != nil {
			settings = tenant.Settings
		}
	}

	currency := s.currency(input.Currency, settings)
	discountType := discountTypeOrDefault(input.DiscountType)
	items := toPricingItems(input.Items)

	if errs := pricing.ValidateLines(items, discountType, input.DiscountValue, currency); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	summary, err := pricing.Summarize(items, discountType, input.DiscountValue, currency)
	if err != nil {
		return nil, discountError(err)
	}

	return &QuotationPreview{
		Currency: currency,
		Items:    toQuotationItems(items, currency),
		Summary:  summary,
	}, nil
}

// GetQuotation retrieves a quotation with its items
func (s *QuotationService) GetQuotation(ctx context.Context, id uuid.UUID) (*entity.Quotation, error) {
	quotation, err := s.quotationRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, apperror.NewNotFoundError("Quotation")
	}
	return quotation, nil
}

// ListQuotations lists quotations with filtering
func (s *QuotationService) ListQuotations(ctx context.Context, params *repository.QuotationFilterParams) (*pagination.PaginatedResult[entity.Quotation], error) {
	quotations, total, err := s.quotationRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(quotations, pag), nil
}

// UpdateQuotationInput represents the input for updating a DRAFT quotation.
// Items, when given, replace every existing line.
type UpdateQuotationInput struct {
	ID            uuid.UUID
	Title         *string
	ClientID      *uuid.UUID
	OpportunityID *uuid.UUID
	Currency      *string
	DiscountType  *enum.DiscountType
	DiscountValue *decimal.Decimal
	ValidUntil    *time.Time
	Notes         *string
	Items         []QuotationItemInput
}

// UpdateQuotation edits a quotation while it is still a draft
func (s *QuotationService) UpdateQuotation(ctx context.Context, input *UpdateQuotationInput) (*entity.Quotation, error) {
	quotation, err := s.GetQuotation(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !pricing.IsEditable(quotation.Status) {
		return nil, apperror.NewConflictError("Only draft quotations can be edited")
	}

	if input.Title != nil {
		quotation.Title = strings.TrimSpace(*input.Title)
	}
	if input.ClientID != nil {
		quotation.ClientID = *input.ClientID
	}
	if input.OpportunityID != nil {
		quotation.OpportunityID = input.OpportunityID
	}
	if input.Currency != nil && *input.Currency != "" {
		quotation.Currency = strings.ToUpper(*input.Currency)
	}
	if input.DiscountType != nil {
		quotation.DiscountType = discountTypeOrDefault(*input.DiscountType)
	}
	if input.DiscountValue != nil {
		quotation.DiscountValue = *input.DiscountValue
	}
	if input.ValidUntil != nil {
		quotation.ValidUntil = *input.ValidUntil
	}
	if input.Notes != nil {
		quotation.Notes = input.Notes
	}

	items := quotation.PricingItems()
	if input.Items != nil {
		items = toPricingItems(input.Items)
	}

	clientID := quotation.ClientID
	validUntil := quotation.ValidUntil
	draft := pricing.Draft{
		Title:         quotation.Title,
		ClientID:      &clientID,
		Currency:      quotation.Currency,
		Items:         items,
		DiscountType:  quotation.DiscountType,
		DiscountValue: quotation.DiscountValue,
		ValidUntil:    &validUntil,
	}
	if errs := pricing.Validate(draft, s.now()); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	if err := s.checkReferences(ctx, quotation.ClientID, quotation.OpportunityID); err != nil {
		return nil, err
	}

	summary, err := pricing.Summarize(items, quotation.DiscountType, quotation.DiscountValue, quotation.Currency)
	if err != nil {
		return nil, discountError(err)
	}
	quotation.ApplySummary(summary)
	quotation.Items = toQuotationItems(items, quotation.Currency)
	quotation.Client = nil
	quotation.Opportunity = nil

	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, err
	}
	invalidate(ctx, s.invalidator, quotation.TenantID)

	return s.GetQuotation(ctx, quotation.ID)
}

// DeleteQuotation deletes a draft quotation
func (s *QuotationService) DeleteQuotation(ctx context.Context, id uuid.UUID) error {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if quotation == nil {
		return apperror.NewNotFoundError("Quotation")
	}
	if !pricing.IsEditable(quotation.Status) {
		return apperror.NewConflictError("Only draft quotations can be deleted")
	}

	if err := s.quotationRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.invalidator, quotation.TenantID)
	return nil
}

// UpdateStatusInput moves a quotation along its lifecycle
type UpdateStatusInput struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Status enum.QuotationStatus
}

// UpdateQuotationStatus enforces the status machine. CONVERTED is reached
// through ConvertQuotation only.
func (s *QuotationService) UpdateQuotationStatus(ctx context.Context, input *UpdateStatusInput) (*entity.Quotation, error) {
	if !input.Status.IsValid() {
		return nil, apperror.NewFieldError("status", "Invalid quotation status")
	}
	if input.Status == enum.QuotationStatusConverted {
		return nil, apperror.NewFieldError("status", "Use the convert action to convert a quotation")
	}

	quotation, err := s.GetQuotation(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, quotation, input.Status, input.UserID); err != nil {
		return nil, err
	}

	if input.Status == enum.QuotationStatusSent {
		s.sendToClient(ctx, quotation)
		e := event.New(event.QuotationSent, quotation.TenantID, quotation.ID, map[string]any{
			"number": quotation.Number,
			"total":  quotation.Total.String(),
		})
		e.ActorID = actor(input.UserID)
		publish(ctx, s.publisher, e)
	}

	return s.GetQuotation(ctx, quotation.ID)
}

// ConvertQuotation turns an accepted quotation into a won deal
func (s *QuotationService) ConvertQuotation(ctx context.Context, id, userID uuid.UUID) (*entity.Quotation, error) {
	quotation, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if quotation.Status != enum.QuotationStatusAccepted {
		return nil, apperror.NewConflictError("Only accepted quotations can be converted")
	}

	var won *entity.Opportunity
	if quotation.OpportunityID != nil {
		opportunity, err := s.opportunityRepo.GetByID(ctx, *quotation.OpportunityID)
		if err != nil {
			return nil, err
		}
		if opportunity != nil && opportunity.Stage != enum.StageClosedWon {
			won = opportunity
		}
	}

	var wonID *uuid.UUID
	if won != nil {
		wonID = &won.ID
	}
	if err := s.quotationRepo.Convert(ctx, quotation.ID, wonID); err != nil {
		return nil, err
	}
	s.statusChanged(ctx, quotation, enum.QuotationStatusConverted, userID)

	if won != nil {
		e := event.New(event.OpportunityStageChanged, won.TenantID, won.ID, map[string]any{
			"from":         won.Stage,
			"to":           enum.StageClosedWon,
			"quotation_id": quotation.ID,
		})
		e.ActorID = actor(userID)
		publish(ctx, s.publisher, e)
	}

	e := event.New(event.QuotationConverted, quotation.TenantID, quotation.ID, map[string]any{
		"number":         quotation.Number,
		"opportunity_id": quotation.OpportunityID,
	})
	e.ActorID = actor(userID)
	publish(ctx, s.publisher, e)

	return s.GetQuotation(ctx, quotation.ID)
}

// ExpireQuotations marks every SENT or VIEWED quotation past its validity as
// EXPIRED. It runs across coworks and returns how many were expired.
func (s *QuotationService) ExpireQuotations(ctx context.Context) (int, error) {
	now := s.now()
	quotations, err := s.quotationRepo.ListExpirable(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range quotations {
		q := &quotations[i]
		tenantCtx := withTenant(ctx, q.TenantID)
		if err := s.transition(tenantCtx, q, enum.QuotationStatusExpired, uuid.Nil); err != nil {
			slog.WarnContext(ctx, "failed to expire quotation", "quotation_id", q.ID, "error", err)
			continue
		}
		publish(tenantCtx, s.publisher, event.New(event.QuotationExpired, q.TenantID, q.ID, map[string]any{
			"number":      q.Number,
			"valid_until": q.ValidUntil,
		}))
		expired++
	}
	return expired, nil
}

func (s *QuotationService) transition(ctx context.Context, q *entity.Quotation, next enum.QuotationStatus, userID uuid.UUID) error {
	if !q.Status.CanTransitionTo(next) {
		return apperror.NewConflictError(fmt.Sprintf("Cannot change quotation status from %s to %s", q.Status, next))
	}
	if err := s.quotationRepo.UpdateStatus(ctx, q.ID, next); err != nil {
		return err
	}
	s.statusChanged(ctx, q, next, userID)
	return nil
}

// statusChanged records a persisted status change on q and announces it
func (s *QuotationService) statusChanged(ctx context.Context, q *entity.Quotation, next enum.QuotationStatus, userID uuid.UUID) {
	previous := q.Status
	q.Status = next

	e := event.New(event.QuotationStatusChanged, q.TenantID, q.ID, map[string]any{
		"from": previous,
		"to":   next,
	})
	e.ActorID = actor(userID)
	publish(ctx, s.publisher, e)
	invalidate(ctx, s.invalidator, q.TenantID)
}

// sendToClient emails the quotation. Failures are logged and never undo the status change.
func (s *QuotationService) sendToClient(ctx context.Context, q *entity.Quotation) {
	if s.mailer == nil || !s.mailer.Enabled() {
		return
	}
	if q.Client == nil || q.Client.Email == nil || *q.Client.Email == "" {
		slog.WarnContext(ctx, "quotation client has no email, not sent", "quotation_id", q.ID)
		return
	}

	tenant, err := s.tenantRepo.GetByID(ctx, q.TenantID)
	if err != nil || tenant == nil {
		slog.WarnContext(ctx, "failed to load cowork for quotation email", "quotation_id", q.ID, "error", err)
		return
	}

	if err := s.mailer.SendQuotation(*q.Client.Email, quotationEmail(q, tenant)); err != nil {
		slog.WarnContext(ctx, "failed to send quotation email",
			"quotation_id", q.ID,
			"to", *q.Client.Email,
			"error", err,
		)
	}
}

func (s *QuotationService) checkReferences(ctx context.Context, clientID uuid.UUID, opportunityID *uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewFieldError("client_id", "Client not found")
	}
	if opportunityID == nil {
		return nil
	}
	opportunity, err := s.opportunityRepo.GetByID(ctx, *opportunityID)
	if err != nil {
		return err
	}
	if opportunity == nil {
		return apperror.NewFieldError("opportunity_id", "Opportunity not found")
	}
	return nil
}

func (s *QuotationService) currency(requested string, settings entity.TenantSettings) string {
	switch {
	case requested != "":
		return strings.ToUpper(requested)
	case settings.Currency != "":
		return strings.ToUpper(settings.Currency)
	case s.defaults.DefaultCurrency != "":
		return s.defaults.DefaultCurrency
	default:
		return "CLP"
	}
}

func (s *QuotationService) validityDays(settings entity.TenantSettings) int {
	if settings.QuotationValidityDays > 0 {
		return settings.QuotationValidityDays
	}
	if s.defaults.DefaultValidityDays > 0 {
		return s.defaults.DefaultValidityDays
	}
	return 30
}

func (s *QuotationService) numberPrefix(settings entity.TenantSettings) string {
	if settings.QuotationPrefix != "" {
		return settings.QuotationPrefix
	}
	return s.defaults.NumberPrefix
}

func quotationEmail(q *entity.Quotation, tenant *entity.Tenant) email.QuotationEmail {
	places := pricing.MinorUnits(q.Currency)
	lines := make([]email.QuotationLine, len(q.Items))
	for i, it := range q.Items {
		lines[i] = email.QuotationLine{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(places),
			Total:       it.Total.StringFixed(places),
		}
	}

	taxLabel := tenant.Settings.TaxLabel
	if taxLabel == "" {
		taxLabel = "IVA"
	}
	data := email.QuotationEmail{
		CoworkName:     tenant.Name,
		Number:         q.Number,
		Title:          q.Title,
		Currency:       q.Currency,
		Lines:          lines,
		Subtotal:       q.Subtotal.StringFixed(places),
		DiscountAmount: q.DiscountAmount.StringFixed(places),
		TaxLabel:       taxLabel,
		Taxes:          q.Taxes.StringFixed(places),
		Total:          q.Total.StringFixed(places),
		ValidUntil:     q.ValidUntil.In(tenant.Settings.Location()).Format("02/01/2006"),
		Footer:         tenant.Settings.QuotationFooter,
	}
	if q.Client != nil {
		data.ClientName = q.Client.Name
	}
	if q.Notes != nil {
		data.Notes = *q.Notes
	}
	return data
}

func toPricingItems(in []QuotationItemInput) []pricing.Item {
	items := make([]pricing.Item, len(in))
	for i, it := range in {
		items[i] = pricing.Item{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return items
}

func toQuotationItems(items []pricing.Item, currency string) []entity.QuotationItem {
	out := make([]entity.QuotationItem, len(items))
	for i, it := range items {
		out[i] = entity.QuotationItem{
			Position:    i + 1,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       pricing.LineTotal(it.Quantity, it.UnitPrice, currency),
		}
	}
	return out
}

func discountTypeOrDefault(t enum.DiscountType) enum.DiscountType {
	if t == "" {
		return enum.DiscountTypeFixed
	}
	return t
}

func discountError(err error) error {
	if errors.Is(err, pricing.ErrNegativeDiscount) {
		return apperror.NewFieldError("discount_value", "Discount cannot be negative")
	}
	return apperror.NewFieldError("discount_value", "Discount cannot exceed the subtotal")
}

func actor(userID uuid.UUID) *uuid.UUID {
	if userID == uuid.Nil {
		return nil
	}
	return &userID
}
