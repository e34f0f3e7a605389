package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/domain/repository"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/pagination"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	UserID  uuid.UUID
	Name    string
	Email   *string
	Phone   *string
	Company *string
	TaxID   *string
	Address *string
	Notes   *string
}

// CreateClient creates a new client in the active cowork
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "Name is required")
	}
	email := normalizeEmail(input.Email)
	if err := s.ensureEmailAvailable(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	client := &entity.Client{
		TenantID:    tenantID,
		CreatedByID: input.UserID,
		Name:        name,
		Email:       email,
		Phone:       input.Phone,
		Company:     input.Company,
		TaxID:       input.TaxID,
		Address:     input.Address,
		Notes:       input.Notes,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients lists clients with page or cursor pagination, whichever the params ask for
func (s *ClientService) ListClients(ctx context.Context, params *pagination.UnifiedPaginationParams, search string) (*pagination.UnifiedPaginatedResult[entity.Client], error) {
	if params.IsCursorBased() {
		cursorParams := params.ToCursorParams()
		clients, err := s.clientRepo.ListWithCursor(ctx, cursorParams, search)
		if err != nil {
			return nil, apperror.NewBadRequestError("Invalid cursor")
		}

		cursorPag, items := pagination.NewCursorPagination(clients, cursorParams,
			func(c entity.Client) string { return c.ID.String() },
			func(c entity.Client) time.Time { return c.CreatedAt },
		)
		return pagination.NewUnifiedPaginatedResultFromCursor(items, cursorPag), nil
	}

	pageParams := params.ToPaginationParams()
	clients, total, err := s.clientRepo.List(ctx, pageParams, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(pageParams.Page, pageParams.PerPage, total)
	return pagination.NewUnifiedPaginatedResultFromPage(clients, pag), nil
}

// UpdateClientInput represents the update client input
type UpdateClientInput struct {
	ID      uuid.UUID
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	TaxID   *string
	Address *string
	Notes   *string
}

// UpdateClient updates a client
func (s *ClientService) UpdateClient(ctx context.Context, input *UpdateClientInput) (*entity.Client, error) {
	client, err := s.GetClient(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldError("name", "Name is required")
		}
		client.Name = name
	}
	if input.Email != nil {
		email := normalizeEmail(input.Email)
		if err := s.ensureEmailAvailable(ctx, email, client.ID); err != nil {
			return nil, err
		}
		client.Email = email
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.Company != nil {
		client.Company = input.Company
	}
	if input.TaxID != nil {
		client.TaxID = input.TaxID
	}
	if input.Address != nil {
		client.Address = input.Address
	}
	if input.Notes != nil {
		client.Notes = input.Notes
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient deletes a client
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, id)
}

func (s *ClientService) ensureEmailAvailable(ctx context.Context, email *string, selfID uuid.UUID) error {
	if email == nil {
		return nil
	}
	existing, err := s.clientRepo.GetByEmail(ctx, *email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return apperror.NewConflictError("A client with this email already exists")
	}
	return nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	return stringPtr(strings.ToLower(strings.TrimSpace(*email)))
}
