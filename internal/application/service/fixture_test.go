package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/config"
	"github.com/sangkips/cowork-api/internal/domain/authz"
	"github.com/sangkips/cowork-api/internal/domain/entity"
	"github.com/sangkips/cowork-api/internal/infrastructure/event"
	"github.com/sangkips/cowork-api/internal/infrastructure/repository"
	"github.com/sangkips/cowork-api/internal/testutil"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/sangkips/cowork-api/pkg/email"
	"github.com/sangkips/cowork-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type invalidations struct {
	mu      sync.Mutex
	tenants []uuid.UUID
}

func (i *invalidations) Invalidate(_ context.Context, tenantID uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tenants = append(i.tenants, tenantID)
}

func (i *invalidations) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.tenants)
}

type sentQuotation struct {
	to   string
	data email.QuotationEmail
}

type fakeMailer struct {
	mu         sync.Mutex
	enabled    bool
	err        error
	quotations []sentQuotation
	invites    []string
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) SendQuotation(to string, data email.QuotationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotations = append(m.quotations, sentQuotation{to: to, data: data})
	return m.err
}

func (m *fakeMailer) SendMemberInvite(to string, _ email.MemberInviteEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites = append(m.invites, to)
	return m.err
}

type fixture struct {
	db     *gorm.DB
	ctx    context.Context
	tenant *entity.Tenant
	owner  *entity.User
	events *event.Recorder
	inv    *invalidations
	mailer *fakeMailer

	clients       *ClientService
	leads         *LeadService
	opportunities *OpportunityService
	quotations    *QuotationService
	spaces        *SpaceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com", authz.RoleUser)
	tenant, ctx := testutil.CreateTenant(t, db, owner, "nomada")

	f := &fixture{
		db:     db,
		ctx:    ctx,
		tenant: tenant,
		owner:  owner,
		events: &event.Recorder{},
		inv:    &invalidations{},
		mailer: &fakeMailer{enabled: true},
	}

	clientRepo := repository.NewClientRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	tenantRepo := repository.NewTenantRepository(db)

	f.clients = NewClientService(clientRepo)
	f.leads = NewLeadService(leadRepo, opportunityRepo, f.events, f.inv)
	f.leads.now = fixedClock
	f.opportunities = NewOpportunityService(opportunityRepo, clientRepo, leadRepo, f.events, f.inv)
	f.opportunities.now = fixedClock
	f.quotations = NewQuotationService(quotationRepo, clientRepo, opportunityRepo, tenantRepo, f.mailer, f.events, f.inv,
		config.QuotationConfig{DefaultCurrency: "CLP", DefaultValidityDays: 30, NumberPrefix: "COT-"})
	f.quotations.now = fixedClock
	f.spaces = NewSpaceService(repository.NewSpaceRepository(db), repository.NewBookingRepository(db), clientRepo, tenantRepo, f.events)
	return f
}

func (f *fixture) client(t *testing.T, name string) *entity.Client {
	return testutil.CreateClient(t, f.db, f.tenant.ID, f.owner.ID, name)
}

// otherCowork creates a second cowork with its own owner
func (f *fixture) otherCowork(t *testing.T) (*entity.Tenant, context.Context) {
	other := testutil.CreateUser(t, f.db, "other@example.com", authz.RoleUser)
	return testutil.CreateTenant(t, f.db, other, "otro")
}

// otherTenant returns a context scoped to a second cowork
func (f *fixture) otherTenant(t *testing.T) context.Context {
	_, ctx := f.otherCowork(t)
	return ctx
}

func assertStatus(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperror.StatusOf(err), err.Error())
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.Equal(t, 422, appErr.Code, err.Error())
	fields := make([]string, 0, len(appErr.Errors))
	for _, fe := range appErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, field)
}

func defaultPage() *pagination.PaginationParams {
	return pagination.DefaultPagination()
}
