package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

var errStorage = errors.New("storage unavailable")

// store is an in-memory database shared by the fake repositories so that
// CreateWithStock can decrement products atomically under one lock.
type store struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*entity.Product
	customers map[uuid.UUID]*entity.Customer
	invoices  []*entity.Invoice
	sequences map[int]int64

	failInvoiceCreate error
}

func newStore() *store {
	return &store{
		products:  make(map[uuid.UUID]*entity.Product),
		customers: make(map[uuid.UUID]*entity.Customer),
		sequences: make(map[int]int64),
	}
}

func (s *store) addProduct(name string, qty int, price, cost string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Product{
		ID:        uuid.New(),
		Name:      name,
		Quantity:  qty,
		Price:     decimal.RequireFromString(price),
		CostPrice: decimal.RequireFromString(cost),
		HSNCode:   "1006",
		MinStock:  entity.DefaultMinStock,
	}
	s.products[p.ID] = p
	cp := *p
	return &cp
}

func (s *store) addCustomer(c *entity.Customer) *entity.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.customers[c.ID] = c
	return c
}

func (s *store) quantity(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

func (s *store) invoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}

// --- products ---

type fakeProductRepo struct{ db *store }

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.db.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.db.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *p
	r.db.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, _ *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	all, _ := r.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeProductRepo) ListAll(_ context.Context) ([]entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]entity.Product, 0, len(r.db.products))
	for _, p := range r.db.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProductRepo) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	all, _ := r.ListAll(ctx)
	var out []entity.Product
	for _, p := range all {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (r *fakeProductRepo) UpdateQuantity(_ context.Context, id uuid.UUID, quantity int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.products[id].Quantity = quantity
	return nil
}

func (r *fakeProductRepo) Count(_ context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.db.products)), nil
}

func (r *fakeProductRepo) CountBelow(_ context.Context, threshold int) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, p := range r.db.products {
		if p.Quantity < threshold {
			n++
		}
	}
	return n, nil
}

// --- customers ---

type fakeCustomerRepo struct {
	db  *store
	err error
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.db.addCustomer(c)
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, _ *pagination.PaginationParams, _ string) ([]entity.Customer, int64, error) {
	all, _ := r.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeCustomerRepo) ListAll(_ context.Context) ([]entity.Customer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]entity.Customer, 0, len(r.db.customers))
	for _, c := range r.db.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCustomerRepo) Count(_ context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(r.db.customers)), nil
}

// --- invoices ---

type fakeInvoiceRepo struct{ db *store }

// CreateWithStock mirrors the transactional repository: all decrements are
// checked before any is applied, and the sequence only advances on success.
func (r *fakeInvoiceRepo) CreateWithStock(_ context.Context, invoice *entity.Invoice, decrements map[uuid.UUID]int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var short []uuid.UUID
	for id, qty := range decrements {
		p, ok := r.db.products[id]
		if !ok || p.Quantity < qty {
			short = append(short, id)
		}
	}
	if len(short) > 0 {
		return &repository.StockError{ProductIDs: short}
	}
	if r.db.failInvoiceCreate != nil {
		return r.db.failInvoiceCreate
	}

	for id, qty := range decrements {
		r.db.products[id].Quantity -= qty
	}
	r.db.sequences[invoice.BillYear]++
	invoice.BillNumber = entity.FormatBillNumber(invoice.BillYear, r.db.sequences[invoice.BillYear])
	invoice.CreatedAt = invoice.BillDate
	r.db.invoices = append(r.db.invoices, invoice)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, inv := range r.db.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) List(ctx context.Context, _ *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	all, _ := r.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeInvoiceRepo) ListAll(_ context.Context) ([]entity.Invoice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]entity.Invoice, 0, len(r.db.invoices))
	for i := len(r.db.invoices) - 1; i >= 0; i-- {
		out = append(out, *r.db.invoices[i])
	}
	return out, nil
}

func (r *fakeInvoiceRepo) Count(_ context.Context) (int64, error) {
	return int64(r.db.invoiceCount()), nil
}

// --- audit ---

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []entity.AuditLog
	err     error
}

func (r *fakeAuditRepo) Create(_ context.Context, e *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.entries {
		if existing.ID == e.ID {
			return nil
		}
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, action string, limit int) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.AuditLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if action == "" || r.entries[i].Action == action {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.AuditLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].UserID != nil && *r.entries[i].UserID == userID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) CountByActionForUser(_ context.Context, userID uuid.UUID) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range r.entries {
		if e.UserID != nil && *e.UserID == userID {
			counts[e.Action]++
		}
	}
	return counts, nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

func (r *fakeAuditRepo) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

type fakeJournal struct {
	mu      sync.Mutex
	records []repository.JournalRecord
	sent    map[int64]bool
	markErr error
}

func (j *fakeJournal) Append(_ context.Context, e *entity.AuditLog) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, repository.JournalRecord{ID: int64(len(j.records) + 1), Entry: *e})
	return nil
}

func (j *fakeJournal) FetchPending(_ context.Context, limit int) ([]repository.JournalRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []repository.JournalRecord
	for _, r := range j.records {
		if !j.sent[r.ID] && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (j *fakeJournal) MarkSent(_ context.Context, id int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.markErr != nil {
		return j.markErr
	}
	if j.sent == nil {
		j.sent = make(map[int64]bool)
	}
	j.sent[id] = true
	return nil
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
	roles *fakeRoleRepo
}

func newFakeUserRepo(roles *fakeRoleRepo) *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User), roles: roles}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) find(match func(*entity.User) bool) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email != nil && strings.EqualFold(*u.Email, email) }), nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username }), nil
}

func (r *fakeUserRepo) GetByProviderID(_ context.Context, provider, providerID string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return u.Provider == provider && u.ProviderID != nil && *u.ProviderID == providerID
	}), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[u.ID]
	if !ok {
		return errors.New("not found")
	}
	cp := *u
	cp.Roles = existing.Roles
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, _ *pagination.PaginationParams, _ string) ([]entity.User, int64, error) {
	all, _ := r.ListAll(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) ReplaceRoles(_ context.Context, userID uuid.UUID, roleIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return errors.New("not found")
	}
	u.Roles = nil
	for _, id := range roleIDs {
		if role := r.roles.byID(id); role != nil {
			u.Roles = append(u.Roles, *role)
		}
	}
	return nil
}

type fakeRoleRepo struct {
	roles []entity.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	perms := func(names ...string) []entity.Permission {
		out := make([]entity.Permission, len(names))
		for i, n := range names {
			out[i] = entity.Permission{ID: uint(i + 1), Name: n}
		}
		return out
	}
	return &fakeRoleRepo{roles: []entity.Role{
		{ID: 1, Name: entity.RoleAdmin, Permissions: perms(entity.PermManageUsers, entity.PermCheckout)},
		{ID: 2, Name: entity.RoleManager, Permissions: perms(entity.PermViewReports, entity.PermCheckout)},
		{ID: 3, Name: entity.RoleCashier, Permissions: perms(entity.PermCheckout)},
		{ID: 4, Name: entity.RoleUser, Permissions: perms(entity.PermViewProducts)},
	}}
}

func (r *fakeRoleRepo) byID(id uint) *entity.Role {
	for i := range r.roles {
		if r.roles[i].ID == id {
			return &r.roles[i]
		}
	}
	return nil
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	for i := range r.roles {
		if r.roles[i].Name == name {
			role := r.roles[i]
			return &role, nil
		}
	}
	return nil, nil
}

func (r *fakeRoleRepo) List(_ context.Context) ([]entity.Role, error) {
	return r.roles, nil
}

// --- analytics ---

type fakeAnalyticsRepo struct {
	daily   []repository.DailySalesResult
	top     []repository.TopProductResult
	summary map[bool]repository.RevenueSummary // keyed by "since is zero"
	since   []time.Time
}

func (r *fakeAnalyticsRepo) GetDailySales(_ context.Context, since time.Time) ([]repository.DailySalesResult, error) {
	r.since = append(r.since, since)
	return r.daily, nil
}

func (r *fakeAnalyticsRepo) GetTopProducts(_ context.Context, since time.Time, limit int) ([]repository.TopProductResult, error) {
	r.since = append(r.since, since)
	if limit < len(r.top) {
		return r.top[:limit], nil
	}
	return r.top, nil
}

func (r *fakeAnalyticsRepo) GetRevenueSummary(_ context.Context, since time.Time) (repository.RevenueSummary, error) {
	r.since = append(r.since, since)
	return r.summary[since.IsZero()], nil
}

// --- side effects ---

type fakePublisher struct {
	mu     sync.Mutex
	events []interface{}
	keys   []string
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) SendInvoiceEmail(to string, _ *entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}
