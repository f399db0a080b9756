package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/pkg/apperror"
	"github.com/sangkips/gstpos-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProductService_CreateProduct(t *testing.T) {
	db := newStore()
	audit := &fakeAuditRepo{}
	svc := NewProductService(&fakeProductRepo{db: db}, NewAuditService(audit, nil, zap.NewNop()))

	t.Run("defaults and barcode", func(t *testing.T) {
		p, err := svc.CreateProduct(context.Background(), &CreateProductInput{
			Name:     "  Basmati Rice ",
			Quantity: 25,
			Price:    dec("120.456"),
			Actor:    Actor{Username: "manager"},
		})
		require.NoError(t, err)

		assert.Equal(t, "Basmati Rice", p.Name)
		assertDec(t, "120.46", p.Price, "price")
		assertDec(t, "0", p.CostPrice, "costPrice")
		assert.Equal(t, entity.DefaultHSNCode, p.HSNCode)
		assert.Equal(t, entity.DefaultMinStock, p.MinStock)
		require.NotNil(t, p.Barcode)
		assert.NotEmpty(t, *p.Barcode)
		assert.Equal(t, []string{entity.AuditProductAdded}, audit.actions())

		found, err := svc.GetProductByBarcode(context.Background(), *p.Barcode)
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
	})

	t.Run("validation", func(t *testing.T) {
		cost := dec("-1")
		_, err := svc.CreateProduct(context.Background(), &CreateProductInput{
			Name: " ", Quantity: -1, Price: dec("-5"), CostPrice: &cost,
		})
		require.Error(t, err)
		appErr := apperror.GetAppError(err)
		assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
		assert.Len(t, appErr.Errors, 4)
	})
}

func TestProductService_UpdateStockAndDelete(t *testing.T) {
	db := newStore()
	audit := &fakeAuditRepo{}
	svc := NewProductService(&fakeProductRepo{db: db}, NewAuditService(audit, nil, zap.NewNop()))
	p := db.addProduct("Ghee", 4, "550", "480")

	updated, err := svc.UpdateStock(context.Background(), p.ID, 30, Actor{Username: "manager"})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.Quantity)
	assert.Equal(t, 30, db.quantity(p.ID))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, 26, audit.entries[0].Details["change"])

	_, err = svc.UpdateStock(context.Background(), p.ID, -1, Actor{})
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	_, err = svc.UpdateStock(context.Background(), uuid.New(), 3, Actor{})
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)

	require.NoError(t, svc.DeleteProduct(context.Background(), p.ID, Actor{Username: "manager"}))
	_, err = svc.GetProductByID(context.Background(), p.ID)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
	assert.Equal(t, []string{entity.AuditProductStockUpdated, entity.AuditProductDeleted}, audit.actions())
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	db := newStore()
	audit := &fakeAuditRepo{}
	svc := NewCustomerService(&fakeCustomerRepo{db: db}, NewAuditService(audit, nil, zap.NewNop()))

	gstin := " 27aapfu0939f1zv "
	c, err := svc.CreateCustomer(context.Background(), &CreateCustomerInput{
		Name:     "Ravi Traders",
		GSTIN:    &gstin,
		TaxState: "Other",
	})
	require.NoError(t, err)
	assert.Equal(t, "27AAPFU0939F1ZV", *c.GSTIN)
	assert.Equal(t, enum.TaxStateOther, c.TaxState)
	assert.Nil(t, c.Phone)
	assert.Equal(t, []string{entity.AuditCustomerAdded}, audit.actions())

	got, err := svc.GetCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Traders", got.Name)

	bad := "NOT-A-GSTIN"
	_, err = svc.CreateCustomer(context.Background(), &CreateCustomerInput{Name: "", GSTIN: &bad, TaxState: "Mars"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
	assert.Len(t, audit.actions(), 1)
}

func newUserFixture(t *testing.T) (*UserService, *fakeUserRepo, *fakeAuditRepo) {
	t.Helper()
	roles := newFakeRoleRepo()
	users := newFakeUserRepo(roles)
	audit := &fakeAuditRepo{}
	return NewUserService(users, roles, NewAuditService(audit, nil, zap.NewNop())), users, audit
}

func addUser(t *testing.T, users *fakeUserRepo, username string, approved bool) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, Approved: approved, Provider: providerLocal}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUserService_ApprovalAndRoles(t *testing.T) {
	svc, users, audit := newUserFixture(t)
	admin := addUser(t, users, "admin", true)
	newcomer := addUser(t, users, "newcomer", false)
	actor := Actor{UserID: admin.ID, Username: admin.Username}

	approved, err := svc.SetApproval(context.Background(), newcomer.ID, true, actor)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.Equal(t, "admin", *approved.ApprovedBy)

	changed, err := svc.ChangeRole(context.Background(), newcomer.ID, entity.RoleCashier, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCashier, changed.PrimaryRole())

	_, err = svc.ChangeRole(context.Background(), newcomer.ID, "superuser", actor)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)

	check, err := svc.CheckUser(context.Background(), newcomer.ID)
	require.NoError(t, err)
	assert.Equal(t, UserCheck{Exists: true, Approved: true, Username: "newcomer", Role: entity.RoleCashier}, *check)

	assert.Equal(t, []string{entity.AuditUserApproved, entity.AuditUserRoleChanged}, audit.actions())
	assert.Equal(t, entity.RoleUser, audit.entries[1].Details["oldRole"])
}

func TestUserService_SelfProtection(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	admin := addUser(t, users, "admin", true)
	actor := Actor{UserID: admin.ID, Username: admin.Username}

	_, err := svc.SetApproval(context.Background(), admin.ID, false, actor)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	err = svc.DeleteUser(context.Background(), admin.ID, actor)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	other := addUser(t, users, "other", true)
	require.NoError(t, svc.DeleteUser(context.Background(), other.ID, actor))

	check, err := svc.CheckUser(context.Background(), other.ID)
	require.NoError(t, err)
	assert.False(t, check.Exists)
}

func TestAuthService_RegisterLoginRefresh(t *testing.T) {
	roles := newFakeRoleRepo()
	users := newFakeUserRepo(roles)
	jwtManager := newTestJWTManager()
	svc := NewAuthService(users, roles, jwtManager, zap.NewNop())

	user, err := svc.Register(context.Background(), &RegisterInput{Username: "cashier1", Email: "Cashier@Store.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "cashier@store.test", *user.Email)
	assert.Equal(t, entity.RoleUser, user.PrimaryRole())
	assert.False(t, user.Approved)

	_, err = svc.Login(context.Background(), &LoginInput{Identifier: "cashier1", Password: "secret1"})
	assert.Equal(t, apperror.ReasonAccountPending, apperror.GetAppError(err).Reason)

	stored, _ := users.GetByID(context.Background(), user.ID)
	stored.Approved = true
	require.NoError(t, users.Update(context.Background(), stored))

	out, err := svc.Login(context.Background(), &LoginInput{Identifier: "cashier@store.test", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)

	claims, err := jwtManager.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, []string{entity.RoleUser}, claims.Roles)

	refreshed, err := svc.RefreshToken(context.Background(), out.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.User.ID)

	_, err = svc.Login(context.Background(), &LoginInput{Identifier: "cashier1", Password: "wrong"})
	assert.Equal(t, apperror.ErrInvalidCredentials, err)

	_, err = svc.Register(context.Background(), &RegisterInput{Username: "cashier1", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	_, err = svc.Register(context.Background(), &RegisterInput{Username: "x", Password: "123"})
	appErr := apperror.GetAppError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Len(t, appErr.Errors, 2)
}

func TestDashboardService(t *testing.T) {
	db := newStore()
	db.addProduct("Plenty", 100, "10", "5")
	low := db.addProduct("Scarce", 3, "10", "5")
	db.addProduct("Under twenty", 15, "10", "5")

	analytics := &fakeAnalyticsRepo{
		summary: map[bool]repository.RevenueSummary{
			true:  {Revenue: dec("1000.004"), Profit: dec("300"), InvoiceCount: 8},
			false: {Revenue: dec("200"), Profit: dec("50"), Cost: dec("150"), InvoiceCount: 4},
		},
		daily: []repository.DailySalesResult{
			{Date: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), Revenue: dec("120.555"), Profit: dec("20"), Count: 2},
		},
		top: []repository.TopProductResult{{ProductName: "Rice", Quantity: 9, Revenue: dec("900"), Profit: dec("270")}},
	}
	svc := NewDashboardService(&fakeProductRepo{db: db}, &fakeCustomerRepo{db: db}, &fakeInvoiceRepo{db: db}, analytics)
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.LowStockCount)
	assertDec(t, "1000", stats.TotalRevenue, "totalRevenue")
	assertDec(t, "200", stats.TodaySales, "todaySales")
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), analytics.since[1])

	lowStock, err := svc.GetLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, lowStock, 1)
	assert.Equal(t, low.ID.String(), lowStock[0].ID)
	assert.Equal(t, entity.DefaultMinStock-3, lowStock[0].Shortage)

	trend, err := svc.GetSalesTrend(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, "2026-10-15", trend[0].Date)
	assertDec(t, "120.56", trend[0].Revenue, "revenue")
	assert.Equal(t, now.AddDate(0, 0, -7), analytics.since[len(analytics.since)-1])

	top, err := svc.GetTopProducts(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Rice", top[0].Name)
	assert.Equal(t, now.AddDate(0, 0, -30), analytics.since[len(analytics.since)-1])

	rp, err := svc.GetRevenueProfit(context.Background(), 30)
	require.NoError(t, err)
	assertDec(t, "25", rp.ProfitMargin, "profitMargin")
	assertDec(t, "50", rp.AverageOrderValue, "averageOrderValue")
	assert.Equal(t, int64(4), rp.TotalBills)
}

func TestInvoiceService_ListRejectsInvertedRange(t *testing.T) {
	svc := NewInvoiceService(&fakeInvoiceRepo{db: newStore()})
	from := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := svc.ListInvoices(context.Background(), &repository.InvoiceFilterParams{From: &from, To: &to})
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = svc.GetInvoice(context.Background(), uuid.New())
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func newTestJWTManager() *utils.JWTManager {
	return utils.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
}
