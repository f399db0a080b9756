package service

import (
	"context"
	"time"

	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StatsLowStockThreshold is the fixed quantity below which the dashboard
// counts a product as running low. Analytics uses each product's minStock.
const StatsLowStockThreshold = 20

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 366
	defaultTopProducts   = 10
	maxTopProducts       = 100
)

// DashboardService provides dashboard statistics and sales analytics
type DashboardService struct {
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	invoiceRepo   repository.InvoiceRepository
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	analyticsRepo repository.AnalyticsRepository,
) *DashboardService {
	return &DashboardService{
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		invoiceRepo:   invoiceRepo,
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalProducts  int64           `json:"totalProducts"`
	TotalCustomers int64           `json:"totalCustomers"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalInvoices  int64           `json:"totalInvoices"`
	LowStockCount  int64           `json:"lowStockCount"`
	TodaySales     decimal.Decimal `json:"todaySales"`
	TodayProfit    decimal.Decimal `json:"todayProfit"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalInvoices, err = s.invoiceRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.LowStockCount, err = s.productRepo.CountBelow(ctx, StatsLowStockThreshold); err != nil {
		return nil, err
	}

	allTime, err := s.analyticsRepo.GetRevenueSummary(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = allTime.Revenue.Round(2)

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.analyticsRepo.GetRevenueSummary(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	stats.TodaySales = today.Revenue.Round(2)
	stats.TodayProfit = today.Profit.Round(2)

	return stats, nil
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
	Count   int64           `json:"count"`
}

// GetSalesTrend returns per-day revenue, profit and invoice count for the last days.
func (s *DashboardService) GetSalesTrend(ctx context.Context, days int) ([]DailySalesPoint, error) {
	rows, err := s.analyticsRepo.GetDailySales(ctx, s.since(days))
	if err != nil {
		return nil, err
	}

	points := make([]DailySalesPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, DailySalesPoint{
			Date:    r.Date.Format("2006-01-02"),
			Revenue: r.Revenue.Round(2),
			Profit:  r.Profit.Round(2),
			Count:   r.Count,
		})
	}
	return points, nil
}

// TopProduct is a best seller aggregated from invoice line snapshots
type TopProduct struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Profit   decimal.Decimal `json:"profit"`
}

// GetTopProducts returns the best sellers by revenue
func (s *DashboardService) GetTopProducts(ctx context.Context, days, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = defaultTopProducts
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}

	rows, err := s.analyticsRepo.GetTopProducts(ctx, s.since(days), limit)
	if err != nil {
		return nil, err
	}

	top := make([]TopProduct, 0, len(rows))
	for _, r := range rows {
		top = append(top, TopProduct{
			Name:     r.ProductName,
			Quantity: r.Quantity,
			Revenue:  r.Revenue.Round(2),
			Profit:   r.Profit.Round(2),
		})
	}
	return top, nil
}

// LowStockItem is a product at or below its minimum stock
type LowStockItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrentStock int    `json:"currentStock"`
	MinStock     int    `json:"minStock"`
	Shortage     int    `json:"shortage"`
}

// GetLowStock lists products whose quantity is at or below minStock, lowest first
func (s *DashboardService) GetLowStock(ctx context.Context) ([]LowStockItem, error) {
	products, err := s.productRepo.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]LowStockItem, 0, len(products))
	for _, p := range products {
		items = append(items, LowStockItem{
			ID:           p.ID.String(),
			Name:         p.Name,
			CurrentStock: p.Quantity,
			MinStock:     p.MinStock,
			Shortage:     p.MinStock - p.Quantity,
		})
	}
	return items, nil
}

// RevenueProfit summarises a sales window
type RevenueProfit struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	TotalDiscount     decimal.Decimal `json:"totalDiscount"`
	TotalGST          decimal.Decimal `json:"totalGst"`
	ProfitMargin      decimal.Decimal `json:"profitMargin"`
	TotalBills        int64           `json:"totalBills"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// GetRevenueProfit totals revenue, profit and cost for the last days
func (s *DashboardService) GetRevenueProfit(ctx context.Context, days int) (*RevenueProfit, error) {
	sum, err := s.analyticsRepo.GetRevenueSummary(ctx, s.since(days))
	if err != nil {
		return nil, err
	}

	out := &RevenueProfit{
		TotalRevenue:      sum.Revenue.Round(2),
		TotalProfit:       sum.Profit.Round(2),
		TotalCost:         sum.Cost.Round(2),
		TotalDiscount:     sum.Discount.Round(2),
		TotalGST:          sum.GST.Round(2),
		ProfitMargin:      decimal.Zero,
		TotalBills:        sum.InvoiceCount,
		AverageOrderValue: decimal.Zero,
	}
	if sum.Revenue.IsPositive() {
		out.ProfitMargin = sum.Profit.Div(sum.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	if sum.InvoiceCount > 0 {
		out.AverageOrderValue = sum.Revenue.Div(decimal.NewFromInt(sum.InvoiceCount)).Round(2)
	}
	return out, nil
}

func (s *DashboardService) since(days int) time.Time {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}
	return s.now().AddDate(0, 0, -days)
}
