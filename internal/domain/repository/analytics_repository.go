package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailySalesResult is revenue and profit for one calendar day
type DailySalesResult struct {
	Date    time.Time
	Revenue decimal.Decimal
	Profit  decimal.Decimal
	Count   int64
}

// TopProductResult aggregates invoice line snapshots by product name
type TopProductResult struct {
	ProductName string
	Quantity    int64
	Revenue     decimal.Decimal
	Profit      decimal.Decimal
}

// RevenueSummary totals invoices in a window
type RevenueSummary struct {
	Revenue      decimal.Decimal
	Profit       decimal.Decimal
	Cost         decimal.Decimal
	Discount     decimal.Decimal
	GST          decimal.Decimal
	InvoiceCount int64
}

// AnalyticsRepository defines interface for analytics/aggregation queries
type AnalyticsRepository interface {
	// GetDailySales returns one row per day with sales since the given time
	GetDailySales(ctx context.Context, since time.Time) ([]DailySalesResult, error)

	// GetTopProducts returns best sellers by revenue since the given time
	GetTopProducts(ctx context.Context, since time.Time, limit int) ([]TopProductResult, error)

	// GetRevenueSummary totals invoices created at or after since
	GetRevenueSummary(ctx context.Context, since time.Time) (RevenueSummary, error)
}

// DataAdminRepository backs the bulk wipe used by the admin tools.
type DataAdminRepository interface {
	// ClearAll deletes business data and every non-admin user in one transaction.
	ClearAll(ctx context.Context) (map[string]int64, error)
}
