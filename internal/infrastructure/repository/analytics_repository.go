package repository

import (
	"context"
	"time"

	domainRepo "github.com/sangkips/gstpos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetDailySales(ctx context.Context, since time.Time) ([]domainRepo.DailySalesResult, error) {
	var results []domainRepo.DailySalesResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE(bill_date) AS date,
			COALESCE(SUM(grand_total), 0) AS revenue,
			COALESCE(SUM(total_profit), 0) AS profit,
			COUNT(*) AS count
		FROM invoices
		WHERE bill_date >= ?
		GROUP BY DATE(bill_date)
		ORDER BY date ASC
	`, since).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetTopProducts groups by the snapshotted product name, so renamed or
// deleted products still report under the name they were sold as.
func (r *analyticsRepository) GetTopProducts(ctx context.Context, since time.Time, limit int) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			ii.product_name AS product_name,
			COALESCE(SUM(ii.quantity), 0) AS quantity,
			COALESCE(SUM(ii.line_subtotal), 0) AS revenue,
			COALESCE(SUM(ii.line_profit), 0) AS profit
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.bill_date >= ?
		GROUP BY ii.product_name
		ORDER BY revenue DESC
		LIMIT ?
	`, since, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyticsRepository) GetRevenueSummary(ctx context.Context, since time.Time) (domainRepo.RevenueSummary, error) {
	var summary domainRepo.RevenueSummary

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(grand_total), 0) AS revenue,
			COALESCE(SUM(total_profit), 0) AS profit,
			COALESCE(SUM(total_cost), 0) AS cost,
			COALESCE(SUM(discount_amount), 0) AS discount,
			COALESCE(SUM(gst_amount), 0) AS gst,
			COUNT(*) AS invoice_count
		FROM invoices
		WHERE bill_date >= ?
	`, since).Scan(&summary).Error

	return summary, err
}
