package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ficcboard/backend/internal/db"
	"github.com/ficcboard/backend/internal/models"
)

type reportingRepository struct {
	db *db.DB
}

// NewReportingRepository creates a new reporting repository
func NewReportingRepository(database *db.DB) ReportingRepository {
	return &reportingRepository{db: database}
}

// getSQLDB returns the underlying SQL database for complex queries
func (r *reportingRepository) getSQLDB() (*sql.DB, error) {
	return r.db.GetSQLDB()
}

func (r *reportingRepository) LatestReportingDate(ctx context.Context) (models.ReportingDate, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return "", fmt.Errorf("failed to get SQL DB: %w", err)
	}

	query := `SELECT COALESCE(MAX(std_dt), '') FROM book_pnl`

	var latest string
	if err := sqlDB.QueryRowContext(ctx, query).Scan(&latest); err != nil {
		return "", fmt.Errorf("failed to get latest reporting date: %w", err)
	}
	return models.ReportingDate(latest), nil
}

func (r *reportingRepository) GetKPI(ctx context.Context, date models.ReportingDate) (*models.KPI, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	// A date with no rows must yield zero-valued sums so downstream
	// arithmetic never sees null.
	query := `
		SELECT
			COALESCE((SELECT SUM(pstn) FROM asset_position WHERE asst_lblt = $1 AND std_dt = $3), 0) AS asset_total,
			COALESCE((SELECT SUM(pstn) FROM asset_position WHERE asst_lblt = $2 AND std_dt = $3), 0) AS liability_total,
			COALESCE((SELECT SUM(daily_pnl) FROM book_pnl WHERE std_dt = $3), 0) AS daily_pnl,
			COALESCE((SELECT SUM(monthly_pnl) FROM book_pnl WHERE std_dt = $3), 0) AS monthly_pnl,
			COALESCE((SELECT SUM(accmlt_pnl) FROM book_pnl WHERE std_dt = $3), 0) AS accmlt_pnl`

	kpi := &models.KPI{}
	err = sqlDB.QueryRowContext(ctx, query, models.SideAsset, models.SideLiability, string(date)).Scan(
		&kpi.AssetTotal, &kpi.LiabilityTotal,
		&kpi.DailyPnl, &kpi.MonthlyPnl, &kpi.AccmltPnl,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get KPI for %s: %w", date, err)
	}
	return kpi, nil
}

func (r *reportingRepository) GetAttribution(ctx context.Context, date models.ReportingDate) ([]*models.AttributionRow, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	// INNER JOIN against display_ordering: funds without a rank entry are
	// excluded from the attribution view rather than defaulted to rank 0.
	query := `
		SELECT
			fp.fnd_nm,
			COALESCE(fp.prc_pnl, 0) + COALESCE(fp.int_pnl, 0) + COALESCE(fp.trd_pnl, 0) + COALESCE(fp.mny_pnl, 0) AS daily_pnl,
			COALESCE(fp.prc_pnl, 0) AS prc_pnl,
			COALESCE(fp.int_pnl, 0) AS int_pnl,
			COALESCE(fp.trd_pnl, 0) AS trd_pnl,
			COALESCE(fp.mny_pnl, 0) AS mny_pnl,
			d.display_order
		FROM fund_pnl fp
		INNER JOIN display_ordering d
			ON fp.fnd_nm = d.nm AND d.table_name = 'fund_pnl'
		WHERE fp.std_dt = $1
		ORDER BY d.display_order ASC`

	rows, err := sqlDB.QueryContext(ctx, query, string(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get attribution for %s: %w", date, err)
	}
	defer rows.Close()

	var result []*models.AttributionRow
	for rows.Next() {
		row := &models.AttributionRow{}
		err := rows.Scan(
			&row.FundName, &row.DailyPnl,
			&row.PricePnl, &row.InterestPnl, &row.TradingPnl, &row.FundingPnl,
			&row.DisplayOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attribution row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
