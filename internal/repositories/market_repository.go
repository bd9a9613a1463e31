package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ficcboard/backend/internal/db"
	"github.com/ficcboard/backend/internal/models"
)

// availableDatesWindow caps the date navigation history.
const availableDatesWindow = 365

type marketRepository struct {
	db *db.DB
}

// NewMarketRepository creates a new market data repository
func NewMarketRepository(database *db.DB) MarketRepository {
	return &marketRepository{db: database}
}

func (r *marketRepository) getSQLDB() (*sql.DB, error) {
	return r.db.GetSQLDB()
}

func (r *marketRepository) LatestMarketDate(ctx context.Context) (models.ReportingDate, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return "", fmt.Errorf("failed to get SQL DB: %w", err)
	}

	var latest string
	err = sqlDB.QueryRowContext(ctx, `SELECT COALESCE(MAX(base_date), '') FROM tb_macro_index`).Scan(&latest)
	if err != nil {
		return "", fmt.Errorf("failed to get latest market date: %w", err)
	}
	return models.ReportingDate(latest), nil
}

func (r *marketRepository) AvailableDates(ctx context.Context) ([]models.ReportingDate, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	query := `
		SELECT DISTINCT base_date
		FROM tb_macro_index
		ORDER BY base_date DESC
		LIMIT $1`

	rows, err := sqlDB.QueryContext(ctx, query, availableDatesWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to get available market dates: %w", err)
	}
	defer rows.Close()

	var dates []models.ReportingDate
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan market date: %w", err)
		}
		dates = append(dates, models.ReportingDate(d))
	}
	return dates, rows.Err()
}

func (r *marketRepository) GetMacroIndices(ctx context.Context, date models.ReportingDate) ([]*models.MacroIndexRow, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	query := `
		SELECT base_date, asset_class, ticker,
			COALESCE(close_value, 0), COALESCE(change_val, 0), COALESCE(change_pct, 0)
		FROM tb_macro_index
		WHERE base_date = $1`

	rows, err := sqlDB.QueryContext(ctx, query, string(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get macro indices for %s: %w", date, err)
	}
	defer rows.Close()

	var result []*models.MacroIndexRow
	for rows.Next() {
		row := &models.MacroIndexRow{}
		if err := rows.Scan(&row.BaseDate, &row.AssetClass, &row.Ticker,
			&row.CloseValue, &row.ChangeVal, &row.ChangePct); err != nil {
			return nil, fmt.Errorf("failed to scan macro index row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *marketRepository) GetDomesticRates(ctx context.Context, date models.ReportingDate) ([]*models.DomesticRateRow, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	query := `
		SELECT base_date, rate_type, COALESCE(maturity, ''), COALESCE(ticker_name, ''),
			COALESCE(yield_val, 0), COALESCE(change_bp, 0)
		FROM tb_domestic_rate
		WHERE base_date = $1`

	rows, err := sqlDB.QueryContext(ctx, query, string(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get domestic rates for %s: %w", date, err)
	}
	defer rows.Close()

	var result []*models.DomesticRateRow
	for rows.Next() {
		row := &models.DomesticRateRow{}
		if err := rows.Scan(&row.BaseDate, &row.RateType, &row.Maturity, &row.TickerName,
			&row.YieldVal, &row.ChangeBp); err != nil {
			return nil, fmt.Errorf("failed to scan domestic rate row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *marketRepository) GetYieldCurve(ctx context.Context, date models.ReportingDate) ([]*models.YieldCurveRow, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	query := `
		SELECT base_date, sector, COALESCE(credit_rating, ''), tenor, COALESCE(yield_rate, 0)
		FROM tb_yield_curve_matrix
		WHERE base_date = $1`

	rows, err := sqlDB.QueryContext(ctx, query, string(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get yield curve for %s: %w", date, err)
	}
	defer rows.Close()

	var result []*models.YieldCurveRow
	for rows.Next() {
		row := &models.YieldCurveRow{}
		if err := rows.Scan(&row.BaseDate, &row.Sector, &row.CreditRating,
			&row.Tenor, &row.YieldRate); err != nil {
			return nil, fmt.Errorf("failed to scan yield curve row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *marketRepository) GetKTBFutures(ctx context.Context, date models.ReportingDate) ([]*models.KTBFuturesRow, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	query := `
		SELECT base_date, ticker, COALESCE(close_price, 0), COALESCE(volume, 0),
			COALESCE(net_foreign, 0), COALESCE(net_fin_invest, 0), COALESCE(net_bank, 0)
		FROM tb_ktb_futures
		WHERE base_date = $1`

	rows, err := sqlDB.QueryContext(ctx, query, string(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get KTB futures for %s: %w", date, err)
	}
	defer rows.Close()

	var result []*models.KTBFuturesRow
	for rows.Next() {
		row := &models.KTBFuturesRow{}
		if err := rows.Scan(&row.BaseDate, &row.Ticker, &row.ClosePrice, &row.Volume,
			&row.NetForeign, &row.NetFinInvest, &row.NetBank); err != nil {
			return nil, fmt.Errorf("failed to scan KTB futures row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *marketRepository) GetBondLending(ctx context.Context, date models.ReportingDate) ([]*models.BondLendingRow, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	query := `
		SELECT base_date, bond_ticker, COALESCE(borrow_amt, 0), COALESCE(repay_amt, 0),
			COALESCE(net_change, 0), COALESCE(balance, 0)
		FROM tb_bond_lending
		WHERE base_date = $1`

	rows, err := sqlDB.QueryContext(ctx, query, string(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get bond lending for %s: %w", date, err)
	}
	defer rows.Close()

	var result []*models.BondLendingRow
	for rows.Next() {
		row := &models.BondLendingRow{}
		if err := rows.Scan(&row.BaseDate, &row.BondTicker, &row.BorrowAmt, &row.RepayAmt,
			&row.NetChange, &row.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan bond lending row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *marketRepository) GetTimeSeries(ctx context.Context, table, ticker string, days int) ([]*models.TimeSeriesPoint, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	var query string
	switch table {
	case "macro":
		query = `
			SELECT base_date, COALESCE(close_value, 0) AS value
			FROM tb_macro_index
			WHERE ticker = $1
			ORDER BY base_date DESC
			LIMIT $2`
	case "domestic":
		query = `
			SELECT base_date, COALESCE(yield_val, 0) AS value
			FROM tb_domestic_rate
			WHERE maturity = $1
			ORDER BY base_date DESC
			LIMIT $2`
	case "credit":
		query = `
			SELECT base_date, COALESCE(yield_rate, 0) AS value
			FROM tb_yield_curve_matrix
			WHERE sector = $1
			ORDER BY base_date DESC
			LIMIT $2`
	default:
		return nil, fmt.Errorf("unknown time series table: %s", table)
	}

	rows, err := sqlDB.QueryContext(ctx, query, ticker, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s time series for %s: %w", table, ticker, err)
	}
	defer rows.Close()

	var points []*models.TimeSeriesPoint
	for rows.Next() {
		var d models.ReportingDate
		p := &models.TimeSeriesPoint{}
		if err := rows.Scan(&d, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan time series point: %w", err)
		}
		p.Date = d.Display()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Oldest first for charting.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
