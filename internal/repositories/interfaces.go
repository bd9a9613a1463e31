package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ficcboard/backend/internal/models"
)

// ReportingRepository defines the read operations behind the desk dashboard.
type ReportingRepository interface {
	// LatestReportingDate returns the most recent date with book_pnl rows.
	// An empty ledger yields a zero-value date and a nil error.
	LatestReportingDate(ctx context.Context) (models.ReportingDate, error)
	GetKPI(ctx context.Context, date models.ReportingDate) (*models.KPI, error)
	GetAttribution(ctx context.Context, date models.ReportingDate) ([]*models.AttributionRow, error)
}

// StrucprdRepository defines the read operations over the structured-product
// inventory and its reference data.
type StrucprdRepository interface {
	GetSummary(ctx context.Context, fundCode string) (*models.StrucprdSummary, error)
	ListFiltered(ctx context.Context, filter *models.StrucprdFilter) ([]*models.Strucprd, error)
	CountFiltered(ctx context.Context, filter *models.StrucprdFilter) (int, error)
	GetLatestAccrualRates(ctx context.Context, module string) (map[string]*models.AccrualRates, error)
	// GetLatestUSDKRW returns the most recent USD/KRW observation. found is
	// false when no observation exists; that is not an error.
	GetLatestUSDKRW(ctx context.Context) (rate decimal.Decimal, found bool, err error)
}

// MarketRepository defines the reference-table reads behind the market page.
// The five per-date reads touch disjoint tables and are safe to issue
// concurrently.
type MarketRepository interface {
	LatestMarketDate(ctx context.Context) (models.ReportingDate, error)
	AvailableDates(ctx context.Context) ([]models.ReportingDate, error)
	GetMacroIndices(ctx context.Context, date models.ReportingDate) ([]*models.MacroIndexRow, error)
	GetDomesticRates(ctx context.Context, date models.ReportingDate) ([]*models.DomesticRateRow, error)
	GetYieldCurve(ctx context.Context, date models.ReportingDate) ([]*models.YieldCurveRow, error)
	GetKTBFutures(ctx context.Context, date models.ReportingDate) ([]*models.KTBFuturesRow, error)
	GetBondLending(ctx context.Context, date models.ReportingDate) ([]*models.BondLendingRow, error)
	GetTimeSeries(ctx context.Context, table, ticker string, days int) ([]*models.TimeSeriesPoint, error)
}
