package services

import (
	"context"

	"github.com/ficcboard/backend/internal/models"
)

// ReportingService assembles the desk dashboard snapshot.
type ReportingService interface {
	// GetDeskSnapshot resolves the latest reporting date and builds the desk
	// snapshot for it. Returns (nil, nil) when the ledger has no data yet;
	// that is a normal, renderable state.
	GetDeskSnapshot(ctx context.Context) (*models.DeskSnapshot, error)
	// GetDeskSnapshotAt builds the snapshot for a caller-supplied date. The
	// date is used verbatim; an unknown date yields zero-valued aggregates.
	GetDeskSnapshotAt(ctx context.Context, date models.ReportingDate) (*models.DeskSnapshot, error)
}

// StrucprdService assembles the structured-product holdings dashboard and
// serves the filtered listing.
type StrucprdService interface {
	// GetHoldingsSnapshot builds the holdings dashboard. A repository failure
	// here is deliberately downgraded to (nil, nil) so the caller can render
	// an onboarding message instead of an error page; this is the only
	// boundary that swallows query failures.
	GetHoldingsSnapshot(ctx context.Context) (*models.HoldingsSnapshot, error)
	// ListProducts returns one page of the generic multi-fund listing.
	// page is 1-based; callFilter defaults to models.CallFilterAlive when
	// empty, which hides called products.
	ListProducts(ctx context.Context, query string, page int, callFilter models.CallFilter) (*models.StrucprdPage, error)
	// ListHoldings returns the full filtered set for the holdings fund as a
	// single page (no pagination in the asset-holding context).
	ListHoldings(ctx context.Context, query string, callFilter models.CallFilter) ([]*models.Strucprd, error)
}

// MarketService assembles the market reference page.
type MarketService interface {
	// GetDailyData builds the market page for a date, defaulting to the most
	// recent date with macro rows. Returns (nil, nil) when no data exists.
	GetDailyData(ctx context.Context, date models.ReportingDate) (*models.MarketDailyData, error)
	AvailableDates(ctx context.Context) ([]string, error)
	GetTimeSeries(ctx context.Context, table, ticker string, days int) ([]*models.TimeSeriesPoint, error)
}
