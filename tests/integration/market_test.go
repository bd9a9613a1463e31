package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ficcboard/backend/internal/repositories"
	"github.com/ficcboard/backend/internal/services"
)

func seedMarketData(t *testing.T, tdb *testDB) {
	t.Helper()

	tdb.exec(t, `INSERT INTO tb_macro_index (base_date, asset_class, ticker, close_value, change_val, change_pct) VALUES
		('20260313', 'EQUITY', 'KOSPI',   2650.50, 12.30, 0.47),
		('20260313', 'FX',     'USD/KRW', 1390.50, -4.20, -0.30),
		('20260313', 'US_BOND', 'US 2Y',  4.05, 0.02, 0),
		('20260313', 'US_BOND', 'US 10Y', 4.25, 0.03, 0),
		('20260312', 'EQUITY', 'KOSPI',   2638.20, -5.10, -0.19)`)

	tdb.exec(t, `INSERT INTO tb_domestic_rate (base_date, rate_type, maturity, yield_val, change_bp) VALUES
		('20260313', 'IRS',  '1Y',      3.45, 1.0),
		('20260313', 'IRS',  '3Y',      3.10, 0.5),
		('20260313', 'CRS',  '1Y',      2.80, -0.5),
		('20260313', 'CASH', 'KTB 3Y',  3.30, 0.8)`)

	tdb.exec(t, `INSERT INTO tb_yield_curve_matrix (base_date, sector, credit_rating, tenor, yield_rate) VALUES
		('20260313', 'KTB',  '',    '1Y', 3.20),
		('20260313', 'KTB',  '',    '3Y', 3.30),
		('20260313', 'Bank', 'AAA', '1Y', 3.55)`)

	tdb.exec(t, `INSERT INTO tb_ktb_futures (base_date, ticker, close_price, volume, net_foreign) VALUES
		('20260313', 'KTB3F', 104.25, 150000, 1200)`)

	tdb.exec(t, `INSERT INTO tb_bond_lending (base_date, bond_ticker, borrow_amt, balance) VALUES
		('20260313', 'KR203501', 500, 12000)`)
}

func TestMarketDailyDataEndToEnd(t *testing.T) {
	tdb := setupTestDB(t)
	defer tdb.cleanup(t)
	seedMarketData(t, tdb)

	svc := services.NewMarketService(repositories.NewMarketRepository(tdb.database))
	ctx := context.Background()

	data, err := svc.GetDailyData(ctx, "")
	if err != nil {
		t.Fatalf("GetDailyData failed: %v", err)
	}
	if data == nil {
		t.Fatal("expected market data")
	}

	t.Run("Resolves Latest Date", func(t *testing.T) {
		if data.Date != "2026-03-13" {
			t.Errorf("expected 2026-03-13, got %s", data.Date)
		}
		if data.DayOfWeek != "Fri" {
			t.Errorf("expected Fri, got %s", data.DayOfWeek)
		}
	})

	t.Run("Sections Reshaped", func(t *testing.T) {
		if len(data.Stocks) != 2 {
			t.Errorf("expected 2 stock/FX rows, got %d", len(data.Stocks))
		}
		if len(data.USTreasury) != 2 || data.USTreasury[0].Tenor != "2Y" {
			t.Errorf("unexpected treasury grid: %+v", data.USTreasury)
		}
		if len(data.IRS) != 2 || len(data.CRS) != 1 {
			t.Errorf("expected 2 IRS / 1 CRS, got %d / %d", len(data.IRS), len(data.CRS))
		}
		if len(data.KTBFutures) != 1 || data.KTBFutures[0].Ticker != "KTB3F" {
			t.Errorf("unexpected futures: %+v", data.KTBFutures)
		}
		if len(data.BondLending) != 1 {
			t.Errorf("expected 1 lending row, got %d", len(data.BondLending))
		}
	})

	t.Run("Spread Computed From Both Legs", func(t *testing.T) {
		for _, s := range data.Spreads {
			if s.Name == "KTB3Y-IRS3Y" {
				// (3.30 - 3.10) * 100
				if !s.Spread.Equal(decimal.NewFromInt(20)) {
					t.Errorf("expected 20bp, got %s", s.Spread)
				}
				return
			}
		}
		t.Error("KTB3Y-IRS3Y pair missing")
	})

	t.Run("Credit Curves Grouped By Sector And Rating", func(t *testing.T) {
		if len(data.CreditSpreads) != 2 {
			t.Fatalf("expected 2 curves, got %d", len(data.CreditSpreads))
		}
		if data.CreditSpreads[0].Name != "KTB" || data.CreditSpreads[1].Name != "Bank AAA" {
			t.Errorf("unexpected curve order: %s, %s",
				data.CreditSpreads[0].Name, data.CreditSpreads[1].Name)
		}
	})
}

func TestMarketAvailableDatesAndSeries(t *testing.T) {
	tdb := setupTestDB(t)
	defer tdb.cleanup(t)
	seedMarketData(t, tdb)

	svc := services.NewMarketService(repositories.NewMarketRepository(tdb.database))
	ctx := context.Background()

	dates, err := svc.AvailableDates(ctx)
	if err != nil {
		t.Fatalf("AvailableDates failed: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-03-13" {
		t.Fatalf("expected [2026-03-13 2026-03-12], got %v", dates)
	}

	// Series come back oldest first for charting.
	points, err := svc.GetTimeSeries(ctx, "macro", "KOSPI", 30)
	if err != nil {
		t.Fatalf("GetTimeSeries failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Date >= points[1].Date {
		t.Errorf("expected ascending dates, got %s then %s", points[0].Date, points[1].Date)
	}

	if _, err := svc.GetTimeSeries(ctx, "nonsense", "KOSPI", 30); err == nil {
		t.Error("expected error for unknown table")
	}
}
